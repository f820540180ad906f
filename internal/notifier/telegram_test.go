package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestNotifier(apiBase string) *TelegramNotifier {
	tn := NewTelegramNotifier("tok", "123", "")
	tn.APIBase = apiBase
	return tn
}

func TestTelegramSend_PostsFormFields(t *testing.T) {
	var gotPath, gotChat, gotText, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotChat = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		gotMode = r.PostFormValue("parse_mode")
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	if err := tn.Send("<b>report</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/bottok/sendMessage" {
		t.Errorf("path = %s", gotPath)
	}
	if gotChat != "123" || gotText != "<b>report</b>" || gotMode != "HTML" {
		t.Errorf("form = chat %q text %q mode %q", gotChat, gotText, gotMode)
	}
}

func TestTelegramSend_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Send("x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("err = %v, want API description surfaced", err)
	}
}

func TestSendWithRetry_NoBackoffOnFirstSuccess(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSendWithRetry_CancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"flood control"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newTestNotifier(srv.URL).SendWithRetry(ctx, "x", 3)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func decodeUpdate(t *testing.T, raw string) telegramUpdate {
	t.Helper()
	var u telegramUpdate
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestCommandFrom(t *testing.T) {
	tn := NewTelegramNotifier("tok", "123", "")
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain command", `{"update_id":1,"message":{"text":"/run","chat":{"id":123}}}`, "/run"},
		{"bot suffix stripped", `{"update_id":2,"message":{"text":"/run@SomeBot","chat":{"id":123}}}`, "/run"},
		{"whitespace trimmed", `{"update_id":3,"message":{"text":"  /report ","chat":{"id":123}}}`, "/report"},
		{"non-command ignored", `{"update_id":4,"message":{"text":"hello","chat":{"id":123}}}`, ""},
		{"foreign chat ignored", `{"update_id":5,"message":{"text":"/run","chat":{"id":999}}}`, ""},
		{"no message", `{"update_id":6}`, ""},
	}
	for _, c := range cases {
		if got := tn.commandFrom(decodeUpdate(t, c.raw)); got != c.want {
			t.Errorf("%s: commandFrom = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFetchUpdates_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "7" {
			t.Errorf("offset = %s, want 7", r.URL.Query().Get("offset"))
		}
		w.Write([]byte(`{"ok":true,"result":[{"update_id":8,"message":{"text":"/run","chat":{"id":123}}}]}`))
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	updates, err := tn.fetchUpdates(context.Background(), srv.Client(), 7)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(updates) != 1 || updates[0].UpdateID != 8 {
		t.Fatalf("updates = %+v", updates)
	}
}
