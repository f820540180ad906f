package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

type staticSource struct {
	report *model.CycleReport
}

func (s *staticSource) LastReport() *model.CycleReport { return s.report }

func TestHealthz(t *testing.T) {
	srv := NewServer(&staticSource{})
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestStatus_NoReportYet(t *testing.T) {
	srv := NewServer(&staticSource{})
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestStatus_ReturnsLastReport(t *testing.T) {
	report := &model.CycleReport{
		RunID:  "run-1",
		Date:   time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC),
		Status: model.CycleOK,
	}
	srv := NewServer(&staticSource{report: report})
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got model.CycleReport
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Status != model.CycleOK {
		t.Errorf("report = %+v", got)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	srv := NewServer(&staticSource{})
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
