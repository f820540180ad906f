// Package web serves the read-only status API: health, last cycle
// report, and Prometheus metrics.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// ReportSource exposes the most recent cycle report.
type ReportSource interface {
	LastReport() *model.CycleReport
}

// Server is the HTTP status server.
type Server struct {
	source ReportSource
	router *mux.Router
}

// NewServer creates a status server reading from the given source.
func NewServer(source ReportSource) *Server {
	s := &Server{
		source: source,
		router: mux.NewRouter(),
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/status", s.handleStatus).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return s
}

// Start runs the server until the listener fails. Intended to be called
// in its own goroutine.
func (s *Server) Start(addr string) error {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(s.router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("[INFO] status server listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	report := s.source.LastReport()
	if report == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.Printf("[ERROR] encode status response: %v", err)
	}
}
