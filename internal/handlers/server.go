package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/poltracker/poltracker/internal/config"
	"github.com/poltracker/poltracker/internal/congress"
	"github.com/poltracker/poltracker/internal/memory"
	"github.com/poltracker/poltracker/internal/news"
	"github.com/poltracker/poltracker/internal/summary"
)

// Server holds the HTTP server and its dependencies
type Server struct {
	config    *config.Config
	congress  *congress.Client
	news      *news.Pipeline
	summaries *summary.Generator
	memories  *memory.Store
	router    *mux.Router
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config) (*Server, error) {
	backend, err := memory.NewBackend(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("creating memory backend: %w", err)
	}

	congressClient := congress.NewClient(cfg.CongressAPIKey)

	s := &Server{
		config:    cfg,
		congress:  congressClient,
		news:      news.NewPipeline(news.NewClient(cfg.NewsAPIKey)),
		summaries: summary.NewGenerator(congressClient, summary.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)),
		memories:  memory.NewStore(backend, cfg.MemoryPrefix, time.Duration(cfg.MemoryCacheTTLSecs)*time.Second),
	}
	s.router = s.SetupRoutes()
	return s, nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	// CORS preflight for any path; corsMiddleware answers it
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Health check
	r.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Senator operations
	r.HandleFunc("/senators", s.senatorsHandler).Methods("GET")
	r.HandleFunc("/senator/{bioguideId}", s.senatorHandler).Methods("GET")
	r.HandleFunc("/senator/{bioguideId}/sponsored-bills", s.sponsoredBillsHandler).Methods("GET")
	r.HandleFunc("/senator/{bioguideId}/cosponsored-bills", s.cosponsoredBillsHandler).Methods("GET")
	r.HandleFunc("/senator/{bioguideId}/news", s.senatorNewsHandler).Methods("GET")

	// State operations
	r.HandleFunc("/state-colors", s.stateColorsHandler).Methods("GET")
	r.HandleFunc("/state/{stateCode}", s.stateHandler).Methods("GET")

	// Bill operations
	r.HandleFunc("/bill/{billId}/summary", s.billSummaryHandler).Methods("GET")

	// Memory operations
	r.HandleFunc("/memory/{userId}", s.getMemoryHandler).Methods("GET")
	r.HandleFunc("/memory/{userId}", s.setMemoryHandler).Methods("POST")
	r.HandleFunc("/memory/{userId}", s.clearMemoryHandler).Methods("DELETE")

	return r
}

// HandleRequest serves a single request through the router, for the
// Cloud Functions entry point.
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
