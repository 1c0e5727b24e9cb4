// ABOUTME: HTTP API for the snippet retrieval service
// ABOUTME: GET /search runs semantic queries; GET /health reports readiness
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/models"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

// Server exposes the query service over HTTP.
type Server struct {
	service *retrieval.Service
	cfg     *config.Config
}

// NewServer creates an HTTP server around the given query service.
func NewServer(service *retrieval.Service, cfg *config.Config) *Server {
	return &Server{service: service, cfg: cfg}
}

// Handler returns the routed http.Handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleRoot)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/search", s.HandleSearch)
	return mux
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "kiosk-retrieval",
		"ok":        true,
		"time_utc":  time.Now().UTC().Format(time.RFC3339),
		"endpoints": []string{"/health", "/search"},
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	count, err := s.service.Ready()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"time_utc":  time.Now().UTC().Format(time.RFC3339),
		"vec_count": count,
	})
}

// HandleSearch serves GET /search?q=<query>&k=<n>&ids=<id1,id2>.
// k defaults to the configured result count; ids restricts results to the
// listed snippet ids.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestID := uuid.New().String()[:8]

	query := r.URL.Query().Get("q")

	k := s.cfg.DefaultResults
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "k must be an integer"})
			return
		}
		k = parsed
	}

	var idFilter map[string]struct{}
	if raw := r.URL.Query().Get("ids"); raw != "" {
		idFilter = make(map[string]struct{})
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				idFilter[id] = struct{}{}
			}
		}
	}

	results, err := s.service.Search(r.Context(), query, k, idFilter)
	if err != nil {
		if retrieval.IsClientError(err) {
			log.Printf("[%s] rejected search: %v", requestID, err)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		log.Printf("[%s] search failed: %v", requestID, err)
		status := http.StatusInternalServerError
		if _, readyErr := s.service.Ready(); readyErr != nil {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	log.Printf("[%s] search %q k=%d -> %d results", requestID, strings.TrimSpace(query), k, len(results))
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   strings.TrimSpace(query),
		Results: results,
		Count:   len(results),
	})
}
