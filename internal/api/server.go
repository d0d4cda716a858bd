package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/platform/logger"
)

// MapStore is the read side of the loaded mapping tables
type MapStore interface {
	MapsForActivity(ctx context.Context, activityID int64) ([]domain.MappingRecord, error)
	ListManualMaps(ctx context.Context, limit, offset int) ([]domain.MappingRecord, error)
	ListValidDomains(ctx context.Context) ([]string, error)
}

// Server serves the loaded activity-to-domain mapping over HTTP
type Server struct {
	store MapStore
	log   *logger.Logger
	addr  string
}

// New creates a new API server
func New(s MapStore, log *logger.Logger, addr string) *Server {
	return &Server{store: s, log: log, addr: addr}
}

// Handler returns the routed handler with request logging and CORS
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Mappings
	mux.HandleFunc("GET /maps", s.mapsForActivity)
	mux.HandleFunc("GET /maps/manual", s.listManualMaps)

	// Curation lists
	mux.HandleFunc("GET /valid-domains", s.listValidDomains)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withLogging(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("starting server", "addr", s.addr)
	return srv.ListenAndServe()
}

// withCORS adds CORS headers for read-only browser clients
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		s.log.Info("request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) mapsForActivity(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("activity_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'activity_id' is required")
		return
	}
	activityID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "activity_id must be an integer")
		return
	}

	maps, err := s.store.MapsForActivity(r.Context(), activityID)
	if err != nil {
		s.log.Error("maps for activity", "activity_id", activityID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(maps) == 0 {
		writeError(w, http.StatusNotFound, "no mapping for activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activity_id": activityID,
		"maps":        maps,
	})
}

func (s *Server) listManualMaps(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	maps, err := s.store.ListManualMaps(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("list manual maps", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if maps == nil {
		maps = []domain.MappingRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"maps":   maps,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) listValidDomains(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListValidDomains(r.Context())
	if err != nil {
		s.log.Error("list valid domains", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"domains": names,
		"count":   len(names),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
