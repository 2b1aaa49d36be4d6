// Package api exposes the schedule operations over a small JSON HTTP
// surface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vigil/internal/manager"
	"vigil/internal/model"
	"vigil/internal/notify"
)

// HTTPServer serves the schedule API.
type HTTPServer struct {
	manager    *manager.Service
	dispatcher *notify.Dispatcher
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration

	defaultStartHour int
	defaultEndHour   int
}

// NewHTTPServer creates the API server. redis is optional.
func NewHTTPServer(mgr *manager.Service, dispatcher *notify.Dispatcher, logger zerolog.Logger, defaultStartHour, defaultEndHour int) *HTTPServer {
	return &HTTPServer{
		manager:          mgr,
		dispatcher:       dispatcher,
		logger:           logger.With().Str("component", "api").Logger(),
		defaultStartHour: defaultStartHour,
		defaultEndHour:   defaultEndHour,
	}
}

// UseRedisCache configures read-through caching of the active-schedule view.
func (s *HTTPServer) UseRedisCache(client *redis.Client, ttl time.Duration) {
	s.redis = client
	s.cacheTTL = ttl
}

// Handler returns the routed handler with logging middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/schedules", s.handleSchedules)
	mux.HandleFunc("/api/schedules/", s.handleScheduleSubtree)
	mux.HandleFunc("/api/schedules/active", s.handleActiveSchedule)
	mux.HandleFunc("/api/config", s.handleConfig)
	return s.withRequestLog(mux)
}

// withRequestLog tags every request with an id and logs its outcome.
func (s *HTTPServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

// isAdmin checks the shared admin passcode supplied in the request header.
func (s *HTTPServer) isAdmin(r *http.Request) bool {
	password := r.Header.Get("X-Admin-Password")
	if password == "" {
		return false
	}
	ok, err := s.manager.VerifyAdmin(r.Context(), password)
	if err != nil {
		s.logger.Error().Err(err).Msg("admin verification failed")
		return false
	}
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto HTTP statuses so clients can
// tell invalid input apart from an unreachable store.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRange),
		errors.Is(err, model.ErrEmptyRange),
		errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrInvalidNumber):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrScheduleNotFound),
		errors.Is(err, model.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrAlreadyBooked),
		errors.Is(err, model.ErrNotBooked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrWrongPassword),
		errors.Is(err, model.ErrNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
