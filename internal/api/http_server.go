package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nailbot/internal/config"
	"nailbot/internal/database"
	"nailbot/internal/metrics"
	"nailbot/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const healthTimeout = 3 * time.Second

type BookingReader interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CountBookingsByStatus(ctx context.Context) (map[string]int, error)
}

type StatsReader interface {
	DailyReport(ctx context.Context, day time.Time) (*models.DailyStats, error)
}

// HealthCheck проверка зависимости для /healthz.
type HealthCheck func(ctx context.Context) error

// HTTPServer служебное HTTP API: здоровье, метрики, просмотр заявок и статистики.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings BookingReader
	stats    StatsReader
	checks   map[string]HealthCheck
	server   *http.Server
	auth     *HTTPAuth
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, bookings BookingReader, stats StatsReader, checks map[string]HealthCheck, logger *zerolog.Logger) *HTTPServer {
	metrics.Register()

	l := logger.With().Str("component", "http").Logger()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		stats:    stats,
		checks:   checks,
		auth:     NewHTTPAuth(cfg),
		now:      time.Now,
		logger:   &l,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/bookings/{id}", srv.handleBooking)
	api.HandleFunc("GET /api/v1/stats/today", srv.handleStatsToday)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/api/", srv.auth.Wrap(api))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if errors.Is(err, database.ErrBookingNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("get booking failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleStatsToday(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.DailyReport(r.Context(), s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("daily stats failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	counts, err := s.bookings.CountBookingsByStatus(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("booking counts failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activity": stats,
		"bookings": counts,
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint, recorder.status)
		metrics.ObserveHTTP(endpoint, dur)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
