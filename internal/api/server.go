// Package api serves stored walk-forward runs and Prometheus metrics over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

// DefaultListLimit caps /runs when no limit is given.
const DefaultListLimit = 50

// Server is the read-only run API.
type Server struct {
	router  *mux.Router
	runs    storage.RunStore
	records storage.RebalanceRecordStore
	series  storage.PortfolioSeriesStore
	log     zerolog.Logger
}

// NewServer wires routes over stores. metrics is mounted at /metrics when
// non-nil. Stores left nil answer 404 for their routes.
func NewServer(stores storage.Stores, metrics http.Handler, log zerolog.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		runs:    stores.Runs,
		records: stores.Rebalances,
		series:  stores.Portfolios,
		log:     log.With().Str("component", "api").Logger(),
	}

	s.router.Use(s.requestLogging)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if metrics != nil {
		s.router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/runs").Subrouter()
	api.HandleFunc("", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleGetRun).Methods(http.MethodGet)
	api.HandleFunc("/{id}/rebalances", s.handleRebalances).Methods(http.MethodGet)
	api.HandleFunc("/{id}/portfolio", s.handlePortfolio).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run storage not configured")
		return
	}

	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.List(r.Context(), limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	out := make([]RunResponse, len(runs))
	for i, run := range runs {
		out[i] = newRun(run, false)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run storage not configured")
		return
	}
	run, err := s.runs.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRun(run, true))
}

func (s *Server) handleRebalances(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil || s.records == nil {
		writeError(w, http.StatusNotFound, "rebalance storage not configured")
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := s.runs.GetByID(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}

	records, err := s.records.GetByRunID(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	out := make([]RebalanceResponse, len(records))
	for i, rec := range records {
		out[i] = newRebalance(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if s.series == nil {
		writeError(w, http.StatusNotFound, "portfolio storage not configured")
		return
	}
	p, err := s.series.GetByRunID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, err)
		return
	}
	out := make([]PortfolioPoint, len(p.Index))
	for i, d := range p.Index {
		out[i] = PortfolioPoint{Date: d.Format(domain.DateLayout), Return: number(p.Returns[i])}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.log.Error().Err(err).Msg("store request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// requestLogging logs every request at debug level.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
