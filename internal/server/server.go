// Package server is the HTTP backend behind the report form. It reads the
// addressing parameters, accepts the filled form with its photos, runs the
// payload pipeline and relays the endpoint's answer back to the browser.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/log"
	"github.com/dharsanguruparan/reporte/internal/payload"
	"github.com/dharsanguruparan/reporte/internal/submit"
)

// Sender delivers a built submission. *submit.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, sub *payload.Submission) (submit.Result, error)
}

// Server hosts the form endpoints.
type Server struct {
	cfg     *config.Config
	sender  Sender
	builder payload.Builder
	server  *http.Server
	once    sync.Once
}

// New constructs a Server.
func New(cfg *config.Config, sender Sender) *Server {
	return &Server{cfg: cfg, sender: sender}
}

// Routes returns the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, loggingMiddleware, middleware.Recoverer, corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Get("/template", s.handleTemplate)
		r.Post("/reports", s.handleSubmit)
	})
	return r
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:         s.cfg.Address,
			Handler:      s.Routes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  time.Minute,
			WriteTimeout: s.cfg.SubmitTimeout + 30*time.Second,
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Infof("form backend listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		}).Infof("%s %s", r.Method, r.URL.Path)
	})
}
