// Package web serves the diagnostic widget and its JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ayurdiag/internal/diagnosis"
)

// Engine is the diagnostic surface the server exposes.
type Engine interface {
	Analyze(ctx context.Context, symptoms string, opts diagnosis.Options) (*diagnosis.Diagnosis, error)
	AnalyzeBatch(ctx context.Context, list []string, opts diagnosis.Options) []diagnosis.Result
	Chat(ctx context.Context, conv *diagnosis.Conversation, message string, opts diagnosis.Options) (string, error)
	SystemInfo(ctx context.Context) diagnosis.SystemInfo
}

const (
	maxBodyBytes = 1 << 20
	maxBatch     = 20
)

type Server struct {
	router   chi.Router
	engine   Engine
	sessions *Sessions
	logger   *zap.Logger
}

func NewServer(engine Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   chi.NewRouter(),
		engine:   engine,
		sessions: NewSessions(),
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	})

	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Post("/diagnose", s.handleDiagnose)
		r.Post("/diagnose/html", s.handleDiagnoseHTML)
		r.Post("/batch", s.handleBatch)
		r.Post("/chat", s.handleChat)
		r.Delete("/chat/{id}", s.handleChatDelete)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", zap.String("addr", addr))
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
	s.logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	body := map[string]string{"error": err.Error()}
	var pe *diagnosis.ParseError
	if errors.As(err, &pe) {
		body["raw_content"] = pe.Raw
	}
	writeJSON(w, status, body)
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, diagnosis.ErrEmptySymptoms), errors.Is(err, diagnosis.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
