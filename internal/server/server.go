// Package server exposes the relay's webhooks over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/spice-relay/internal/pipeline"
	"github.com/Veraticus/spice-relay/internal/telegram"
	"github.com/gorilla/mux"
)

// maxBodyBytes caps webhook bodies.
const maxBodyBytes = 1 << 20

// Correlator is the part of the pipeline the webhooks drive.
type Correlator interface {
	HandleNotification(ctx context.Context, text string) (pipeline.NotificationOutcome, error)
	HandleReply(ctx context.Context, chatID, text string) (pipeline.ReplyOutcome, error)
}

// Config holds HTTP server settings.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	HandlerTimeout time.Duration // budget for processing one webhook
}

// Server serves the notification and Telegram webhooks.
type Server struct {
	correlator Correlator
	logger     *slog.Logger
	config     Config
}

// New creates a server around correlator.
func New(correlator Correlator, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 2 * time.Minute
	}
	return &Server{
		correlator: correlator,
		logger:     logger,
		config:     cfg,
	}
}

// Router builds the route table with middleware applied.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/notification", s.handleNotification).Methods(http.MethodPost)
	router.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	router.Use(RequestID, Logger(s.logger), Recovery(s.logger))
	return router
}

// HTTPServer returns an http.Server for the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Router(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
	}
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

type notificationRequest struct {
	Notification string `json:"notification"`
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	defer writeAck(w)

	var req notificationRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := s.processingContext(r)
	defer cancel()

	outcome, err := s.correlator.HandleNotification(ctx, req.Notification)
	if err != nil {
		s.logger.Warn("Notification handled with errors",
			"request_id", RequestIDFrom(r.Context()),
			"status", outcome.Status.String(),
			"error", err)
		return
	}

	s.logger.Debug("Notification handled",
		"request_id", RequestIDFrom(r.Context()),
		"status", outcome.Status.String())
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer writeAck(w)

	var update telegram.Update
	if !s.decode(w, r, &update) {
		return
	}

	chatID, text, ok := update.Reply()
	if !ok {
		s.logger.Debug("Ignoring update without message", "update_id", update.UpdateID)
		return
	}

	ctx, cancel := s.processingContext(r)
	defer cancel()

	outcome, err := s.correlator.HandleReply(ctx, chatID, text)
	switch {
	case pipeline.IsNoPending(err):
		s.logger.Info("Reply with nothing pending", "request_id", RequestIDFrom(r.Context()), "chat_id", chatID)
	case err != nil:
		s.logger.Error("Reply failed",
			"request_id", RequestIDFrom(r.Context()),
			"chat_id", chatID,
			"error", err)
	default:
		s.logger.Debug("Reply handled",
			"request_id", RequestIDFrom(r.Context()),
			"chat_id", chatID,
			"status", outcome.Status.String())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeAck(w)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warn("Malformed request body",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"error", err)
		return false
	}
	return true
}

// processingContext outlives the caller's connection and is bounded by
// HandlerTimeout.
func (s *Server) processingContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), s.config.HandlerTimeout)
}

var ackBody = []byte(`{"ok":true}`)

func writeAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ackBody)
}
