package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"intelrelay/internal/config"
	"intelrelay/internal/metrics"
	"intelrelay/internal/notify"
	"intelrelay/internal/report"

	"github.com/google/uuid"
)

// Server exposes the report relay over HTTP.
type Server struct {
	cfg       config.Config
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	formatter report.Formatter
}

// NewServer creates a server around an immutable config and a notifier.
func NewServer(cfg config.Config, notifier notify.Notifier, m *metrics.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		notifier:  notifier,
		metrics:   m,
		formatter: report.Formatter{MaxLength: cfg.MaxMessageLength},
	}
}

// notifyResponse is returned to the caller after a successful delivery.
type notifyResponse struct {
	Success          bool   `json:"success"`
	Timestamp        string `json:"timestamp"`
	SlackChannel     string `json:"slack_channel"`
	MessageLength    int    `json:"message_length"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	SlackMessageTS   string `json:"slack_message_ts"`
}

type notifyFailure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler builds the route table wrapped in request tracking.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/notify", s.handleNotify)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	return s.metrics.RequestTrackingMiddleware(mux)
}

// Start runs the HTTP server until the context is canceled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("listening", "addr", s.cfg.ListenAddr, "channel", s.cfg.SlackChannel)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// ListenAndServe returns as soon as Shutdown begins; wait for in-flight
	// requests to drain before handing control back.
	<-shutdownDone
	return nil
}

// handleNotify runs one request through validate, format, deliver and
// respond. A failure after validation triggers a single best-effort error
// notice before the 500 response.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	start := time.Now()
	logger := slog.With("request_id", uuid.NewString())

	var in report.InboundReport
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("undecodable payload", "error", err)
		s.metrics.ReportsFailed.WithLabelValues("validation").Inc()
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	if err := in.Validate(); err != nil {
		logger.Warn("payload rejected", "error", err)
		s.metrics.ReportsFailed.WithLabelValues("validation").Inc()
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	text := s.formatter.Format(in)

	messageTS, err := s.notifier.Send(r.Context(), text)
	// Processing time covers the primary path only, not the failure notice.
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		logger.Error("report delivery failed", "error", err, "elapsed_ms", elapsed)
		s.metrics.ReportsFailed.WithLabelValues("delivery").Inc()
		s.notifier.NotifyFailure(r.Context(), err)
		writeJSON(w, http.StatusInternalServerError, notifyFailure{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	length := report.Length(text)
	s.metrics.ReportsDelivered.Inc()
	s.metrics.MessageLength.Observe(float64(length))
	logger.Info("report delivered",
		"channel", s.cfg.SlackChannel,
		"source", in.Source,
		"message_length", length,
		"elapsed_ms", elapsed,
	)

	writeJSON(w, http.StatusOK, notifyResponse{
		Success:          true,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		SlackChannel:     s.cfg.SlackChannel,
		MessageLength:    length,
		ProcessingTimeMS: elapsed,
		SlackMessageTS:   messageTS,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}
