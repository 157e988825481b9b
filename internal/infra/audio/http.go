package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicenav/internal/application"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 1024
)

// ListenControl switches recognition on and off.
type ListenControl interface {
	Start()
	Abort()
	Listening() bool
}

// PageViewer exposes the current page state.
type PageViewer interface {
	Snapshot() application.PageState
}

// HTTPSource receives utterances over HTTP and serves the listening
// controls and the current page.
type HTTPSource struct {
	addr      string
	server    *http.Server
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
	mux       *http.ServeMux
	limiter   *RateLimiter
	queueSize int

	// payloads is replaced when a stopped source is started again.
	sendMu   sync.RWMutex
	payloads chan []byte
	closed   bool

	control ListenControl
	pages   PageViewer
}

func NewHTTPSource(addr string, queueSize int, logger *slog.Logger) *HTTPSource {
	if queueSize <= 0 {
		queueSize = 10
	}
	h := &HTTPSource{
		addr:      addr,
		payloads:  make(chan []byte, queueSize),
		queueSize: queueSize,
		logger:    logger,
		mux:       http.NewServeMux(),
		limiter:   NewRateLimiter(30, time.Minute),
	}
	h.mux.HandleFunc("POST /text", h.limiter.Middleware(h.handleText))
	h.mux.HandleFunc("POST /audio", h.limiter.Middleware(h.handleAudio))
	h.mux.HandleFunc("POST /listen", h.handleListenOn)
	h.mux.HandleFunc("DELETE /listen", h.handleListenOff)
	h.mux.HandleFunc("GET /page", h.handlePage)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

// Attach wires the listening controls and page view. Until then those
// endpoints answer 503.
func (h *HTTPSource) Attach(control ListenControl, pages PageViewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.control = control
	h.pages = pages
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.sendMu.Lock()
	if h.closed {
		h.payloads = make(chan []byte, h.queueSize)
		h.closed = false
	}
	h.sendMu.Unlock()

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func(srv *http.Server) {
		h.logger.Info("HTTP utterance server starting", "addr", h.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}(h.server)

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	srv := h.server
	h.running = false
	h.mu.Unlock()

	// Handlers still in flight may take h.mu, so shut down without holding it.
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.sendMu.Lock()
	if !h.closed {
		h.closed = true
		close(h.payloads)
	}
	h.sendMu.Unlock()

	return nil
}

func (h *HTTPSource) Next(ctx context.Context) ([]byte, error) {
	h.sendMu.RLock()
	payloads := h.payloads
	h.sendMu.RUnlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload, ok := <-payloads:
		if !ok {
			return nil, application.ErrSourceClosed
		}
		return payload, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

// Inject queues an utterance as if it had been posted to /text.
func (h *HTTPSource) Inject(text string) bool {
	return h.offer(application.TextPayload(text))
}

// offer queues payload without blocking; it fails when the queue is full or
// the source has been stopped.
func (h *HTTPSource) offer(payload []byte) bool {
	h.sendMu.RLock()
	defer h.sendMu.RUnlock()

	if h.closed {
		return false
	}
	select {
	case h.payloads <- payload:
		return true
	default:
		return false
	}
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxTextBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	h.enqueue(w, application.TextPayload(text), "text", text)
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	h.enqueue(w, data, "bytes", len(data))
}

func (h *HTTPSource) enqueue(w http.ResponseWriter, payload []byte, key string, value any) {
	id := uuid.NewString()

	if !h.offer(payload) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received utterance via HTTP", "id", id, key, value)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "id": id, key: value})
}

func (h *HTTPSource) handleListenOn(w http.ResponseWriter, _ *http.Request) {
	h.setListening(w, true)
}

func (h *HTTPSource) handleListenOff(w http.ResponseWriter, _ *http.Request) {
	h.setListening(w, false)
}

func (h *HTTPSource) setListening(w http.ResponseWriter, on bool) {
	h.mu.Lock()
	control := h.control
	h.mu.Unlock()

	if control == nil {
		http.Error(w, "listening control not available", http.StatusServiceUnavailable)
		return
	}

	if on {
		control.Start()
	} else {
		control.Abort()
	}
	writeJSON(w, http.StatusOK, map[string]any{"listening": control.Listening()})
}

func (h *HTTPSource) handlePage(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	pages := h.pages
	h.mu.Unlock()

	if pages == nil {
		http.Error(w, "no page session", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, pages.Snapshot())
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	running := h.running
	listening := h.control != nil && h.control.Listening()
	h.mu.Unlock()

	h.sendMu.RLock()
	queued := len(h.payloads)
	h.sendMu.RUnlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":     status,
		"running":    running,
		"listening":  listening,
		"queue_size": queued,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("writing response", "error", err)
	}
}
