// Package server exposes the post generation pipeline over HTTP and serves
// the embedded web UI.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"social_post_generator/config"
	"social_post_generator/errs"
	"social_post_generator/generator"
)

const version = "1.0.0"

// healthProbeTimeout bounds the LLM probe inside /api/health so a hung
// upstream cannot stall the endpoint.
const healthProbeTimeout = 10 * time.Second

//go:embed web/index.html
var webFS embed.FS

// Server holds the request handlers and their dependencies. All fields are
// set at startup and read-only afterwards; per-request state lives on the
// stack of each handler goroutine.
type Server struct {
	agent   *generator.Agent
	client  *generator.Client
	origins []string
	limiter *rateLimiter
	log     *slog.Logger
}

func New(agent *generator.Agent, client *generator.Client, cfg config.Config, log *slog.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent is required")
	}
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	return &Server{
		agent:   agent,
		client:  client,
		origins: cfg.AllowedOriginsList(),
		limiter: newRateLimiter(cfg.Server.RateLimitPerMinute, time.Minute),
		log:     log,
	}, nil
}

// Routes assembles the handler tree. Middleware order, outermost first:
// request logging, CORS, rate limiting, panic recovery.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/styles", s.handleStyles)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/preview", s.handlePreview)
	mux.HandleFunc("/", s.handleIndex)

	var h http.Handler = mux
	h = s.recoverMiddleware(h)
	h = s.rateLimitMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.logMiddleware(h)
	return h
}

// --- Handlers ---

type generateRequest struct {
	URL       string `json:"url"`
	Style     string `json:"style"`
	MaxLength int    `json:"max_length"`
}

type generateResponse struct {
	Success   bool   `json:"success"`
	Post      string `json:"post"`
	Length    int    `json:"length"`
	Style     string `json:"style"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.NewURLValidation("", "invalid request body: "+err.Error()))
		return
	}

	post, err := s.agent.GeneratePost(r.Context(), generator.GenerationRequest{
		URL:       req.URL,
		Style:     req.Style,
		MaxLength: req.MaxLength,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:   true,
		Post:      post.Post,
		Length:    post.Length,
		Style:     post.Style,
		URL:       post.URL,
		Timestamp: post.Timestamp.Format(time.RFC3339),
	})
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"styles":  s.agent.AvailableStyles(),
		"default": generator.DefaultStyle().ID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	status := "healthy"
	openaiStatus := "available"
	if !s.client.CheckHealth(ctx) {
		status = "degraded"
		openaiStatus = "unavailable"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version,
		"checks": map[string]any{
			"openai": map[string]any{"status": openaiStatus},
		},
	})
}

type previewRequest struct {
	Text string `json:"text"`
}

// handlePreview renders a generated post as HTML for the UI preview pane.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.NewURLValidation("", "invalid request body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, errs.NewURLValidation("", "text is empty"))
		return
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(req.Text), &buf); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"html":    buf.String(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success":    false,
			"error":      "Endpoint не найден",
			"error_code": "NOT_FOUND",
			"path":       r.URL.Path,
		})
		return
	}
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// --- Middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		s.log.Info("request received",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", clientIP(r)))

		next.ServeHTTP(rec, r)

		s.log.Info("request completed",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start).Round(time.Millisecond)))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(s.origins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "*")
			w.Header().Set("Access-Control-Allow-Headers", "*")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware throttles API calls per client IP. The UI pages are
// never throttled.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && !s.limiter.allow(clientIP(r)) {
			s.log.Warn("rate limit exceeded", slog.String("remote", clientIP(r)))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"success":     false,
				"error":       "Превышен лимит запросов. Пожалуйста, подождите перед следующей попыткой.",
				"error_code":  "RATE_LIMIT_ERROR",
				"retry_after": 60,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.log.Error("panic in handler",
					slog.String("path", r.URL.Path),
					slog.Any("panic", v))
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"success":    false,
					"error":      "Внутренняя ошибка сервера. Администратор уведомлен.",
					"error_code": "INTERNAL_ERROR",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// --- Helpers ---

// writeError maps a failure to its HTTP status and taxonomy payload.
// Validation problems are the caller's fault (422), pipeline failures on a
// given URL are bad requests (400), everything else is a server error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if e, ok := errs.As(err); ok {
		switch e.Kind {
		case errs.KindValidation:
			status = http.StatusUnprocessableEntity
		case errs.KindURLFetch, errs.KindTextExtraction, errs.KindPostGeneration:
			status = http.StatusBadRequest
		}
		s.log.Warn("request failed",
			slog.String("error_code", e.Code),
			slog.String("error", e.Error()))
	} else {
		s.log.Error("unhandled error", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errs.Payload(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
