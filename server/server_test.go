package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social_post_generator/config"
	"social_post_generator/generator"
)

var pageFixture = "<html><body><article>" +
	strings.Repeat("Длинная статья о том, как устроены генераторы постов. ", 5) +
	"</article></body></html>"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires a Server around a mock LLM and a local page server.
// The returned URL serves pageFixture.
func newTestServer(t *testing.T, mock *generator.MockLLM, rateLimit int) (*Server, string) {
	t.Helper()

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, pageFixture)
	}))
	t.Cleanup(pages.Close)

	log := testLogger()
	client, err := generator.NewClient(generator.LLMSettings{APIKey: "sk-test", Model: "gpt-4o"}, mock, log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	fetcher := generator.NewFetcher(generator.FetchSettings{
		Timeout:     5 * time.Second,
		MaxPageSize: 1 << 20,
		UserAgent:   "test-agent/1.0",
	}, log)
	extractor := generator.NewExtractor(100, log)
	agent, err := generator.NewAgent(client, fetcher, extractor, 800, log)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	cfg := config.Default()
	cfg.Server.RateLimitPerMinute = rateLimit
	srv, err := New(agent, client, cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, pages.URL
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("%s %s: response is not JSON: %v\n%s", method, path, err, rec.Body.String())
	}
	return rec, payload
}

func TestGenerateEndpoint(t *testing.T) {
	mock := &generator.MockLLM{Replies: []generator.MockReply{{Text: "Готовый пост 🚀", Tokens: 42}}}
	srv, pageURL := newTestServer(t, mock, 100)
	routes := srv.Routes()

	body := fmt.Sprintf(`{"url": %q, "style": "motivational", "max_length": 500}`, pageURL)
	rec, payload := doJSON(t, routes, http.MethodPost, "/api/generate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, payload)
	}
	if payload["success"] != true {
		t.Errorf("success = %v", payload["success"])
	}
	if payload["post"] != "Готовый пост 🚀" {
		t.Errorf("post = %v", payload["post"])
	}
	if payload["style"] != "мотивационный" {
		t.Errorf("style = %v, want the resolved key", payload["style"])
	}
	if _, err := time.Parse(time.RFC3339, payload["timestamp"].(string)); err != nil {
		t.Errorf("timestamp = %v: %v", payload["timestamp"], err)
	}
}

func TestGenerateEndpointMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)

	rec, payload := doJSON(t, srv.Routes(), http.MethodPost, "/api/generate", "{not json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if payload["error_code"] != "VALIDATION_ERROR" {
		t.Errorf("error_code = %v", payload["error_code"])
	}
}

func TestGenerateEndpointInvalidURL(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)

	rec, payload := doJSON(t, srv.Routes(), http.MethodPost, "/api/generate", `{"url": "ftp://example.com"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if payload["error_code"] != "VALIDATION_ERROR" {
		t.Errorf("error_code = %v", payload["error_code"])
	}
}

func TestGenerateEndpointFetchFailure(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)

	// Nothing listens on this port.
	rec, payload := doJSON(t, srv.Routes(), http.MethodPost, "/api/generate", `{"url": "http://127.0.0.1:1/page"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if payload["error_code"] != "URL_FETCH_ERROR" {
		t.Errorf("error_code = %v", payload["error_code"])
	}
}

func TestStylesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)

	rec, payload := doJSON(t, srv.Routes(), http.MethodGet, "/api/styles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	styles, _ := payload["styles"].([]any)
	if len(styles) != 6 {
		t.Errorf("styles = %d, want 6", len(styles))
	}
	if payload["default"] != "ironic" {
		t.Errorf("default = %v", payload["default"])
	}
	first, _ := styles[0].(map[string]any)
	for _, field := range []string{"id", "name", "description", "emoji"} {
		if first[field] == "" || first[field] == nil {
			t.Errorf("style field %q missing: %v", field, first)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	healthy := &generator.MockLLM{Replies: []generator.MockReply{{Text: "pong"}}}
	srv, _ := newTestServer(t, healthy, 100)

	rec, payload := doJSON(t, srv.Routes(), http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["status"] != "healthy" {
		t.Errorf("status = %v", payload["status"])
	}
	checks, _ := payload["checks"].(map[string]any)
	openai, _ := checks["openai"].(map[string]any)
	if openai["status"] != "available" {
		t.Errorf("openai check = %v", openai)
	}

	down := &generator.MockLLM{Replies: []generator.MockReply{{Err: fmt.Errorf("%w: boom", generator.ErrConnection)}}}
	srv, _ = newTestServer(t, down, 100)
	_, payload = doJSON(t, srv.Routes(), http.MethodGet, "/api/health", "")
	if payload["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", payload["status"])
	}
}

func TestPreviewEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)

	rec, payload := doJSON(t, srv.Routes(), http.MethodPost, "/api/preview", `{"text": "**жирный** пост"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	html, _ := payload["html"].(string)
	if !strings.Contains(html, "<strong>жирный</strong>") {
		t.Errorf("html = %q, want rendered markdown", html)
	}

	rec, payload = doJSON(t, srv.Routes(), http.MethodPost, "/api/preview", `{"text": "  "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty text: status = %d, want 422: %v", rec.Code, payload)
	}
}

func TestIndexAndNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)
	routes := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("index status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Social Post Generator") {
		t.Error("index page missing the UI")
	}

	rec2, payload := doJSON(t, routes, http.MethodGet, "/nope", "")
	if rec2.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec2.Code)
	}
	if payload["error_code"] != "NOT_FOUND" || payload["path"] != "/nope" {
		t.Errorf("payload = %v", payload)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 100)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:8082")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8082" {
		t.Errorf("allow-origin = %q", got)
	}

	// Unknown origins get no CORS grant.
	req = httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin for unknown origin = %q", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, &generator.MockLLM{}, 2)
	routes := srv.Routes()

	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, routes, http.MethodGet, "/api/styles", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}

	rec, payload := doJSON(t, routes, http.MethodGet, "/api/styles", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if payload["error_code"] != "RATE_LIMIT_ERROR" {
		t.Errorf("error_code = %v", payload["error_code"])
	}
	if payload["retry_after"] != float64(60) {
		t.Errorf("retry_after = %v", payload["retry_after"])
	}

	// The UI stays reachable while the API is throttled.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	uiRec := httptest.NewRecorder()
	routes.ServeHTTP(uiRec, req)
	if uiRec.Code != http.StatusOK {
		t.Errorf("index throttled: status = %d", uiRec.Code)
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("first two requests denied")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request within the window allowed")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other keys share the budget")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("1.2.3.4") {
		t.Error("request after the window expired denied")
	}
}
