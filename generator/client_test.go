package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"social_post_generator/errs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, mock *MockLLM) *Client {
	t.Helper()
	c, err := NewClient(LLMSettings{APIKey: "sk-test", Model: "gpt-4o"}, mock, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.sleep = func(time.Duration) {}
	return c
}

func TestNewClientRejectsMissingKey(t *testing.T) {
	for _, key := range []string{"", "   ", "your_proxyapi_key_here", "your_openai_api_key_here"} {
		_, err := NewClient(LLMSettings{APIKey: key, Model: "gpt-4o"}, &MockLLM{}, testLogger())
		if !errs.IsKind(err, errs.KindConfiguration) {
			t.Errorf("key %q: err = %v, want configuration error", key, err)
		}
	}
}

func TestGenerateTextSuccess(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{{Text: "  готовый пост  ", Tokens: 120}}}
	c := newTestClient(t, mock)

	text, err := c.GenerateText(context.Background(), "напиши пост", "ты автор")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "готовый пост" {
		t.Errorf("text = %q, want trimmed reply", text)
	}
	if got := mock.LastPrompt(); got.System != "ты автор" || got.User != "напиши пост" {
		t.Errorf("prompt = %+v", got)
	}

	stats := c.Statistics()
	if stats.TotalRequests != 1 || stats.FailedRequests != 0 || stats.TotalTokens != 120 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGenerateTextRetriesTimeouts(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{
		{Err: fmt.Errorf("%w: attempt 1", ErrTimeout)},
		{Err: fmt.Errorf("%w: attempt 2", ErrConnection)},
		{Text: "пост с третьей попытки"},
	}}
	c := newTestClient(t, mock)

	var delays []time.Duration
	c.sleep = func(d time.Duration) { delays = append(delays, d) }

	text, err := c.GenerateText(context.Background(), "prompt", "")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "пост с третьей попытки" {
		t.Errorf("text = %q", text)
	}
	if mock.CallCount() != 3 {
		t.Errorf("attempts = %d, want 3", mock.CallCount())
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(delays) != len(want) || delays[0] != want[0] || delays[1] != want[1] {
		t.Errorf("backoff = %v, want %v", delays, want)
	}

	stats := c.Statistics()
	if stats.FailedRequests != 0 {
		t.Errorf("failed_requests = %d, want 0: retries that end in success are not failures", stats.FailedRequests)
	}
}

func TestGenerateTextExhaustsRetries(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{{Err: fmt.Errorf("%w: no route", ErrTimeout)}}}
	c := newTestClient(t, mock)

	_, err := c.GenerateText(context.Background(), "prompt", "")
	if !errs.IsKind(err, errs.KindUpstreamAPI) {
		t.Fatalf("err = %v, want upstream api error", err)
	}
	e, _ := errs.As(err)
	if e.Details["retry_count"] != 3 {
		t.Errorf("retry_count = %v, want 3", e.Details["retry_count"])
	}
	if mock.CallCount() != 3 {
		t.Errorf("attempts = %d, want 3", mock.CallCount())
	}

	stats := c.Statistics()
	if stats.TotalRequests != 1 || stats.FailedRequests != 1 {
		t.Errorf("stats = %+v, want exactly one counted failure", stats)
	}
}

func TestGenerateTextRateLimitFailsFast(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{{Err: &RateLimitedError{RetryAfter: 30}}}}
	c := newTestClient(t, mock)

	slept := false
	c.sleep = func(time.Duration) { slept = true }

	_, err := c.GenerateText(context.Background(), "prompt", "")
	if !errs.IsKind(err, errs.KindRateLimited) {
		t.Fatalf("err = %v, want rate limit error", err)
	}
	e, _ := errs.As(err)
	if e.Details["retry_after"] != 30 {
		t.Errorf("retry_after = %v, want 30", e.Details["retry_after"])
	}
	if mock.CallCount() != 1 {
		t.Errorf("attempts = %d, want 1: rate limits are never retried", mock.CallCount())
	}
	if slept {
		t.Error("backoff slept on a rate limit")
	}
	if stats := c.Statistics(); stats.FailedRequests != 1 {
		t.Errorf("failed_requests = %d, want 1", stats.FailedRequests)
	}
}

func TestGenerateTextUpstreamFailsFast(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{{Err: fmt.Errorf("%w: status 401: invalid key", ErrUpstream)}}}
	c := newTestClient(t, mock)

	_, err := c.GenerateText(context.Background(), "prompt", "")
	if !errs.IsKind(err, errs.KindUpstreamAPI) {
		t.Fatalf("err = %v, want upstream api error", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("attempts = %d, want 1: definitive api errors are never retried", mock.CallCount())
	}
}

func TestGenerateTextUnexpectedErrorRetries(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{
		{Err: errors.New("something odd")},
		{Text: "восстановился"},
	}}
	c := newTestClient(t, mock)

	text, err := c.GenerateText(context.Background(), "prompt", "")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "восстановился" || mock.CallCount() != 2 {
		t.Errorf("text = %q, attempts = %d", text, mock.CallCount())
	}
}

func TestStatisticsSuccessRate(t *testing.T) {
	mock := &MockLLM{Replies: []MockReply{
		{Text: "a", Tokens: 10},
		{Text: "b", Tokens: 15},
		{Err: fmt.Errorf("%w: down", ErrUpstream)},
	}}
	c := newTestClient(t, mock)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = c.GenerateText(ctx, "prompt", "")
	}

	stats := c.Statistics()
	if stats.TotalRequests != 3 || stats.FailedRequests != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.SuccessRate != 66.67 {
		t.Errorf("success_rate = %v, want 66.67", stats.SuccessRate)
	}
	if stats.TotalTokens != 25 {
		t.Errorf("total_tokens = %d, want 25", stats.TotalTokens)
	}
	if stats.Model != "gpt-4o" {
		t.Errorf("model = %q", stats.Model)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	c := newTestClient(t, &MockLLM{})
	if rate := c.Statistics().SuccessRate; rate != 0 {
		t.Errorf("success_rate with no requests = %v, want 0", rate)
	}
}

func TestValidateResponse(t *testing.T) {
	c := newTestClient(t, &MockLLM{})

	cases := []struct {
		text string
		min  int
		want bool
	}{
		{"нормальный длинный ответ", 10, true},
		{"  с пробелами вокруг  ", 10, true},
		{"", 10, false},
		{"   ", 10, false},
		{"коротко", 10, false},
	}
	for _, tc := range cases {
		if got := c.ValidateResponse(tc.text, tc.min); got != tc.want {
			t.Errorf("ValidateResponse(%q, %d) = %v, want %v", tc.text, tc.min, got, tc.want)
		}
	}
}

func TestCheckHealth(t *testing.T) {
	ok := newTestClient(t, &MockLLM{Replies: []MockReply{{Text: "pong"}}})
	if !ok.CheckHealth(context.Background()) {
		t.Error("CheckHealth = false for a healthy transport")
	}
	if stats := ok.Statistics(); stats.TotalRequests != 0 {
		t.Errorf("health probe counted in statistics: %+v", stats)
	}

	down := newTestClient(t, &MockLLM{Replies: []MockReply{{Err: fmt.Errorf("%w: unreachable", ErrConnection)}}})
	if down.CheckHealth(context.Background()) {
		t.Error("CheckHealth = true for a dead transport")
	}
}
