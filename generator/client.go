package generator

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"social_post_generator/errs"
)

const defaultMaxRetries = 3

// knownModels are the models the proxyapi relay is known to serve. An
// unknown model is worth a warning, not a refusal.
var knownModels = []string{"gpt-4.1-mini", "gpt-4o", "gpt-5-mini", "gpt-4o-mini", "gpt-4-turbo"}

// placeholderKeys are the sample values from config templates; treating
// them as real credentials only produces confusing 401s later.
var placeholderKeys = []string{"your_proxyapi_key_here", "your_openai_api_key_here"}

// Client wraps the LLM transport with the retry policy and usage counters.
type Client struct {
	llm        LLMClient
	model      string
	maxRetries int
	log        *slog.Logger

	// sleep is swapped out in tests to assert the backoff schedule.
	sleep func(time.Duration)

	totalRequests  atomic.Int64
	failedRequests atomic.Int64
	totalTokens    atomic.Int64
}

// Statistics is a snapshot of the usage counters.
type Statistics struct {
	TotalRequests  int64   `json:"total_requests"`
	FailedRequests int64   `json:"failed_requests"`
	SuccessRate    float64 `json:"success_rate"`
	TotalTokens    int64   `json:"total_tokens"`
	Model          string  `json:"model"`
}

// NewClient validates settings and builds the client. A nil llm selects the
// real OpenAI transport; tests inject a MockLLM.
func NewClient(settings LLMSettings, llm LLMClient, log *slog.Logger) (*Client, error) {
	key := strings.TrimSpace(settings.APIKey)
	if key == "" {
		return nil, errs.NewConfiguration("api_key", "api key is not set")
	}
	if slices.Contains(placeholderKeys, key) {
		return nil, errs.NewConfiguration("api_key", "api key is a placeholder value")
	}
	if settings.BaseURL != "" && !strings.Contains(settings.BaseURL, "proxyapi.ru") {
		log.Warn("base url is not a proxyapi endpoint", slog.String("base_url", settings.BaseURL))
	}
	if !slices.Contains(knownModels, settings.Model) {
		log.Warn("model is not in the supported list",
			slog.String("model", settings.Model),
			slog.String("supported", strings.Join(knownModels, ", ")))
	}

	if llm == nil {
		transport, err := NewOpenAILLM(settings)
		if err != nil {
			return nil, errs.NewConfiguration("openai", err.Error())
		}
		llm = transport
	}

	log.Info("llm client initialized",
		slog.String("model", settings.Model),
		slog.String("base_url", settings.BaseURL))

	return &Client{
		llm:        llm,
		model:      settings.Model,
		maxRetries: defaultMaxRetries,
		log:        log,
		sleep:      time.Sleep,
	}, nil
}

// GenerateText runs one completion under the retry policy. Rate limits and
// definitive API errors fail fast; timeouts, connection failures and
// unexpected errors back off 2^attempt seconds between attempts. Every call
// ends in exactly one terminal outcome, counted once.
func (c *Client) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	p := Prompt{System: systemPrompt, User: prompt}
	c.log.Debug("generating text",
		slog.String("model", c.model),
		slog.Int("prompt_length", utf8.RuneCountInString(prompt)))

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		completion, err := c.llm.Complete(ctx, p)
		if err == nil {
			text := strings.TrimSpace(completion.Text)
			c.totalRequests.Add(1)
			if completion.TotalTokens > 0 {
				c.totalTokens.Add(completion.TotalTokens)
			}
			c.log.Info("text generated",
				slog.Int("length", utf8.RuneCountInString(text)),
				slog.Int64("tokens", completion.TotalTokens))
			return text, nil
		}

		var limited *RateLimitedError
		if errors.As(err, &limited) {
			c.fail()
			c.log.Warn("rate limit exceeded", slog.Int("retry_after", limited.RetryAfter))
			return "", errs.NewRateLimited(limited.RetryAfter)
		}
		if errors.Is(err, ErrUpstream) {
			c.fail()
			c.log.Error("api error", slog.String("error", err.Error()), slog.Int("attempt", attempt+1))
			return "", errs.NewUpstreamAPI(err.Error(), err, attempt+1)
		}
		if ctx.Err() != nil {
			c.fail()
			return "", errs.NewUpstreamAPI("request canceled", err, attempt+1)
		}

		lastErr = err
		reason := "unexpected error"
		switch {
		case errors.Is(err, ErrTimeout):
			reason = "request timed out"
		case errors.Is(err, ErrConnection):
			reason = "connection failed"
		}
		c.log.Warn("completion attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", c.maxRetries),
			slog.String("error", err.Error()))

		if attempt < c.maxRetries-1 {
			delay := time.Duration(1<<attempt) * time.Second
			c.log.Info("waiting before retry", slog.Duration("delay", delay))
			c.sleep(delay)
			continue
		}

		c.fail()
		return "", errs.NewUpstreamAPI(reason, lastErr, attempt+1)
	}

	c.fail()
	return "", errs.NewUpstreamAPI("all attempts exhausted", lastErr, c.maxRetries)
}

func (c *Client) fail() {
	c.totalRequests.Add(1)
	c.failedRequests.Add(1)
}

// ValidateResponse reports whether a model reply is usable: non-blank and
// at least minLength runes after trimming.
func (c *Client) ValidateResponse(text string, minLength int) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		c.log.Warn("empty model response")
		return false
	}
	if n := utf8.RuneCountInString(trimmed); n < minLength {
		c.log.Warn("model response too short", slog.Int("length", n), slog.Int("min", minLength))
		return false
	}
	return true
}

// Statistics returns a snapshot of the usage counters. The success rate is
// a percentage rounded to two decimals, 0 when nothing has been requested.
func (c *Client) Statistics() Statistics {
	total := c.totalRequests.Load()
	failed := c.failedRequests.Load()

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(total-failed)/float64(total)*100*100) / 100
	}
	return Statistics{
		TotalRequests:  total,
		FailedRequests: failed,
		SuccessRate:    rate,
		TotalTokens:    c.totalTokens.Load(),
		Model:          c.model,
	}
}

// CheckHealth sends one probe completion straight through the transport,
// bypassing retries and counters. It reports availability, never an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	if _, err := c.llm.Complete(ctx, Prompt{User: "test"}); err != nil {
		c.log.Error("llm health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
