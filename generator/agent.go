package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"social_post_generator/errs"
	"social_post_generator/logging"
)

// Hard bounds on the requested post length: out-of-range requests are
// pulled back in rather than rejected.
const (
	postLengthFloor = 400
	postLengthCeil  = 4000
)

// Agent runs the full pipeline: validate, fetch, extract, prompt, generate,
// trim.
type Agent struct {
	client           *Client
	fetcher          *Fetcher
	extractor        *Extractor
	defaultMaxLength int
	log              *slog.Logger
}

func NewAgent(client *Client, fetcher *Fetcher, extractor *Extractor, defaultMaxLength int, log *slog.Logger) (*Agent, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	return &Agent{
		client:           client,
		fetcher:          fetcher,
		extractor:        extractor,
		defaultMaxLength: defaultMaxLength,
		log:              log,
	}, nil
}

// AvailableStyles lists the style catalog for presentation layers.
func (a *Agent) AvailableStyles() []StyleInfo {
	return AvailableStyles()
}

// GeneratePost turns a page URL into a social media post. Model failures
// are re-tagged as post generation errors with the cause preserved;
// validation, fetch and extraction errors pass through untouched.
func (a *Agent) GeneratePost(ctx context.Context, req GenerationRequest) (result GeneratedPost, err error) {
	done := logging.Track(a.log, "generate post", slog.String("url", req.URL))
	defer func() { done(err) }()

	pageURL, err := a.fetcher.ValidateURL(req.URL)
	if err != nil {
		return GeneratedPost{}, err
	}

	style, known := ResolveStyle(req.Style)
	if !known {
		a.log.Warn("unknown style, using default",
			slog.String("requested", req.Style),
			slog.String("style", style.Key))
	}

	maxLength := req.MaxLength
	if maxLength == 0 {
		maxLength = a.defaultMaxLength
	}
	if maxLength < postLengthFloor {
		maxLength = postLengthFloor
	} else if maxLength > postLengthCeil {
		maxLength = postLengthCeil
	}

	a.log.Info("style selected", slog.String("style", style.Key), slog.String("emoji", style.Emoji))
	a.log.Info("post length limit", slog.Int("max_length", maxLength))

	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return GeneratedPost{}, err
	}

	content, err := a.extractor.Extract(page.Body)
	if err != nil {
		return GeneratedPost{}, err
	}
	if err = a.extractor.ValidateLength(content.Text, pageURL); err != nil {
		return GeneratedPost{}, err
	}

	text := truncateForPrompt(content.Text, maxPromptTextLength)
	if text != content.Text {
		a.log.Debug("text truncated for prompt", slog.Int("limit", maxPromptTextLength))
	}
	prompt := BuildPrompt(style, text, maxLength)
	a.log.Debug("prompt built", slog.Int("prompt_length", utf8.RuneCountInString(prompt.User)))

	raw, genErr := a.client.GenerateText(ctx, prompt.User, prompt.System)
	if genErr != nil {
		err = errs.NewPostGeneration(genErr.Error(), pageURL, style.Key, genErr)
		return GeneratedPost{}, err
	}

	post := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(post); n > maxLength {
		a.log.Warn("post truncated", slog.Int("from", n), slog.Int("to", maxLength))
		post = truncateAtWord(post, maxLength)
	}

	result = GeneratedPost{
		Post:      post,
		Length:    utf8.RuneCountInString(post),
		Style:     style.Key,
		URL:       pageURL,
		Timestamp: time.Now().UTC(),
	}
	a.log.Info("post generated",
		slog.Int("length", result.Length),
		slog.String("style", style.Key),
		slog.Int("max_length", maxLength))
	return result, nil
}
