package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"social_post_generator/errs"
)

const maxRedirects = 10

var errTooManyRedirects = errors.New("too many redirects")

// FetchSettings bound outbound page downloads.
type FetchSettings struct {
	Timeout     time.Duration
	MaxPageSize int64
	UserAgent   string
}

// Fetcher downloads pages within the configured limits.
type Fetcher struct {
	client      *http.Client
	maxPageSize int64
	userAgent   string
	log         *slog.Logger
}

func NewFetcher(settings FetchSettings, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: settings.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		maxPageSize: settings.MaxPageSize,
		userAgent:   settings.UserAgent,
		log:         log,
	}
}

// ValidateURL trims and checks the URL before any network activity.
func (f *Fetcher) ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errs.NewURLValidation(raw, "url is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errs.NewURLValidation(trimmed, "invalid url format")
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return "", errs.NewURLValidation(trimmed, fmt.Sprintf("unsupported scheme: %q", u.Scheme))
	}
	if u.Host == "" {
		return "", errs.NewURLValidation(trimmed, "missing host")
	}
	return trimmed, nil
}

// Fetch downloads the page with browser-like headers, rejects oversize
// responses before and after reading the body, and decodes the bytes to
// UTF-8 using the declared or sniffed charset.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (FetchResult, error) {
	f.log.Info("fetching page", slog.String("url", pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return FetchResult{}, errs.NewURLFetch(pageURL, "invalid request: "+err.Error(), 0)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, f.classifyFetchError(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > f.maxPageSize {
		f.log.Warn("page too large", slog.String("url", pageURL), slog.Int64("content_length", resp.ContentLength))
		return FetchResult{}, errs.NewURLFetch(pageURL,
			fmt.Sprintf("page too large: %d bytes", resp.ContentLength), resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Warn("http error", slog.String("url", pageURL), slog.Int("status", resp.StatusCode))
		return FetchResult{}, errs.NewURLFetch(pageURL, statusReason(resp.StatusCode), resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPageSize+1))
	if err != nil {
		return FetchResult{}, f.classifyFetchError(pageURL, err)
	}
	if int64(len(raw)) > f.maxPageSize {
		f.log.Warn("page too large", slog.String("url", pageURL), slog.Int64("limit", f.maxPageSize))
		return FetchResult{}, errs.NewURLFetch(pageURL,
			fmt.Sprintf("page too large: body exceeds %d bytes", f.maxPageSize), resp.StatusCode)
	}

	body, err := decodeBody(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return FetchResult{}, errs.NewURLFetch(pageURL, "charset decoding failed: "+err.Error(), resp.StatusCode)
	}

	result := FetchResult{
		Body:       body,
		StatusCode: resp.StatusCode,
		Length:     utf8.RuneCountInString(body),
	}
	f.log.Info("page fetched", slog.Int("length", result.Length), slog.Int("status", resp.StatusCode))
	return result, nil
}

func (f *Fetcher) classifyFetchError(pageURL string, err error) *errs.Error {
	switch {
	case errors.Is(err, errTooManyRedirects):
		f.log.Warn("too many redirects", slog.String("url", pageURL))
		return errs.NewURLFetch(pageURL, "too many redirects", 0)
	case isTimeout(err):
		f.log.Warn("fetch timed out", slog.String("url", pageURL))
		return errs.NewURLFetch(pageURL, "request timed out", 0)
	default:
		f.log.Warn("connection failed", slog.String("url", pageURL), slog.String("error", err.Error()))
		return errs.NewURLFetch(pageURL, "connection failed", 0)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusReason(code int) string {
	switch code {
	case http.StatusNotFound:
		return "page not found (404)"
	case http.StatusForbidden:
		return "access denied (403)"
	case http.StatusInternalServerError:
		return "server error (500)"
	default:
		return fmt.Sprintf("HTTP error %d", code)
	}
}

// decodeBody converts the raw bytes to UTF-8, honoring the Content-Type
// charset parameter and falling back to sniffing. Windows-1251 pages are
// common among the Russian sites this feeds on.
func decodeBody(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
