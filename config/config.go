// Package config loads application settings from an optional JSON file
// with environment-variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"social_post_generator/errs"
)

// OpenAIConfig selects the model endpoint. The default base URL points at
// the proxyapi.ru relay, which fronts the OpenAI API for RU deployments.
type OpenAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	AllowedOrigins     string `json:"allowed_origins"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
}

// FetchConfig bounds outbound page downloads.
type FetchConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxPageSize    int64  `json:"max_page_size"`
	UserAgent      string `json:"user_agent"`
}

// GenerationConfig bounds the generated posts and the source text.
type GenerationConfig struct {
	MaxPostLength int `json:"max_post_length"`
	MinTextLength int `json:"min_text_length"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Config is the root of the settings tree.
type Config struct {
	OpenAI     OpenAIConfig     `json:"openai"`
	Server     ServerConfig     `json:"server"`
	Fetch      FetchConfig      `json:"fetch"`
	Generation GenerationConfig `json:"generation"`
	Logging    LoggingConfig    `json:"logging"`
}

// Default returns the built-in settings. The API key has no default and
// must come from the file or OPENAI_API_KEY.
func Default() Config {
	return Config{
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.proxyapi.ru/openai/v1",
			Model:   "gpt-4o",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8082,
			AllowedOrigins:     "http://localhost:8082,http://127.0.0.1:8082",
			RateLimitPerMinute: 10,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			MaxPageSize:    5 * 1024 * 1024,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Generation: GenerationConfig{
			MaxPostLength: 800,
			MinTextLength: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads JSON config from disk, starting from Default. A missing file
// is not an error: defaults plus environment overrides still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	envString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	envString(&c.OpenAI.Model, "OPENAI_MODEL")
	envString(&c.Server.Host, "HOST")
	envInt(&c.Server.Port, "PORT")
	envString(&c.Server.AllowedOrigins, "ALLOWED_ORIGINS")
	envInt(&c.Server.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	envInt(&c.Fetch.TimeoutSeconds, "FETCH_TIMEOUT")
	envInt64(&c.Fetch.MaxPageSize, "MAX_PAGE_SIZE")
	envString(&c.Fetch.UserAgent, "USER_AGENT")
	envInt(&c.Generation.MaxPostLength, "MAX_POST_LENGTH")
	envInt(&c.Generation.MinTextLength, "MIN_TEXT_LENGTH")
	envString(&c.Logging.Level, "LOG_LEVEL")
	envString(&c.Logging.Format, "LOG_FORMAT")
}

// Validate checks the numeric bounds. The API key is deliberately not
// checked here: the generation client reports missing credentials itself.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errs.NewConfiguration("server.port", fmt.Sprintf("port %d out of range 1-65535", c.Server.Port))
	}
	if c.Fetch.TimeoutSeconds < 5 || c.Fetch.TimeoutSeconds > 120 {
		return errs.NewConfiguration("fetch.timeout_seconds", fmt.Sprintf("timeout %d out of range 5-120", c.Fetch.TimeoutSeconds))
	}
	if c.Fetch.MaxPageSize < 1024 {
		return errs.NewConfiguration("fetch.max_page_size", fmt.Sprintf("max page size %d below 1024", c.Fetch.MaxPageSize))
	}
	if c.Server.RateLimitPerMinute < 1 {
		return errs.NewConfiguration("server.rate_limit_per_minute", "rate limit must be at least 1")
	}
	if c.Generation.MaxPostLength < 100 {
		return errs.NewConfiguration("generation.max_post_length", fmt.Sprintf("max post length %d below 100", c.Generation.MaxPostLength))
	}
	if c.Generation.MinTextLength < 50 {
		return errs.NewConfiguration("generation.min_text_length", fmt.Sprintf("min text length %d below 50", c.Generation.MinTextLength))
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// AllowedOriginsList splits the comma-separated origins, trimming blanks.
func (c *Config) AllowedOriginsList() []string {
	var out []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Timeout returns the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
