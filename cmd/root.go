// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"social_post_generator/config"
	"social_post_generator/generator"
	"social_post_generator/logging"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "social-post-generator",
	Short: "Generate social media posts from web pages with an LLM",
	Long: `social-post-generator fetches a web page, extracts its main text and asks
an OpenAI-compatible model to write a short social media post in one of
several styles.

Usage:
  social-post-generator serve
  social-post-generator generate <url> --style ironic --max-length 600
  social-post-generator styles`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.json", "path to the JSON config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console or json (overrides config)")
}

// loadConfig reads and validates the config file, applying the persistent
// logging flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}

// buildPipeline wires the pipeline components in dependency order. The
// returned client is exposed separately for health checks and statistics.
func buildPipeline(cfg config.Config, log *slog.Logger) (*generator.Agent, *generator.Client, error) {
	client, err := generator.NewClient(generator.LLMSettings{
		Model:   cfg.OpenAI.Model,
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	}, nil, log)
	if err != nil {
		return nil, nil, err
	}

	fetcher := generator.NewFetcher(generator.FetchSettings{
		Timeout:     cfg.Fetch.Timeout(),
		MaxPageSize: cfg.Fetch.MaxPageSize,
		UserAgent:   cfg.Fetch.UserAgent,
	}, log)
	extractor := generator.NewExtractor(cfg.Generation.MinTextLength, log)

	agent, err := generator.NewAgent(client, fetcher, extractor, cfg.Generation.MaxPostLength, log)
	if err != nil {
		return nil, nil, err
	}
	return agent, client, nil
}
