package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"social_post_generator/generator"
)

var (
	flagStyle     string
	flagMaxLength int
)

var generateCmd = &cobra.Command{
	Use:   "generate <url>",
	Short: "Generate a post for a single URL and print it",
	Example: `  social-post-generator generate https://example.com/article
  social-post-generator generate https://example.com/article --style professional --max-length 600`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&flagStyle, "style", "", "post style id or name (default: ironic)")
	generateCmd.Flags().IntVar(&flagMaxLength, "max-length", 0, "maximum post length in characters (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	agent, _, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	post, err := agent.GeneratePost(cmd.Context(), generator.GenerationRequest{
		URL:       args[0],
		Style:     flagStyle,
		MaxLength: flagMaxLength,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), post.Post)
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d chars, style %s\n", post.Length, post.Style)
	return nil
}
