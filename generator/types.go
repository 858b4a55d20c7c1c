package generator

import "time"

// GenerationRequest describes one post-generation job. Style and MaxLength
// are optional: an empty style resolves to the default, a zero MaxLength
// falls back to the configured limit.
type GenerationRequest struct {
	URL       string
	Style     string
	MaxLength int
}

// FetchResult is a downloaded page, decoded to UTF-8.
type FetchResult struct {
	Body       string
	StatusCode int
	// Length is the body length in runes.
	Length int
}

// ExtractedContent is the visible text pulled out of a page.
type ExtractedContent struct {
	Text string
	// Length is the text length in runes.
	Length int
}

// GeneratedPost is the pipeline's final product.
type GeneratedPost struct {
	Post      string
	Length    int
	Style     string
	URL       string
	Timestamp time.Time
}
