package generator

import (
	"strings"
	"unicode/utf8"
)

// maxPromptTextLength bounds the article text embedded in the prompt,
// roughly 750 tokens.
const maxPromptTextLength = 3000

// truncateForPrompt cuts text to limit runes and marks the cut with an
// ellipsis. No word-boundary care here: this feeds the model, not the reader.
func truncateForPrompt(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

// truncateAtWord enforces the final post budget. The post is cut so that it
// fits max runes with the trailing "..." included, backing up to the last
// word boundary when the cut lands inside a word.
func truncateAtWord(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	cut := string([]rune(text)[:max-3])
	if i := strings.LastIndex(cut, " "); i >= 0 {
		cut = strings.TrimRight(cut[:i], " ")
	}
	return cut + "..."
}
