package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to the model.
type Prompt struct {
	System string
	User   string
}

// defaultLengthPhrase is the length instruction baked into every style
// template; RenderUserPrompt rewrites it to the requested limit.
const defaultLengthPhrase = "максимум 800 символов"

// RenderUserPrompt fills the style template: the article text goes into the
// {text} placeholder first, then the length phrase is rewritten so the model
// targets maxLength instead of the template default.
func RenderUserPrompt(style Style, text string, maxLength int) string {
	user := strings.ReplaceAll(style.UserPromptTemplate, "{text}", text)
	return strings.ReplaceAll(user, defaultLengthPhrase, fmt.Sprintf("максимум %d символов", maxLength))
}

// BuildPrompt renders the full prompt pair for a style.
func BuildPrompt(style Style, text string, maxLength int) Prompt {
	return Prompt{
		System: style.SystemPrompt,
		User:   RenderUserPrompt(style, text, maxLength),
	}
}
