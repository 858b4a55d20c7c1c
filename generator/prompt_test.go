package generator

import (
	"strings"
	"testing"
)

func TestRenderUserPrompt(t *testing.T) {
	style := DefaultStyle()
	user := RenderUserPrompt(style, "текст статьи о космосе", 600)

	if !strings.Contains(user, "текст статьи о космосе") {
		t.Errorf("article text not substituted: %q", user)
	}
	if strings.Contains(user, "{text}") {
		t.Errorf("placeholder left in prompt: %q", user)
	}
	if !strings.Contains(user, "максимум 600 символов") {
		t.Errorf("length phrase not rewritten: %q", user)
	}
	if strings.Contains(user, "максимум 800 символов") {
		t.Errorf("template default length survived the rewrite: %q", user)
	}
}

func TestBuildPromptCarriesSystemPrompt(t *testing.T) {
	for _, info := range AvailableStyles() {
		style, ok := ResolveStyle(info.ID)
		if !ok {
			t.Fatalf("style %q did not resolve", info.ID)
		}
		p := BuildPrompt(style, "текст", 800)
		if p.System != style.SystemPrompt {
			t.Errorf("style %s: system prompt mismatch", info.ID)
		}
		if p.System == "" || p.User == "" {
			t.Errorf("style %s: empty prompt part", info.ID)
		}
	}
}
