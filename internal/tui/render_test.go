package tui

import (
	"strings"
	"testing"

	"moia/internal/chat"
)

func TestRenderMarkdown_Empty(t *testing.T) {
	if got := RenderMarkdown("   ", 80); got != "" {
		t.Fatalf("blank input rendered %q", got)
	}
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	got := RenderMarkdown("hello world", 80)
	if !strings.Contains(got, "hello world") {
		t.Fatalf("rendered output lost the text: %q", got)
	}
}

func TestRenderTranscript(t *testing.T) {
	theme := DarkTheme()
	msgs := []chat.Message{
		chat.NewSystemText("formatting rules"),
		chat.NewUserVision("what is this", []string{"data:image/png;base64,AA"}),
		chat.NewAssistantText("a **shirt**"),
	}

	got := RenderTranscript(msgs, 80, theme)
	if strings.Contains(got, "formatting rules") {
		t.Error("system messages must not appear in the transcript view")
	}
	if !strings.Contains(got, "what is this") {
		t.Error("user text missing")
	}
	if !strings.Contains(got, "[1 image(s)]") {
		t.Error("image count missing")
	}
	if !strings.Contains(got, "shirt") {
		t.Error("assistant text missing")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a very long conversation title", 10); len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d, want 10", len([]rune(got)))
	}
	if got := truncate("abc", 0); got != "" {
		t.Errorf("truncate to 0 = %q", got)
	}
}
