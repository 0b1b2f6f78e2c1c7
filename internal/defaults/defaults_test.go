package defaults

import "testing"

func TestFormattingPrompt(t *testing.T) {
	if FormattingPrompt == "" {
		t.Fatal("FormattingPrompt must be non-empty")
	}
	if len(FormattingPrompt) < 20 {
		t.Fatalf("FormattingPrompt too short: %d", len(FormattingPrompt))
	}
}
