package contextmgr

import (
	"testing"

	"moia/internal/chat"
)

func TestCountTextNonZero(t *testing.T) {
	tok := NewTokenizer("cl100k_base")
	if got := tok.CountText(""); got != 0 {
		t.Errorf("empty text = %d tokens, want 0", got)
	}
	if got := tok.CountText("hello world, this is a sentence"); got <= 0 {
		t.Errorf("text tokens = %d, want > 0", got)
	}
}

func TestCountMessagesIncludesImages(t *testing.T) {
	tok := NewTokenizer("cl100k_base")
	plain := []chat.Message{chat.NewUserText("describe this")}
	vision := []chat.Message{chat.NewUserVision("describe this", []string{"data:image/png;base64,AA"})}

	p := tok.Count(plain)
	v := tok.Count(vision)
	if v <= p {
		t.Errorf("vision message (%d) should cost more than plain (%d)", v, p)
	}
	if v-p < imageTokenEstimate {
		t.Errorf("image estimate missing: diff = %d", v-p)
	}
}

func TestHeuristicFallback(t *testing.T) {
	tok := NewTokenizer("not-a-real-encoding")
	if tok.IsPrecise() {
		t.Fatal("unknown encoding should fall back to heuristic")
	}
	if got := tok.CountText("abcdefgh"); got < 1 {
		t.Errorf("heuristic count = %d, want >= 1", got)
	}
}

func TestDefaultTokenizerSingleton(t *testing.T) {
	if DefaultTokenizer() != DefaultTokenizer() {
		t.Fatal("DefaultTokenizer must return the same instance")
	}
}
