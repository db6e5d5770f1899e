package token

import (
	"strings"
	"testing"
)

func TestNewLength(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if len(tok) != Length {
		t.Errorf("len(token) = %d, want %d", len(tok), Length)
	}
}

func TestNewAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		for _, c := range tok {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("token %q contains %q outside the alphanumeric alphabet", tok, c)
			}
		}
	}
}

func TestNewTokensAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}
