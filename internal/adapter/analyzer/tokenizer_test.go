package analyzer

import (
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("The Quick brown fox is running")
	expected := []string{"quick", "brown", "fox", "running"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: expected %q, got %q", i, expected[i], tokens[i])
		}
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("a I go to")
	for _, token := range tokens {
		if len(token) < 2 {
			t.Errorf("short word should be removed: %s", token)
		}
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(true)

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	if features := tok.Features(""); len(features) != 0 {
		t.Errorf("expected 0 features for empty input, got %d", len(features))
	}
}

func TestTokenizer_Features(t *testing.T) {
	tok := NewTokenizer(true)

	features := tok.Features("vector index search")
	expected := []string{"vector", "index", "search", "vector index", "index search"}
	if len(features) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, features)
	}
	for i := range expected {
		if features[i] != expected[i] {
			t.Errorf("feature %d: expected %q, got %q", i, expected[i], features[i])
		}
	}

	single := tok.Features("vector")
	if len(single) != 1 || single[0] != "vector" {
		t.Errorf("expected [vector], got %v", single)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 1},
		{"hello-world", 2},
		{"func(x, y)", 3},
		{"CamelCase", 1},
		{"123numbers456", 1},
		{"café au lait", 3},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
