package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer turns free text into lowercase word features for the hashing
// embedder.
type Tokenizer struct {
	stopwords map[string]struct{}
	bigrams   bool
}

// NewTokenizer creates a Tokenizer. With bigrams enabled, adjacent word pairs
// are emitted after the single words.
func NewTokenizer(bigrams bool) *Tokenizer {
	return &Tokenizer{
		stopwords: defaultStopwords(),
		bigrams:   bigrams,
	}
}

// Tokenize splits text into lowercase words, dropping stopwords and
// single-character words.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Features returns the tokens of text followed, when enabled, by "a b" bigrams.
func (t *Tokenizer) Features(text string) []string {
	tokens := t.Tokenize(text)
	if !t.bigrams || len(tokens) < 2 {
		return tokens
	}
	features := make([]string, 0, 2*len(tokens)-1)
	features = append(features, tokens...)
	for i := 1; i < len(tokens); i++ {
		features = append(features, tokens[i-1]+" "+tokens[i])
	}
	return features
}

// splitWords splits text on anything that is not a letter, digit or underscore.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
