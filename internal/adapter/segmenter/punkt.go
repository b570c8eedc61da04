package segmenter

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Punkt segments English text with the pretrained punkt model.
type Punkt struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunkt loads the bundled English punkt model.
func NewPunkt() (*Punkt, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load punkt model: %w", err)
	}
	return &Punkt{tokenizer: tokenizer}, nil
}

// Segment returns the sentences of text in order. Sentence strings keep their
// trailing whitespace.
func (p *Punkt) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, s := range p.tokenizer.Tokenize(text) {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		out = append(out, s.Text)
	}
	return out
}
