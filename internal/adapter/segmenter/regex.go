package segmenter

import (
	"regexp"
	"strings"
)

// Regex splits text on terminal punctuation. It knows nothing about
// abbreviations, so "Dr. Smith" becomes two sentences.
type Regex struct {
	splitter *regexp.Regexp
}

// NewRegex returns a rule-based segmenter.
func NewRegex() *Regex {
	return &Regex{
		splitter: regexp.MustCompile(`[^.!?]*[.!?]+\s*`),
	}
}

// Segment returns the sentences of text in order. Each sentence keeps its
// trailing whitespace; text after the last terminator becomes a final sentence.
func (r *Regex) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	end := 0
	for _, loc := range r.splitter.FindAllStringIndex(text, -1) {
		if s := text[loc[0]:loc[1]]; strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	if rest := text[end:]; strings.TrimSpace(rest) != "" {
		out = append(out, rest)
	}
	return out
}
