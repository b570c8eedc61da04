package chunker

import "strings"

var lineBreaks = strings.NewReplacer("\r", "", "\n", " ")

// Normalize drops carriage returns and turns newlines into single spaces so
// the segmenter sees one line of text. Wording, punctuation and casing are
// left alone, and Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	return lineBreaks.Replace(raw)
}
