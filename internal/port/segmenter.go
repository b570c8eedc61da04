package port

// Segmenter splits normalized text into an ordered sequence of sentences.
// Empty input yields an empty sequence.
type Segmenter interface {
	Segment(text string) []string
}
