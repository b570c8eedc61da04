package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegex_Segment(t *testing.T) {
	seg := NewRegex()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"two sentences", "Hello world. This is a test.", []string{"Hello world. ", "This is a test."}},
		{"mixed terminators", "Really? Yes! Fine.", []string{"Really? ", "Yes! ", "Fine."}},
		{"ellipsis", "Wait... Go.", []string{"Wait... ", "Go."}},
		{"unterminated tail", "Done. and then", []string{"Done. ", "and then"}},
		{"single letters", "A. B. C.", []string{"A. ", "B. ", "C."}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, seg.Segment(tc.input))
		})
	}
}

func TestRegex_SegmentPreservesText(t *testing.T) {
	seg := NewRegex()
	input := "First point. Second point! Third? trailing words"

	got := strings.Join(seg.Segment(input), "")
	assert.Equal(t, input, got)
}

func TestPunkt_Segment(t *testing.T) {
	seg, err := NewPunkt()
	require.NoError(t, err)

	got := seg.Segment("The cat sat on the mat. The dog barked loudly at the mailman.")
	require.Len(t, got, 2)
	assert.Equal(t, "The cat sat on the mat.", strings.TrimSpace(got[0]))
	assert.Equal(t, "The dog barked loudly at the mailman.", strings.TrimSpace(got[1]))

	assert.Empty(t, seg.Segment(""))
	assert.Empty(t, seg.Segment(" \t "))
}
