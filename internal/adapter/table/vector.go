package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"docsearch/internal/domain"
)

// FormatVector renders v as a bracketed, space-separated list. Values use the
// shortest float32 representation so ParseVector restores them exactly.
func FormatVector(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*12 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVector reads the bracketed list written by FormatVector. It also
// accepts comma separators and the padded, line-wrapped layout numpy prints
// for long arrays.
func ParseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: vector %q is not bracketed", domain.ErrMalformedInput, preview(s))
	}

	fields := strings.FieldsFunc(s[1:len(s)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty vector", domain.ErrMalformedInput)
	}

	out := make([]float32, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: vector element %d %q: %v", domain.ErrMalformedInput, i, f, err)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: vector element %d is not finite", domain.ErrMalformedInput, i)
		}
		out[i] = float32(x)
	}
	return out, nil
}

func preview(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
