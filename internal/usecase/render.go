package usecase

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"docsearch/internal/domain"
)

// Renderer writes session output for a human at a terminal.
type Renderer struct {
	w      io.Writer
	width  int
	styled bool
	label  lipgloss.Style
}

// NewRenderer wraps text at width columns. styled enables bold labels and
// should only be set when w is a terminal.
func NewRenderer(w io.Writer, width int, styled bool) *Renderer {
	if width < 1 {
		width = 80
	}
	return &Renderer{
		w:      w,
		width:  width,
		styled: styled,
		label:  lipgloss.NewStyle().Bold(true),
	}
}

func (r *Renderer) Banner(exitToken string) {
	fmt.Fprintf(r.w, "Type '%s' to terminate\n", exitToken)
}

func (r *Renderer) Prompt(prompt string) {
	fmt.Fprint(r.w, prompt)
}

// Outcome renders one Step. Blank and terminating input render nothing.
func (r *Renderer) Outcome(o Outcome) {
	switch {
	case o.Terminated, o.Skipped:
		return
	case o.Err != nil:
		fmt.Fprintf(r.w, "Error: %v\n", o.Err)
	default:
		r.Results(o)
	}
}

// Results prints the query header followed by one block per hit.
func (r *Renderer) Results(o Outcome) {
	fmt.Fprintf(r.w, "Query: '%s'\n\n", o.Query)
	fmt.Fprintf(r.w, "Results retrieved in %f seconds:\n\n", o.Elapsed.Seconds())
	fmt.Fprintln(r.w, r.bold("Results:"))

	if len(o.Hits) == 0 {
		fmt.Fprintln(r.w, "No results.")
		return
	}
	for _, h := range o.Hits {
		r.hit(h)
	}
}

func (r *Renderer) hit(h domain.SearchHit) {
	fmt.Fprintf(r.w, "%s %g\n", r.bold("Distance:"), h.Distance)
	fmt.Fprintln(r.w, r.bold("Title:"))
	fmt.Fprintln(r.w, Wrap(h.Title, r.width))
	fmt.Fprintln(r.w, r.bold("Text:"))
	fmt.Fprintln(r.w, Wrap(h.Text, r.width))
	fmt.Fprintf(r.w, "%s %d\n\n", r.bold("ID:"), h.DocumentID)
}

func (r *Renderer) bold(s string) string {
	if !r.styled {
		return s
	}
	return r.label.Render(s)
}

// Wrap breaks text at word boundaries to fit width columns. Words longer
// than width are split.
func Wrap(text string, width int) string {
	return wrap.String(wordwrap.String(text, width), width)
}

type jsonOutcome struct {
	Query     string             `json:"query"`
	ElapsedMS float64            `json:"elapsed_ms"`
	Hits      []domain.SearchHit `json:"hits"`
	Error     string             `json:"error,omitempty"`
}

// WriteJSON writes o as a single JSON object.
func WriteJSON(w io.Writer, o Outcome) error {
	out := jsonOutcome{
		Query:     o.Query,
		ElapsedMS: float64(o.Elapsed.Microseconds()) / 1000,
		Hits:      o.Hits,
	}
	if out.Hits == nil {
		out.Hits = []domain.SearchHit{}
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
