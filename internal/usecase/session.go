package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"docsearch/internal/domain"
	"docsearch/internal/logger"
	"docsearch/internal/port"
)

// State is a query session state.
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrTerminated is returned by Step once the session has seen the exit token.
var ErrTerminated = errors.New("session terminated")

// SessionConfig holds the per-session settings.
type SessionConfig struct {
	TopK      int
	ExitToken string
}

// Session answers queries one at a time against a built index. It moves
// Idle -> Processing -> Idle for each query and to Terminated on the exit
// token; a failed query leaves it Idle.
type Session struct {
	embedder  port.Embedder
	index     port.VectorIndex
	catalog   *Catalog
	topK      int
	exitToken string
	state     State
}

// NewSession checks that the embedder produces vectors the index accepts.
func NewSession(embedder port.Embedder, idx port.VectorIndex, catalog *Catalog, cfg SessionConfig) (*Session, error) {
	if cfg.TopK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1, got %d", domain.ErrInvalidConfiguration, cfg.TopK)
	}
	if cfg.ExitToken == "" {
		cfg.ExitToken = "exit"
	}
	if idx.Len() > 0 && embedder.Dimension() > 0 && embedder.Dimension() != idx.Dimension() {
		return nil, fmt.Errorf("%w: embedding model %s produces %d-dimensional vectors, index holds %d",
			domain.ErrInvalidConfiguration, embedder.ModelName(), embedder.Dimension(), idx.Dimension())
	}

	return &Session{
		embedder:  embedder,
		index:     idx,
		catalog:   catalog,
		topK:      cfg.TopK,
		exitToken: cfg.ExitToken,
		state:     StateIdle,
	}, nil
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Outcome is the result of one Step.
type Outcome struct {
	Query      string
	Hits       []domain.SearchHit
	Elapsed    time.Duration
	Err        error
	Skipped    bool // blank input, nothing was searched
	Terminated bool
}

// Step processes one line of input. Errors are reported in the Outcome and
// never end the session.
func (s *Session) Step(ctx context.Context, input string) (out Outcome) {
	if s.state == StateTerminated {
		return Outcome{Terminated: true, Err: ErrTerminated}
	}

	query := strings.TrimRight(input, "\r\n")
	out.Query = query

	if query == s.exitToken {
		s.state = StateTerminated
		out.Terminated = true
		return out
	}
	if strings.TrimSpace(query) == "" {
		out.Skipped = true
		return out
	}

	s.state = StateProcessing
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Hits = nil
			out.Err = fmt.Errorf("%w: panic during query: %v", domain.ErrProviderFailure, r)
		}
		out.Elapsed = time.Since(start)
		s.state = StateIdle
		if out.Err != nil {
			logger.Warn("query %q failed: %v", query, out.Err)
		}
	}()

	out.Hits, out.Err = s.Search(ctx, query)
	return out
}

// Search embeds query and returns up to TopK hits, nearest first.
func (s *Session) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	vec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, wrapProvider(err)
	}

	ids, distances, err := s.index.Search(vec, s.topK)
	if err != nil {
		return nil, wrapProvider(err)
	}
	if len(ids) != len(distances) {
		return nil, fmt.Errorf("%w: index returned %d ids and %d distances", domain.ErrProviderFailure, len(ids), len(distances))
	}

	hits := make([]domain.SearchHit, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		chunk, ok := s.catalog.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: index returned unknown id %d", domain.ErrProviderFailure, id)
		}
		hits = append(hits, domain.SearchHit{
			Rank:       len(hits) + 1,
			Distance:   distances[i],
			DocumentID: chunk.DocumentID,
			Title:      chunk.Title,
			Text:       chunk.Text,
		})
	}
	return hits, nil
}

// Run reads queries line by line until the exit token, end of input or
// cancellation, rendering each outcome.
func (s *Session) Run(ctx context.Context, in io.Reader, r *Renderer, prompt string) error {
	reader := bufio.NewReader(in)
	r.Banner(s.exitToken)

	for s.state != StateTerminated {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.Prompt(prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if errors.Is(err, io.EOF) && line == "" {
			s.state = StateTerminated
			return nil
		}

		r.Outcome(s.Step(ctx, line))
		if errors.Is(err, io.EOF) {
			s.state = StateTerminated
		}
	}
	return nil
}
