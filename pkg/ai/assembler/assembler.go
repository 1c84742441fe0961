package assembler

import (
	"context"
	"errors"
	"log"
	"time"

	"nexora-campus-be/pkg/knowledge"
	"nexora-campus-be/pkg/metrics"
)

// QueryContext is the per-request context handed to the router. It is
// built once and never modified; Snippets returns a copy.
type QueryContext struct {
	RawMessage  string
	SessionID   string
	UserID      string
	CurrentTime time.Time
	// Degraded means the knowledge base could not be consulted, as
	// opposed to consulted with no result.
	Degraded bool
	snippets []knowledge.Snippet
}

// NewQueryContext freezes snippets in the order given.
func NewQueryContext(message, sessionID, userID string, now time.Time, snippets []knowledge.Snippet, degraded bool) QueryContext {
	frozen := make([]knowledge.Snippet, len(snippets))
	copy(frozen, snippets)
	return QueryContext{
		RawMessage:  message,
		SessionID:   sessionID,
		UserID:      userID,
		CurrentTime: now,
		Degraded:    degraded,
		snippets:    frozen,
	}
}

func (q QueryContext) Snippets() []knowledge.Snippet {
	out := make([]knowledge.Snippet, len(q.snippets))
	copy(out, q.snippets)
	return out
}

func (q QueryContext) HasSnippets() bool { return len(q.snippets) > 0 }

func (q QueryContext) DateTime() DateTime { return NewDateTime(q.CurrentTime) }

type Config struct {
	Location  *time.Location
	TopK      int
	Threshold float64
	Timeout   time.Duration
}

type Assembler struct {
	kb  knowledge.Searcher
	cfg Config
	now func() time.Time
}

func New(kb knowledge.Searcher, cfg Config) *Assembler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Assembler{kb: kb, cfg: cfg, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Assemble never fails: knowledge-base trouble yields empty snippets and
// a degraded context.
func (a *Assembler) Assemble(ctx context.Context, message, sessionID, userID string) QueryContext {
	now := a.now().In(a.cfg.Location)
	snippets, degraded := a.search(ctx, message)
	return NewQueryContext(message, sessionID, userID, now, snippets, degraded)
}

func (a *Assembler) search(ctx context.Context, message string) ([]knowledge.Snippet, bool) {
	if a.kb == nil {
		return nil, true
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	type outcome struct {
		snippets []knowledge.Snippet
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := a.kb.Search(ctx, message, a.cfg.TopK)
		done <- outcome{s, err}
	}()

	started := time.Now()
	select {
	case <-ctx.Done():
		log.Printf("[WARN] [ASSEMBLER] knowledge search abandoned: %v", ctx.Err())
		observeSearch(started, "degraded")
		return nil, true
	case out := <-done:
		if out.err != nil {
			if !errors.Is(out.err, knowledge.ErrUnavailable) {
				log.Printf("[WARN] [ASSEMBLER] knowledge search failed: %v", out.err)
			}
			observeSearch(started, "degraded")
			return nil, true
		}
		ranked := knowledge.FilterAndRank(out.snippets, a.cfg.Threshold, a.cfg.TopK)
		if len(ranked) == 0 {
			observeSearch(started, "empty")
		} else {
			observeSearch(started, "hit")
		}
		return ranked, false
	}
}

func observeSearch(started time.Time, outcome string) {
	metrics.KnowledgeSearchLatency.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
