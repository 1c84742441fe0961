package knowledge

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Builder produces a fresh index, typically by reloading source files.
type Builder func(ctx context.Context) (Index, int, error)

// Stats describes the currently installed index.
type Stats struct {
	Loaded     bool      `json:"loaded"`
	Documents  int       `json:"documents"`
	Chunks     int       `json:"chunks"`
	LastReload time.Time `json:"last_reload"`
	Reloads    int64     `json:"reloads"`
}

type snapshot struct {
	index     Index
	documents int
	loadedAt  time.Time
}

// Base owns the process-wide knowledge index. Readers load the current
// snapshot pointer without locking; Reload builds a complete replacement
// before swapping it in, so a reader never sees a half-built index.
type Base struct {
	build   Builder
	current atomic.Pointer[snapshot]
	reloads atomic.Int64
	// buildMu serialises rebuilds, never reads.
	buildMu sync.Mutex
	// RetireAfter delays closing a replaced index so in-flight searches
	// can finish. Zero closes it immediately.
	RetireAfter time.Duration
}

func NewBase(build Builder) *Base {
	return &Base{build: build, RetireAfter: 5 * time.Second}
}

// Init performs the first load.
func (b *Base) Init(ctx context.Context) error {
	return b.Reload(ctx)
}

func (b *Base) Reload(ctx context.Context) error {
	b.buildMu.Lock()
	defer b.buildMu.Unlock()

	idx, docs, err := b.build(ctx)
	if err != nil {
		return fmt.Errorf("build knowledge index: %w", err)
	}

	old := b.current.Swap(&snapshot{index: idx, documents: docs, loadedAt: time.Now()})
	b.reloads.Add(1)
	if old != nil {
		b.retire(old.index)
	}
	log.Printf("[INFO] [KNOWLEDGE] index loaded (%d documents, %d chunks)", docs, idx.ChunkCount())
	return nil
}

func (b *Base) retire(prev Index) {
	closeIt := func() {
		if err := prev.Close(); err != nil {
			log.Printf("[WARN] [KNOWLEDGE] closing previous index: %v", err)
		}
	}
	if b.RetireAfter <= 0 {
		closeIt()
		return
	}
	time.AfterFunc(b.RetireAfter, closeIt)
}

func (b *Base) Search(ctx context.Context, query string, topK int) ([]Snippet, error) {
	snap := b.current.Load()
	if snap == nil {
		return nil, ErrUnavailable
	}
	return snap.index.Search(ctx, query, topK)
}

func (b *Base) Stats() Stats {
	snap := b.current.Load()
	if snap == nil {
		return Stats{Reloads: b.reloads.Load()}
	}
	return Stats{
		Loaded:     true,
		Documents:  snap.documents,
		Chunks:     snap.index.ChunkCount(),
		LastReload: snap.loadedAt,
		Reloads:    b.reloads.Load(),
	}
}

// Close tears down the installed index. Searches afterwards report ErrUnavailable.
func (b *Base) Close() error {
	snap := b.current.Swap(nil)
	if snap == nil {
		return nil
	}
	return snap.index.Close()
}
