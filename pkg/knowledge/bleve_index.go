package knowledge

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

type bleveDocument struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// BleveIndex is an in-memory full-text index over knowledge chunks.
// It is immutable once built; a reload builds a new one.
type BleveIndex struct {
	index  bleve.Index
	chunks map[string]Chunk
}

func NewBleveIndex(chunks []Chunk) (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}

	batch := idx.NewBatch()
	byID := make(map[string]Chunk, len(chunks))
	for _, c := range chunks {
		if err := batch.Index(c.ID, bleveDocument{Source: c.Source, Text: c.Text}); err != nil {
			idx.Close()
			return nil, fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
		byID[c.ID] = c
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("commit bleve batch: %w", err)
	}

	return &BleveIndex{index: idx, chunks: byID}, nil
}

func (b *BleveIndex) Search(ctx context.Context, query string, topK int) ([]Snippet, error) {
	if topK <= 0 {
		topK = 5
	}

	text := bleve.NewMatchQuery(query)
	text.SetField("text")
	source := bleve.NewMatchQuery(query)
	source.SetField("source")
	source.SetBoost(0.5)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(text, source), topK, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	out := make([]Snippet, 0, len(res.Hits))
	for _, hit := range res.Hits {
		c, ok := b.chunks[hit.ID]
		if !ok {
			continue
		}
		out = append(out, Snippet{
			Source:  c.Source,
			Excerpt: c.Text,
			// bleve scores are unbounded; squash into [0,1)
			Score: hit.Score / (hit.Score + 1),
		})
	}
	return out, nil
}

func (b *BleveIndex) ChunkCount() int { return len(b.chunks) }

func (b *BleveIndex) Close() error { return b.index.Close() }
