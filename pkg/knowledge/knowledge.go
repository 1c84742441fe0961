package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nexora-campus-be/pkg/utils"
)

// Snippet is a scored excerpt returned by a search, highest score first.
type Snippet struct {
	Source  string
	Excerpt string
	Score   float64
}

// Searcher is the knowledge-base collaborator consumed by the assembler.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Snippet, error)
}

// Chunk is one indexed slice of a source document.
type Chunk struct {
	ID     string
	Source string
	Index  int
	Text   string
}

// Index is a built, searchable snapshot of the knowledge base.
type Index interface {
	Searcher
	ChunkCount() int
	Close() error
}

var ErrUnavailable = errors.New("knowledge base is not loaded")

var supportedExtensions = map[string]bool{".md": true, ".markdown": true, ".txt": true}

type ChunkOptions struct {
	Size    int
	Overlap int
}

// LoadDirectory reads every supported file under dir and chunks it.
// Each markdown section is split separately so chunks never straddle headings.
func LoadDirectory(dir string, opts ChunkOptions) ([]Chunk, int, error) {
	if opts.Size <= 0 {
		opts.Size = 800
	}
	if opts.Overlap <= 0 {
		opts.Overlap = 100
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk knowledge dir: %w", err)
	}
	sort.Strings(paths)

	var chunks []Chunk
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", path, err)
		}
		source, _ := filepath.Rel(dir, path)
		chunks = append(chunks, ChunkDocument(filepath.ToSlash(source), string(raw), opts)...)
	}
	return chunks, len(paths), nil
}

func ChunkDocument(source, text string, opts ChunkOptions) []Chunk {
	var chunks []Chunk
	for _, section := range utils.SplitSections(text) {
		for _, piece := range utils.SplitText(section, opts.Size, opts.Overlap) {
			chunks = append(chunks, Chunk{
				ID:     fmt.Sprintf("%s#%d", source, len(chunks)),
				Source: source,
				Index:  len(chunks),
				Text:   piece,
			})
		}
	}
	return chunks
}

// FilterAndRank drops snippets under threshold, sorts by score and caps at topK.
func FilterAndRank(snippets []Snippet, threshold float64, topK int) []Snippet {
	out := make([]Snippet, 0, len(snippets))
	for _, s := range snippets {
		if s.Score >= threshold {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
