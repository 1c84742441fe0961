package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"nexora-campus-be/pkg/embedding"
	"nexora-campus-be/pkg/llm"
	"nexora-campus-be/pkg/llm/factory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests talk to a local Ollama daemon and only run when
// OLLAMA_INTEGRATION=true.
func ollamaURL(t *testing.T) string {
	t.Helper()
	if os.Getenv("OLLAMA_INTEGRATION") != "true" {
		t.Skip("Skipping Ollama test: OLLAMA_INTEGRATION not set")
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:11434"
}

func TestOllamaPhrasing(t *testing.T) {
	provider, err := factory.NewLLMProvider(factory.Config{
		Provider: "ollama",
		Model:    envOr("OLLAMA_MODEL", "gemma:2b"),
		BaseURL:  ollamaURL(t),
		Timeout:  60 * time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	reply, err := provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "Reply with one short sentence."},
		{Role: "user", Content: "Say hello to a university student."},
	}, llm.WithTemperature(0))
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestOllamaEmbeddingIsNormalised(t *testing.T) {
	provider := embedding.NewOllamaProvider(ollamaURL(t), envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text"))

	vec, err := provider.Generate(context.Background(), "Where is the library?", embedding.TaskQuery)
	require.NoError(t, err)
	require.Len(t, vec, embedding.Dimensions)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
