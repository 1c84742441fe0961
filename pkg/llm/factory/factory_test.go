package factory

import (
	"testing"

	"nexora-campus-be/pkg/llm"
	"nexora-campus-be/pkg/llm/anthropic"
	"nexora-campus-be/pkg/llm/ollama"
	"nexora-campus-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewLLMProvider(Config{Provider: "ollama", Model: "llama3.2"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, p)

	p, err = NewLLMProvider(Config{Provider: "groq", APIKey: "k", Model: "llama-3.1-8b-instant"})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider(Config{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Provider{}, p)

	_, err = NewLLMProvider(Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "palm"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestSplitSystem(t *testing.T) {
	system, turns := llm.SplitSystem([]llm.Message{
		{Role: llm.RoleSystem, Content: "a"},
		{Role: llm.RoleUser, Content: "q"},
		{Role: llm.RoleSystem, Content: "b"},
	})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, turns, 1)
	assert.Equal(t, "q", turns[0].Content)
}
