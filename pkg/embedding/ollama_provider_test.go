package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.True(t, strings.HasPrefix(req.Prompt, "search_query: "))
		w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	vec, err := p.Generate(context.Background(), "library hours", TaskQuery)
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
}

func TestOllamaProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "m").Generate(context.Background(), "x", TaskDocument)
	assert.ErrorContains(t, err, "status 500")
}

func TestFactory(t *testing.T) {
	_, err := NewEmbeddingProvider("openai", "", "", "")
	assert.Error(t, err)
	_, err = NewEmbeddingProvider("gemini", "", "", "")
	assert.Error(t, err)
	p, err := NewEmbeddingProvider("ollama", "", "", "")
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, p)
}
