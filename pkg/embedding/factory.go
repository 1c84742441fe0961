package embedding

import "fmt"

func NewEmbeddingProvider(providerType, model, baseURL, apiKey string) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama", "":
		return NewOllamaProvider(baseURL, model), nil
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an api key")
		}
		return NewOpenAIProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
