package llm

import (
	"fmt"
	"os"
)

// NewProvider creates an LLM provider based on the given provider type and
// model. Supported provider types: "openai", "ollama".
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "openai":
		return NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), model)

	case "ollama":
		return NewOllamaProvider(os.Getenv("OLLAMA_HOST"), model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
