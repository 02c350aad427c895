package factory

import (
	"context"
	"fmt"

	"perry-be/pkg/llm"
	"perry-be/pkg/llm/gemini"
	"perry-be/pkg/llm/ollama"
)

func NewLLMProvider(ctx context.Context, providerType, modelName, apiKey, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		return gemini.NewGeminiProvider(ctx, apiKey, modelName)
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
