package factory

import (
	"fmt"
	"strings"

	"fitai-planner-be/pkg/llm"
	"fitai-planner-be/pkg/llm/gemini"
	"fitai-planner-be/pkg/llm/ollama"
	"fitai-planner-be/pkg/llm/openai"
)

// Keys carries the credentials and endpoints a provider may need.
type Keys struct {
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string
}

// ParseModelConfig splits "provider:model". A bare model name means openai.
func ParseModelConfig(config string) (provider, model string) {
	if p, m, ok := strings.Cut(config, ":"); ok {
		return p, m
	}
	return "openai", config
}

// ValidateAPIKeys fails when the selected provider has no key configured.
func ValidateAPIKeys(provider string, keys Keys) error {
	switch provider {
	case "openai":
		if keys.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set when using OpenAI models")
		}
	case "google_genai", "google_vertexai", "gemini":
		if keys.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY must be set when using Google Gemini models")
		}
	}
	return nil
}

func NewLLMProvider(modelConfig string, keys Keys) (llm.LLMProvider, error) {
	providerType, modelName := ParseModelConfig(modelConfig)
	if err := ValidateAPIKeys(providerType, keys); err != nil {
		return nil, err
	}

	switch providerType {
	case "google_genai", "google_vertexai", "gemini":
		return gemini.NewProvider(keys.GoogleAPIKey, modelName), nil
	case "openai":
		return openai.NewProvider(keys.OpenAIAPIKey, keys.OpenAIBaseURL, modelName), nil
	case "ollama":
		return ollama.NewProvider(keys.OllamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
