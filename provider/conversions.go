package provider

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"

	"spurchat/model"
	"spurchat/ollama"
)

// ConvertOllamaModels converts local Ollama models to provider-agnostic info.
func ConvertOllamaModels(models []ollama.ModelInfo) []model.ModelInfo {
	result := make([]model.ModelInfo, len(models))
	for i, m := range models {
		result[i] = model.ModelInfo{
			Name:         m.Name,
			InternalName: m.Name, // Ollama uses same name for display and API
			Size:         m.Size,
			Provider:     "ollama",
		}
	}
	return result
}

// completeChat sends the prompt as a single user message to an
// OpenAI-compatible endpoint and returns the first choice's content.
func completeChat(ctx context.Context, client openai.Client, modelName, prompt string) (string, error) {
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func pickModel(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

// stripProviderPrefix removes vendor prefixes from OpenRouter model names.
// "meta-llama/llama-3.2-90b-instruct" → "llama-3.2-90b-instruct"
// "anthropic/claude-sonnet-4" → "claude-sonnet-4"
func stripProviderPrefix(modelName string) string {
	if idx := strings.Index(modelName, "/"); idx != -1 {
		return modelName[idx+1:]
	}
	return modelName
}

func supportsAction(actions []string, action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
