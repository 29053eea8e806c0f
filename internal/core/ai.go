package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider is a hosted vision-capable model. GenerateWithImage sends the
// photo as an inline-encoded part alongside the prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	GenerateWithImage(ctx context.Context, systemPrompt, userPrompt, imageFormat string, image []byte) (string, error)
}
