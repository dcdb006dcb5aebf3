package llm

import (
	"context"

	"github.com/rs/zerolog/log"
)

// DefaultFallbackMessage is returned by the fallback generator when no
// message is configured.
const DefaultFallbackMessage = "I'm currently experiencing technical difficulties connecting to my language model. Please check your API key configuration."

// Fallback implements both Generator and Embedder without any network
// dependency. It is substituted whenever a real backend cannot be
// constructed, so a total backend outage yields static responses instead of
// a crashed process.
type Fallback struct {
	message         string
	embeddingSize   int
	generationModel string
	embeddingModel  string
}

var (
	_ Generator = (*Fallback)(nil)
	_ Embedder  = (*Fallback)(nil)
)

func NewFallback(embeddingSize int, message string) *Fallback {
	if message == "" {
		message = DefaultFallbackMessage
	}
	if embeddingSize <= 0 {
		embeddingSize = 1536
	}
	return &Fallback{
		message:         message,
		embeddingSize:   embeddingSize,
		generationModel: "fallback-model",
		embeddingModel:  "fallback-embeddings",
	}
}

func (f *Fallback) SetGenerationModel(modelID string) {
	f.generationModel = modelID
}

func (f *Fallback) SetEmbeddingModel(modelID string, size int) {
	f.embeddingModel = modelID
	if size > 0 {
		f.embeddingSize = size
	}
}

func (f *Fallback) EmbeddingSize() int {
	return f.embeddingSize
}

// GenerateText returns the configured apology string.
func (f *Fallback) GenerateText(_ context.Context, prompt string, _ []Message, _ ...GenerateOption) (string, error) {
	log.Debug().Str("prompt", truncate(prompt, 50)).Msg("fallback provider answering generate call")
	return f.message, nil
}

// EmbedText returns a zero vector of the configured size.
func (f *Fallback) EmbedText(_ context.Context, _ string, _ DocumentType) ([]float32, error) {
	return make([]float32, f.embeddingSize), nil
}

func (f *Fallback) ConstructPrompt(content string, role Role) Message {
	return Message{Role: role, Content: content}
}
