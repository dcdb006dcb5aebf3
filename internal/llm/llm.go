// Package llm abstracts text generation and embedding behind small
// capability interfaces with a degraded-mode fallback implementation.
package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DocumentType distinguishes passage embedding from query embedding for
// backends that care about the difference.
type DocumentType string

const (
	DocumentTypeDocument DocumentType = "document"
	DocumentTypeQuery    DocumentType = "query"
)

// Message is one structured chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerateOptions carries per-call generation parameters.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

type GenerateOption func(*GenerateOptions)

func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) { o.MaxTokens = n }
}

func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) { o.Temperature = t }
}

// Generator produces free text from a prompt and replayed chat history.
type Generator interface {
	SetGenerationModel(modelID string)
	GenerateText(ctx context.Context, prompt string, history []Message, opts ...GenerateOption) (string, error)
	ConstructPrompt(content string, role Role) Message
}

// Embedder converts text into fixed-length vectors. EmbedText output length
// always equals EmbeddingSize; a backend returning anything else is an error.
type Embedder interface {
	SetEmbeddingModel(modelID string, size int)
	EmbeddingSize() int
	EmbedText(ctx context.Context, text string, docType DocumentType) ([]float32, error)
}

func applyOptions(defaults GenerateOptions, opts []GenerateOption) GenerateOptions {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// toMessageContents maps our history plus the user-turn prompt onto the
// langchaingo message shape.
func toMessageContents(history []Message, prompt string) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, llms.TextParts(chatMessageType(m.Role), m.Content))
	}
	msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeHuman, prompt))
	return msgs
}

func chatMessageType(r Role) schema.ChatMessageType {
	switch r {
	case RoleSystem:
		return schema.ChatMessageTypeSystem
	case RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

// truncate bounds input text to max runes. A zero or negative max disables
// truncation.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
