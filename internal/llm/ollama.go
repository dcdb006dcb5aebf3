package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// Ollama provides generation and embeddings through a local Ollama server.
// The server binds the model per client, so the client is rebuilt when a
// model is assigned.
type Ollama struct {
	serverURL string
	client    *ollama.LLM

	model         string
	embeddingSize int
	maxInputChars int
	defaults      GenerateOptions
}

var (
	_ Generator = (*Ollama)(nil)
	_ Embedder  = (*Ollama)(nil)
)

func NewOllama(cfg config.OllamaConfig, defaults GenerateOptions, maxInputChars int) (*Ollama, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ollama base url is not configured")
	}
	p := &Ollama{
		serverURL:     cfg.BaseURL,
		maxInputChars: maxInputChars,
		defaults:      defaults,
	}
	if err := p.rebuild(); err != nil {
		return nil, fmt.Errorf("initializing ollama client: %w", err)
	}
	return p, nil
}

func (p *Ollama) rebuild() error {
	opts := []ollama.Option{
		ollama.WithServerURL(p.serverURL),
	}
	if p.model != "" {
		opts = append(opts, ollama.WithModel(p.model))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return err
	}
	p.client = client
	return nil
}

func (p *Ollama) SetGenerationModel(modelID string) {
	p.model = modelID
	if err := p.rebuild(); err != nil {
		log.Error().Err(err).Str("model", modelID).Msg("rebuilding ollama client for generation model")
	}
}

func (p *Ollama) SetEmbeddingModel(modelID string, size int) {
	p.model = modelID
	p.embeddingSize = size
	if err := p.rebuild(); err != nil {
		log.Error().Err(err).Str("model", modelID).Msg("rebuilding ollama client for embedding model")
	}
}

func (p *Ollama) EmbeddingSize() int {
	return p.embeddingSize
}

func (p *Ollama) GenerateText(ctx context.Context, prompt string, history []Message, opts ...GenerateOption) (string, error) {
	call := applyOptions(p.defaults, opts)
	msgs := toMessageContents(history, truncate(prompt, p.maxInputChars))

	resp, err := p.client.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(call.MaxTokens),
		llms.WithTemperature(call.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("ollama generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ollama generation: empty response")
	}
	return resp.Choices[0].Content, nil
}

func (p *Ollama) EmbedText(ctx context.Context, text string, _ DocumentType) ([]float32, error) {
	vectors, err := p.client.CreateEmbedding(ctx, []string{truncate(text, p.maxInputChars)})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: %w", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("ollama embedding: empty response")
	}
	vector := vectors[0]
	if p.embeddingSize > 0 && len(vector) != p.embeddingSize {
		return nil, fmt.Errorf("ollama embedding: got dimension %d, expected %d", len(vector), p.embeddingSize)
	}
	return vector, nil
}

func (p *Ollama) ConstructPrompt(content string, role Role) Message {
	return Message{Role: role, Content: content}
}
