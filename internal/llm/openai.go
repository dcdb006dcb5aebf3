package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// OpenAI provides generation and embeddings through OpenAI or any
// OpenAI-compatible endpoint.
type OpenAI struct {
	token   string
	baseURL string
	client  *openai.LLM

	generationModel string
	embeddingModel  string
	embeddingSize   int

	maxInputChars int
	defaults      GenerateOptions
}

var (
	_ Generator = (*OpenAI)(nil)
	_ Embedder  = (*OpenAI)(nil)
)

func NewOpenAI(cfg config.OpenAIConfig, defaults GenerateOptions, maxInputChars int) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is not configured")
	}
	p := &OpenAI{
		token:         strings.TrimPrefix(cfg.APIKey, "Bearer "),
		baseURL:       cfg.BaseURL,
		maxInputChars: maxInputChars,
		defaults:      defaults,
	}
	if err := p.rebuild(); err != nil {
		return nil, fmt.Errorf("initializing openai client: %w", err)
	}
	return p, nil
}

func (p *OpenAI) rebuild() error {
	opts := []openai.Option{
		openai.WithToken(p.token),
	}
	if p.baseURL != "" {
		opts = append(opts, openai.WithBaseURL(p.baseURL))
	}
	if p.generationModel != "" {
		opts = append(opts, openai.WithModel(p.generationModel))
	}
	if p.embeddingModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(p.embeddingModel))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return err
	}
	p.client = client
	return nil
}

func (p *OpenAI) SetGenerationModel(modelID string) {
	p.generationModel = modelID
	if err := p.rebuild(); err != nil {
		log.Error().Err(err).Str("model", modelID).Msg("rebuilding openai client for generation model")
	}
}

func (p *OpenAI) SetEmbeddingModel(modelID string, size int) {
	p.embeddingModel = modelID
	p.embeddingSize = size
	if err := p.rebuild(); err != nil {
		log.Error().Err(err).Str("model", modelID).Msg("rebuilding openai client for embedding model")
	}
}

func (p *OpenAI) EmbeddingSize() int {
	return p.embeddingSize
}

func (p *OpenAI) GenerateText(ctx context.Context, prompt string, history []Message, opts ...GenerateOption) (string, error) {
	call := applyOptions(p.defaults, opts)
	msgs := toMessageContents(history, truncate(prompt, p.maxInputChars))

	resp, err := p.client.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(call.MaxTokens),
		llms.WithTemperature(call.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("openai generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai generation: empty response")
	}
	return resp.Choices[0].Content, nil
}

func (p *OpenAI) EmbedText(ctx context.Context, text string, _ DocumentType) ([]float32, error) {
	vectors, err := p.client.CreateEmbedding(ctx, []string{truncate(text, p.maxInputChars)})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("openai embedding: empty response")
	}
	vector := vectors[0]
	if p.embeddingSize > 0 && len(vector) != p.embeddingSize {
		return nil, fmt.Errorf("openai embedding: got dimension %d, expected %d", len(vector), p.embeddingSize)
	}
	return vector, nil
}

func (p *OpenAI) ConstructPrompt(content string, role Role) Message {
	return Message{Role: role, Content: content}
}
