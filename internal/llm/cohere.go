package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/cohere"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// Cohere is a generation-only provider backed by the Cohere chat API.
type Cohere struct {
	token  string
	client *cohere.LLM

	generationModel string
	maxInputChars   int
	defaults        GenerateOptions
}

var _ Generator = (*Cohere)(nil)

func NewCohere(cfg config.CohereConfig, defaults GenerateOptions, maxInputChars int) (*Cohere, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cohere api key is not configured")
	}
	p := &Cohere{
		token:         cfg.APIKey,
		maxInputChars: maxInputChars,
		defaults:      defaults,
	}
	if err := p.rebuild(); err != nil {
		return nil, fmt.Errorf("initializing cohere client: %w", err)
	}
	return p, nil
}

func (p *Cohere) rebuild() error {
	opts := []cohere.Option{
		cohere.WithToken(p.token),
	}
	if p.generationModel != "" {
		opts = append(opts, cohere.WithModel(p.generationModel))
	}
	client, err := cohere.New(opts...)
	if err != nil {
		return err
	}
	p.client = client
	return nil
}

func (p *Cohere) SetGenerationModel(modelID string) {
	p.generationModel = modelID
	if err := p.rebuild(); err != nil {
		log.Error().Err(err).Str("model", modelID).Msg("rebuilding cohere client for generation model")
	}
}

func (p *Cohere) GenerateText(ctx context.Context, prompt string, history []Message, opts ...GenerateOption) (string, error) {
	call := applyOptions(p.defaults, opts)
	msgs := toMessageContents(history, truncate(prompt, p.maxInputChars))

	resp, err := p.client.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(call.MaxTokens),
		llms.WithTemperature(call.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("cohere generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("cohere generation: empty response")
	}
	return resp.Choices[0].Content, nil
}

func (p *Cohere) ConstructPrompt(content string, role Role) Message {
	return Message{Role: role, Content: content}
}
