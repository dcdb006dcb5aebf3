package llm

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// Backend names accepted by the factory, matched case-insensitively.
const (
	BackendOpenAI   = "openai"
	BackendCohere   = "cohere"
	BackendOllama   = "ollama"
	BackendFallback = "fallback"
)

// Factory constructs concrete providers from configuration. Construction
// failures are reported as errors, never panics; callers substitute the
// Fallback provider on error.
type Factory struct {
	cfg config.LLMConfig
}

func NewFactory(cfg config.LLMConfig) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) defaults() GenerateOptions {
	return GenerateOptions{
		MaxTokens:   f.cfg.MaxTokens,
		Temperature: f.cfg.Temperature,
	}
}

// CreateGenerator resolves a backend name to a text generation provider.
func (f *Factory) CreateGenerator(backend string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendOpenAI:
		return NewOpenAI(f.cfg.OpenAI, f.defaults(), f.cfg.MaxInputChars)
	case BackendCohere:
		return NewCohere(f.cfg.Cohere, f.defaults(), f.cfg.MaxInputChars)
	case BackendOllama:
		return NewOllama(f.cfg.Ollama, f.defaults(), f.cfg.MaxInputChars)
	case BackendFallback:
		return NewFallback(f.cfg.EmbeddingSize, f.cfg.FallbackMessage), nil
	default:
		return nil, fmt.Errorf("unsupported generation backend %q", backend)
	}
}

// CreateEmbedder resolves a backend name to an embedding provider.
func (f *Factory) CreateEmbedder(backend string) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendOpenAI:
		return NewOpenAI(f.cfg.OpenAI, f.defaults(), f.cfg.MaxInputChars)
	case BackendOllama:
		return NewOllama(f.cfg.Ollama, f.defaults(), f.cfg.MaxInputChars)
	case BackendFallback:
		return NewFallback(f.cfg.EmbeddingSize, f.cfg.FallbackMessage), nil
	default:
		return nil, fmt.Errorf("unsupported embedding backend %q", backend)
	}
}

// InitProviders builds the configured generation and embedding providers,
// substituting the Fallback provider for any backend that cannot be
// constructed. This is the process's availability guarantee: misconfigured
// or unreachable backends degrade to static responses instead of aborting
// startup.
func InitProviders(cfg config.LLMConfig) (Generator, Embedder) {
	factory := NewFactory(cfg)

	generator, err := factory.CreateGenerator(cfg.GenerationBackend)
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.GenerationBackend).
			Msg("generation provider unavailable, using fallback")
		generator = NewFallback(cfg.EmbeddingSize, cfg.FallbackMessage)
	}
	generator.SetGenerationModel(cfg.GenerationModel)

	embedder, err := factory.CreateEmbedder(cfg.EmbeddingBackend)
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.EmbeddingBackend).
			Msg("embedding provider unavailable, using fallback")
		embedder = NewFallback(cfg.EmbeddingSize, cfg.FallbackMessage)
	}
	embedder.SetEmbeddingModel(cfg.EmbeddingModel, cfg.EmbeddingSize)

	return generator, embedder
}
