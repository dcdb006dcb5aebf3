package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		GenerationBackend: "nonexistent",
		GenerationModel:   "test-model",
		EmbeddingBackend:  "nonexistent",
		EmbeddingModel:    "test-embeddings",
		EmbeddingSize:     16,
	}
}

func TestCreateGeneratorUnsupportedBackend(t *testing.T) {
	factory := NewFactory(testLLMConfig())

	_, err := factory.CreateGenerator("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestCreateEmbedderRejectsCohere(t *testing.T) {
	factory := NewFactory(testLLMConfig())

	// Cohere only serves generation.
	_, err := factory.CreateEmbedder(BackendCohere)
	require.Error(t, err)
}

func TestCreateFallbackBackendExplicitly(t *testing.T) {
	factory := NewFactory(testLLMConfig())

	gen, err := factory.CreateGenerator("  Fallback ")
	require.NoError(t, err)
	_, ok := gen.(*Fallback)
	assert.True(t, ok)

	emb, err := factory.CreateEmbedder(BackendFallback)
	require.NoError(t, err)
	assert.Equal(t, 16, emb.EmbeddingSize())
}

func TestInitProvidersSubstitutesFallback(t *testing.T) {
	gen, emb := InitProviders(testLLMConfig())

	answer, err := gen.GenerateText(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFallbackMessage, answer)

	vec, err := emb.EmbedText(context.Background(), "ping", DocumentTypeQuery)
	require.NoError(t, err)
	assert.Len(t, vec, 16)
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "abcdef", truncate("abcdef", 0))
	assert.Equal(t, "abcdef", truncate("abcdef", 100))
	assert.Equal(t, "ملخ", truncate("ملخص مالي", 3))
}
