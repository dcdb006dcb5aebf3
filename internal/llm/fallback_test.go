package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackGenerateReturnsConfiguredMessage(t *testing.T) {
	f := NewFallback(8, "custom apology")

	got, err := f.GenerateText(context.Background(), "any prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "custom apology", got)
}

func TestFallbackGenerateDefaultMessage(t *testing.T) {
	f := NewFallback(8, "")

	got, err := f.GenerateText(context.Background(), "any prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFallbackMessage, got)
}

func TestFallbackEmbedMatchesConfiguredSize(t *testing.T) {
	f := NewFallback(32, "")

	vec, err := f.EmbedText(context.Background(), "text", DocumentTypeDocument)
	require.NoError(t, err)
	assert.Len(t, vec, 32)
	assert.Equal(t, 32, f.EmbeddingSize())

	f.SetEmbeddingModel("other-model", 64)
	vec, err = f.EmbedText(context.Background(), "text", DocumentTypeQuery)
	require.NoError(t, err)
	assert.Len(t, vec, 64)
}

func TestFallbackInvalidSizeDefaults(t *testing.T) {
	f := NewFallback(0, "")
	assert.Equal(t, 1536, f.EmbeddingSize())

	// A zero size on SetEmbeddingModel keeps the previous dimension.
	f.SetEmbeddingModel("m", 0)
	assert.Equal(t, 1536, f.EmbeddingSize())
}

func TestFallbackConstructPrompt(t *testing.T) {
	f := NewFallback(8, "")

	msg := f.ConstructPrompt("hello", RoleSystem)
	assert.Equal(t, Message{Role: RoleSystem, Content: "hello"}, msg)
}
