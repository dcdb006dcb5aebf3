package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("FARQAD_TEST_KEY", "sk-12345")

	path := writeConfig(t, `
llm:
  openai:
    api_key: ${FARQAD_TEST_KEY}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-12345", cfg.LLM.OpenAI.APIKey)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "openai", cfg.LLM.GenerationBackend)
	assert.Equal(t, 1536, cfg.LLM.EmbeddingSize)
	assert.Equal(t, "qdrant", cfg.VectorDB.Backend)
	assert.Equal(t, "cosine", cfg.VectorDB.Distance)
	assert.Equal(t, 50, cfg.VectorDB.BatchSize)
	assert.Equal(t, 512, cfg.RAG.ChunkSize)
	assert.Equal(t, 64, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.SearchLimit)
	assert.Equal(t, 4, cfg.RAG.EmbedWorkers)
	assert.Equal(t, "en", cfg.Templates.DefaultLanguage)
}

func TestLoadConfigExplicitValuesWin(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
llm:
  generation_backend: ollama
  embedding_size: 768
vector_db:
  backend: chromem
  chromem:
    in_memory: true
rag:
  chunk_size: 256
`))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.GenerationBackend)
	assert.Equal(t, 768, cfg.LLM.EmbeddingSize)
	assert.Equal(t, "chromem", cfg.VectorDB.Backend)
	assert.True(t, cfg.VectorDB.Chromem.InMemory)
	assert.Equal(t, 256, cfg.RAG.ChunkSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/no/such/config.yaml")
	require.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "llm: [not a mapping"))
	require.Error(t, err)
}
