package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration, loaded from YAML.
// Secrets may be referenced as ${ENV_VAR} and are expanded at load time.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	VectorDB  VectorDBConfig  `yaml:"vector_db"`
	Templates TemplatesConfig `yaml:"templates"`
	RAG       RAGConfig       `yaml:"rag"`
	Uploads   UploadsConfig   `yaml:"uploads"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// OpenAIConfig covers OpenAI and any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type CohereConfig struct {
	APIKey string `yaml:"api_key"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
}

type LLMConfig struct {
	GenerationBackend string       `yaml:"generation_backend"`
	GenerationModel   string       `yaml:"generation_model"`
	EmbeddingBackend  string       `yaml:"embedding_backend"`
	EmbeddingModel    string       `yaml:"embedding_model"`
	EmbeddingSize     int          `yaml:"embedding_size"`
	MaxInputChars     int          `yaml:"max_input_chars"`
	MaxTokens         int          `yaml:"max_tokens"`
	Temperature       float64      `yaml:"temperature"`
	FallbackMessage   string       `yaml:"fallback_message"`
	OpenAI            OpenAIConfig `yaml:"openai"`
	Cohere            CohereConfig `yaml:"cohere"`
	Ollama            OllamaConfig `yaml:"ollama"`
}

type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type ChromemConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type VectorDBConfig struct {
	Backend   string        `yaml:"backend"`
	Distance  string        `yaml:"distance"`
	BatchSize int           `yaml:"batch_size"`
	Qdrant    QdrantConfig  `yaml:"qdrant"`
	Chromem   ChromemConfig `yaml:"chromem"`
}

type TemplatesConfig struct {
	PrimaryLanguage string `yaml:"primary_language"`
	DefaultLanguage string `yaml:"default_language"`
}

type RAGConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	SearchLimit    int     `yaml:"search_limit"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	EmbedWorkers   int     `yaml:"embed_workers"`
}

type UploadsConfig struct {
	Dir string `yaml:"dir"`
}

// LoadConfig reads and parses the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "farqad"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.LLM.GenerationBackend == "" {
		cfg.LLM.GenerationBackend = "openai"
	}
	if cfg.LLM.GenerationModel == "" {
		cfg.LLM.GenerationModel = "gpt-3.5-turbo"
	}
	if cfg.LLM.EmbeddingBackend == "" {
		cfg.LLM.EmbeddingBackend = "openai"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.LLM.EmbeddingSize == 0 {
		cfg.LLM.EmbeddingSize = 1536
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.OpenAI.BaseURL == "" {
		cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Ollama.BaseURL == "" {
		cfg.LLM.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.VectorDB.Backend == "" {
		cfg.VectorDB.Backend = "qdrant"
	}
	if cfg.VectorDB.Distance == "" {
		cfg.VectorDB.Distance = "cosine"
	}
	if cfg.VectorDB.BatchSize == 0 {
		cfg.VectorDB.BatchSize = 50
	}
	if cfg.VectorDB.Qdrant.URL == "" {
		cfg.VectorDB.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.VectorDB.Qdrant.TimeoutSecs == 0 {
		cfg.VectorDB.Qdrant.TimeoutSecs = 15
	}
	if cfg.VectorDB.Chromem.Path == "" {
		cfg.VectorDB.Chromem.Path = "./chromem_db"
	}
	if cfg.Templates.PrimaryLanguage == "" {
		cfg.Templates.PrimaryLanguage = "en"
	}
	if cfg.Templates.DefaultLanguage == "" {
		cfg.Templates.DefaultLanguage = "en"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 512
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 64
	}
	if cfg.RAG.SearchLimit == 0 {
		cfg.RAG.SearchLimit = 5
	}
	if cfg.RAG.EmbedWorkers == 0 {
		cfg.RAG.EmbedWorkers = 4
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "./uploads"
	}
}
