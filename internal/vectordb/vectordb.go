// Package vectordb abstracts per-project vector collections behind a
// provider interface with Qdrant and embedded chromem backends.
package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// Distance is the similarity metric fixed at collection creation.
type Distance string

const (
	DistanceCosine Distance = "cosine"
	DistanceDot    Distance = "dot"
)

// Backend names accepted by NewProvider, matched case-insensitively.
const (
	BackendQdrant  = "qdrant"
	BackendChromem = "chromem"
)

// RetrievedDocument is the ephemeral result of a similarity search. Only the
// score and text survive the round trip; callers needing provenance must
// carry it in payload metadata.
type RetrievedDocument struct {
	Score float32
	Text  string
}

// Condition matches one payload metadata field against an exact value.
type Condition struct {
	Key   string
	Value string
}

// Filter restricts a search to points matching every condition.
type Filter struct {
	Must []Condition
}

// FilterByAsset scopes a search to a single asset's chunks.
func FilterByAsset(assetID string) *Filter {
	return &Filter{Must: []Condition{{Key: "asset_id", Value: assetID}}}
}

// Provider is a vector index backend. SearchByVector reports backend
// failures as errors; collapsing "no results" and "search failed" into one
// empty answer is the orchestrator's call, not this layer's.
type Provider interface {
	Connect(ctx context.Context) error
	Close() error

	CollectionExists(ctx context.Context, name string) (bool, error)
	// CreateCollection deletes and recreates the collection when reset is
	// set, creates it when absent, and reports whether a new collection was
	// actually created. Vector dimensionality is fixed here.
	CreateCollection(ctx context.Context, name string, embeddingSize int, reset bool) (bool, error)
	DeleteCollection(ctx context.Context, name string) error

	// InsertMany writes points in fixed-size batches, each carrying payload
	// {text, metadata}. A failing batch aborts the whole call.
	InsertMany(ctx context.Context, name string, texts []string, vectors [][]float32,
		metadata []map[string]any, recordIDs []string, batchSize int) error

	// SearchByVector returns results ordered by descending similarity.
	SearchByVector(ctx context.Context, name string, vector []float32, limit int,
		filter *Filter, scoreThreshold *float32) ([]RetrievedDocument, error)
}

// NewProvider constructs the configured backend. Unsupported backend names
// are configuration errors.
func NewProvider(cfg config.VectorDBConfig) (Provider, error) {
	distance, err := parseDistance(cfg.Distance)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendQdrant:
		return NewQdrant(cfg.Qdrant, distance), nil
	case BackendChromem:
		return NewChromem(cfg.Chromem, distance)
	default:
		return nil, fmt.Errorf("unsupported vector db backend %q", cfg.Backend)
	}
}

func parseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DistanceCosine):
		return DistanceCosine, nil
	case string(DistanceDot):
		return DistanceDot, nil
	default:
		return "", fmt.Errorf("unsupported distance metric %q", s)
	}
}
