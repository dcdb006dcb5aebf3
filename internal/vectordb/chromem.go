package vectordb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// Chromem is an embedded vector index backed by chromem-go, either purely
// in-memory or persisted to a local directory. chromem only supports cosine
// similarity; a configured dot metric is accepted with a warning.
type Chromem struct {
	db *chromem.DB

	mu   sync.Mutex
	dims map[string]int
}

var _ Provider = (*Chromem)(nil)

func NewChromem(cfg config.ChromemConfig, distance Distance) (*Chromem, error) {
	if distance == DistanceDot {
		log.Warn().Msg("chromem backend only supports cosine similarity, ignoring configured dot metric")
	}

	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db at %s: %w", cfg.Path, err)
		}
	}
	return &Chromem{db: db, dims: make(map[string]int)}, nil
}

func (c *Chromem) Connect(context.Context) error { return nil }

func (c *Chromem) Close() error { return nil }

func (c *Chromem) CollectionExists(_ context.Context, name string) (bool, error) {
	return c.db.GetCollection(name, nil) != nil, nil
}

func (c *Chromem) CreateCollection(ctx context.Context, name string, embeddingSize int, reset bool) (bool, error) {
	if embeddingSize <= 0 {
		return false, errors.New("invalid embedding size")
	}
	if reset {
		if err := c.DeleteCollection(ctx, name); err != nil {
			return false, err
		}
	}

	if c.db.GetCollection(name, nil) != nil {
		return false, nil
	}

	meta := map[string]string{"embedding_size": strconv.Itoa(embeddingSize)}
	if _, err := c.db.GetOrCreateCollection(name, meta, nil); err != nil {
		return false, fmt.Errorf("creating chromem collection %q: %w", name, err)
	}

	c.mu.Lock()
	c.dims[name] = embeddingSize
	c.mu.Unlock()

	log.Info().Str("collection", name).Int("size", embeddingSize).Msg("created chromem collection")
	return true, nil
}

func (c *Chromem) DeleteCollection(_ context.Context, name string) error {
	if c.db.GetCollection(name, nil) == nil {
		return nil
	}
	if err := c.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("deleting chromem collection %q: %w", name, err)
	}
	c.mu.Lock()
	delete(c.dims, name)
	c.mu.Unlock()
	return nil
}

func (c *Chromem) InsertMany(ctx context.Context, name string, texts []string, vectors [][]float32,
	metadata []map[string]any, recordIDs []string, batchSize int) error {

	if len(texts) != len(vectors) || len(texts) != len(recordIDs) {
		return errors.New("texts, vectors and record ids length mismatch")
	}
	if metadata == nil {
		metadata = make([]map[string]any, len(texts))
	}
	if len(metadata) != len(texts) {
		return errors.New("texts and metadata length mismatch")
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	collection := c.db.GetCollection(name, nil)
	if collection == nil {
		return fmt.Errorf("chromem collection %q does not exist", name)
	}

	size := c.collectionSize(name)
	for i, vector := range vectors {
		if size > 0 && len(vector) != size {
			return fmt.Errorf("vector %d has dimension %d, collection %q expects %d", i, len(vector), name, size)
		}
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		docs := make([]chromem.Document, 0, end-start)
		for i := start; i < end; i++ {
			docs = append(docs, chromem.Document{
				ID:        recordIDs[i],
				Content:   texts[i],
				Embedding: vectors[i],
				Metadata:  stringifyMetadata(metadata[i]),
			})
		}
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return fmt.Errorf("chromem insert batch starting at %d: %w", start, err)
		}
	}
	return nil
}

func (c *Chromem) SearchByVector(ctx context.Context, name string, vector []float32, limit int,
	filter *Filter, scoreThreshold *float32) ([]RetrievedDocument, error) {

	collection := c.db.GetCollection(name, nil)
	if collection == nil {
		return nil, fmt.Errorf("chromem collection %q does not exist", name)
	}
	if limit <= 0 {
		limit = 5
	}
	// chromem rejects queries asking for more results than stored documents.
	if count := collection.Count(); count < limit {
		if count == 0 {
			return []RetrievedDocument{}, nil
		}
		limit = count
	}

	var where map[string]string
	if filter != nil && len(filter.Must) > 0 {
		where = make(map[string]string, len(filter.Must))
		for _, cond := range filter.Must {
			where[cond.Key] = cond.Value
		}
	}

	results, err := collection.QueryEmbedding(ctx, vector, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem search in %q: %w", name, err)
	}

	docs := make([]RetrievedDocument, 0, len(results))
	for _, res := range results {
		if scoreThreshold != nil && res.Similarity < *scoreThreshold {
			continue
		}
		docs = append(docs, RetrievedDocument{Score: res.Similarity, Text: res.Content})
	}
	return docs, nil
}

func (c *Chromem) collectionSize(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dims[name]
}

// stringifyMetadata flattens payload metadata to chromem's string-valued
// metadata map.
func stringifyMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = fmt.Sprint(v)
	}
	return out
}
