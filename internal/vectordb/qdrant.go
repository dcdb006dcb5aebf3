package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

// Qdrant is a minimal REST client to a Qdrant server.
type Qdrant struct {
	url      string
	apiKey   string
	distance Distance
	client   *http.Client
}

var _ Provider = (*Qdrant)(nil)

func NewQdrant(cfg config.QdrantConfig, distance Distance) *Qdrant {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		distance: distance,
		client:   &http.Client{Timeout: timeout},
	}
}

// Connect verifies the server is reachable.
func (q *Qdrant) Connect(ctx context.Context) error {
	status, _, err := q.do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return fmt.Errorf("qdrant unreachable at %s: %w", q.url, err)
	}
	if status >= 300 {
		return fmt.Errorf("qdrant at %s returned status %d", q.url, status)
	}
	return nil
}

func (q *Qdrant) Close() error { return nil }

func (q *Qdrant) CollectionExists(ctx context.Context, name string) (bool, error) {
	status, _, err := q.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status >= 300 {
		return false, fmt.Errorf("qdrant collection lookup failed with status %d", status)
	}
	return true, nil
}

func (q *Qdrant) CreateCollection(ctx context.Context, name string, embeddingSize int, reset bool) (bool, error) {
	if embeddingSize <= 0 {
		return false, errors.New("invalid embedding size")
	}
	if reset {
		if err := q.DeleteCollection(ctx, name); err != nil {
			return false, err
		}
	}

	exists, err := q.CollectionExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     embeddingSize,
			"distance": q.distanceName(),
		},
	}
	status, _, err := q.do(ctx, http.MethodPut, "/collections/"+name, body)
	if err != nil {
		return false, err
	}
	if status >= 300 {
		return false, fmt.Errorf("qdrant create collection %q failed with status %d", name, status)
	}
	log.Info().Str("collection", name).Int("size", embeddingSize).Msg("created qdrant collection")
	return true, nil
}

func (q *Qdrant) DeleteCollection(ctx context.Context, name string) error {
	status, _, err := q.do(ctx, http.MethodDelete, "/collections/"+name, nil)
	if err != nil {
		return err
	}
	// Deleting an absent collection is a no-op.
	if status >= 300 && status != http.StatusNotFound {
		return fmt.Errorf("qdrant delete collection %q failed with status %d", name, status)
	}
	return nil
}

func (q *Qdrant) InsertMany(ctx context.Context, name string, texts []string, vectors [][]float32,
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

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		points := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, map[string]any{
				"id":     recordIDs[i],
				"vector": vectors[i],
				"payload": map[string]any{
					"text":     texts[i],
					"metadata": metadata[i],
				},
			})
		}

		body := map[string]any{"points": points}
		status, _, err := q.do(ctx, http.MethodPut, "/collections/"+name+"/points?wait=true", body)
		if err != nil {
			return fmt.Errorf("qdrant insert batch starting at %d: %w", start, err)
		}
		if status >= 300 {
			return fmt.Errorf("qdrant insert batch starting at %d failed with status %d", start, status)
		}
	}
	return nil
}

func (q *Qdrant) SearchByVector(ctx context.Context, name string, vector []float32, limit int,
	filter *Filter, scoreThreshold *float32) ([]RetrievedDocument, error) {

	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter != nil && len(filter.Must) > 0 {
		must := make([]map[string]any, 0, len(filter.Must))
		for _, cond := range filter.Must {
			must = append(must, map[string]any{
				// Metadata is nested under the payload "metadata" key.
				"key":   "metadata." + cond.Key,
				"match": map[string]any{"value": cond.Value},
			})
		}
		body["filter"] = map[string]any{"must": must}
	}
	if scoreThreshold != nil {
		body["score_threshold"] = *scoreThreshold
	}

	status, payload, err := q.do(ctx, http.MethodPost, "/collections/"+name+"/points/search", body)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant search in %q failed with status %d", name, status)
	}

	var resp struct {
		Result []struct {
			Score   float32 `json:"score"`
			Payload struct {
				Text string `json:"text"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decoding qdrant search response: %w", err)
	}

	docs := make([]RetrievedDocument, 0, len(resp.Result))
	for _, hit := range resp.Result {
		docs = append(docs, RetrievedDocument{Score: hit.Score, Text: hit.Payload.Text})
	}
	return docs, nil
}

func (q *Qdrant) distanceName() string {
	if q.distance == DistanceDot {
		return "Dot"
	}
	return "Cosine"
}

func (q *Qdrant) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.url+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, payload, nil
}
