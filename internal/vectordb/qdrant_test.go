package vectordb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

type recordedRequest struct {
	method string
	path   string
	apiKey string
	body   map[string]any
}

func newTestQdrant(handler http.HandlerFunc) (*Qdrant, *httptest.Server) {
	srv := httptest.NewServer(handler)
	q := NewQdrant(config.QdrantConfig{URL: srv.URL, APIKey: "secret", TimeoutSecs: 5}, DistanceCosine)
	return q, srv
}

func record(r *http.Request) recordedRequest {
	rec := recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		apiKey: r.Header.Get("api-key"),
	}
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &rec.body)
	}
	return rec
}

func TestQdrantCreateCollection(t *testing.T) {
	var requests []recordedRequest
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		rec := record(r)
		requests = append(requests, rec)
		if rec.method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	created, err := q.CreateCollection(context.Background(), "proj", 1536, false)
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodGet, requests[0].method)

	put := requests[1]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/collections/proj", put.path)
	assert.Equal(t, "secret", put.apiKey)
	vectors := put.body["vectors"].(map[string]any)
	assert.Equal(t, float64(1536), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestQdrantCreateCollectionExisting(t *testing.T) {
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	created, err := q.CreateCollection(context.Background(), "proj", 1536, false)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestQdrantDeleteAbsentCollectionTolerated(t *testing.T) {
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	assert.NoError(t, q.DeleteCollection(context.Background(), "absent"))
}

func TestQdrantInsertManyBatches(t *testing.T) {
	var batches []recordedRequest
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		batches = append(batches, record(r))
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	texts := []string{"a", "b", "c"}
	vectors := [][]float32{{1}, {2}, {3}}
	ids := []string{"id-0", "id-1", "id-2"}

	err := q.InsertMany(context.Background(), "proj", texts, vectors, nil, ids, 2)
	require.NoError(t, err)

	require.Len(t, batches, 2, "three points at batch size two make two requests")
	first := batches[0].body["points"].([]any)
	assert.Len(t, first, 2)

	point := first[0].(map[string]any)
	assert.Equal(t, "id-0", point["id"])
	payload := point["payload"].(map[string]any)
	assert.Equal(t, "a", payload["text"])
}

func TestQdrantInsertManyLengthMismatch(t *testing.T) {
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	defer srv.Close()

	err := q.InsertMany(context.Background(), "proj", []string{"a"}, [][]float32{{1}, {2}}, nil, []string{"id"}, 10)
	require.Error(t, err)
}

func TestQdrantSearchByVector(t *testing.T) {
	var search recordedRequest
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		search = record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": [
			{"score": 0.92, "payload": {"text": "top hit"}},
			{"score": 0.71, "payload": {"text": "second hit"}}
		]}`))
	})
	defer srv.Close()

	threshold := float32(0.5)
	docs, err := q.SearchByVector(context.Background(), "proj", []float32{1, 0}, 5,
		FilterByAsset("42"), &threshold)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "top hit", docs[0].Text)
	assert.InDelta(t, 0.92, float64(docs[0].Score), 1e-6)

	assert.Equal(t, "/collections/proj/points/search", search.path)
	assert.Equal(t, true, search.body["with_payload"])
	assert.InDelta(t, 0.5, search.body["score_threshold"].(float64), 1e-6)

	filter := search.body["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	cond := must[0].(map[string]any)
	assert.Equal(t, "metadata.asset_id", cond["key"])
	assert.Equal(t, "42", cond["match"].(map[string]any)["value"])
}

func TestQdrantSearchServerError(t *testing.T) {
	q, srv := newTestQdrant(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := q.SearchByVector(context.Background(), "proj", []float32{1}, 5, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNewProviderUnsupportedBackend(t *testing.T) {
	_, err := NewProvider(config.VectorDBConfig{Backend: "weaviate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weaviate")
}

func TestParseDistance(t *testing.T) {
	d, err := parseDistance("")
	require.NoError(t, err)
	assert.Equal(t, DistanceCosine, d)

	d, err = parseDistance(" Dot ")
	require.NoError(t, err)
	assert.Equal(t, DistanceDot, d)

	_, err = parseDistance("euclid")
	require.Error(t, err)
}
