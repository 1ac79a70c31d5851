package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// qdrantEnvelope is the standard Qdrant response wrapper. Status is a
// string on success and an object carrying "error" on failure.
type qdrantEnvelope[T any] struct {
	Status qdrantStatus `json:"status"`
	Result T            `json:"result"`
}

type qdrantStatus struct {
	State string
	Error string
}

func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type qdrantPoint struct {
	ID      int64          `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
	Vector  []float32      `json:"vector"`
}

// QdrantStore keeps context records in a Qdrant collection over its
// HTTP API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
	nextID     atomic.Int64
}

func NewQdrantStore(baseURL, collection, apiKey string, dimension int) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	qs := &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		dimension:  dimension,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
	qs.nextID.Store(time.Now().UnixNano())
	return qs
}

// CreateSchema creates the collection; an existing collection is fine.
func (qs *QdrantStore) CreateSchema(ctx context.Context) error {
	req := map[string]any{
		"vectors": map[string]any{"size": qs.dimension, "distance": "Cosine"},
	}
	err := qs.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(qs.collection), req, nil)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return nil
	}
	return err
}

func (qs *QdrantStore) Store(ctx context.Context, key, content string, metadata map[string]string, embedding []float32) error {
	payload := map[string]any{
		"key":        key,
		"content":    content,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range metadata {
		payload["meta_"+k] = v
	}
	req := map[string]any{
		"points": []map[string]any{{
			"id":      qs.nextID.Add(1),
			"vector":  embedding,
			"payload": payload,
		}},
	}
	return qs.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(qs.collection)+"/points", req, nil)
}

func (qs *QdrantStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       queryEmbedding,
		"limit":        limit,
		"with_vector":  true,
		"with_payload": true,
	}
	var resp qdrantEnvelope[[]qdrantPoint]
	if err := qs.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(qs.collection)+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	records := make([]model.Record, 0, len(resp.Result))
	for _, p := range resp.Result {
		rec := model.Record{
			ID:        p.ID,
			Embedding: p.Vector,
			Score:     p.Score,
		}
		if s, ok := p.Payload["key"].(string); ok {
			rec.Key = s
		}
		if s, ok := p.Payload["content"].(string); ok {
			rec.Content = s
		}
		if s, ok := p.Payload["created_at"].(string); ok {
			rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, s)
		}
		for k, v := range p.Payload {
			name, found := strings.CutPrefix(k, "meta_")
			if !found {
				continue
			}
			s, ok := v.(string)
			if !ok {
				continue
			}
			if rec.Metadata == nil {
				rec.Metadata = map[string]string{}
			}
			rec.Metadata[name] = s
		}
		records = append(records, rec)
	}
	return records, nil
}

func (qs *QdrantStore) Count(ctx context.Context) (int, error) {
	var resp qdrantEnvelope[struct {
		Count int `json:"count"`
	}]
	err := qs.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(qs.collection)+"/points/count", map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (qs *QdrantStore) Close(context.Context) error {
	qs.client.CloseIdleConnections()
	return nil
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qdrant: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, qs.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("qdrant: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		req.Header.Set("api-key", qs.apiKey)
	}
	resp, err := qs.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env qdrantEnvelope[json.RawMessage]
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if env.Status.Error != "" {
			return errors.New(env.Status.Error)
		}
		return fmt.Errorf("qdrant: http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return nil
}

var (
	_ VectorStore       = (*QdrantStore)(nil)
	_ SchemaInitializer = (*QdrantStore)(nil)
)
