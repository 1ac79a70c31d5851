package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	neo4j "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// Neo4jStore implements VectorStore on a Neo4j graph. Records become
// (:Context) nodes keyed by source; similarity is scored client-side over
// the candidate set, which keeps the Cypher portable across server editions.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jStore(ctx context.Context, uri, username, password, database string) (*Neo4jStore, error) {
	if uri == "" {
		return nil, errors.New("neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

func (ns *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return ns.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: ns.database,
		AccessMode:   mode,
	})
}

func (ns *Neo4jStore) Store(ctx context.Context, key, content string, metadata map[string]string, embedding []float32) error {
	if ns == nil || ns.driver == nil {
		return nil
	}
	session := ns.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	emb := make([]float64, len(embedding))
	for i, v := range embedding {
		emb[i] = float64(v)
	}
	meta := map[string]any{}
	for k, v := range metadata {
		meta[k] = v
	}

	_, err := session.Run(ctx, `
		CREATE (c:Context {
			record_id: timestamp(),
			key: $key,
			content: $content,
			metadata: $metadata,
			embedding: $embedding,
			created_at: datetime()
		})`,
		map[string]any{
			"key":       key,
			"content":   content,
			"metadata":  meta,
			"embedding": emb,
		})
	if err != nil {
		return fmt.Errorf("store context node: %w", err)
	}
	return nil
}

func (ns *Neo4jStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Record, error) {
	if ns == nil || ns.driver == nil || limit <= 0 {
		return nil, nil
	}
	session := ns.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Context)
		RETURN c.record_id AS id, c.key AS key, c.content AS content, c.embedding AS embedding`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("search context nodes: %w", err)
	}

	var scored []model.Record
	for result.Next(ctx) {
		rec := result.Record()
		scored = append(scored, recordFromNeo4j(rec, queryEmbedding))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	rankByScore(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func recordFromNeo4j(rec *neo4j.Record, queryEmbedding []float32) model.Record {
	out := model.Record{CreatedAt: time.Time{}}
	if v, ok := rec.Get("id"); ok {
		if id, ok := v.(int64); ok {
			out.ID = id
		}
	}
	if v, ok := rec.Get("key"); ok {
		if key, ok := v.(string); ok {
			out.Key = key
		}
	}
	if v, ok := rec.Get("content"); ok {
		if content, ok := v.(string); ok {
			out.Content = content
		}
	}
	if v, ok := rec.Get("embedding"); ok {
		if raw, ok := v.([]any); ok {
			emb := make([]float32, 0, len(raw))
			for _, f := range raw {
				if fv, ok := f.(float64); ok {
					emb = append(emb, float32(fv))
				}
			}
			out.Embedding = emb
		}
	}
	out.Score = model.CosineSimilarity(queryEmbedding, out.Embedding)
	return out
}

func (ns *Neo4jStore) Count(ctx context.Context) (int, error) {
	if ns == nil || ns.driver == nil {
		return 0, nil
	}
	session := ns.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (c:Context) RETURN count(c) AS n`, nil)
	if err != nil {
		return 0, err
	}
	if result.Next(ctx) {
		if v, ok := result.Record().Get("n"); ok {
			if n, ok := v.(int64); ok {
				return int(n), nil
			}
		}
	}
	return 0, result.Err()
}

func (ns *Neo4jStore) Close(ctx context.Context) error {
	if ns == nil || ns.driver == nil {
		return nil
	}
	return ns.driver.Close(ctx)
}

var _ VectorStore = (*Neo4jStore)(nil)
