package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// PostgresStore implements VectorStore using Postgres + pgvector.
type PostgresStore struct {
	DB        *pgxpool.Pool
	Dimension int
}

// NewPostgresStore connects to Postgres and returns a pgvector-backed store.
func NewPostgresStore(ctx context.Context, connStr string, dimension int) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if dimension <= 0 {
		dimension = 768
	}
	return &PostgresStore{DB: db, Dimension: dimension}, nil
}

// CreateSchema provisions the extension and the context table.
func (ps *PostgresStore) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS context_records (
			id BIGSERIAL PRIMARY KEY,
			key TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, ps.Dimension)
	if _, err := ps.DB.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Store(ctx context.Context, key, content string, metadata map[string]string, embedding []float32) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = ps.DB.Exec(ctx, `
		INSERT INTO context_records (key, content, metadata, embedding)
		VALUES ($1, $2, $3::jsonb, $4);`,
		key, content, metaJSON, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

// Search returns the top-k records by cosine distance.
func (ps *PostgresStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Record, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	rows, err := ps.DB.Query(ctx, `
		SELECT id, key, content, metadata::text, created_at,
		       1 - (embedding <=> $1) AS score
		FROM context_records
		ORDER BY embedding <=> $1
		LIMIT $2;`,
		pgvector.NewVector(queryEmbedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var metaText string
		if err := rows.Scan(&rec.ID, &rec.Key, &rec.Content, &metaText, &rec.CreatedAt, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if metaText != "" {
			_ = json.Unmarshal([]byte(metaText), &rec.Metadata)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	if ps == nil || ps.DB == nil {
		return 0, nil
	}
	var count int
	if err := ps.DB.QueryRow(ctx, `SELECT COUNT(*) FROM context_records;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func (ps *PostgresStore) Close(context.Context) error {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
	return nil
}

var (
	_ VectorStore       = (*PostgresStore)(nil)
	_ SchemaInitializer = (*PostgresStore)(nil)
)
