package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Protocol-Lattice/go-assistant/src/memory/model"
)

// MongoStore implements VectorStore on a MongoDB collection. Similarity is
// scored client-side; suitable for modest corpora without a vector index.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

const mongoCloseTimeout = 5 * time.Second

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

type mongoRecord struct {
	ID        int64             `bson:"record_id"`
	Key       string            `bson:"key"`
	Content   string            `bson:"content"`
	Metadata  map[string]string `bson:"metadata,omitempty"`
	Embedding []float32         `bson:"embedding"`
	CreatedAt time.Time         `bson:"created_at"`
}

func (ms *MongoStore) Store(ctx context.Context, key, content string, metadata map[string]string, embedding []float32) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	_, err := ms.collection.InsertOne(ctx, mongoRecord{
		ID:        time.Now().UnixNano(),
		Key:       key,
		Content:   content,
		Metadata:  metadata,
		Embedding: append([]float32(nil), embedding...),
		CreatedAt: time.Now().UTC(),
	})
	return err
}

func (ms *MongoStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Record, error) {
	if ms == nil || ms.collection == nil || limit <= 0 {
		return nil, nil
	}
	cursor, err := ms.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scored []model.Record
	for cursor.Next(ctx) {
		var doc mongoRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		scored = append(scored, model.Record{
			ID:        doc.ID,
			Key:       doc.Key,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
			CreatedAt: doc.CreatedAt,
			Score:     model.CosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	rankByScore(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (ms *MongoStore) Count(ctx context.Context) (int, error) {
	if ms == nil || ms.collection == nil {
		return 0, nil
	}
	n, err := ms.collection.CountDocuments(ctx, bson.D{})
	return int(n), err
}

func (ms *MongoStore) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

var _ VectorStore = (*MongoStore)(nil)
