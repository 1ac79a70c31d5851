package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoWriteTimeout = 5 * time.Second

// MongoSink persists audit events to a MongoDB collection.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewMongoSink(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("audit: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("audit: ping mongo: %w", err)
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}, nil
}

func (s *MongoSink) Record(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, mongoWriteTimeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, ev); err != nil {
		s.logger.Warn("audit write failed", "event", ev.Type, "error", err)
	}
}

func (s *MongoSink) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mongoWriteTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
