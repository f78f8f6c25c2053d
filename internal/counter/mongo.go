package counter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultMongoDatabase = "folio"
	mongoCollectionName  = "counters"
)

// mongoCollection is the subset of *mongo.Collection the store uses.
type mongoCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type counterDoc struct {
	Key   string `bson:"_id"`
	Value int64  `bson:"value"`
}

// mongoStore keeps one document per counter key; $inc on a single document is atomic.
type mongoStore struct {
	client *mongo.Client
	coll   mongoCollection
}

func openMongo(ctx context.Context, rawURL, token string) (*mongoStore, error) {
	opts := options.Client().ApplyURI(rawURL)
	if token != "" && opts.Auth != nil && opts.Auth.Username != "" && opts.Auth.Password == "" {
		opts.Auth.Password = token
		opts.Auth.PasswordSet = true
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	return &mongoStore{
		client: client,
		coll:   client.Database(mongoDatabaseName(rawURL)).Collection(mongoCollectionName),
	}, nil
}

func mongoDatabaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDatabase
}

func (s *mongoStore) Get(ctx context.Context, key string) (int64, bool, error) {
	var doc counterDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read counter: %w", err)
	}
	return doc.Value, true, nil
}

func (s *mongoStore) Incr(ctx context.Context, key string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return doc.Value, nil
}

func (s *mongoStore) SeedIfAbsent(ctx context.Context, key string, seed int64) error {
	update := bson.M{"$setOnInsert": bson.M{"value": seed}}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to seed counter: %w", err)
	}
	return nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}
