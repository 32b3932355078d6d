package cache

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "cache_entries"

// MongoCache stores entries as documents in a single collection. A TTL
// index on expires_at lets MongoDB reap expired entries; reads also check
// expiry because the reaper runs only periodically.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

// MongoOptions configures the MongoDB backend.
type MongoOptions struct {
	URI      string
	Database string // Defaults to "changetower"
}

func (o MongoOptions) database() string {
	if o.Database == "" {
		return "changetower"
	}
	return o.Database
}

func connectMongo(ctx context.Context, opts MongoOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// NewMongoCache connects to MongoDB and ensures the TTL index exists.
func NewMongoCache(ctx context.Context, opts MongoOptions) (*MongoCache, error) {
	client, err := connectMongo(ctx, opts)
	if err != nil {
		return nil, err
	}
	coll := client.Database(opts.database()).Collection(mongoCollection)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoCache{client: client, coll: coll}, nil
}

// Get retrieves a value from the cache.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set upserts a value.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	return err
}

// Delete removes a value from the cache.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Clear removes all documents whose key starts with prefix.
func (c *MongoCache) Clear(ctx context.Context, prefix string) error {
	filter := bson.M{}
	if prefix != "" {
		filter = bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	}
	_, err := c.coll.DeleteMany(ctx, filter)
	return err
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// MongoBackend returns an [Opener] for a [MongoCache]. Recreate drops the
// cache collection.
func MongoBackend(opts MongoOptions) Opener { return mongoOpener{opts: opts} }

type mongoOpener struct{ opts MongoOptions }

func (o mongoOpener) Name() string { return "mongo" }

func (o mongoOpener) Open(ctx context.Context) (Cache, error) {
	return NewMongoCache(ctx, o.opts)
}

func (o mongoOpener) Recreate(ctx context.Context) error {
	client, err := connectMongo(ctx, o.opts)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)
	return client.Database(o.opts.database()).Collection(mongoCollection).Drop(ctx)
}

var _ Cache = (*MongoCache)(nil)
