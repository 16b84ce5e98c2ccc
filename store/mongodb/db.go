// Package mongodb implements the store interfaces over MongoDB.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 10 * time.Second

// DB wraps a connected client with an explicit Open/Close lifecycle so the
// stores can be constructed and torn down deterministically.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to MongoDB and pings it to fail fast on a bad URI.
func Open(ctx context.Context, uri, name string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}
	return &DB{client: client, db: client.Database(name)}, nil
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}
