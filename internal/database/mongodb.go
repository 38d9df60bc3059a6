package database

import (
	"context"
	"fmt"
	"time"

	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the dev backend.
const (
	AdminsCollection   = "admins"
	SessionsCollection = "sessions"
)

const connectAttempts = 5

// Mongo is a connected client plus the configured database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB and pings it, retrying with backoff so the dev
// backend tolerates a database that starts after it.
func Connect(ctx context.Context, cfg config.MongoDBConfig) (*Mongo, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := dial(ctx, cfg.URI, cfg.Timeout)
		if err == nil {
			return &Mongo{Client: client, DB: client.Database(cfg.Database)}, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, connectAttempts, err)
		if attempt == connectAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, lastErr
}

func dial(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
