// Package mongo holds the gateway's MongoDB wiring: connection setup
// and the access-event audit repository. Mongo is not on any navigation
// hot path; it only absorbs the audit trail.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The gateway fails fast at startup: a backend that cannot be reached in
// a few seconds is down, not slow.
const connectTimeout = 5 * time.Second

// Config carries the audit-store connection settings.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect dials the audit store, confirms it answers a ping, and hands
// back the client plus the selected database. Zero or negative Timeout
// falls back to connectTimeout.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("admin-gateway").
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("audit store connect: %w", err)
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(dialCtx)
		return nil, nil, fmt.Errorf("audit store ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
