package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultConnectTimeout = 10 * time.Second

// ConnectOptions describes the shop database. Zero pool sizes leave the
// driver defaults in place.
type ConnectOptions struct {
	URI            string
	Database       string
	AppName        string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// ConnectMongoDB dials the cluster and returns the shop database once the
// primary answers a ping.
func ConnectMongoDB(ctx context.Context, o ConnectOptions) (*mongo.Database, error) {
	if o.Database == "" {
		return nil, errors.New("mongo database name is required")
	}
	timeout := o.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	clientOpts := options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		// nested caller documents come back as maps so they render as JSON objects
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if o.AppName != "" {
		clientOpts.SetAppName(o.AppName)
	}
	if o.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(o.MaxPoolSize)
	}
	if o.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(o.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(o.Database), nil
}
