// Package backend selects a Store implementation from a connection URL.
package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence/memory"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence/mongo"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence/postgres"
)

// Store is a domain.Store with lifecycle hooks.
type Store interface {
	domain.Store
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options tune backend construction.
type Options struct {
	MongoDatabase  string
	ConnectTimeout time.Duration
}

// Open returns the Store for rawURL without connecting; the connection is made on first use.
func Open(rawURL string, opts Options) (Store, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse database url: %w", err)
	}

	switch scheme := strings.ToLower(parsed.Scheme); scheme {
	case "postgres", "postgresql":
		return postgres.NewRepository(rawURL, opts.ConnectTimeout), "postgres", nil
	case "mongodb", "mongodb+srv":
		database := opts.MongoDatabase
		if name := strings.Trim(parsed.Path, "/"); name != "" {
			database = name
		}
		return mongo.NewStore(rawURL, database, opts.ConnectTimeout), "mongodb", nil
	case "memory":
		return memoryStore{memory.NewStore()}, "memory", nil
	default:
		return nil, "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

type memoryStore struct {
	*memory.Store
}

func (memoryStore) Ping(context.Context) error  { return nil }
func (memoryStore) Close(context.Context) error { return nil }
