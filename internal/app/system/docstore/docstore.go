// Package docstore opens the document store the application runs on.
//
// Two backends share one interface (lungo's IClient/IDatabase):
//   - "mongo": a MongoDB deployment reached through the official driver.
//   - "memory": lungo's in-process engine, used for local development and tests.
//
// Stores only ever see lungo.IDatabase, so both backends behave the same to them.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config selects and tunes the backend.
type Config struct {
	Backend        string
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// Store owns the client and, for the memory backend, the engine.
type Store struct {
	client  lungo.IClient
	engine  *lungo.Engine
	db      lungo.IDatabase
	backend string
}

// Open connects to the configured backend and verifies it with a ping.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, fmt.Errorf("docstore: database name is required")
	}

	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		client, engine, err := lungo.Open(ctx, lungo.Options{Store: lungo.NewMemoryStore()})
		if err != nil {
			return nil, fmt.Errorf("docstore: open memory engine: %w", err)
		}
		logger.Info("document store opened", zap.String("backend", BackendMemory), zap.String("database", cfg.Database))
		return &Store{client: client, engine: engine, db: client.Database(cfg.Database), backend: BackendMemory}, nil

	case BackendMongo, "":
		if err := wafflemongo.ValidateURI(cfg.URI); err != nil {
			return nil, fmt.Errorf("docstore: %w", err)
		}
		opts := options.Client().ApplyURI(cfg.URI)
		if cfg.MaxPoolSize > 0 {
			opts.SetMaxPoolSize(cfg.MaxPoolSize)
		}
		if cfg.MinPoolSize > 0 {
			opts.SetMinPoolSize(cfg.MinPoolSize)
		}
		if cfg.ConnectTimeout > 0 {
			opts.SetConnectTimeout(cfg.ConnectTimeout)
		}
		client, err := lungo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("docstore: connect: %w", err)
		}
		s := &Store{client: client, db: client.Database(cfg.Database), backend: BackendMongo}
		if err := s.Ping(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("docstore: ping: %w", err)
		}
		logger.Info("document store connected",
			zap.String("backend", BackendMongo),
			zap.String("database", cfg.Database),
			zap.Uint64("max_pool", cfg.MaxPoolSize))
		return s, nil

	default:
		return nil, fmt.Errorf("docstore: unknown backend %q", cfg.Backend)
	}
}

// DB returns the application database.
func (s *Store) DB() lungo.IDatabase { return s.db }

// Client returns the underlying client.
func (s *Store) Client() lungo.IClient { return s.client }

// Backend reports which backend is in use.
func (s *Store) Backend() string { return s.backend }

// Ping checks that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client and stops the memory engine if one is running.
func (s *Store) Close(ctx context.Context) error {
	err := s.client.Disconnect(ctx)
	if s.engine != nil {
		s.engine.Close()
	}
	return err
}
