// Package testutil provides shared helpers for package tests: an isolated
// in-memory database per test, fixtures, and request helpers for handlers.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/256dpi/lungo"
)

// TestTimeout bounds every test context.
const TestTimeout = 10 * time.Second

// SetupTestDB opens a fresh lungo memory engine and returns its database.
// The engine is closed when the test finishes, so tests never share state.
func SetupTestDB(t *testing.T) lungo.IDatabase {
	t.Helper()

	client, engine, err := lungo.Open(context.Background(), lungo.Options{
		Store: lungo.NewMemoryStore(),
	})
	if err != nil {
		t.Fatalf("failed to open test engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return client.Database("hotspot_test")
}

// TestContext returns a context bounded by TestTimeout.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), TestTimeout)
}
