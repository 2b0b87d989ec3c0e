//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"
)

// Run with: ROOMGRAPH_MONGO_URL=mongodb://localhost:27017 go test -tags integration ./pkg/store
func TestMongoStore(t *testing.T) {
	url := os.Getenv("ROOMGRAPH_MONGO_URL")
	if url == "" {
		t.Skip("ROOMGRAPH_MONGO_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := OpenMongo(ctx, url)
	if err != nil {
		t.Fatalf("OpenMongo: %v", err)
	}
	defer s.Close()
	if _, err := s.coll.DeleteMany(ctx, map[string]any{}); err != nil {
		t.Fatalf("clear collection: %v", err)
	}
	runStoreTests(t, s)
}
