// Package store persists room graphs under human-chosen names.
//
// Backends share the [Store] interface and exchange graphs as
// [roomgraph.Snapshot] values, so none of them needs a type registry:
// restoring (and therefore validating) a loaded snapshot is the caller's
// job. Implementations:
//   - [MemoryStore]: process-local map, for tests and the default server
//   - [FileStore]: one JSON document per graph in a directory (CLI default)
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: Redis, for servers sharing state across instances
//   - [MongoStore]: MongoDB, one BSON document per graph
//
// Use [Open] to construct a backend from configuration, and [Instrument]
// to report operations to the registered observability hooks.
//
// # Names
//
// Every method validates the graph name with
// [github.com/matzehuels/roomgraph/pkg/errors.ValidateGraphName] before
// touching the backend, so names are always safe as file names and keys.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// ErrNotFound is returned when no graph is stored under a name.
var ErrNotFound = errors.New("graph not found")

// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is the interface for graph storage backends.
type Store interface {
	// Load returns the snapshot stored under name, or ErrNotFound.
	Load(ctx context.Context, name string) (roomgraph.Snapshot, error)

	// Save stores s under name, replacing any previous graph.
	Save(ctx context.Context, name string, s roomgraph.Snapshot) error

	// Delete removes the graph stored under name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// List returns all stored names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the names accepted by [Open].
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendMongo}
}

// Config selects and locates a backend.
type Config struct {
	// Backend is one of the Backend* constants.
	Backend string
	// URL locates the data: a directory for file, a database path for
	// sqlite, a redis:// URL for redis and a mongodb:// URL for mongo.
	// Ignored by memory.
	URL string
}

// Open constructs the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(cfg.URL)
	case BackendSQLite:
		return NewSQLiteStore(cfg.URL)
	case BackendRedis:
		return OpenRedis(ctx, cfg.URL)
	case BackendMongo:
		return OpenMongo(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, cfg.Backend, strings.Join(Backends(), ", "))
	}
}

func checkName(name string) error {
	return rgerrors.ValidateGraphName(name)
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func cloneSnapshot(s roomgraph.Snapshot) roomgraph.Snapshot {
	out := s
	out.Nodes = make([]roomgraph.NodeRecord, len(s.Nodes))
	for i, n := range s.Nodes {
		out.Nodes[i] = roomgraph.NodeRecord{
			ID:           n.ID,
			Type:         n.Type,
			ParentIDs:    slices.Clone(n.ParentIDs),
			ChildIDs:     slices.Clone(n.ChildIDs),
			Presentation: slices.Clone(n.Presentation),
		}
	}
	return out
}
