package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	"github.com/matzehuels/roomgraph/pkg/observability"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

func sampleSnapshot() roomgraph.Snapshot {
	return roomgraph.Snapshot{
		EntranceID:        "e",
		MaxChildCorridors: 3,
		Nodes: []roomgraph.NodeRecord{
			{ID: "e", Type: "Entrance", ChildIDs: []string{"c"}},
			{ID: "c", Type: "Corridor", ParentIDs: []string{"e"}, ChildIDs: []string{"b"}},
			{ID: "b", Type: "BossRoom", ParentIDs: []string{"c"}, Presentation: json.RawMessage(`{"x":1}`)},
		},
	}
}

// runStoreTests runs the shared behavior suite against a Store implementation.
func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		want := sampleSnapshot()
		if err := s.Save(ctx, "crypt", want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load(ctx, "crypt")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.EntranceID != want.EntranceID || got.MaxChildCorridors != want.MaxChildCorridors {
			t.Errorf("header = %+v, want %+v", got, want)
		}
		if len(got.Nodes) != len(want.Nodes) {
			t.Fatalf("got %d nodes, want %d", len(got.Nodes), len(want.Nodes))
		}
		for i := range want.Nodes {
			g, w := got.Nodes[i], want.Nodes[i]
			if g.ID != w.ID || g.Type != w.Type ||
				!slices.Equal(g.ParentIDs, w.ParentIDs) || !slices.Equal(g.ChildIDs, w.ChildIDs) {
				t.Errorf("node %d = %+v, want %+v", i, g, w)
			}
		}
		if _, err := roomgraph.Restore(nil, got); err != nil {
			t.Errorf("loaded snapshot does not restore: %v", err)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.Save(ctx, "crypt", roomgraph.Snapshot{}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load(ctx, "crypt")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got.Nodes) != 0 {
			t.Errorf("got %d nodes after overwrite, want 0", len(got.Nodes))
		}
	})

	t.Run("list", func(t *testing.T) {
		for _, name := range []string{"zeta", "alpha"} {
			if err := s.Save(ctx, name, sampleSnapshot()); err != nil {
				t.Fatalf("Save(%s): %v", name, err)
			}
		}
		names, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []string{"alpha", "crypt", "zeta"}
		if !slices.Equal(names, want) {
			t.Errorf("List() = %v, want %v", names, want)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "zeta"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Load(ctx, "zeta"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load after Delete error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "zeta"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := s.Load(ctx, "nowhere"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		for _, name := range []string{"", "../escape", "a/b"} {
			if err := s.Save(ctx, name, sampleSnapshot()); !rgerrors.Is(err, rgerrors.ErrCodeInvalidName) {
				t.Errorf("Save(%q) error = %v, want INVALID_NAME", name, err)
			}
			if _, err := s.Load(ctx, name); !rgerrors.Is(err, rgerrors.ErrCodeInvalidName) {
				t.Errorf("Load(%q) error = %v, want INVALID_NAME", name, err)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	snap := sampleSnapshot()
	if err := s.Save(ctx, "crypt", snap); err != nil {
		t.Fatal(err)
	}
	snap.Nodes[0].ChildIDs[0] = "mutated"

	got, _ := s.Load(ctx, "crypt")
	if got.Nodes[0].ChildIDs[0] != "c" {
		t.Error("MemoryStore kept a reference to the saved snapshot")
	}
	got.Nodes[1].Type = "mutated"
	again, _ := s.Load(ctx, "crypt")
	if again.Nodes[1].Type != "Corridor" {
		t.Error("MemoryStore returned a shared snapshot")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		cfg     Config
		want    string
		wantErr error
	}{
		{cfg: Config{Backend: "memory"}, want: "*store.MemoryStore"},
		{cfg: Config{Backend: "file", URL: t.TempDir()}, want: "*store.FileStore"},
		{cfg: Config{Backend: "SQLite", URL: t.TempDir() + "/graphs.db"}, want: "*store.SQLiteStore"},
		{cfg: Config{Backend: "etcd"}, wantErr: ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Backend, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()
			if got := typeName(s); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*store.MemoryStore"
	case *FileStore:
		return "*store.FileStore"
	case *SQLiteStore:
		return "*store.SQLiteStore"
	case *RedisStore:
		return "*store.RedisStore"
	case *MongoStore:
		return "*store.MongoStore"
	}
	return "unknown"
}

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	loads, saves, deletes int
	lastErr               error
}

func (h *recordingStoreHooks) OnLoad(_ context.Context, _, _ string, _ time.Duration, err error) {
	h.loads++
	h.lastErr = err
}

func (h *recordingStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {
	h.saves++
}

func (h *recordingStoreHooks) OnDelete(context.Context, string, string, error) {
	h.deletes++
}

func TestInstrument(t *testing.T) {
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s := Instrument(NewMemoryStore(), BackendMemory)
	_ = s.Save(ctx, "crypt", sampleSnapshot())
	_, _ = s.Load(ctx, "crypt")
	_, _ = s.Load(ctx, "missing")
	_ = s.Delete(ctx, "crypt")

	if hooks.saves != 1 || hooks.loads != 2 || hooks.deletes != 1 {
		t.Errorf("hooks saw saves=%d loads=%d deletes=%d, want 1 2 1", hooks.saves, hooks.loads, hooks.deletes)
	}
	if !errors.Is(hooks.lastErr, ErrNotFound) {
		t.Errorf("last load error = %v, want ErrNotFound", hooks.lastErr)
	}
	if names, _ := s.List(ctx); len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}
