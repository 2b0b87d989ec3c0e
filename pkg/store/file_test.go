package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runStoreTests(t, s)
}

func TestFileStoreLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "graphs")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, "crypt", sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "crypt.json")); err != nil {
		t.Errorf("expected crypt.json in %s: %v", dir, err)
	}

	// Stray files are not graphs.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0o755)
	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "crypt" {
		t.Errorf("List() = %v, want [crypt]", names)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"nodes": [`), 0o644)

	_, err := s.Load(context.Background(), "broken")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load(broken) error = %v, want decode error", err)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	got, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/data", "roomgraph", "graphs"); got != want {
		t.Errorf("DefaultDir() = %s, want %s", got, want)
	}
}
