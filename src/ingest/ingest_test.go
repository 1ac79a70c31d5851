package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type recordingIndexer struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingIndexer) Index(_ context.Context, key, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestIngestRepoLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "docs/notes.md", "# notes\n")
	writeFile(t, dir, "image.png", "binary")

	idx := &recordingIndexer{}
	res, err := NewIngestor(nil).IngestRepo(context.Background(), idx, dir)
	if err != nil {
		t.Fatalf("IngestRepo: %v", err)
	}
	if res.FilesIndexed != 2 {
		t.Fatalf("FilesIndexed = %d, want 2 (got keys %v)", res.FilesIndexed, idx.keys)
	}
	if res.FilesSkipped != 1 {
		t.Fatalf("FilesSkipped = %d, want 1 for the png", res.FilesSkipped)
	}
}

func TestIngestRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "*.log\nvendor/\n")
	writeFile(t, dir, "keep.go", "package keep\n")
	writeFile(t, dir, "debug.log", "noise")
	writeFile(t, dir, "vendor/dep.go", "package dep\n")

	idx := &recordingIndexer{}
	res, err := NewIngestor(nil).IngestRepo(context.Background(), idx, dir)
	if err != nil {
		t.Fatalf("IngestRepo: %v", err)
	}
	if res.FilesIndexed != 1 || len(idx.keys) != 1 || idx.keys[0] != "keep.go" {
		t.Fatalf("indexed %v, want just keep.go", idx.keys)
	}
}

func TestIngestSkipsOversizeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.go", "package big\n")

	ig := NewIngestor(nil)
	ig.MaxFileBytes = 4

	idx := &recordingIndexer{}
	res, err := ig.IngestRepo(context.Background(), idx, dir)
	if err != nil {
		t.Fatalf("IngestRepo: %v", err)
	}
	if res.FilesIndexed != 0 || res.FilesSkipped != 1 {
		t.Fatalf("indexed=%d skipped=%d, want 0/1", res.FilesIndexed, res.FilesSkipped)
	}
}
