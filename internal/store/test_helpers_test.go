package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/jsc/internal/testutil"
)

// createTestStore creates a fresh store with deterministic ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("build")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestKey builds a key over a single input.
func createTestKey(format, source string) Key {
	return Key{
		Format:  format,
		Options: map[string]any{"platform": []string{"std"}},
		Inputs:  []Input{{Name: "main.json", Hash: source}},
	}
}
