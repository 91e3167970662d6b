package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/jsc/internal/estree"
)

// ProgramJSON encodes a Program of body as the JSON an external parser
// would produce.
func ProgramJSON(t testing.TB, body ...*estree.Node) []byte {
	t.Helper()
	data, err := json.Marshal(estree.Program(body...))
	if err != nil {
		t.Fatalf("encode program: %v", err)
	}
	return data
}

// WriteFiles creates files under dir, making parent directories as needed,
// and returns dir.
func WriteFiles(t testing.TB, dir string, files map[string][]byte) string {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
