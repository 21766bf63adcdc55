// Package testutil provides shared test helpers for setting up libraries and
// databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/partitura/internal/index"
	"github.com/starford/partitura/internal/storage"
	"github.com/starford/partitura/internal/testutil/fixture"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "partitura-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with a storage.Provider.
func TestLibrary(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteSample writes fixture.Sample(title, composer) to rel under dir and
// returns the document bytes.
func WriteSample(t *testing.T, dir, rel, title, composer string) []byte {
	t.Helper()
	data := []byte(fixture.Sample(title, composer))
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return data
}
