// Package storage reads and writes score files under the library directory.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/partitura/internal/models"
)

// Provider is the interface for library file operations. Paths are relative
// to the library root.
type Provider interface {
	// List returns metadata for every score file under dir.
	List(dir string) ([]models.ScoreFile, error)
	Stat(path string) (models.ScoreFile, error)
	Read(path string) ([]byte, error)
	// Write replaces path atomically, creating parent directories.
	Write(path string, content []byte) error
	Delete(path string) error
	Move(oldPath, newPath string) error
}

var _ Provider = (*FS)(nil)

var scoreExtensions = map[string]bool{
	".xml":      true,
	".musicxml": true,
	".mxl":      true,
}

// IsScoreFile reports whether name carries a MusicXML extension.
func IsScoreFile(name string) bool {
	return scoreExtensions[strings.ToLower(filepath.Ext(name))]
}
