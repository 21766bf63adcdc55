// Package musicxml imports partwise MusicXML documents, plain or compressed,
// into the score model. Recoverable problems are collected as Diagnostics and
// returned with the score; only unreadable documents fail the import.
package musicxml

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/partitura/internal/score"
)

// Importer converts MusicXML documents into scores. The zero value is ready
// to use; an Importer holds no per-import state and is safe for concurrent use.
type Importer struct {
	logger *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger mirrors every diagnostic to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		im.logger = logger
	}
}

// New returns an Importer configured with opts.
func New(opts ...Option) *Importer {
	im := &Importer{}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import reads and imports the file at path.
func Import(path string, opts ...Option) (*score.Score, Diagnostics, error) {
	return New(opts...).Import(path)
}

// Import reads and imports the file at path.
func (im *Importer) Import(path string) (*score.Score, Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return im.ImportBytes(path, data)
}

// ImportReader imports a document read from r. name is used to recognise
// compressed containers by extension.
func (im *Importer) ImportReader(name string, r io.Reader) (*score.Score, Diagnostics, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	return im.ImportBytes(name, data)
}

// ImportBytes imports an in-memory document.
func (im *Importer) ImportBytes(name string, data []byte) (*score.Score, Diagnostics, error) {
	root, err := parseDocument(name, data)
	if err != nil {
		return nil, nil, err
	}
	b := &builder{rep: &reporter{logger: im.logger}}
	s, err := b.score(root)
	if err != nil {
		return nil, b.rep.list, err
	}
	return s, b.rep.list, nil
}
