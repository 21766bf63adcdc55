// Package scoreservice coordinates the library store, the importer and the
// index for the transports.
package scoreservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/starford/partitura/internal/apperr"
	"github.com/starford/partitura/internal/index"
	"github.com/starford/partitura/internal/midi"
	"github.com/starford/partitura/internal/models"
	"github.com/starford/partitura/internal/musicxml"
	"github.com/starford/partitura/internal/score"
	"github.com/starford/partitura/internal/storage"
)

// ScoreDetail is an indexed score with its import diagnostics.
type ScoreDetail struct {
	models.ScoreSummary
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

// ScoreModel is the full imported model of one file.
type ScoreModel struct {
	Path        string               `json:"path"`
	Checksum    string               `json:"checksum"`
	Score       *score.Score         `json:"score"`
	Diagnostics musicxml.Diagnostics `json:"diagnostics"`
}

// MeasureView is a single measure of one part.
type MeasureView struct {
	Path    string         `json:"path"`
	Part    string         `json:"part"`
	Measure *score.Measure `json:"measure"`
}

// Options tunes import acceptance and MIDI rendering.
type Options struct {
	// MaxFileSize rejects larger uploads; zero means no limit.
	MaxFileSize    int64
	// FailOnWarnings rejects writes whose import reports any diagnostic.
	FailOnWarnings bool
	MIDI           midi.Options
	// OnChange, if set, is told about every write and delete made through
	// the service. kind is created, updated or deleted.
	OnChange func(kind, path string)
}

// Service coordinates storage, import and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
	im    *musicxml.Importer
	opts  Options
}

// NewService creates a new score service.
func NewService(store storage.Provider, db *index.DB, im *musicxml.Importer, opts Options) *Service {
	return &Service{store: store, db: db, im: im, opts: opts}
}

// GetScore returns the indexed summary and diagnostics. A file present on
// disk but missing from the index is imported on demand.
func (s *Service) GetScore(_ context.Context, path string) (*ScoreDetail, error) {
	sum, err := s.db.GetScore(path)
	if errors.Is(err, apperr.ErrNotFound) {
		data, readErr := s.read(path)
		if readErr != nil {
			return nil, readErr
		}
		if err := s.IndexFile(path, data); err != nil {
			return nil, err
		}
		sum, err = s.db.GetScore(path)
	}
	if err != nil {
		return nil, err
	}
	diags, err := s.db.Diagnostics(path)
	if err != nil {
		return nil, err
	}
	return &ScoreDetail{ScoreSummary: *sum, Diagnostics: diags}, nil
}

// GetScoreModel imports the file and returns the complete model.
func (s *Service) GetScoreModel(_ context.Context, path string) (*ScoreModel, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	sc, diags, err := s.im.ImportBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidScore, err)
	}
	if diags == nil {
		diags = musicxml.Diagnostics{}
	}
	return &ScoreModel{Path: path, Checksum: storage.Checksum(data), Score: sc, Diagnostics: diags}, nil
}

// GetMeasure returns measure number of part partID.
func (s *Service) GetMeasure(ctx context.Context, path, partID, number string) (*MeasureView, error) {
	m, err := s.GetScoreModel(ctx, path)
	if err != nil {
		return nil, err
	}
	p := m.Score.Part(partID)
	if p == nil {
		return nil, fmt.Errorf("%w: part %q", apperr.ErrNotFound, partID)
	}
	ms := p.Measure(number)
	if ms == nil {
		return nil, fmt.Errorf("%w: measure %q of part %q", apperr.ErrNotFound, number, partID)
	}
	return &MeasureView{Path: path, Part: partID, Measure: ms}, nil
}

// CreateScore validates, writes and indexes a new score file.
func (s *Service) CreateScore(_ context.Context, path string, data []byte) (*ScoreDetail, error) {
	if !storage.IsScoreFile(path) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedFormat, path)
	}
	if _, err := s.store.Stat(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	d, err := s.write(path, data)
	if err != nil {
		return nil, err
	}
	s.notify("created", path)
	return d, nil
}

// UpdateScore replaces a score with optimistic concurrency: a non-empty
// ifMatch must equal the current checksum.
func (s *Service) UpdateScore(_ context.Context, path string, data []byte, ifMatch string) (*ScoreDetail, error) {
	existing, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != storage.Checksum(existing) {
		return nil, apperr.ErrConflict
	}
	d, err := s.write(path, data)
	if err != nil {
		return nil, err
	}
	s.notify("updated", path)
	return d, nil
}

// DeleteScore removes a score from storage and index.
func (s *Service) DeleteScore(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteScore(path); err != nil {
		return err
	}
	s.notify("deleted", path)
	return nil
}

// ListScores returns paginated summaries with an optional composer filter.
func (s *Service) ListScores(_ context.Context, limit, offset int, composer, sort string) ([]models.ScoreSummary, int, error) {
	return s.db.ListScores(limit, offset, composer, sort)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// RenderMIDI imports path and writes it to w as a Standard MIDI File.
func (s *Service) RenderMIDI(ctx context.Context, path string, w io.Writer) error {
	m, err := s.GetScoreModel(ctx, path)
	if err != nil {
		return err
	}
	return midi.Write(w, m.Score, s.opts.MIDI)
}

// IndexFile imports data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	return index.IndexFile(s.db, s.im, path, data)
}

func (s *Service) notify(kind, path string) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(kind, path)
	}
}

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// write imports data first so that unusable files never reach the library.
func (s *Service) write(path string, data []byte) (*ScoreDetail, error) {
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", apperr.ErrTooLarge, len(data), s.opts.MaxFileSize)
	}
	sc, diags, err := s.im.ImportBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidScore, err)
	}
	if s.opts.FailOnWarnings && len(diags) > 0 {
		return nil, fmt.Errorf("%w: %d import warnings, first: %s", apperr.ErrInvalidScore, len(diags), diags[0])
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	row, rows := index.Summarize(path, data, sc, diags, nil)
	if err := s.db.UpsertScore(row, rows); err != nil {
		return nil, err
	}
	return &ScoreDetail{ScoreSummary: row, Diagnostics: rows}, nil
}
