package index

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/partitura/internal/models"
	"github.com/starford/partitura/internal/musicxml"
	"github.com/starford/partitura/internal/score"
	"github.com/starford/partitura/internal/storage"
)

// Summarize builds the index row and diagnostics for one import. When
// importErr is set the row carries only the path, checksum and a fatal
// diagnostic.
func Summarize(p string, data []byte, s *score.Score, diags musicxml.Diagnostics, importErr error) (models.ScoreSummary, []models.Diagnostic) {
	row := models.ScoreSummary{
		Path:      p,
		Checksum:  storage.Checksum(data),
		PartNames: []string{},
		UpdatedAt: time.Now().UTC(),
	}
	out := make([]models.Diagnostic, 0, len(diags)+1)
	for _, d := range diags {
		out = append(out, models.Diagnostic{Code: string(d.Code), Message: d.Message, Part: d.Part, Measure: d.Measure})
	}
	if importErr != nil || s == nil {
		msg := "import failed"
		if importErr != nil {
			msg = importErr.Error()
		}
		row.Title = strings.TrimSuffix(path.Base(p), path.Ext(p))
		out = append(out, models.Diagnostic{Code: models.DiagnosticFatal, Message: msg})
		row.Warnings = len(out)
		return row, out
	}

	st := s.Stats()
	row.Title = s.Title
	row.Composer = s.Composer
	row.Copyright = s.Copyright
	row.PartNames = s.PartNames()
	row.Parts = st.Parts
	row.Measures = st.Measures
	row.Notes = st.Notes
	row.Rests = st.Rests
	row.Warnings = len(out)
	return row, out
}

// IndexFile imports data and upserts the result. A file that fails to import
// is still indexed, with a fatal diagnostic explaining why.
func IndexFile(db *DB, im *musicxml.Importer, p string, data []byte) error {
	s, diags, err := im.ImportBytes(p, data)
	row, rows := Summarize(p, data, s, diags, err)
	return db.UpsertScore(row, rows)
}

// Sync walks the library and brings the index up to date: new and changed
// files are imported, rows for files gone from disk are removed.
func Sync(db *DB, store storage.Provider, im *musicxml.Importer, logger *slog.Logger) error {
	return syncLibrary(db, store, im, logger, nil)
}

// syncLibrary is Sync with change notifications, shared with the watcher's
// rename reconciliation.
func syncLibrary(db *DB, store storage.Provider, im *musicxml.Importer, logger *slog.Logger, cb EventCallback) error {
	files, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	notify := func(kind, p string) {
		if cb != nil {
			cb(kind, p)
		}
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		prev, known := checksums[f.Path]
		if prev == f.Checksum {
			continue
		}

		data, err := store.Read(f.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, im, f.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", f.Path))
		if known {
			notify("updated", f.Path)
		} else {
			notify("created", f.Path)
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteScore(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		notify("deleted", p)
	}

	return nil
}
