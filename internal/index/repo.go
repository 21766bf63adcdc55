package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/partitura/internal/apperr"
	"github.com/starford/partitura/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Composer string `json:"composer"`
	Snippet  string `json:"snippet"`
}

var sortClauses = map[string]string{
	"title":      "title COLLATE NOCASE ASC, path ASC",
	"composer":   "composer COLLATE NOCASE ASC, title COLLATE NOCASE ASC",
	"path":       "path ASC",
	"updated_at": "updated_at DESC, path ASC",
}

const scoreColumns = `path, title, composer, copyright, checksum, part_names,
	parts, measures, notes, rests, warnings, updated_at`

// UpsertScore replaces a score row, its FTS entry and its diagnostics within
// a transaction.
func (db *DB) UpsertScore(row models.ScoreSummary, diags []models.Diagnostic) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	names := row.PartNames
	if names == nil {
		names = []string{}
	}
	namesJSON, _ := json.Marshal(names)

	_, err = tx.Exec(`
		INSERT INTO scores (`+scoreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			composer   = excluded.composer,
			copyright  = excluded.copyright,
			checksum   = excluded.checksum,
			part_names = excluded.part_names,
			parts      = excluded.parts,
			measures   = excluded.measures,
			notes      = excluded.notes,
			rests      = excluded.rests,
			warnings   = excluded.warnings,
			updated_at = excluded.updated_at
	`, row.Path, row.Title, row.Composer, row.Copyright, row.Checksum, string(namesJSON),
		row.Parts, row.Measures, row.Notes, row.Rests, row.Warnings, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert score: %w", err)
	}

	if err := ftsUpsert(tx, row.Path, row.Title, row.Composer, names); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM diagnostics WHERE path = ?`, row.Path)
	if len(diags) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO diagnostics (path, code, message, part, measure) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare diagnostic insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range diags {
			if _, err := stmt.Exec(row.Path, d.Code, d.Message, d.Part, d.Measure); err != nil {
				return fmt.Errorf("index: insert diagnostic: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteScore removes a score, its FTS entry and its diagnostics.
func (db *DB) DeleteScore(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM diagnostics WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM scores WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a score, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM scores WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetScore returns one indexed score or apperr.ErrNotFound.
func (db *DB) GetScore(path string) (*models.ScoreSummary, error) {
	row := db.conn.QueryRow(`SELECT `+scoreColumns+` FROM scores WHERE path = ?`, path)
	s, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get score: %w", err)
	}
	return s, nil
}

// ListScores returns one page of scores and the total number matching.
// composer filters by exact composer when non-empty; sort is one of title,
// composer, path or updated_at (the default, newest first).
func (db *DB) ListScores(limit, offset int, composer, sort string) ([]models.ScoreSummary, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)
	order, ok := sortClauses[sort]
	if !ok {
		order = sortClauses["updated_at"]
	}

	where := ""
	var args []any
	if composer != "" {
		where = " WHERE composer = ?"
		args = append(args, composer)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM scores`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count scores: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+scoreColumns+` FROM scores`+where+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list scores: %w", err)
	}
	defer rows.Close()

	out := []models.ScoreSummary{}
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

// Diagnostics returns the import problems recorded for a score in the order
// the importer reported them.
func (db *DB) Diagnostics(path string) ([]models.Diagnostic, error) {
	rows, err := db.conn.Query(`
		SELECT code, message, part, measure
		FROM diagnostics
		WHERE path = ?
		ORDER BY rowid
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: diagnostics: %w", err)
	}
	defer rows.Close()

	out := []models.Diagnostic{}
	for rows.Next() {
		var d models.Diagnostic
		if err := rows.Scan(&d.Code, &d.Message, &d.Part, &d.Measure); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed score path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM scores`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums maps every indexed path to its stored checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM scores`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScore(sc scanner) (*models.ScoreSummary, error) {
	var s models.ScoreSummary
	var names string
	err := sc.Scan(&s.Path, &s.Title, &s.Composer, &s.Copyright, &s.Checksum, &names,
		&s.Parts, &s.Measures, &s.Notes, &s.Rests, &s.Warnings, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(names), &s.PartNames); err != nil || s.PartNames == nil {
		s.PartNames = []string{}
	}
	return &s, nil
}
