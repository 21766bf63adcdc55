package index

import "github.com/starford/partitura/internal/models"

// ScoreIndex defines the score indexing operations. Consumers should depend
// on this interface rather than the concrete *DB type.
type ScoreIndex interface {
	UpsertScore(row models.ScoreSummary, diags []models.Diagnostic) error
	DeleteScore(path string) error
	GetChecksum(path string) (string, error)
	GetScore(path string) (*models.ScoreSummary, error)
	ListScores(limit, offset int, composer, sort string) ([]models.ScoreSummary, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Diagnostics(path string) ([]models.Diagnostic, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ ScoreIndex = (*DB)(nil)
