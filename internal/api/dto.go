package api

import (
	"github.com/starford/partitura/internal/index"
	"github.com/starford/partitura/internal/models"
	"github.com/starford/partitura/internal/scoreservice"
)

// ScoreDetail is the summary response for a single score (aliased from the
// domain layer).
type ScoreDetail = scoreservice.ScoreDetail

// ScoreModel is the full model response (aliased from the domain layer).
type ScoreModel = scoreservice.ScoreModel

// MeasureView is the single-measure response (aliased from the domain layer).
type MeasureView = scoreservice.MeasureView

// ScoreListResponse wraps paginated score listings.
type ScoreListResponse struct {
	Scores []models.ScoreSummary `json:"scores" validate:"required"`
	Total  int                   `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
