package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/partitura/internal/index"
	"github.com/starford/partitura/internal/scoreservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc       *scoreservice.Service
	maxUpload int64
}

// NewHandler creates a new Handler.
func NewHandler(svc *scoreservice.Service, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{svc: svc, maxUpload: maxUpload}
}

// scorePath extracts the score path from the URL (everything after /api/scores/).
// Supports encoded slashes from OpenAPI clients (e.g. bach%2Fminuet.xml).
func scorePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListScores handles GET /api/scores.
//
//	@Summary		List scores with optional pagination and filtering
//	@Tags			scores
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			composer	query		string	false	"Filter by composer"
//	@Param			sort		query		string	false	"Sort field"	Enums(updated_at, title, composer, path)
//	@Success		200			{object}	ScoreListResponse
//	@Security		BearerAuth
//	@Router			/scores [get]
func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListScores(r.Context(), limit, offset, q.Get("composer"), q.Get("sort"))
	if err != nil {
		writeServiceError(w, "list scores", "", err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreListResponse{Scores: items, Total: total})
}

// GetScore handles GET /api/scores/*.
//
//	@Summary		Get a score summary, its full model, one measure or a MIDI rendering
//	@Tags			scores
//	@Produce		json
//	@Produce		audio/midi
//	@Param			path	path		string	true	"Score path"
//	@Param			view	query		string	false	"model for the full imported model"	Enums(model)
//	@Param			part	query		string	false	"Part id, with measure"
//	@Param			measure	query		string	false	"Measure number, with part"
//	@Param			format	query		string	false	"midi for a Standard MIDI File"	Enums(midi)
//	@Param			If-None-Match	header	string	false	"ETag from an earlier response"
//	@Success		200		{object}	ScoreDetail
//	@Success		304		"Not modified"
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scores/{path} [get]
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	p := scorePath(r)
	if p == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	q := r.URL.Query()

	switch {
	case q.Get("format") == "midi":
		var buf bytes.Buffer
		if err := h.svc.RenderMIDI(r.Context(), p, &buf); err != nil {
			writeServiceError(w, "render midi", p, err)
			return
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p)) + ".mid"
		w.Header().Set("Content-Type", "audio/midi")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())

	case q.Get("part") != "" || q.Get("measure") != "":
		if q.Get("part") == "" || q.Get("measure") == "" {
			writeError(w, http.StatusBadRequest, "part and measure must be given together")
			return
		}
		view, err := h.svc.GetMeasure(r.Context(), p, q.Get("part"), q.Get("measure"))
		if err != nil {
			writeServiceError(w, "get measure", p, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case q.Get("view") == "model":
		m, err := h.svc.GetScoreModel(r.Context(), p)
		if err != nil {
			writeServiceError(w, "get score model", p, err)
			return
		}
		if notModified(w, r, m.Checksum) {
			return
		}
		writeJSON(w, http.StatusOK, m)

	default:
		d, err := h.svc.GetScore(r.Context(), p)
		if err != nil {
			writeServiceError(w, "get score", p, err)
			return
		}
		if notModified(w, r, d.Checksum) {
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// UpdateScore handles PUT /api/scores/*.
//
//	@Summary		Replace a score document with optimistic concurrency
//	@Tags			scores
//	@Accept			application/vnd.recordare.musicxml+xml
//	@Produce		json
//	@Param			path		path		string	true	"Score path"
//	@Param			If-Match	header		string	false	"SHA-256 checksum for optimistic concurrency"
//	@Success		200			{object}	ScoreDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scores/{path} [put]
func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	p := scorePath(r)
	if p == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "document body is required")
		return
	}

	d, err := h.svc.UpdateScore(r.Context(), p, body, ifMatchChecksum(r))
	if err != nil {
		writeServiceError(w, "update score", p, err)
		return
	}
	w.Header().Set("ETag", etag(d.Checksum))
	writeJSON(w, http.StatusOK, d)
}

// DeleteScore handles DELETE /api/scores/*.
//
//	@Summary		Delete a score
//	@Tags			scores
//	@Param			path	path	string	true	"Score path"
//	@Success		204		"Score deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scores/{path} [delete]
func (h *Handler) DeleteScore(w http.ResponseWriter, r *http.Request) {
	p := scorePath(r)
	if p == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := h.svc.DeleteScore(r.Context(), p); err != nil {
		writeServiceError(w, "delete score", p, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across titles, composers and part names
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", q, err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
