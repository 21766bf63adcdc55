package api

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

const defaultMaxUpload = 20 << 20 // 20 MB

// uploadPath validates the target path of an upload: a relative slash path
// with no traversal. An empty path falls back to the uploaded file name.
func uploadPath(target, filename string) (string, error) {
	if target == "" {
		target = path.Base(strings.ReplaceAll(filename, `\`, "/"))
	}
	if target == "" || target == "." || target == "/" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := path.Clean(strings.ReplaceAll(target, `\`, "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid path: %s", target)
	}
	return cleaned, nil
}

// UploadScore handles POST /api/scores (multipart/form-data, field "file",
// optional field "path").
//
//	@Summary		Upload a MusicXML or compressed .mxl score
//	@Tags			scores
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Score document"
//	@Param			path	formData	string	false	"Library path (defaults to the file name)"
//	@Success		201		{object}	ScoreDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scores [post]
func (h *Handler) UploadScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	p, err := uploadPath(r.FormValue("path"), header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	d, err := h.svc.CreateScore(r.Context(), p, data)
	if err != nil {
		writeServiceError(w, "create score", p, err)
		return
	}
	w.Header().Set("ETag", etag(d.Checksum))
	writeJSON(w, http.StatusCreated, d)
}
