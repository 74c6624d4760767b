package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/V4T54L/brokerdesk/internal/adapter/api/middleware"
	"github.com/V4T54L/brokerdesk/internal/usecase"
)

// multipartOverhead is the slack allowed on top of the file limit for boundaries and headers.
const multipartOverhead = 1 << 20

// UploadService is the upload behaviour the HTTP layer depends on.
type UploadService interface {
	Upload(ctx context.Context, actor, filename, contentType string, r io.Reader) (usecase.UploadResult, error)
}

// UploadHandler accepts lead attachments as multipart/form-data.
type UploadHandler struct {
	uc           UploadService
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewUploadHandler creates a new UploadHandler. maxFileBytes bounds the file part.
func NewUploadHandler(uc UploadService, logger *slog.Logger, maxFileBytes int64) *UploadHandler {
	return &UploadHandler{uc: uc, logger: logger, maxBodyBytes: maxFileBytes + multipartOverhead}
}

// Upload handles POST /api/uploads/ with a single "file" field. The part is
// streamed to the blob store without buffering the whole request.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "Bad Request: expected multipart/form-data", http.StatusBadRequest)
		return
	}
	actor, _ := middleware.ActorFromContext(r.Context())

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			http.Error(w, "Bad Request: missing file field", http.StatusBadRequest)
			return
		}
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Bad Request: malformed multipart body", http.StatusBadRequest)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		res, err := h.uc.Upload(r.Context(), actor, part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			respondWithError(w, h.logger, err)
			return
		}
		respondWithJSON(w, h.logger, http.StatusCreated, res)
		return
	}
}
