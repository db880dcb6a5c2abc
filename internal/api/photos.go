package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gearbook/internal/blob"
)

// fallbackPhotoContentType is served when neither the catalogue nor the
// blob store recorded a content type for a photo.
const fallbackPhotoContentType = "image/jpeg"

// handleGetPhoto streams a device's reference photo.
//
// The photo filename comes from the catalogue, so a device that exists
// but whose photo has gone missing from the blob store still returns 404.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	ctx := r.Context()

	filename, contentType, err := s.registry.PhotoFilename(ctx, identifier)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	info, reader, err := s.photos.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeNotFound(w, "photo not found")
			return
		}
		s.logger.Error("photo read failed", "identifier", identifier, "key", filename, "error", err)
		writeInternalError(w, "failed to read photo")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = info.ContentType
	}
	if contentType == "" {
		contentType = fallbackPhotoContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, copyErr := io.Copy(w, reader); copyErr != nil {
		s.logger.Debug("photo stream interrupted", "identifier", identifier, "error", copyErr)
	}
}
