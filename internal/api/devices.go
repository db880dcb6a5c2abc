package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gearbook/internal/blob"
	"gearbook/internal/registry"
)

// multipartMemoryLimit is the in-memory buffer for multipart parsing;
// larger photo uploads spill to temporary files.
const multipartMemoryLimit = 4 << 20

// handleListDevices returns the device catalogue.
//
// By default each device is reduced to its summary projection. The
// view=full query parameter returns complete records including the
// stored photo filename and assignment state.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("view") == "full" {
		devices := s.registry.AllDevices(ctx)
		writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
		return
	}

	devices := s.registry.ListDevices(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by identifier, reduced to
// its public projection.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	dev, err := s.registry.Device(r.Context(), identifier)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dev.Info())
}

// handleCreateDevice registers a new device from a multipart form.
//
// Expected parts:
//   - identifier, name, description, serial_number, manufacturer: text fields
//   - photo: the reference photo file (required)
//
// The photo is stored first; if registration then fails the stored
// photo is removed so a rejected request leaves nothing behind.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	identifier := r.FormValue("identifier")
	if err := registry.ValidateIdentifier(identifier); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	photo, header, err := r.FormFile("photo")
	if err != nil {
		writeBadRequest(w, "photo file is required")
		return
	}
	defer photo.Close()

	contentType := header.Header.Get("Content-Type")
	key := blob.NewKey(identifier, header.Filename)

	ctx := r.Context()
	if _, putErr := s.photos.Put(ctx, key, photo, contentType); putErr != nil {
		s.logger.Error("photo upload failed", "identifier", identifier, "error", putErr)
		writeInternalError(w, "failed to store photo")
		return
	}

	dev, err := s.registry.CreateDevice(ctx, registry.Device{
		Identifier:   identifier,
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		SerialNumber: r.FormValue("serial_number"),
		Manufacturer: r.FormValue("manufacturer"),
		Filename:     key,
		ContentType:  contentType,
	})
	if err != nil {
		s.deletePhoto(ctx, key)
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dev)
}

// handleUpdateDevice partially updates a device's descriptive fields.
//
// Only fields present in the JSON body are changed. The identifier,
// photo, and assignment state cannot be modified through this endpoint.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	var upd registry.DeviceUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev, err := s.registry.UpdateDevice(r.Context(), identifier, upd)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleDeleteDevice removes a device and its stored photo.
//
// Photo removal is best effort: the catalogue entry is already gone,
// so an orphaned photo only costs storage and is logged for cleanup.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	filename, err := s.registry.DeleteDevice(r.Context(), identifier)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	if filename != "" {
		s.deletePhoto(r.Context(), filename)
	}

	w.WriteHeader(http.StatusNoContent)
}

// deletePhoto removes a stored photo, logging failures without
// propagating them.
func (s *Server) deletePhoto(ctx context.Context, key string) {
	if err := s.photos.Delete(ctx, key); err != nil {
		s.logger.Warn("photo cleanup failed", "key", key, "error", err)
	}
}
