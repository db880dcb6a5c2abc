package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// assignmentRequest is the body of an assignment PUT.
type assignmentRequest struct {
	Login string `json:"login"`
}

// handleAssignDevice marks a device as taken by a user.
//
// A device can be held by at most one user at a time; assigning a
// device that is already in use returns 409 regardless of holder.
func (s *Server) handleAssignDevice(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Login == "" {
		writeBadRequest(w, "login field is required")
		return
	}

	if err := s.registry.Assign(r.Context(), identifier, req.Login); err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identifier": identifier,
		"login":      req.Login,
		"usage":      "in_use",
	})
}

// handleUnassignDevice releases a device held by the named user.
//
// The login query parameter scopes the release: a device held by
// someone else, or not held at all, returns 404 and nothing changes.
func (s *Server) handleUnassignDevice(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	login := r.URL.Query().Get("login")
	if login == "" {
		writeBadRequest(w, "login query parameter is required")
		return
	}

	if err := s.registry.Unassign(r.Context(), identifier, login); err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identifier": identifier,
		"login":      login,
		"usage":      "free",
	})
}
