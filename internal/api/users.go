package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gearbook/internal/registry"
)

// handleCreateUser registers a new user.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user registry.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.registry.CreateUser(r.Context(), user)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleListUsers returns all registered users.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := s.registry.ListUsers(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// handleUserDevices returns the devices currently held by a user.
func (s *Server) handleUserDevices(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")

	devices, err := s.registry.UserDevices(r.Context(), login)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}
