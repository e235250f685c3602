package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// CreateDeviceRequest is the body of a device registration.
type CreateDeviceRequest struct {
	Name string `json:"name"`
}

// CreateDeviceResponse carries the id assigned to a new device.
type CreateDeviceResponse struct {
	ID int64 `json:"id"`
}

// handleCreateDevice registers an available device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id, err := s.registry.Register(r.Context(), req.Name)
	if err != nil {
		s.writeDeviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateDeviceResponse{ID: id})
}

// handleDeleteDevice removes one device. Unknown ids succeed.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	if err := s.registry.Delete(r.Context(), id); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllDevices empties the registry.
func (s *Server) handleDeleteAllDevices(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeleteAll(r.Context()); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deviceIDParam parses the {id} path segment, writing a 400 when it is
// not an integer.
func deviceIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeBadRequest(w, "device id must be an integer")
		return 0, false
	}
	return id, true
}
