package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/achomutovskij/deviceservice/internal/device"
)

// handleListDevices returns every device, enriched, ordered by id.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.ListAll(r.Context())
	if err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.EnrichAll(r.Context(), devices))
}

// handleListAvailableDevices returns devices nobody holds, enriched.
func (s *Server) handleListAvailableDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.ListAvailable(r.Context())
	if err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.EnrichAll(r.Context(), devices))
}

// handleGetDevice returns one device, enriched.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	dev, err := s.registry.GetByID(r.Context(), id)
	if err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.Enrich(r.Context(), *dev))
}

// handleListDevicesByName returns devices whose name contains the path
// segment. Matching nothing is a DeviceNameNotFound failure.
func (s *Server) handleListDevicesByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	devices, err := s.registry.ListByName(r.Context(), name)
	if err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	if len(devices) == 0 {
		s.writeDeviceError(w, r, fmt.Errorf("%w: %q", device.ErrDeviceNameNotFound, name))
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.EnrichAll(r.Context(), devices))
}

// nameParam returns the decoded {name} path segment. chi matches on the
// raw path when the request carries escapes such as %2F, so the segment
// is unescaped only in that case.
func nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, true
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		writeBadRequest(w, "malformed device name")
		return "", false
	}
	return decoded, true
}
