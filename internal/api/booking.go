package api

import (
	"encoding/json"
	"net/http"

	"github.com/achomutovskij/deviceservice/internal/device"
)

// handleBookDevice books the device(s) a request targets.
// With both a name and an id, the name is booked first.
func (s *Server) handleBookDevice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBookingRequest(w, r)
	if !ok {
		return
	}

	if err := s.registry.Book(r.Context(), req); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReturnDevice returns the device(s) a request targets.
func (s *Server) handleReturnDevice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBookingRequest(w, r)
	if !ok {
		return
	}

	if err := s.registry.Return(r.Context(), req); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBookingRequest(w http.ResponseWriter, r *http.Request) (device.BookingRequest, bool) {
	var req device.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, false
	}
	return req, true
}
