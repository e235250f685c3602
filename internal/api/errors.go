package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/achomutovskij/deviceservice/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes. The device-specific ones name the failure kinds of the
// booking core one to one.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"

	ErrCodeDeviceIDNotFound                    = "device_id_not_found"
	ErrCodeDeviceNameNotFound                  = "device_name_not_found"
	ErrCodeDeviceNotAvailable                  = "device_not_available"
	ErrCodeNoPersonWithGivenBookedDevice       = "no_person_with_given_booked_device"
	ErrCodeRequestMustHaveEitherDeviceIDOrName = "request_must_have_either_device_id_or_name"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// deviceErrors maps booking core failures to their HTTP form.
var deviceErrors = []struct {
	target error
	status int
	code   string
}{
	{device.ErrDeviceIDNotFound, http.StatusNotFound, ErrCodeDeviceIDNotFound},
	{device.ErrDeviceNameNotFound, http.StatusNotFound, ErrCodeDeviceNameNotFound},
	{device.ErrDeviceNotAvailable, http.StatusConflict, ErrCodeDeviceNotAvailable},
	{device.ErrNoPersonWithGivenBookedDevice, http.StatusConflict, ErrCodeNoPersonWithGivenBookedDevice},
	{device.ErrRequestMustHaveEitherDeviceIDOrName, http.StatusBadRequest, ErrCodeRequestMustHaveEitherDeviceIDOrName},
	{device.ErrInvalidName, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrInvalidPerson, http.StatusBadRequest, ErrCodeValidation},
}

// writeDeviceError writes the response for an error returned by the
// registry. Storage faults and anything unrecognised become a generic 500;
// the detail goes to the log only.
func (s *Server) writeDeviceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range deviceErrors {
		if errors.Is(err, m.target) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}

	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r.Context()),
		"error", err,
	)
	writeInternalError(w, "internal error")
}
