package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/vttlabs/lifeos/internal/apperr"
)

type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(kind))
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Kind: kind, Message: err.Error()}})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.ValidationError:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.AlreadyExists, apperr.Conflict:
		return http.StatusConflict
	case apperr.InvalidState:
		return http.StatusUnprocessableEntity
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst, mapping failures to a
// ValidationError.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.ValidationError, err, "malformed request body")
	}
	return nil
}
