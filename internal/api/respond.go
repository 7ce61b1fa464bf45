package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomdesk/internal/backend"
	"roomdesk/internal/cart"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError translates service-layer failures into HTTP answers:
// validation problems are the caller's fault, an in-flight submission is a
// conflict, backend refusals keep their status, transport failures are a
// bad gateway.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case cart.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, backend.ErrBackendUnavailable):
		writeError(w, http.StatusBadGateway, "booking backend unavailable")
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			status := apiErr.StatusCode
			if status < 400 || status > 599 {
				status = http.StatusBadGateway
			}
			writeError(w, status, apiErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
