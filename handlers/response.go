package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

// writeServiceError maps network errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, subway.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   message,
			Details: map[string]interface{}{"reason": err.Error()},
		})
	case subway.IsDomainError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   message,
			Details: map[string]interface{}{"reason": err.Error()},
		})
	default:
		log.Printf("%s: %v", message, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: message,
			Details: map[string]interface{}{
				"internal": err.Error(),
			},
		})
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
