package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/flowstate/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeError renders err as the standard error body with the status its code maps to.
func writeError(w http.ResponseWriter, err error) {
	ae := apperr.From(err)
	writeJSON(w, statusFor(ae.Code), ae.Body())
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidParameter, apperr.CodeInvalidDateFormat:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInsufficientData:
		return http.StatusUnprocessableEntity
	case apperr.CodeDataNotFound, apperr.CodeDataInvalid:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
