package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalambet/clipdex/internal/auth"
	"github.com/kalambet/clipdex/internal/store"
)

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func httpError(w http.ResponseWriter, status int, errType, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorBody{Type: errType, Message: fmt.Sprintf(format, args...)},
	})
}

// serviceError maps core error kinds onto HTTP statuses. One failing request
// never takes down the handler path; storage failures are logged and surfaced
// as 500s.
func serviceError(w http.ResponseWriter, err error) {
	var storageErr *store.StorageError
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, auth.ErrNotAuthorized):
		httpError(w, http.StatusForbidden, "authorization_error", "%v", err)
	case errors.Is(err, store.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "%v", err)
	case errors.Is(err, store.ErrDuplicate):
		httpError(w, http.StatusConflict, "conflict_error", "%v", err)
	case errors.As(err, &storageErr):
		slog.Error("storage failure", "op", storageErr.Op, "error", storageErr.Err)
		httpError(w, http.StatusInternalServerError, "api_error", "storage failure")
	default:
		slog.Error("request failed", "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}
