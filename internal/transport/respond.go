package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/document"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/workspace"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeErr maps a workspace error to a status code.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func errorStatus(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrNoteNotFound),
		errors.Is(err, project.ErrTableNotFound),
		errors.Is(err, takeoff.ErrItemNotFound),
		errors.Is(err, workspace.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrBusy),
		errors.Is(err, workspace.ErrUploadsPending),
		errors.Is(err, project.ErrDeleteDeclined):
		return http.StatusConflict
	case errors.Is(err, workspace.ErrNoFiles),
		errors.Is(err, workspace.ErrNoSpec),
		errors.Is(err, workspace.ErrEmptyMessage),
		errors.Is(err, workspace.ErrInvalidFileType),
		errors.Is(err, workspace.ErrInvalidOutcome),
		errors.Is(err, takeoff.ErrInvalidValue),
		errors.Is(err, takeoff.ErrUnknownField),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, document.ErrNotPDF),
		errors.Is(err, document.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &apiErr), errors.Is(err, backend.ErrMalformedResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", project.ErrInvalidInput, err)
	}
	return nil
}

func itemIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "itemID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: item id %q", project.ErrInvalidInput, raw)
	}
	return id, nil
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", project.ErrInvalidInput, name)
	}
	return v, nil
}
