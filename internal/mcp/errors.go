package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/workspace"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to
// INTERNAL with the error text.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, takeoff.ErrItemNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: "takeoff item not found", RecoveryHint: "Call get_takeoff for valid item ids"}
	case errors.Is(err, takeoff.ErrUnknownField):
		return &APIError{Code: "UNKNOWN_FIELD", Message: err.Error(), RecoveryHint: "Use description, division, quantity, unit, unitCost, modifier or comment"}
	case errors.Is(err, takeoff.ErrInvalidValue):
		return &APIError{Code: "INVALID_VALUE", Message: err.Error(), RecoveryHint: "Quantity and unit cost must be >= 0; modifier within [-100, 100]"}
	case errors.Is(err, workspace.ErrBusy):
		return &APIError{Code: "BUSY", Message: "a scan of this kind is already running", RecoveryHint: "Wait for it to finish"}
	case errors.Is(err, workspace.ErrUploadsPending):
		return &APIError{Code: "UPLOADS_PENDING", Message: "uploads still in progress", RecoveryHint: "Retry once uploads finish"}
	case errors.Is(err, workspace.ErrNoFiles):
		return &APIError{Code: "NO_FILES", Message: "project has no files to scan", RecoveryHint: "Upload documents first"}
	case errors.As(err, &apiErr):
		return &APIError{Code: "BACKEND_ERROR", Message: err.Error(), Details: map[string]int{"status": apiErr.Status}}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}
