package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/phrazzld/handlescope/internal/tasks"
	"github.com/phrazzld/handlescope/internal/unitofwork"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, tasks.ErrInvalidID),
		errors.Is(err, tasks.ErrEmptyAssignee),
		errors.Is(err, tasks.ErrEndBeforeStart),
		errors.Is(err, tasks.ErrInvalidPostpone):
		return http.StatusBadRequest

	case errors.Is(err, unitofwork.ErrConnection),
		errors.Is(err, store.ErrConnectionFailed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Task already exists"
	case errors.Is(err, tasks.ErrInvalidID):
		return "Invalid task ID"
	case errors.Is(err, tasks.ErrEmptyAssignee):
		return "Assignee is required"
	case errors.Is(err, tasks.ErrEndBeforeStart):
		return "End date cannot precede start date"
	case errors.Is(err, tasks.ErrInvalidPostpone):
		return "Postponement must be positive"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, unitofwork.ErrConnection),
		errors.Is(err, store.ErrConnectionFailed):
		return "Service temporarily unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "gtfield", "gtefield":
		return "out of order"
	default:
		return "validation failed"
	}
}
