package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/pmbot/internal/domain/report"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var stageErr *report.StageError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: "CANCELLED", Message: "run cancelled", Details: err.Error()}
	case errors.Is(err, report.ErrNoCachedReport):
		return &APIError{Code: "NO_CACHED_REPORT", Message: "no report cached for this roadmap", RecoveryHint: "Call generate_report first"}
	case errors.Is(err, report.ErrInvalidConfig):
		return &APIError{Code: "INVALID_CONFIG", Message: "server is misconfigured", Details: err.Error(), RecoveryHint: "Check the pmbot configuration"}
	case errors.Is(err, report.ErrPublishFailed):
		return &APIError{Code: "PUBLISH_FAILED", Message: "sink rejected the message", Details: err.Error()}
	case errors.Is(err, report.ErrInvalidReport):
		return &APIError{Code: "INVALID_REPORT", Message: "report could not be assembled", Details: err.Error()}
	case errors.As(err, &stageErr):
		return &APIError{Code: "RUN_ABORTED", Message: fmt.Sprintf("run aborted at %s", stageErr.Stage), Details: stageErr.Err.Error()}
	default:
		return nil
	}
}

func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
