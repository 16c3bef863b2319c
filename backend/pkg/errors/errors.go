package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents malformed or oversized request input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTriage represents triage collaborator errors
	ErrorTypeTriage ErrorType = "triage"
	// ErrorTypeExtractor represents extractor execution errors
	ErrorTypeExtractor ErrorType = "extractor"
	// ErrorTypeTool represents shared tool errors
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypePermission represents tool permission errors
	ErrorTypePermission ErrorType = "permission"
	// ErrorTypePersistence represents graph store write errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeOrchestration represents request-level pipeline errors
	ErrorTypeOrchestration ErrorType = "orchestration"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Validation Errors

// ErrValidationFailed is returned when a request field is malformed or oversized
type ErrValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidationFailed(field, reason string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Triage Errors

// ErrTriagePlanInvalid is returned when the triage output is missing required
// fields or cannot be parsed
type ErrTriagePlanInvalid struct {
	*BaseError
	Reason string
}

func NewTriagePlanInvalid(reason string, err error) *ErrTriagePlanInvalid {
	return &ErrTriagePlanInvalid{
		BaseError: NewBaseError(ErrorTypeTriage, fmt.Sprintf("triage plan invalid: %s", reason), err),
		Reason:    reason,
	}
}

// ErrTriageUnavailable is returned when the triage collaborator cannot be reached
type ErrTriageUnavailable struct {
	*BaseError
	Model    string
	Attempts int
}

func NewTriageUnavailable(model string, attempts int, err error) *ErrTriageUnavailable {
	return &ErrTriageUnavailable{
		BaseError: NewBaseError(ErrorTypeTriage, fmt.Sprintf("triage request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Extractor Errors

// ErrAgentExecutionFailed is returned when a single task's extractor failed.
// Recovered locally by the orchestrator; remaining tasks continue.
type ErrAgentExecutionFailed struct {
	*BaseError
	TaskID    string
	Extractor string
}

func NewAgentExecutionFailed(taskID, extractor string, err error) *ErrAgentExecutionFailed {
	return &ErrAgentExecutionFailed{
		BaseError: NewBaseError(ErrorTypeExtractor, fmt.Sprintf("extractor %s failed for task %s", extractor, taskID), err),
		TaskID:    taskID,
		Extractor: extractor,
	}
}

// ErrAllTasksFailed is returned when every task in an otherwise valid plan failed
var ErrAllTasksFailed = NewBaseError(ErrorTypeOrchestration, "all plan tasks failed", nil)

// Tool Errors

// ErrToolNotFound is returned when a requested tool is not registered
type ErrToolNotFound struct {
	*BaseError
	ToolName string
}

func NewToolNotFound(toolName string) *ErrToolNotFound {
	return &ErrToolNotFound{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool not found: %s", toolName), nil),
		ToolName:  toolName,
	}
}

// ErrPermissionDenied is returned when an extractor requests a tool outside
// its declared permission set
type ErrPermissionDenied struct {
	*BaseError
	Extractor string
	ToolName  string
}

func NewPermissionDenied(extractor, toolName string) *ErrPermissionDenied {
	return &ErrPermissionDenied{
		BaseError: NewBaseError(ErrorTypePermission, fmt.Sprintf("extractor %s may not use tool %s", extractor, toolName), nil),
		Extractor: extractor,
		ToolName:  toolName,
	}
}

// Persistence Errors

// ErrPersistenceFailed is returned when a graph store write failed. Rows
// already written are not rolled back.
type ErrPersistenceFailed struct {
	*BaseError
	Operation string
}

func NewPersistenceFailed(operation string, err error) *ErrPersistenceFailed {
	return &ErrPersistenceFailed{
		BaseError: NewBaseError(ErrorTypePersistence, fmt.Sprintf("persistence failed: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// ErrType reports the error category. Promoted through embedding so every
// typed error in this package answers it.
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if typed, ok := err.(interface{ ErrType() ErrorType }); ok {
		return typed.ErrType() == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		inner := wrapped.Unwrap()
		if inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}
