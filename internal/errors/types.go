// Package errors provides the structured error type used across frontkit
// and a parser that turns compiler diagnostics into located errors.
//
// Every failure that reaches the CLI is classified by ErrorType so the
// runner can report it consistently: compiler diagnostics carry a file
// location, filesystem failures carry the path, and configuration errors
// are raised while a pipeline is assembled.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeCompile    ErrorType = "compile"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes.
const (
	ErrCodeCompileFailed     = "ERR_COMPILE_FAILED"
	ErrCodeReadFailed        = "ERR_READ_FAILED"
	ErrCodeWriteFailed       = "ERR_WRITE_FAILED"
	ErrCodeRemoveFailed      = "ERR_REMOVE_FAILED"
	ErrCodeInvalidGlob       = "ERR_INVALID_GLOB"
	ErrCodeInvalidPath       = "ERR_INVALID_PATH"
	ErrCodeSamePaths         = "ERR_SRC_EQUALS_DEST"
	ErrCodeStageConflict     = "ERR_STAGE_CONFLICT"
	ErrCodeUnknownEntry      = "ERR_UNKNOWN_ENTRY"
	ErrCodeInvalidDefinition = "ERR_INVALID_DEFINITION"
	ErrCodeCommandNotAllowed = "ERR_COMMAND_NOT_ALLOWED"
	ErrCodeInternalError     = "ERR_INTERNAL"
)

// BuildError is a structured error with task and location context.
type BuildError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Task     string
	FilePath string
	Line     int
	Column   int
	Context  map[string]interface{}
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Task != "" {
		parts = append(parts, "task:"+e.Task)
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a BuildError with the same type and code.
func (e *BuildError) Is(target error) bool {
	var t *BuildError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *BuildError) WithContext(key string, value interface{}) *BuildError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *BuildError) WithLocation(filePath string, line, column int) *BuildError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// WithTask records the task the error occurred in.
func (e *BuildError) WithTask(task string) *BuildError {
	e.Task = task

	return e
}

// NewCompileError creates a compiler diagnostic error.
func NewCompileError(message string, cause error) *BuildError {
	return &BuildError{
		Type:    ErrorTypeCompile,
		Code:    ErrCodeCompileFailed,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *BuildError {
	return &BuildError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *BuildError {
	return &BuildError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *BuildError {
	return &BuildError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// IsType reports whether err wraps a BuildError of the given type.
func IsType(err error, errType ErrorType) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Type == errType
	}

	return false
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return IsType(err, ErrorTypeConfig)
}

// IsCompileError checks if an error is a compiler diagnostic.
func IsCompileError(err error) bool {
	return IsType(err, ErrorTypeCompile)
}
