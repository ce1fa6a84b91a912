package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a BuildError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *BuildError {
	if err == nil {
		return nil
	}

	// Keep the location of an inner BuildError so diagnostics survive wrapping
	var be *BuildError
	if errors.As(err, &be) {
		return &BuildError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    be,
			Task:     be.Task,
			FilePath: be.FilePath,
			Line:     be.Line,
			Column:   be.Column,
			Context:  be.Context,
		}
	}

	return &BuildError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error on path
func WrapIO(err error, code, message, path string) *BuildError {
	be := Wrap(err, ErrorTypeIO, code, message)
	if be != nil {
		be.FilePath = path
	}
	return be
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *BuildError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// WrapTask attributes err to a task. BuildErrors keep their type and code;
// anything else is classified as internal.
func WrapTask(err error, task string) error {
	if err == nil {
		return nil
	}

	var be *BuildError
	if errors.As(err, &be) {
		if be.Task == "" {
			be.Task = task
		}
		return err
	}

	return &BuildError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: "task failed",
		Cause:   err,
		Task:    task,
	}
}
