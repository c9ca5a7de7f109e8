package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a domain failure. The HTTP layer maps each type to
// a status; the CLI prints it.
type ErrorType string

const (
	ErrTypeParsing         ErrorType = "PARSING"
	ErrTypeNoStiffness     ErrorType = "NO_STIFFNESS"
	ErrTypeDegenerateSlope ErrorType = "DEGENERATE_SLOPE"
	ErrTypeExportIO        ErrorType = "EXPORT_IO"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// AppError is a typed failure from the analysis pipeline. Context entries
// surface as extension members of the problem response.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext attaches key to the error and returns it for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// TypeOf returns the type of the outermost AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	return appErr.Type, true
}

// IsType reports whether err carries an AppError of errType.
func IsType(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}

// NewParsingError reports an unreadable or malformed instrument log.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNoStiffnessError reports a curve without a fittable linear region.
func NewNoStiffnessError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNoStiffness, message, cause)
}

// NewDegenerateSlopeError reports two points sharing an x coordinate.
func NewDegenerateSlopeError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDegenerateSlope, message, cause)
}

// NewExportError reports a failed write of the property table or an
// artifact.
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExportIO, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
