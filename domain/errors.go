package domain

import "fmt"

// Error codes
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeFileNotFound   = "FILE_NOT_FOUND"
	ErrCodeParseError     = "PARSE_ERROR"
	ErrCodeConfigError    = "CONFIG_ERROR"
	ErrCodeOutputError    = "OUTPUT_ERROR"
	ErrCodeSettingsError  = "SETTINGS_ERROR"
	ErrCodeParityMismatch = "PARITY_MISMATCH"
)

// DomainError is an error carrying a machine-readable code
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates a parse error for a project or file
func NewParseError(path string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse %s", path), cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewSettingsError creates a Maven settings error
func NewSettingsError(message string, cause error) error {
	return NewDomainError(ErrCodeSettingsError, message, cause)
}
