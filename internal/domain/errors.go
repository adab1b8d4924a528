package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AppError represents a domain-specific error with structured information and enhanced context
type AppError struct {
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Details    any       `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	Operation  string    `json:"operation,omitempty"`
	Cause      error     `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AppError) WithContext(ctx context.Context, operation string) *AppError {
	if requestID := ctx.Value("request_id"); requestID != nil {
		if id, ok := requestID.(string); ok {
			e.RequestID = id
		}
	}
	e.Operation = operation
	return e
}

// Error codes for different error categories
const (
	ErrInvalidInput     = "INVALID_INPUT"     // 400 Bad Request
	ErrValidationFailed = "VALIDATION_FAILED" // 422 Unprocessable Entity
	ErrNotFound         = "NOT_FOUND"         // 404 Not Found
	ErrInternal         = "INTERNAL_ERROR"    // 500 Internal Server Error
	ErrTimeout          = "TIMEOUT"           // 408 Request Timeout
	ErrTooLarge         = "PAYLOAD_TOO_LARGE" // 413 Payload Too Large
	ErrRateLimit        = "RATE_LIMIT"        // 429 Too Many Requests

	// Sticker pack error codes
	ErrPackNotFound     = "PACK_NOT_FOUND"    // 404 Pack not found
	ErrAssetUnavailable = "ASSET_NOT_FOUND"   // 404 Asset not found
	ErrAssetModified    = "ASSET_MODIFIED"    // 409 Asset differs from the certified bytes
	ErrPackInvalid      = "PACK_INVALID"      // 422 Pack failed a policy rule
	ErrManifestInvalid  = "MANIFEST_INVALID"  // 400 Manifest violates the schema
	ErrCatalogNotLoaded = "CATALOG_NOT_READY" // 503 Catalog has no certified packs yet
)

// NewAppError creates a new AppError with the specified parameters
func NewAppError(code, message string, statusCode int, details any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
		Timestamp:  time.Now(),
	}
}

// NewAppErrorWithCause creates a new AppError with underlying cause
func NewAppErrorWithCause(code, message string, statusCode int, cause error, details any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
		Timestamp:  time.Now(),
		Cause:      cause,
	}
}

// StructuralError reports a manifest that does not conform to the closed schema.
type StructuralError struct {
	PackIdentifier string // empty when the failure precedes the identifier
	FileName       string
	Reason         string
	Cause          error
}

func (e *StructuralError) Error() string {
	return describe("invalid manifest", e.Reason, e.PackIdentifier, e.FileName, e.Cause)
}

func (e *StructuralError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a schema-valid pack that breaks a policy rule.
type ValidationError struct {
	PackIdentifier string
	FileName       string
	Reason         string
	Cause          error
}

func (e *ValidationError) Error() string {
	return describe("invalid sticker pack", e.Reason, e.PackIdentifier, e.FileName, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ErrAssetNotFound is the cause of an AssetError for a missing asset.
var ErrAssetNotFound = errors.New("asset not found")

// AssetError is returned by asset stores. It never exposes raw I/O error
// types directly; the cause stays reachable through errors.Is/As.
type AssetError struct {
	PackIdentifier string
	FileName       string
	Err            error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("cannot read asset %s/%s: %v", e.PackIdentifier, e.FileName, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

func describe(prefix, reason, identifier, fileName string, cause error) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(": ")
	b.WriteString(reason)
	if identifier != "" {
		b.WriteString(", sticker pack identifier: ")
		b.WriteString(identifier)
	}
	if fileName != "" {
		b.WriteString(", filename: ")
		b.WriteString(fileName)
	}
	if cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(cause.Error())
		b.WriteString(")")
	}
	return b.String()
}

// IsTimeout checks if the error is a timeout error
func IsTimeout(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrTimeout
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if errors.Is(err, ErrAssetNotFound) {
		return true
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrNotFound || appErr.Code == ErrPackNotFound || appErr.Code == ErrAssetUnavailable
	}
	return false
}

// IsStructuralError checks if the error reports a schema violation
func IsStructuralError(err error) bool {
	var structErr *StructuralError
	return errors.As(err, &structErr)
}

// IsValidationError checks if the error reports a policy violation
func IsValidationError(err error) bool {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return true
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrValidationFailed || appErr.Code == ErrPackInvalid
	}
	return false
}
