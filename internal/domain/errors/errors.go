package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAlreadyExists        = errors.New("resource already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSignatureInvalid     = errors.New("webhook signature invalid")
	ErrWebhookSecretMissing = errors.New("webhook secret not configured")
	ErrDuplicateEvent       = errors.New("event already processed")
	ErrCircuitOpen          = errors.New("circuit breaker open")
	ErrInsufficientStock    = errors.New("insufficient safety stock")
	ErrPlaceholderAddress   = errors.New("placeholder or zero address in configuration")
)

// Error codes returned in API responses
const (
	CodeNotFound         = "ERR_NOT_FOUND"
	CodeConflict         = "ERR_CONFLICT"
	CodeInvalidInput     = "ERR_INVALID_INPUT"
	CodeUnauthorized     = "ERR_UNAUTHORIZED"
	CodeSignatureInvalid = "ERR_SIGNATURE_INVALID"
	CodeInternalError    = "ERR_INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func SignatureInvalid(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeSignatureInvalid, message, ErrSignatureInvalid)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// ChainCallError wraps a failed on-chain call with the operation that failed.
type ChainCallError struct {
	Op  string
	Err error
}

func (e *ChainCallError) Error() string {
	return fmt.Sprintf("chain call %s: %v", e.Op, e.Err)
}

func (e *ChainCallError) Unwrap() error {
	return e.Err
}

// NewChainCallError wraps err as a ChainCallError for operation op.
func NewChainCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ChainCallError{Op: op, Err: err}
}

// DistributionPartialError aggregates per-recipient failures from a fee
// distribution run. Sibling transfers are never aborted, so all failures
// are collected here.
type DistributionPartialError struct {
	Failed []RecipientFailure
}

// RecipientFailure records one failed recipient transfer.
type RecipientFailure struct {
	RecipientID string
	Err         error
}

func (e *DistributionPartialError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", f.RecipientID, f.Err))
	}
	return fmt.Sprintf("fee distribution partially failed (%d recipients): %s", len(e.Failed), strings.Join(parts, "; "))
}
