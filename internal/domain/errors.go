package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error is implemented by every error that is safe to surface to API clients.
type Error interface {
	error
	GetCode() string
	GetMessage() string
}

// BusinessError is a coded, client-facing error.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

func (e *BusinessError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *BusinessError) GetCode() string {
	return e.Code
}

func (e *BusinessError) GetMessage() string {
	return e.Message
}

var (
	ErrInvalidField           = NewBusinessError("U0001", "Invalid field")
	ErrInvalidRequestBody     = NewBusinessError("U0002", "Invalid request body")
	ErrEmailAlreadyRegistered = NewBusinessError("U0003", "User with this email already exists")
	ErrInvalidOrExpiredCode   = NewBusinessError("U0004", "Invalid OTP code")
	ErrCodeAlreadyConsumed    = NewBusinessError("U0005", "Verification code has already been used")
	ErrTooManyRequests        = NewBusinessError("U0006", "Too many requests")
	ErrDeliveryFailed         = NewBusinessError("U0007", "Failed to send verification email. Please try again.")
	ErrInvalidCredentials     = NewBusinessError("U0008", "Invalid credentials")
	ErrAccountInactive        = NewBusinessError("U0009", "User account is disabled")
	ErrUserNotFound           = NewBusinessError("U0010", "User not found")
	ErrUnauthorized           = NewBusinessError("U0011", "Unauthorized")
	ErrInvalidToken           = NewBusinessError("U0012", "Token is invalid")
	ErrTokenExpired           = NewBusinessError("U0013", "Token has expired")
	ErrTokenGeneration        = NewBusinessError("U0014", "Failed to generate token")
	ErrInvalidKeyConfig       = NewBusinessError("U0015", "Invalid signing key configuration")
	ErrDatabaseQuery          = NewBusinessError("U0016", "Database query failed")
	ErrInternal               = NewBusinessError("U0017", "Internal server error")

	// ErrVerificationCodeNotFound never leaves the service layer; callers map it to ErrInvalidOrExpiredCode.
	ErrVerificationCodeNotFound = errors.New("verification code not found")
)

// ValidationError collects field-keyed validation messages.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for field.
func (v *ValidationError) Add(field string, messages ...string) {
	if len(messages) == 0 {
		return
	}
	v.Fields[field] = append(v.Fields[field], messages...)
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// ErrorOrNil returns v when it holds messages, nil otherwise.
func (v *ValidationError) ErrorOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v.Fields[field], " "))
	}
	return ErrInvalidField.Message + ": " + strings.Join(parts, "; ")
}

func (v *ValidationError) GetCode() string {
	return ErrInvalidField.Code
}

func (v *ValidationError) GetMessage() string {
	return ErrInvalidField.Message
}

// Is lets errors.Is(err, ErrInvalidField) match any ValidationError.
func (v *ValidationError) Is(target error) bool {
	return target == ErrInvalidField
}
