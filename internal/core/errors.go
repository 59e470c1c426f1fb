package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidUser    = "invalid_user"
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeNotJoined      = "not_joined"
	ErrCodeStoreError     = "store_error"
	ErrCodeBadRequest     = "bad_request"
)

var (
	ErrNotJoined      = errors.New("connection has no user identity")
	ErrInvalidUser    = errors.New("invalid user id")
	ErrInvalidPayload = errors.New("invalid payload")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
