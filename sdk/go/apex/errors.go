// Package apex provides a Go client for the ApexMarketer-AI HTTP API.
package apex

import (
	"errors"
	"fmt"
)

// Error represents an error from the ApexMarketer-AI API with the HTTP
// status code and the server's error message.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	// Violations lists the safety rules the generated response broke.
	// Set only for validation failures (HTTP 422).
	Violations []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("apex: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 404
	}
	return false
}

// IsValidationFailed returns true if the error is a 422, meaning the
// generated response broke a safety rule and was discarded by the server.
func IsValidationFailed(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 422
	}
	return false
}

// IsNotConfigured returns true if the server rejected the request because a
// required credential (language model or data provider) is missing.
func IsNotConfigured(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == "not_configured"
	}
	return false
}
