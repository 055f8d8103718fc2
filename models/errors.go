package models

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks fatal setup problems (missing env values, zero-sized coordinate spaces)
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream marks a non-success response from the generator, storage or vendor APIs
	ErrUpstream = errors.New("upstream service error")
	// ErrTimeout marks polling that ran out of attempts without reaching a terminal success state
	ErrTimeout = errors.New("timed out")
	// ErrSourceRetrieval marks a failure to fetch or decode an input image for compositing
	ErrSourceRetrieval = errors.New("failed to retrieve source image")
	// ErrVendorNotFound is matched by upstream errors carrying a 404 status
	ErrVendorNotFound = errors.New("vendor resource not found")
	// ErrInvalidInput marks a request the caller has to fix
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigurationError describes a single invalid or missing configuration value
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UpstreamError is returned when a collaborator answers with a non-success status
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

// maxUpstreamMessage bounds how much of an upstream body ends up in error strings
const maxUpstreamMessage = 512

// NewUpstreamError builds an UpstreamError, truncating long messages
func NewUpstreamError(service string, statusCode int, message string) *UpstreamError {
	if len(message) > maxUpstreamMessage {
		message = message[:maxUpstreamMessage] + "..."
	}
	return &UpstreamError{Service: service, StatusCode: statusCode, Message: message}
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// Is matches ErrVendorNotFound for 404 responses
func (e *UpstreamError) Is(target error) bool {
	return target == ErrVendorNotFound && e.StatusCode == 404
}
