// FILE: internal/pkg/apperror/errors.go
// Structured error taxonomy shared by the engine and the transport layer.
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError indicates a missing or malformed field in the caller's
// input. Always recoverable by correcting the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on '%s': %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates a referenced id does not exist.
type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	if e.Id == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.Id)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, Id: id}
}

// ConflictError indicates the operation would violate an invariant
// (duplicate unique key, delete with live references). BlockingCount carries
// the number of records blocking the operation so callers can present
// actionable guidance instead of a bare failure.
type ConflictError struct {
	Message       string
	BlockingCount int
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(message string, blockingCount int) error {
	return &ConflictError{Message: message, BlockingCount: blockingCount}
}

// UpstreamError indicates a collaborator (identity, billing, broker) failed
// or timed out.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream '%s' failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstream(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// Kind helpers for callers that only need to branch on the class.

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
