// Package pkg holds error types shared across the worker's adapters and
// services.
package pkg

import "fmt"

// EntityNotFoundError represents a lookup against a record that does not
// exist, e.g. an idempotency claim deleted by a concurrent MarkFailed
// between this worker's own claim and its attempt to mark it completed.
type EntityNotFoundError struct {
	EntityType string
	Message    string
	Err        error
}

func (e EntityNotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.EntityType != "" {
		return fmt.Sprintf("Entity %s not found", e.EntityType)
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return "entity not found"
}

func (e EntityNotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError represents a rejected envelope or payload field.
type ValidationError struct {
	Code    string
	Message string
	Err     error
}

func (v ValidationError) Error() string {
	if v.Code != "" {
		return fmt.Sprintf("%s - %s", v.Code, v.Message)
	}

	return v.Message
}

func (v ValidationError) Unwrap() error {
	return v.Err
}

// StorageError wraps a failure reaching the idempotency store or the
// search index. The dispatcher treats it as transient (§7 TransientFailure).
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (s StorageError) Error() string {
	if s.Message != "" {
		return fmt.Sprintf("%s: %s", s.Op, s.Message)
	}

	if s.Err != nil {
		return fmt.Sprintf("%s: %s", s.Op, s.Err.Error())
	}

	return s.Op + ": storage error"
}

func (s StorageError) Unwrap() error {
	return s.Err
}
