// Package util provides logging, error types, and small helpers shared
// across the brightwire SDK.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for failures surfaced to SDK callers
var (
	ErrNotConnected    = errors.New("device not connected")
	ErrNotFound        = errors.New("entry not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrAlreadyExists   = errors.New("entry already exists")
)

// NotFoundError reports a lookup miss with the kind and key of the entry.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// InvalidArgumentError reports a malformed argument rejected before any
// state was mutated.
type InvalidArgumentError struct {
	Op     string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NewInvalidArgumentError creates an invalid-argument error
func NewInvalidArgumentError(op, format string, args ...interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// ContractError is the payload passed to panic when a caller violates an
// API contract. A contract violation is a programmer error, not a runtime
// condition the caller is expected to recover from, so it is not returned
// as an ordinary error. Tests may recover() and type-assert against it.
type ContractError struct {
	Op     string
	Detail string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Detail)
}

// Contract panics with a ContractError describing the violated contract.
func Contract(op, format string, args ...interface{}) {
	panic(&ContractError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
