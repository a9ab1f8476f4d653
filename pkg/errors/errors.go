// Package errors provides structured error types used across the application.
// We prefer these over raw fmt.Errorf strings to enable reliable checks with
// errors.Is / errors.As and to carry minimal context about the failure.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid input/config/state provided by a caller/user.
type ValidationError struct {
	Op  string // where it happened (package.Function)
	Msg string // human friendly message (no secrets)
	Err error  // underlying cause (optional)
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// DBKind separates store failures that stop a batch from those scoped to one row.
type DBKind int

const (
	// KindUnavailable: connection could not be established or a read failed.
	KindUnavailable DBKind = iota
	// KindWrite: a targeted write to one venue failed.
	KindWrite
)

func (k DBKind) String() string {
	switch k {
	case KindUnavailable:
		return "store unavailable"
	case KindWrite:
		return "store write"
	default:
		return "store"
	}
}

// DBError represents venue store failures.
type DBError struct {
	Op      string
	Kind    DBKind
	VenueID string // set for KindWrite
	Msg     string
	Err     error
}

func (e *DBError) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := fmt.Sprintf("db: %s: %s", e.Kind, e.Op)
	if e.VenueID != "" {
		prefix = fmt.Sprintf("%s: venue %s", prefix, e.VenueID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *DBError) Unwrap() error { return e.Err }

// NewStoreUnavailable is fatal to a sync batch.
func NewStoreUnavailable(op, msg string, err error) error {
	return &DBError{Op: op, Kind: KindUnavailable, Msg: msg, Err: err}
}

// NewStoreWrite names the venue whose update failed.
func NewStoreWrite(op, venueID, msg string, err error) error {
	return &DBError{Op: op, Kind: KindWrite, VenueID: venueID, Msg: msg, Err: err}
}

// ExternalAPIError represents failures in external services (HTTP APIs, SDKs, etc.).
type ExternalAPIError struct {
	Op     string
	Msg    string
	Err    error
	System string // e.g. "google"
}

func (e *ExternalAPIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	sys := e.System
	if sys == "" {
		sys = "external"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", sys, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", sys, e.Op, e.Msg)
}

func (e *ExternalAPIError) Unwrap() error { return e.Err }

// NewLookupUnavailable wraps provider outages, auth failures and open circuits.
func NewLookupUnavailable(op, system, msg string, err error) error {
	return &ExternalAPIError{Op: op, System: system, Msg: msg, Err: err}
}

// IsStoreUnavailable reports whether err is a batch-fatal store failure.
func IsStoreUnavailable(err error) bool {
	var d *DBError
	return errors.As(err, &d) && d.Kind == KindUnavailable
}

// IsStoreWrite reports whether err is a per-venue write failure.
func IsStoreWrite(err error) bool {
	var d *DBError
	return errors.As(err, &d) && d.Kind == KindWrite
}

// IsLookupUnavailable reports whether err came from the places provider.
func IsLookupUnavailable(err error) bool {
	var ex *ExternalAPIError
	return errors.As(err, &ex)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
