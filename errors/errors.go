// Package errors provides error handling for lexcell.
//
// This package re-exports github.com/cockroachdb/errors, so that every
// package wraps, annotates and inspects errors the same way:
//
//	if err := store.SaveForm(ctx, f); err != nil {
//	    return errors.Wrapf(err, "failed to save form %s", f.ID)
//	}
//
//	return errors.WithHint(err, "run `lexcell am validate` to check the config")
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // create it
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the stack trace captured when err was created or wrapped
var GetStack = crdb.GetReportableStackTrace

// Combining
var (
	CombineErrors = crdb.CombineErrors
	Join          = crdb.Join
)

// Common sentinel errors for use across lexcell.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrInvalidConfig indicates a configuration that cannot drive a parser or import
	ErrInvalidConfig = New("invalid configuration")

	// ErrUnsupportedFormat indicates an input or output format lexcell cannot handle
	ErrUnsupportedFormat = New("unsupported format")

	// ErrIncompatibleDataset indicates a database written by an incompatible lexcell version
	ErrIncompatibleDataset = New("incompatible dataset")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidConfigError checks if an error is or wraps ErrInvalidConfig
func IsInvalidConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidConfigError creates an invalid-config error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}
