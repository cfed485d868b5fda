// Package errdefs defines sentinel errors shared across the ambient stack
// (config loading, CLI, diagnostics HTTP surface) and helpers to classify
// a wrapped error against them. The wire codec and transport packages do
// not use this package: their failures are values (software/transport
// codes), never Go errors.
package errdefs

import (
	"context"
	"errors"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrUnavailable        = errors.New("unavailable")
	ErrNotImplemented     = errors.New("not implemented")
)

func IsInvalidArgument(err error) bool    { return errors.Is(err, ErrInvalidArgument) }
func IsNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool      { return errors.Is(err, ErrAlreadyExists) }
func IsFailedPrecondition(err error) bool { return errors.Is(err, ErrFailedPrecondition) }
func IsUnavailable(err error) bool        { return errors.Is(err, ErrUnavailable) }
func IsNotImplemented(err error) bool     { return errors.Is(err, ErrNotImplemented) }
func IsCanceled(err error) bool           { return errors.Is(err, context.Canceled) }
func IsDeadlineExceeded(err error) bool   { return errors.Is(err, context.DeadlineExceeded) }
