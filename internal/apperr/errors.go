// Package apperr defines the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrParse             = errors.New("parse error")
	ErrIO                = errors.New("io error")
	ErrWatchSetup        = errors.New("watch setup failed")
	ErrAlreadyRunning    = errors.New("already running")
	ErrInvalidInput      = errors.New("invalid input")
)
