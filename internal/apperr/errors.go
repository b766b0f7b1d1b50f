// Package apperr defines the sentinel errors shared by the service layer and
// its transports.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInvalidEdit = errors.New("invalid edit")
	ErrInvalidNote = errors.New("invalid note")
)
