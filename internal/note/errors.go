package note

import "fmt"

// LoadError reports a note whose file could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("note: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError reports a note that was read but whose metadata could not be
// parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("note: parse metadata of %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UpdateError reports a failure while regenerating a note's content.
type UpdateError struct {
	Path string
	Err  error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("note: update content of %s: %v", e.Path, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
