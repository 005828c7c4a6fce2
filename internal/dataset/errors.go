package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrFileAccess indicates the input could not be opened or read.
	ErrFileAccess = errors.New("file access")
	// ErrParse indicates malformed content: bad CSV framing, numbers or dates.
	ErrParse = errors.New("parse error")
	// ErrSchemaMismatch indicates an expected column is absent.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// LoadError describes where loading failed. Kind is one of the sentinel
// errors above so callers can match with errors.Is.
type LoadError struct {
	Kind   error
	Op     string
	Path   string
	Row    int // 1-based data row; 0 when not row specific
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load error"
	}
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, msg)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
