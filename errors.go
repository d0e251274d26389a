package tzfold

import (
	"errors"
	"fmt"

	"github.com/tzfold/tzfold/civil"
	"github.com/tzfold/tzfold/internal/source"
)

// LoadError reports a failure to load a zone by name. The underlying
// cause is available through errors.Unwrap and errors.Is.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("tzfold: load zone %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RangeError reports a civil time whose instant cannot be represented
// as 64-bit Unix seconds.
type RangeError struct {
	Civil civil.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("tzfold: civil time %s out of range", e.Civil)
}

// ParseError reports input that does not match a parse layout. Pos is
// the byte offset into Value where matching stopped.
type ParseError struct {
	Layout  string
	Value   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tzfold: parse %q as %q: at byte %d: %s", e.Value, e.Layout, e.Pos, e.Message)
}

// FormatDirectiveError reports a directive a strict Formatter does not
// recognize.
type FormatDirectiveError struct {
	Directive string
}

func (e *FormatDirectiveError) Error() string {
	return fmt.Sprintf("tzfold: unknown directive %q", e.Directive)
}

// IsNotFound reports whether err means a zone name was simply absent
// from every configured source, as opposed to present but malformed.
func IsNotFound(err error) bool {
	return errors.Is(err, source.ErrNotFound)
}
