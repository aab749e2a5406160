package semantics

import (
	"errors"
	"fmt"

	"github.com/funvibe/termcore/internal/term"
)

// NotYetKnownError reports that a type was requested while it was already
// being computed (a self-referential definition). Callers retry once the
// cycle is resolved; it is never shown to users.
type NotYetKnownError struct {
	ID term.ID
}

func (e *NotYetKnownError) Error() string {
	return fmt.Sprintf("type of %s is not yet known", e.ID)
}

// IsNotYetKnown reports whether err is, or wraps, a NotYetKnownError.
func IsNotYetKnown(err error) bool {
	var nyk *NotYetKnownError
	return errors.As(err, &nyk)
}

// SubstitutionError is fatal for the Replacing term it is reported against.
type SubstitutionError struct {
	Replacing term.ID
	Reason    string
	Err       error
}

func (e *SubstitutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid substitution in %s: %s: %v", e.Replacing, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid substitution in %s: %s", e.Replacing, e.Reason)
}

func (e *SubstitutionError) Unwrap() error { return e.Err }

func NewSubstitutionError(replacing term.ID, reason string, args ...any) *SubstitutionError {
	return &SubstitutionError{Replacing: replacing, Reason: fmt.Sprintf(reason, args...)}
}

// FixpointError means reduce(reduce(t)) != reduce(t). This is a bug in the
// reducer, never a user error.
type FixpointError struct {
	Term, Once, Twice term.ID
}

func (e *FixpointError) Error() string {
	return fmt.Sprintf("reduction of %s is not a fixed point: %s then %s", e.Term, e.Once, e.Twice)
}

// TypeMismatchError is returned when a type is proven (or, for exact
// ascriptions, not proven) equal to the expected one.
type TypeMismatchError struct {
	Term     term.ID
	Expected term.ID
	Actual   term.ID
	Verdict  Verdict
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %s: expected %s, got %s (%s)", e.Term, e.Expected, e.Actual, e.Verdict)
}

// UnresolvedMemberError is returned for a Member projection that names no
// definition. Resolution should have replaced it before the core sees it.
type UnresolvedMemberError struct {
	Term term.ID
	Name string
}

func (e *UnresolvedMemberError) Error() string {
	return fmt.Sprintf("unresolved member %q at %s", e.Name, e.Term)
}
