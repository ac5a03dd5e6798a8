package sqlgraph

import (
	"errors"
	"slices"
	"strings"
)

// ConstraintError represents a constraint violation reported by the database.
type ConstraintError struct {
	msg  string
	wrap error
}

// NewConstraintError returns a ConstraintError with the given message wrapping err.
func NewConstraintError(msg string, err error) *ConstraintError {
	return &ConstraintError{msg: msg, wrap: err}
}

// Error implements the error interface.
func (e *ConstraintError) Error() string { return "sqlgraph: constraint failed: " + e.msg }

// Unwrap returns the underlying driver error.
func (e *ConstraintError) Unwrap() error { return e.wrap }

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// gdsCoder is implemented by errors carrying the status vector codes of a
// Firebird server error. firebirdsql reports server errors as plain
// messages, so codes are only seen when a caller or a driver wrapper
// attaches them; otherwise classification falls back to the message.
type gdsCoder interface {
	GDSCodes() []int
}

// Firebird GDS codes for constraint violations.
const (
	fbNoDup              = 335544349 // attempt to store duplicate value in unique index
	fbForeignKey         = 335544466 // violation of FOREIGN KEY constraint
	fbCheckConstraint    = 335544558 // Operation violates CHECK constraint
	fbUniqueKeyViolation = 335544665 // violation of PRIMARY or UNIQUE KEY constraint
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in a primary key or unique index.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if hasGDSCode(err, fbUniqueKeyViolation, fbNoDup) {
		return true
	}
	return containsAny(err.Error(),
		"violation of PRIMARY or UNIQUE KEY constraint",
		"attempt to store duplicate value",
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if hasGDSCode(err, fbForeignKey) {
		return true
	}
	return containsAny(err.Error(), "violation of FOREIGN KEY constraint")
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if hasGDSCode(err, fbCheckConstraint) {
		return true
	}
	return containsAny(err.Error(), "violates CHECK constraint")
}

func hasGDSCode(err error, codes ...int) bool {
	var e gdsCoder
	if !errors.As(err, &e) {
		return false
	}
	return slices.ContainsFunc(e.GDSCodes(), func(c int) bool {
		return slices.Contains(codes, c)
	})
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
