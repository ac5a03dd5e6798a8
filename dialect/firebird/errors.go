package firebird

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the dialect. Typed errors below match them
// with errors.Is.
var (
	// ErrDriverNotFound is returned when the configured database/sql driver
	// is not registered, usually because its package was never imported.
	ErrDriverNotFound = errors.New("firebird: driver not registered")

	// ErrOptionType is returned when a connection option cannot be coerced
	// to the type the driver expects.
	ErrOptionType = errors.New("firebird: invalid connection option type")

	// ErrUnsupportedInfo is returned by an InfoQuerier that cannot answer
	// the requested info code.
	ErrUnsupportedInfo = errors.New("firebird: info code not supported")

	// ErrVersionParse is returned when a server version string does not
	// follow any known grammar.
	ErrVersionParse = errors.New("firebird: could not determine server version")

	// ErrBlobNotMaterializable is returned by a BlobHandle that cannot be
	// read into memory, for example a stream blob or a handle whose
	// transaction is gone.
	ErrBlobNotMaterializable = errors.New("firebird: blob cannot be materialized")
)

// DriverNotFoundError reports a database/sql driver missing from the registry.
type DriverNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *DriverNotFoundError) Error() string {
	return fmt.Sprintf("firebird: database/sql driver %q is not registered (forgotten import?)", e.Name)
}

// Is reports whether the target is ErrDriverNotFound.
func (e *DriverNotFoundError) Is(err error) bool {
	return err == ErrDriverNotFound
}

// OptionTypeError reports a connection option with a value of the wrong type.
type OptionTypeError struct {
	Key   string
	Value any
	Err   error
}

// Error implements the error interface.
func (e *OptionTypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("firebird: option %q: cannot convert %v (%T) to int: %v", e.Key, e.Value, e.Value, e.Err)
	}
	return fmt.Sprintf("firebird: option %q: cannot convert %v (%T) to int", e.Key, e.Value, e.Value)
}

// Is reports whether the target is ErrOptionType.
func (e *OptionTypeError) Is(err error) bool {
	return err == ErrOptionType
}

// Unwrap returns the underlying conversion error.
func (e *OptionTypeError) Unwrap() error {
	return e.Err
}

// UnsupportedInfoError reports an info code the querier cannot answer.
type UnsupportedInfoError struct {
	Code InfoCode
}

// Error implements the error interface.
func (e *UnsupportedInfoError) Error() string {
	return fmt.Sprintf("firebird: info code %d not supported", int(e.Code))
}

// Is reports whether the target is ErrUnsupportedInfo.
func (e *UnsupportedInfoError) Is(err error) bool {
	return err == ErrUnsupportedInfo
}

// VersionProbeError is returned when both the primary and the alternate
// version info codes failed. Err is the failure of the alternate probe and
// Cause the failure of the primary one; errors.Is and errors.As see both.
type VersionProbeError struct {
	Code  InfoCode
	Err   error
	Cause error
}

// Error implements the error interface.
func (e *VersionProbeError) Error() string {
	return fmt.Sprintf("firebird: server version probe with info code %d: %v (after: %v)", int(e.Code), e.Err, e.Cause)
}

// Unwrap returns the alternate and the primary failures.
func (e *VersionProbeError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

// VersionParseError reports a version string that could not be parsed.
type VersionParseError struct {
	Version string
}

// Error implements the error interface.
func (e *VersionParseError) Error() string {
	return fmt.Sprintf("firebird: could not determine version from string %q", e.Version)
}

// Is reports whether the target is ErrVersionParse.
func (e *VersionParseError) Is(err error) bool {
	return err == ErrVersionParse
}

// IsDriverNotFound returns true if the error reports a missing driver.
func IsDriverNotFound(err error) bool {
	return errors.Is(err, ErrDriverNotFound)
}

// IsOptionType returns true if the error reports a malformed connection option.
func IsOptionType(err error) bool {
	return errors.Is(err, ErrOptionType)
}

// IsVersionProbe returns true if the error reports exhausted version probes.
func IsVersionProbe(err error) bool {
	var e *VersionProbeError
	return errors.As(err, &e)
}
