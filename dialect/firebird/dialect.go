package firebird

import (
	"database/sql"
	"database/sql/driver"
	"slices"

	"github.com/syssam/velox-firebird/dialect"
)

const (
	// Name is the dialect name reported by Firebird drivers.
	Name = dialect.Firebird
	// DefaultDriverName is the name firebirdsql registers with database/sql.
	DefaultDriverName = "firebirdsql"
	// SupportsStatementCache reports that prepared statements may be cached
	// per connection.
	SupportsStatementCache = true
)

// Dialect holds the Firebird specific configuration. It is immutable after
// New and safe for concurrent use.
type Dialect struct {
	opts Options
}

// Option configures a Dialect.
type Option func(*Options)

// RowCount enables or disables cursor row counts after UPDATE and DELETE.
// Enabled by default.
func RowCount(enabled bool) Option {
	return func(o *Options) {
		o.EnableRowCount = enabled
	}
}

// Retaining makes Commit and Rollback keep the transaction context alive.
// Disabled by default.
func Retaining(enabled bool) Option {
	return func(o *Options) {
		o.Retaining = enabled
	}
}

// Interbase switches server version detection to the InterBase info code
// first. Disabled by default.
func Interbase(enabled bool) Option {
	return func(o *Options) {
		o.IsInterbase = enabled
	}
}

// DriverName sets the database/sql driver name. Defaults to "firebirdsql".
func DriverName(name string) Option {
	return func(o *Options) {
		o.DriverName = name
	}
}

// WithOptions replaces the whole option set, e.g. one loaded by LoadOptions.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

// New returns a Dialect configured with the given options.
func New(opts ...Option) *Dialect {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.DriverName == "" {
		o.DriverName = DefaultDriverName
	}
	return &Dialect{opts: o}
}

// Name returns the dialect name.
func (*Dialect) Name() string { return Name }

// Options returns a copy of the dialect options.
func (d *Dialect) Options() Options { return d.opts }

// IsInterbase reports whether the server is treated as InterBase.
func (d *Dialect) IsInterbase() bool { return d.opts.IsInterbase }

// RowCountEnabled reports whether row counts are reported by default.
func (d *Dialect) RowCountEnabled() bool { return d.opts.EnableRowCount }

// RetainingEnabled reports whether commits and rollbacks are retaining.
func (d *Dialect) RetainingEnabled() bool { return d.opts.Retaining }

// Resolve returns the database/sql driver registered under the configured
// name. A missing registration yields a *DriverNotFoundError.
func (d *Dialect) Resolve() (driver.Driver, error) {
	name := d.opts.DriverName
	if !slices.Contains(sql.Drivers(), name) {
		return nil, &DriverNotFoundError{Name: name}
	}
	// Open only validates the name; no connection is made.
	db, err := sql.Open(name, "")
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Driver(), nil
}
