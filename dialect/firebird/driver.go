package firebird

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/velox-firebird/dialect"
	"github.com/syssam/velox-firebird/dialect/sql"
)

// Driver is a dialect.Driver for Firebird. It wraps a dialect/sql Driver
// with the row count and retaining transaction behavior of its Dialect,
// and caches the server version.
type Driver struct {
	*sql.Driver
	dialect *Dialect
	log     *slog.Logger

	group   singleflight.Group
	mu      sync.Mutex
	version *ServerVersion
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger sets the logger for debug records. Defaults to slog.Default().
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.log = l
	}
}

// Open resolves the configured driver, translates the connection URL and
// opens a database handle. No connection is established until first use.
func Open(d *Dialect, rawURL string, opts ...DriverOption) (*Driver, error) {
	if _, err := d.Resolve(); err != nil {
		return nil, err
	}
	args, err := d.ConnectArgsString(rawURL)
	if err != nil {
		return nil, err
	}
	drv, err := sql.Open(d.opts.DriverName, args.DSN())
	if err != nil {
		return nil, err
	}
	return NewDriver(d, drv, opts...), nil
}

// NewDriver wraps an opened dialect/sql Driver.
func NewDriver(d *Dialect, drv *sql.Driver, opts ...DriverOption) *Driver {
	fd := &Driver{
		Driver:  drv,
		dialect: d,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(fd)
	}
	return fd
}

// Dialect returns the dialect name.
func (*Driver) Dialect() string { return Name }

// FirebirdDialect returns the Dialect the driver was created with.
func (d *Driver) FirebirdDialect() *Dialect { return d.dialect }

// Exec implements the dialect.Exec method. A *sql.Result destination
// reports -1 rows affected when row counting is disabled.
func (d *Driver) Exec(ctx context.Context, query string, args, v any) error {
	return execRowCount(ctx, d.Driver, d.dialect, query, args, v)
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := d.Driver.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, ctx: ctx, dialect: d.dialect, log: d.log}, nil
}

// Ping verifies the server is reachable.
func (d *Driver) Ping(ctx context.Context) error {
	rows := &sql.Rows{}
	if err := d.Driver.Query(ctx, "SELECT 1 FROM rdb$database", []any{}, rows); err != nil {
		return err
	}
	return rows.Close()
}

// ServerVersion returns the version of the attached server. The first
// successful probe is cached; concurrent callers share one probe and
// failures are not cached. The shared probe is not canceled with any
// single caller's context; each caller stops waiting when its own ctx is
// done.
func (d *Driver) ServerVersion(ctx context.Context) (ServerVersion, error) {
	if v, ok := d.cachedVersion(); ok {
		return v, nil
	}
	ch := d.group.DoChan("version", func() (any, error) {
		// A probe that finished between the check above and DoChan has
		// already filled the cache.
		if v, ok := d.cachedVersion(); ok {
			return v, nil
		}
		pctx := context.WithoutCancel(ctx)
		v, err := d.dialect.ServerVersion(pctx, SQLInfo{Querier: d.Driver})
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.version = &v
		d.mu.Unlock()
		d.log.DebugContext(pctx, "firebird server version detected",
			slog.String("version", v.String()),
			slog.String("product", v.Product),
		)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return ServerVersion{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return ServerVersion{}, r.Err
		}
		return r.Val.(ServerVersion), nil
	}
}

func (d *Driver) cachedVersion() (ServerVersion, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.version == nil {
		return ServerVersion{}, false
	}
	return *d.version, true
}

var _ dialect.Driver = (*Driver)(nil)
