// Package sql wraps database/sql connections as velox dialect drivers.
//
// A Driver pairs a *sql.DB with the dialect name derived from the
// database/sql driver name, so that higher layers can pick SQL flavours
// without inspecting the connection:
//
//	drv, err := sql.Open("firebirdsql", "sysdba:masterkey@localhost:3050/var/db/app.fdb")
//	if err != nil {
//		return err
//	}
//	drv.Dialect() // "firebird"
//
// # Session Variables
//
// WithVar attaches session variables to a context. Before the statement
// runs, the driver pins a connection and sets them with the dialect's
// syntax. On Firebird they go to the USER_SESSION context and are cleared
// when the connection returns to the pool; inside a transaction they go to
// USER_TRANSACTION and die with it:
//
//	ctx = sql.WithVar(ctx, "tenant", "acme")
//	// SELECT rdb$get_context('USER_SESSION', 'tenant') FROM rdb$database
//
// # Instrumentation
//
// NewStatsDriver counts queries, execs and transactions and can log slow
// statements through log/slog:
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger))
//	snapshot := stats.QueryStats().Stats()
//
// NewDebugDriver logs every statement at debug level.
package sql
