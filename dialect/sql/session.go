package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/syssam/velox-firebird/dialect"
)

// Firebird context variable limits: names are at most 80 bytes and values
// are stored as VARCHAR(255).
const (
	maxContextName  = 80
	maxContextValue = 255
)

// identRe matches the variable names accepted by SET on other dialects,
// including dotted Postgres settings such as "app.tenant".
var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]{0,127}$`)

type sessionVar struct{ name, value string }

type sessionVarsKey struct{}

// WithVar returns a context that sets a session variable before every
// statement executed with it. On Firebird the variable lives in the
// USER_TRANSACTION context inside a transaction and in USER_SESSION
// otherwise; read it with rdb$get_context.
func WithVar(ctx context.Context, name, value string) context.Context {
	vars, _ := ctx.Value(sessionVarsKey{}).([]sessionVar)
	vars = append(slices.Clip(vars), sessionVar{name: name, value: value})
	return context.WithValue(ctx, sessionVarsKey{}, vars)
}

// withSession pins a connection and sets the session variables of ctx on
// it. The returned release function resets the variables and returns the
// connection to the pool; it is nil when nothing needs releasing.
func (c Conn) withSession(ctx context.Context) (ExecQuerier, func() error, error) {
	vars, _ := ctx.Value(sessionVarsKey{}).([]sessionVar)
	if len(vars) == 0 {
		return c, nil, nil
	}
	var (
		ex      ExecQuerier
		release func() error
		inTx    bool
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.Tx:
		ex, inTx = e, true
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, release = conn, conn.Close
	default:
		return nil, nil, fmt.Errorf("unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	var (
		reset []string
		seen  = make(map[string]struct{}, len(vars))
	)
	for _, v := range vars {
		set, unset, err := sessionVarStmts(c.dialect, inTx, v.name, v.value)
		if err == nil {
			_, err = ex.ExecContext(ctx, set)
		}
		if err != nil {
			if release != nil {
				err = errors.Join(err, release())
			}
			return nil, nil, err
		}
		if _, ok := seen[v.name]; !ok && unset != "" {
			reset = append(reset, unset)
		}
		seen[v.name] = struct{}{}
	}
	if closeConn := release; closeConn != nil && len(reset) > 0 {
		// The statement context may be canceled by now.
		release = func() error {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			for _, q := range reset {
				if _, err := ex.ExecContext(ctx, q); err != nil {
					return errors.Join(err, closeConn())
				}
			}
			return closeConn()
		}
	}
	return ex, release, nil
}

// sessionVarStmts returns the statements that set and reset a session
// variable named k for the given driver name. An empty reset means the
// variable dies with the transaction or needs no cleanup.
func sessionVarStmts(name string, inTx bool, k, v string) (set, reset string, err error) {
	switch dialectOf(name) {
	case dialect.Firebird:
		// Context variable names are string literals, not identifiers.
		if k == "" || len(k) > maxContextName {
			return "", "", fmt.Errorf("invalid session variable name: %q", k)
		}
		if len(v) > maxContextValue {
			return "", "", fmt.Errorf("session variable %q: value exceeds %d bytes", k, maxContextValue)
		}
		if inTx {
			return fmt.Sprintf("SELECT rdb$set_context('USER_TRANSACTION', %s, %s) FROM rdb$database", quoteString(k), quoteString(v)), "", nil
		}
		return fmt.Sprintf("SELECT rdb$set_context('USER_SESSION', %s, %s) FROM rdb$database", quoteString(k), quoteString(v)),
			fmt.Sprintf("SELECT rdb$set_context('USER_SESSION', %s, NULL) FROM rdb$database", quoteString(k)), nil
	}
	if !identRe.MatchString(k) {
		return "", "", fmt.Errorf("invalid session variable name: %q", k)
	}
	switch dialectOf(name) {
	case dialect.Postgres:
		return fmt.Sprintf("SET %s = %s", k, quoteString(v)), "RESET " + k, nil
	case dialect.MySQL:
		// MySQL treats backslash as an escape character in literals.
		v = strings.ReplaceAll(v, `\`, `\\`)
		return fmt.Sprintf("SET %s = %s", k, quoteString(v)), fmt.Sprintf("SET %s = NULL", k), nil
	default:
		return fmt.Sprintf("SET %s = %s", k, quoteString(v)), "", nil
	}
}

// quoteString renders s as a standard SQL string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
