package sql

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/syssam/velox-firebird/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectExec(mock sqlmock.Sqlmock, query string) {
	mock.ExpectExec(regexp.QuoteMeta(query)).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestWithVarFirebird(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	drv := OpenDB("firebirdsql", db)

	t.Run("Query", func(t *testing.T) {
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', 'it''s') FROM rdb$database")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT rdb$get_context('USER_SESSION', 'tenant') FROM rdb$database")).
			WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("it's"))
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', NULL) FROM rdb$database")

		rows := &Rows{}
		err := drv.Query(
			WithVar(context.Background(), "tenant", "it's"),
			"SELECT rdb$get_context('USER_SESSION', 'tenant') FROM rdb$database",
			[]any{},
			rows,
		)
		require.NoError(t, err)
		require.NoError(t, rows.Close(), "closing the rows releases the connection")
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("ExecResetOnce", func(t *testing.T) {
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', 'a') FROM rdb$database")
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', 'b') FROM rdb$database")
		expectExec(mock, "INSERT INTO audit DEFAULT VALUES")
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', NULL) FROM rdb$database")

		ctx := WithVar(WithVar(context.Background(), "tenant", "a"), "tenant", "b")
		require.NoError(t, drv.Exec(ctx, "INSERT INTO audit DEFAULT VALUES", []any{}, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("ResetAfterFailure", func(t *testing.T) {
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', 'a') FROM rdb$database")
		mock.ExpectExec("INSERT").WillReturnError(errors.New("validation error"))
		expectExec(mock, "SELECT rdb$set_context('USER_SESSION', 'tenant', NULL) FROM rdb$database")

		err := drv.Exec(WithVar(context.Background(), "tenant", "a"), "INSERT INTO audit DEFAULT VALUES", []any{}, nil)
		require.ErrorContains(t, err, "validation error")
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("Tx", func(t *testing.T) {
		mock.ExpectBegin()
		expectExec(mock, `SELECT rdb$set_context('USER_TRANSACTION', 'path', 'C:\data') FROM rdb$database`)
		expectExec(mock, "UPDATE files SET seen = 1")
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.NoError(t, tx.Exec(WithVar(context.Background(), "path", `C:\data`), "UPDATE files SET seen = 1", []any{}, nil))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("ValueTooLong", func(t *testing.T) {
		err := drv.Exec(WithVar(context.Background(), "tenant", strings.Repeat("x", 256)), "DELETE FROM audit", []any{}, nil)
		require.ErrorContains(t, err, "value exceeds 255 bytes")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithVarPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.Postgres, db)

	expectExec(mock, "SET app.tenant = 'it''s'")
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	expectExec(mock, "RESET app.tenant")
	rows := &Rows{}
	require.NoError(t, drv.Query(WithVar(context.Background(), "app.tenant", "it's"), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, mock.ExpectationsWereMet())

	err = drv.Query(WithVar(context.Background(), "foo; DROP TABLE users; --", "bar"), "SELECT 1", []any{}, &Rows{})
	require.ErrorContains(t, err, "invalid session variable name")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithVarSiblings(t *testing.T) {
	base := WithVar(context.Background(), "a", "1")
	left := WithVar(base, "b", "2")
	right := WithVar(base, "c", "3")

	vars := func(ctx context.Context) []sessionVar {
		v, _ := ctx.Value(sessionVarsKey{}).([]sessionVar)
		return v
	}
	assert.Equal(t, []sessionVar{{"a", "1"}}, vars(base))
	assert.Equal(t, []sessionVar{{"a", "1"}, {"b", "2"}}, vars(left))
	assert.Equal(t, []sessionVar{{"a", "1"}, {"c", "3"}}, vars(right))
}

func TestSessionVarStmts(t *testing.T) {
	tests := []struct {
		name       string
		driverName string
		inTx       bool
		k, v       string
		set, reset string
		wantErr    string
	}{
		{
			name:       "Firebird",
			driverName: "firebirdsql",
			k:          "foo",
			v:          "bar",
			set:        "SELECT rdb$set_context('USER_SESSION', 'foo', 'bar') FROM rdb$database",
			reset:      "SELECT rdb$set_context('USER_SESSION', 'foo', NULL) FROM rdb$database",
		},
		{
			name:       "FirebirdTx",
			driverName: dialect.Firebird,
			inTx:       true,
			k:          "foo",
			v:          "bar",
			set:        "SELECT rdb$set_context('USER_TRANSACTION', 'foo', 'bar') FROM rdb$database",
		},
		{
			name:       "FirebirdBackslash",
			driverName: dialect.Firebird,
			k:          "path",
			v:          `C:\data`,
			set:        `SELECT rdb$set_context('USER_SESSION', 'path', 'C:\data') FROM rdb$database`,
			reset:      "SELECT rdb$set_context('USER_SESSION', 'path', NULL) FROM rdb$database",
		},
		{
			name:       "FirebirdQuotedName",
			driverName: dialect.Firebird,
			k:          "user's tenant",
			v:          "x",
			set:        "SELECT rdb$set_context('USER_SESSION', 'user''s tenant', 'x') FROM rdb$database",
			reset:      "SELECT rdb$set_context('USER_SESSION', 'user''s tenant', NULL) FROM rdb$database",
		},
		{
			name:       "FirebirdEmptyName",
			driverName: dialect.Firebird,
			wantErr:    "invalid session variable name",
		},
		{
			name:       "FirebirdLongName",
			driverName: dialect.Firebird,
			k:          strings.Repeat("n", 81),
			wantErr:    "invalid session variable name",
		},
		{
			name:       "Postgres",
			driverName: dialect.Postgres,
			k:          "foo",
			v:          `C:\data`,
			set:        `SET foo = 'C:\data'`,
			reset:      "RESET foo",
		},
		{
			name:       "MySQL",
			driverName: dialect.MySQL,
			k:          "foo",
			v:          `it's C:\data`,
			set:        `SET foo = 'it''s C:\\data'`,
			reset:      "SET foo = NULL",
		},
		{
			name:       "SQLite",
			driverName: dialect.SQLite,
			k:          "foo",
			v:          "bar",
			set:        "SET foo = 'bar'",
		},
		{
			name:       "InvalidIdent",
			driverName: dialect.MySQL,
			k:          "foo-bar",
			wantErr:    "invalid session variable name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, reset, err := sessionVarStmts(tt.driverName, tt.inTx, tt.k, tt.v)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, set)
			assert.Equal(t, tt.reset, reset)
		})
	}
}
