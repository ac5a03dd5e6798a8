package firebird

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velox-firebird/dialect/sql"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want ServerVersion
	}{
		{"LI-V6.3.3.12981 Firebird 2.0", ServerVersion{2, 0, 12981, ProductFirebird}},
		{"WI-V3.0.7.33374 Firebird 3.0", ServerVersion{3, 0, 33374, ProductFirebird}},
		{"WI-V6.0.1.6", ServerVersion{6, 0, 1, ProductInterbase}},
		{"LI-V6.3.3.12981 Firebird 2.0/tcp (fbhost)/P10", ServerVersion{2, 0, 12981, ProductFirebird}},
		{"3.0.7", ServerVersion{3, 0, 7, ProductFirebird}},
		{"4.0.2", ServerVersion{4, 0, 2, ProductFirebird}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	for _, in := range []string{"", "Firebird", "V3.0", "3.0"} {
		_, err := ParseVersion(in)
		assert.ErrorIs(t, err, ErrVersionParse, in)
	}
}

func TestServerVersionAccessors(t *testing.T) {
	v := ServerVersion{Major: 3, Minor: 0, Build: 7, Product: ProductFirebird}
	assert.Equal(t, [3]int{3, 0, 7}, v.Tuple())
	assert.Equal(t, "3.0.7", v.String())
	assert.True(t, v.AtLeast(2, 5))
	assert.True(t, v.AtLeast(3, 0))
	assert.False(t, v.AtLeast(3, 1))
	assert.False(t, v.AtLeast(4, 0))
}

// recordingInfo answers info codes from a fixed table and records the calls.
type recordingInfo struct {
	answers map[InfoCode]string
	errs    map[InfoCode]error
	calls   []InfoCode
}

func (r *recordingInfo) DBInfo(_ context.Context, code InfoCode) (string, error) {
	r.calls = append(r.calls, code)
	if err := r.errs[code]; err != nil {
		return "", err
	}
	return r.answers[code], nil
}

func TestDialectServerVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("primary", func(t *testing.T) {
		q := &recordingInfo{answers: map[InfoCode]string{
			InfoFirebirdVersion: "LI-V6.3.7.32974 Firebird 2.5",
			InfoVersion:         "LI-V6.3.7.32974 Firebird 2.5",
		}}
		v, err := New().ServerVersion(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, [3]int{2, 5, 32974}, v.Tuple())
		assert.Equal(t, []InfoCode{InfoFirebirdVersion}, q.calls)
	})

	t.Run("fallback", func(t *testing.T) {
		q := &recordingInfo{
			answers: map[InfoCode]string{InfoVersion: "WI-V6.0.1.6"},
			errs:    map[InfoCode]error{InfoFirebirdVersion: errors.New("unknown info item")},
		}
		v, err := New().ServerVersion(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, ServerVersion{6, 0, 1, ProductInterbase}, v)
		assert.Equal(t, []InfoCode{InfoFirebirdVersion, InfoVersion}, q.calls)
	})

	t.Run("interbase_order", func(t *testing.T) {
		q := &recordingInfo{answers: map[InfoCode]string{InfoVersion: "WI-V7.5.1.80"}}
		v, err := New(Interbase(true)).ServerVersion(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, ServerVersion{7, 5, 1, ProductInterbase}, v)
		assert.Equal(t, []InfoCode{InfoVersion}, q.calls)
	})

	t.Run("both_fail", func(t *testing.T) {
		first := errors.New("first")
		second := errors.New("second")
		q := &recordingInfo{errs: map[InfoCode]error{
			InfoFirebirdVersion: first,
			InfoVersion:         second,
		}}
		_, err := New().ServerVersion(ctx, q)
		require.Error(t, err)
		assert.True(t, IsVersionProbe(err))
		assert.ErrorIs(t, err, second)
		assert.ErrorIs(t, err, first)
		var pe *VersionProbeError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, InfoVersion, pe.Code)
		assert.Same(t, second, pe.Err)
		assert.Same(t, first, pe.Cause)
		assert.Equal(t, []InfoCode{InfoFirebirdVersion, InfoVersion}, q.calls)
	})

	t.Run("unparseable", func(t *testing.T) {
		q := InfoQuerierFunc(func(context.Context, InfoCode) (string, error) { return "garbage", nil })
		_, err := New().ServerVersion(ctx, q)
		assert.ErrorIs(t, err, ErrVersionParse)
	})
}

func TestSQLInfo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	q := SQLInfo{Querier: sql.OpenDB(Name, db)}
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT rdb$get_context('SYSTEM', 'ENGINE_VERSION') FROM rdb$database")).
		WillReturnRows(sqlmock.NewRows([]string{"RDB$GET_CONTEXT"}).AddRow("3.0.10 "))
	s, err := q.DBInfo(ctx, InfoFirebirdVersion)
	require.NoError(t, err)
	assert.Equal(t, "3.0.10", s)

	_, err = q.DBInfo(ctx, InfoVersion)
	assert.ErrorIs(t, err, ErrUnsupportedInfo)

	mock.ExpectQuery("ENGINE_VERSION").
		WillReturnRows(sqlmock.NewRows([]string{"RDB$GET_CONTEXT"}).AddRow(nil))
	_, err = q.DBInfo(ctx, InfoFirebirdVersion)
	assert.EqualError(t, err, "firebird: info code 103: null value")

	mock.ExpectQuery("ENGINE_VERSION").
		WillReturnRows(sqlmock.NewRows([]string{"RDB$GET_CONTEXT"}))
	_, err = q.DBInfo(ctx, InfoFirebirdVersion)
	assert.EqualError(t, err, "firebird: info code 103: no rows")

	mock.ExpectQuery("ENGINE_VERSION").WillReturnError(errors.New("Function unknown RDB$GET_CONTEXT"))
	_, err = q.DBInfo(ctx, InfoFirebirdVersion)
	assert.ErrorContains(t, err, "Function unknown")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLInfoInterbaseFallback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// InfoVersion is unsupported over SQL, so InterBase mode falls back to
	// the Firebird engine version.
	mock.ExpectQuery("ENGINE_VERSION").
		WillReturnRows(sqlmock.NewRows([]string{"RDB$GET_CONTEXT"}).AddRow("2.5.9"))
	v, err := New(Interbase(true)).ServerVersion(context.Background(), SQLInfo{Querier: sql.OpenDB(Name, db)})
	require.NoError(t, err)
	assert.Equal(t, ServerVersion{2, 5, 9, ProductFirebird}, v)
	require.NoError(t, mock.ExpectationsWereMet())
}
