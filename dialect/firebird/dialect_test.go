package firebird

import (
	"testing"

	_ "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velox-firebird/dialect"
)

func TestNew(t *testing.T) {
	d := New()
	assert.Equal(t, dialect.Firebird, d.Name())
	assert.True(t, d.RowCountEnabled())
	assert.False(t, d.RetainingEnabled())
	assert.False(t, d.IsInterbase())
	assert.Equal(t, DefaultDriverName, d.Options().DriverName)
	assert.True(t, SupportsStatementCache)

	d = New(RowCount(false), Retaining(true), Interbase(true), DriverName("custom"))
	assert.False(t, d.RowCountEnabled())
	assert.True(t, d.RetainingEnabled())
	assert.True(t, d.IsInterbase())
	assert.Equal(t, "custom", d.Options().DriverName)

	d = New(WithOptions(Options{Retaining: true}))
	assert.True(t, d.RetainingEnabled())
	assert.False(t, d.RowCountEnabled())
	assert.Equal(t, DefaultDriverName, d.Options().DriverName, "empty driver name falls back to the default")
}

func TestResolve(t *testing.T) {
	drv, err := New(DriverName("sqlmock")).Resolve()
	require.NoError(t, err)
	assert.NotNil(t, drv)

	_, err = New(DriverName("no-such-driver")).Resolve()
	require.Error(t, err)
	assert.True(t, IsDriverNotFound(err))
	var nf *DriverNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no-such-driver", nf.Name)
	assert.Contains(t, err.Error(), "forgotten import")
}
