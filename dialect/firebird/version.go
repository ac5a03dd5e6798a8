package firebird

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/velox-firebird/dialect"
	"github.com/syssam/velox-firebird/dialect/sql"
)

// InfoCode identifies a database info item, as in isc_info_* of the
// Firebird API.
type InfoCode int

// Info codes answering with the server version.
const (
	// InfoVersion is isc_info_version, the implementation string every
	// InterBase compatible server answers.
	InfoVersion InfoCode = 12
	// InfoFirebirdVersion is isc_info_firebird_version.
	InfoFirebirdVersion InfoCode = 103
)

// Server products reported in ServerVersion.Product.
const (
	ProductFirebird  = "firebird"
	ProductInterbase = "interbase"
)

// InfoQuerier answers database info requests on a live connection.
type InfoQuerier interface {
	DBInfo(ctx context.Context, code InfoCode) (string, error)
}

// The InfoQuerierFunc type is an adapter to allow the use of ordinary
// functions as InfoQuerier.
type InfoQuerierFunc func(context.Context, InfoCode) (string, error)

// DBInfo calls f(ctx, code).
func (f InfoQuerierFunc) DBInfo(ctx context.Context, code InfoCode) (string, error) {
	return f(ctx, code)
}

// infoQueries maps info codes to the SQL statements answering them. The
// firebirdsql driver does not expose isc_dsql_info to database/sql users.
var infoQueries = map[InfoCode]string{
	InfoFirebirdVersion: "SELECT rdb$get_context('SYSTEM', 'ENGINE_VERSION') FROM rdb$database",
}

// SQLInfo implements InfoQuerier with SQL statements. Only
// InfoFirebirdVersion is supported; it requires Firebird 2.1 or newer.
type SQLInfo struct {
	Querier dialect.ExecQuerier
}

// DBInfo implements InfoQuerier.
func (q SQLInfo) DBInfo(ctx context.Context, code InfoCode) (string, error) {
	query, ok := infoQueries[code]
	if !ok {
		return "", &UnsupportedInfoError{Code: code}
	}
	rows := &sql.Rows{}
	if err := q.Querier.Query(ctx, query, []any{}, rows); err != nil {
		return "", err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("firebird: info code %d: no rows", int(code))
	}
	var v sql.NullString
	if err := rows.Scan(&v); err != nil {
		return "", err
	}
	if !v.Valid {
		return "", fmt.Errorf("firebird: info code %d: null value", int(code))
	}
	return strings.TrimSpace(v.String), nil
}

// ServerVersion is the version of the attached server.
type ServerVersion struct {
	Major   int
	Minor   int
	Build   int
	Product string
}

// Tuple returns (major, minor, build).
func (v ServerVersion) Tuple() [3]int {
	return [3]int{v.Major, v.Minor, v.Build}
}

// AtLeast reports whether the version is major.minor or newer.
func (v ServerVersion) AtLeast(major, minor int) bool {
	return v.Major > major || v.Major == major && v.Minor >= minor
}

// String returns "major.minor.build".
func (v ServerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

var (
	// e.g. "LI-V6.3.3.12981 Firebird 2.0" or "WI-V6.0.1.6"
	implVersionRe = regexp.MustCompile(`^\w+-V(\d+)\.(\d+)\.(\d+)\.(\d+)( \w+ (\d+)\.(\d+))?`)
	// e.g. "3.0.7", as returned by ENGINE_VERSION.
	engineVersionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)
)

// ParseVersion parses a server version string.
//
// Implementation strings carry a fake InterBase-like version first; when
// a product suffix follows, the version is taken from the suffix and the
// build from the fourth number:
//
//	LI-V6.3.3.12981 Firebird 2.0  ->  2.0.12981 firebird
//	WI-V6.0.1.6                   ->  6.0.1     interbase
//	3.0.7                         ->  3.0.7     firebird
func ParseVersion(s string) (ServerVersion, error) {
	if m := implVersionRe.FindStringSubmatch(s); m != nil {
		if m[5] != "" {
			return newVersion(ProductFirebird, m[6], m[7], m[4])
		}
		return newVersion(ProductInterbase, m[1], m[2], m[3])
	}
	if m := engineVersionRe.FindStringSubmatch(s); m != nil {
		return newVersion(ProductFirebird, m[1], m[2], m[3])
	}
	return ServerVersion{}, &VersionParseError{Version: s}
}

func newVersion(product string, parts ...string) (ServerVersion, error) {
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return ServerVersion{}, fmt.Errorf("firebird: version component %q: %w", p, err)
		}
		n[i] = v
	}
	return ServerVersion{Major: n[0], Minor: n[1], Build: n[2], Product: product}, nil
}

// ServerVersion queries the server version through q.
//
// The Firebird info code is tried first, or the InterBase one when the
// dialect is configured for InterBase. If the first probe fails, the other
// code is tried. If both fail, the returned *VersionProbeError wraps the
// second failure and carries the first as its cause.
func (d *Dialect) ServerVersion(ctx context.Context, q InfoQuerier) (ServerVersion, error) {
	primary, alternate := InfoFirebirdVersion, InfoVersion
	if d.opts.IsInterbase {
		primary, alternate = alternate, primary
	}
	s, err := q.DBInfo(ctx, primary)
	if err != nil {
		var altErr error
		if s, altErr = q.DBInfo(ctx, alternate); altErr != nil {
			return ServerVersion{}, &VersionProbeError{Code: alternate, Err: altErr, Cause: err}
		}
	}
	return ParseVersion(s)
}
