package firebird

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Keys set by ConnectArgs from the URL itself, as opposed to query parameters.
const (
	keyHost     = "host"
	keyUser     = "user"
	keyPassword = "password"
	keyDatabase = "database"
	keyTypeConv = "type_conv"
)

// DefaultPort is the Firebird server port used when none is given.
const DefaultPort = "3050"

// ConnectArgs holds the arguments for the driver's connect call.
type ConnectArgs struct {
	// Args are the positional arguments. Always empty.
	Args []any
	// Options are the keyword arguments.
	Options map[string]any
}

// ParseURL parses a firebird connection URL. Any scheme starting with
// "firebird" is accepted, e.g. "firebird" or "firebird+fdb".
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("firebird: parse url: %w", err)
	}
	if !strings.HasPrefix(u.Scheme, "firebird") {
		return nil, fmt.Errorf("firebird: unsupported url scheme %q", u.Scheme)
	}
	return u, nil
}

// ConnectArgsString parses raw with ParseURL and calls ConnectArgs.
func (d *Dialect) ConnectArgsString(raw string) (*ConnectArgs, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return nil, err
	}
	return d.ConnectArgs(u)
}

// ConnectArgs translates a connection URL into driver arguments.
//
// The URL user becomes "user" and a port is folded into the host as
// "host/port", Firebird's own notation. IPv6 hosts keep their brackets. Query parameters are merged last
// and override any field they name. A "type_conv" option is coerced to an
// integer.
func (d *Dialect) ConnectArgs(u *url.URL) (*ConnectArgs, error) {
	opts := make(map[string]any)
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			opts[keyUser] = name
		}
		if pass, ok := u.User.Password(); ok {
			opts[keyPassword] = pass
		}
	}
	host, port := u.Hostname(), u.Port()
	if host == "" && port != "" {
		return nil, fmt.Errorf("firebird: url has port %s but no host", port)
	}
	if host != "" {
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		if port != "" {
			host += "/" + port
		}
		opts[keyHost] = host
	}
	// One leading slash separates the host from the path, so
	// "//var/db.fdb" keeps an absolute path.
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		opts[keyDatabase] = db
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			opts[k] = vs[len(vs)-1]
		}
	}
	if err := coerceInt(opts, keyTypeConv); err != nil {
		return nil, err
	}
	return &ConnectArgs{Args: []any{}, Options: opts}, nil
}

// coerceInt converts opts[key] to an int in place, if present and not nil.
func coerceInt(opts map[string]any, key string) error {
	v, ok := opts[key]
	if !ok || v == nil {
		return nil
	}
	switch x := v.(type) {
	case int:
	case int32:
		opts[key] = int(x)
	case int64:
		opts[key] = int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return &OptionTypeError{Key: key, Value: v, Err: err}
		}
		opts[key] = n
	default:
		return &OptionTypeError{Key: key, Value: v}
	}
	return nil
}

// DSN renders the arguments in the firebirdsql DSN form:
//
//	user:password@host:port/database?key=value
//
// Query options are sorted by key. An IPv6 host without a port gets
// DefaultPort, since the driver only adds it to hosts without a colon.
//
// The driver opens the "database" option as given, except for two paths
// its DSN cannot express: a relative path with directories ("srv/app.fdb")
// is opened as absolute ("/srv/app.fdb"), and a single segment absolute
// path ("/app.fdb") as relative ("app.fdb").
func (a *ConnectArgs) DSN() string {
	var b strings.Builder
	if user, _ := a.Options[keyUser].(string); user != "" {
		if pass, ok := a.Options[keyPassword].(string); ok {
			b.WriteString(url.UserPassword(user, pass).String())
		} else {
			b.WriteString(url.User(user).String())
		}
		b.WriteByte('@')
	}
	if host, _ := a.Options[keyHost].(string); host != "" {
		b.WriteString(dsnHost(host))
	}
	b.WriteByte('/')
	if db, _ := a.Options[keyDatabase].(string); db != "" {
		b.WriteString(dsnPath(db))
	}
	params := make(url.Values)
	for k, v := range a.Options {
		switch k {
		case keyHost, keyUser, keyPassword, keyDatabase:
		default:
			params.Set(k, fmt.Sprint(v))
		}
	}
	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(params.Encode())
	}
	return b.String()
}

// dsnHost converts a "host/port" option to the "host:port" DSN form.
func dsnHost(host string) string {
	name, port, hasPort := strings.Cut(host, "/")
	if strings.HasPrefix(name, "[") {
		// Zone identifiers must be escaped inside URL hosts.
		name = strings.Replace(name, "%", "%25", 1)
		if !hasPort {
			port, hasPort = DefaultPort, true
		}
	}
	if hasPort {
		return name + ":" + port
	}
	return name
}

// dsnPath returns the DSN path for a database path. firebirdsql keeps the
// leading slash of a multi segment path and drops it otherwise.
func dsnPath(db string) string {
	if rest, ok := strings.CutPrefix(db, "/"); ok && strings.Contains(rest, "/") {
		db = rest
	}
	return (&url.URL{Path: db}).EscapedPath()
}
