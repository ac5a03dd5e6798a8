package firebird

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legalNameRe matches identifiers that need no quoting once uppercased.
var legalNameRe = regexp.MustCompile(`^[a-z][a-z0-9_$]*$`)

// reservedWords is the subset of Firebird reserved words likely to show up
// as table or column names.
var reservedWords = map[string]struct{}{
	"active": {}, "add": {}, "all": {}, "alter": {}, "and": {}, "as": {}, "asc": {},
	"between": {}, "by": {}, "case": {}, "char": {}, "character": {}, "check": {},
	"column": {}, "commit": {}, "connect": {}, "constraint": {}, "count": {},
	"create": {}, "current": {}, "cursor": {}, "date": {}, "day": {}, "default": {},
	"delete": {}, "desc": {}, "distinct": {}, "drop": {}, "else": {}, "end": {},
	"exists": {}, "external": {}, "for": {}, "foreign": {}, "from": {}, "full": {},
	"global": {}, "grant": {}, "group": {}, "having": {}, "hour": {}, "in": {},
	"index": {}, "inner": {}, "insert": {}, "into": {}, "is": {}, "join": {},
	"key": {}, "left": {}, "like": {}, "minute": {}, "month": {}, "not": {},
	"null": {}, "of": {}, "on": {}, "or": {}, "order": {}, "position": {},
	"primary": {}, "references": {}, "right": {}, "role": {}, "rows": {},
	"second": {}, "select": {}, "set": {}, "table": {}, "then": {}, "time": {},
	"timestamp": {}, "to": {}, "trigger": {}, "type": {}, "union": {}, "unique": {},
	"update": {}, "user": {}, "using": {}, "value": {}, "values": {}, "varchar": {},
	"view": {}, "when": {}, "where": {}, "with": {}, "year": {},
}

// RequiresQuotes reports whether a lowercase name must be quoted to keep
// its case, either because it is reserved or has illegal characters.
func RequiresQuotes(name string) bool {
	if _, ok := reservedWords[name]; ok {
		return true
	}
	return !legalNameRe.MatchString(name)
}

// NormalizeName converts a name read from the system tables to the
// lowercase form used by velox schemas. Trailing blanks, which CHAR columns
// of RDB$ tables carry, are removed. Names stored in uppercase that need no
// quoting become lowercase; any other name is kept as is.
func NormalizeName(name string) string {
	name = strings.TrimRight(name, " ")
	lower := cases.Lower(language.Und).String(name)
	if cases.Upper(language.Und).String(name) == name && !RequiresQuotes(lower) {
		return lower
	}
	return name
}

// DenormalizeName converts a lowercase name to the uppercase form Firebird
// stores for unquoted identifiers. Names that would need quoting, or carry
// any uppercase letter, are kept as is.
func DenormalizeName(name string) string {
	if cases.Lower(language.Und).String(name) == name && !RequiresQuotes(name) {
		return cases.Upper(language.Und).String(name)
	}
	return name
}
