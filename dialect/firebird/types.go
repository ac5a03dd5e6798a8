package firebird

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the abstract column type of a velox field.
type Type uint8

// Column types known to the dialect.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat
	TypeString
	TypeText
	TypeBytes
	TypeTime
	TypeUUID
	TypeDecimal
	TypeJSON
	TypeEnum
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeText:    "text",
	TypeBytes:   "bytes",
	TypeTime:    "time",
	TypeUUID:    "uuid",
	TypeDecimal: "decimal",
	TypeJSON:    "json",
	TypeEnum:    "enum",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Column describes a column for DDL type rendering.
type Column struct {
	Type Type
	// Size is the VARCHAR length. Zero means DefaultStringSize.
	Size int
	// Precision and Scale apply to TypeDecimal. Zero precision means
	// DefaultDecimalPrecision and scale DefaultDecimalScale.
	Precision int
	Scale     int
}

// Limits and defaults of the type mapping.
const (
	DefaultStringSize       = 255
	MaxVarcharSize          = 32765
	DefaultDecimalPrecision = 18
	DefaultDecimalScale     = 4
)

// ColumnType renders the Firebird DDL type of c for the given server.
// BOOLEAN requires Firebird 3 and NUMERIC precisions over 18 Firebird 4;
// older servers get SMALLINT and a precision clamped to 18.
func (d *Dialect) ColumnType(c Column, v ServerVersion) (string, error) {
	switch c.Type {
	case TypeBool:
		if v.Product == ProductFirebird && v.AtLeast(3, 0) {
			return "BOOLEAN", nil
		}
		return "SMALLINT", nil
	case TypeInt:
		return "INTEGER", nil
	case TypeInt64:
		return "BIGINT", nil
	case TypeFloat:
		return "DOUBLE PRECISION", nil
	case TypeString, TypeEnum:
		size := c.Size
		if size <= 0 {
			size = DefaultStringSize
		}
		if size > MaxVarcharSize {
			return "BLOB SUB_TYPE TEXT", nil
		}
		return fmt.Sprintf("VARCHAR(%d)", size), nil
	case TypeText, TypeJSON:
		return "BLOB SUB_TYPE TEXT", nil
	case TypeBytes:
		return "BLOB SUB_TYPE BINARY", nil
	case TypeTime:
		return "TIMESTAMP", nil
	case TypeUUID:
		return "CHAR(16) CHARACTER SET OCTETS", nil
	case TypeDecimal:
		p, s := c.Precision, c.Scale
		if p <= 0 {
			p, s = DefaultDecimalPrecision, DefaultDecimalScale
		}
		maxp := 18
		if v.Product == ProductFirebird && v.AtLeast(4, 0) {
			maxp = 38
		}
		p = min(p, maxp)
		s = min(s, p)
		return fmt.Sprintf("NUMERIC(%d,%d)", p, s), nil
	default:
		return "", fmt.Errorf("firebird: unsupported column type %s", c.Type)
	}
}

// ResultProcessor returns the function normalizing values of the given
// column type read from the driver, or nil if values are used as is.
func (d *Dialect) ResultProcessor(t Type) func(any) (any, error) {
	switch t {
	case TypeBytes:
		return ProcessBlob
	case TypeUUID:
		return ProcessUUID
	case TypeDecimal:
		return ProcessDecimal
	default:
		return nil
	}
}

// ProcessUUID converts CHAR(16) CHARACTER SET OCTETS values, or their
// textual form, to uuid.UUID. NULL yields nil.
func ProcessUUID(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return x, nil
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	case string:
		if len(x) == 16 {
			return uuid.FromBytes([]byte(x))
		}
		return uuid.Parse(x)
	default:
		return nil, fmt.Errorf("firebird: unsupported uuid value of type %T", v)
	}
}

// ProcessDecimal converts NUMERIC and DECIMAL values to decimal.Decimal.
// NULL yields nil.
func ProcessDecimal(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case []byte:
		return decimal.NewFromString(string(x))
	case string:
		return decimal.NewFromString(x)
	default:
		return nil, fmt.Errorf("firebird: unsupported decimal value of type %T", v)
	}
}

// UUID is a uuid.UUID stored as CHAR(16) CHARACTER SET OCTETS.
type UUID struct {
	uuid.UUID
}

// Scan implements the sql.Scanner interface.
func (u *UUID) Scan(v any) error {
	r, err := ProcessUUID(v)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("firebird: cannot scan NULL into UUID")
	}
	u.UUID = r.(uuid.UUID)
	return nil
}

// Value implements the driver.Valuer interface.
func (u UUID) Value() (driver.Value, error) {
	return u.UUID[:], nil
}
