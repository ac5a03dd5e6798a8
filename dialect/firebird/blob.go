package firebird

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
)

// BlobHandle is a lazily read blob returned by a driver.
type BlobHandle interface {
	// Bytes reads the whole blob. It returns ErrBlobNotMaterializable if
	// the handle cannot be read into memory.
	Bytes() ([]byte, error)
	Close() error
}

// ProcessBlob normalizes a blob column value to []byte or nil.
//
// A handle that reports ErrBlobNotMaterializable is closed and yields nil.
// Other read errors are returned.
func ProcessBlob(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.Clone(x), nil
	case string:
		return []byte(x), nil
	case BlobHandle:
		b, err := x.Bytes()
		switch {
		case errors.Is(err, ErrBlobNotMaterializable):
			return nil, x.Close()
		case err != nil:
			return nil, err
		}
		return b, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if cerr := x.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("firebird: unsupported blob value of type %T", v)
	}
}

// Blob is a nullable binary blob column. It implements sql.Scanner and
// driver.Valuer.
type Blob struct {
	Data  []byte
	Valid bool // Valid is true if Data is not NULL.
}

// Scan implements the sql.Scanner interface.
func (b *Blob) Scan(v any) error {
	r, err := ProcessBlob(v)
	if err != nil {
		return err
	}
	b.Data, b.Valid = nil, false
	if data, ok := r.([]byte); ok {
		b.Data, b.Valid = data, true
	}
	return nil
}

// Value implements the driver.Valuer interface.
func (b Blob) Value() (driver.Value, error) {
	if !b.Valid {
		return nil, nil
	}
	return b.Data, nil
}
