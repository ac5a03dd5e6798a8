package firebird

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Options is the configuration of a Dialect.
type Options struct {
	// EnableRowCount reports RowsAffected after UPDATE and DELETE. When
	// disabled, RowsAffected returns -1.
	EnableRowCount bool `mapstructure:"enable_rowcount" yaml:"enable_rowcount"`
	// Retaining issues COMMIT RETAINING and ROLLBACK RETAINING instead of
	// ending the transaction.
	Retaining bool `mapstructure:"retaining" yaml:"retaining"`
	// IsInterbase probes the server version with the InterBase info code first.
	IsInterbase bool `mapstructure:"is_interbase" yaml:"is_interbase"`
	// DriverName is the database/sql driver name.
	DriverName string `mapstructure:"driver" yaml:"driver"`
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		EnableRowCount: true,
		DriverName:     DefaultDriverName,
	}
}

// DecodeOptions decodes options from a generic map, such as engine
// arguments taken from a configuration file. Keys absent from m keep their
// defaults. Values are weakly typed, so "false" and 0 both decode to false.
// Unknown keys are rejected.
func DecodeOptions(m map[string]any) (Options, error) {
	opts := DefaultOptions()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Options{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Options{}, fmt.Errorf("firebird: decode options: %w", err)
	}
	return opts, nil
}

// LoadOptions reads options from a YAML file.
//
//	enable_rowcount: false
//	retaining: true
func LoadOptions(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("firebird: load options: %w", err)
	}
	m := make(map[string]any)
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Options{}, fmt.Errorf("firebird: parse options %s: %w", path, err)
	}
	return DecodeOptions(m)
}
