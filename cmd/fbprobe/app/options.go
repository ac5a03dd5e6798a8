package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syssam/velox-firebird/dialect/firebird"
)

const envPrefix = "FBPROBE"

// Options holds the fbprobe configuration, merged from flags, FBPROBE_*
// environment variables and an optional YAML config file, in that order
// of precedence.
type Options struct {
	Firebird firebird.Options `mapstructure:",squash"`
	Debug    bool             `mapstructure:"debug"`
	Timeout  time.Duration    `mapstructure:"timeout"`
}

func addFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.Bool("rowcount", true, "report affected rows after UPDATE and DELETE")
	fs.Bool("retaining", false, "use COMMIT RETAINING and ROLLBACK RETAINING")
	fs.Bool("interbase", false, "probe the server version as InterBase first")
	fs.String("driver", firebird.DefaultDriverName, "database/sql driver name")
	fs.Bool("debug", false, "log debug records to stderr")
	fs.Duration("timeout", 10*time.Second, "timeout for server round trips")
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"rowcount":  "enable_rowcount",
	"retaining": "retaining",
	"interbase": "is_interbase",
	"driver":    "driver",
	"debug":     "debug",
	"timeout":   "timeout",
}

// loadOptions resolves the options for a command invocation.
func loadOptions(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return opts, nil
}

// Dialect returns the Firebird dialect for the options.
func (o *Options) Dialect() *firebird.Dialect {
	return firebird.New(firebird.WithOptions(o.Firebird))
}

// Logger returns the stderr logger for the options.
func (o *Options) Logger() *slog.Logger {
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
