package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/velox-firebird/dialect/firebird"
)

// NewCommand returns the fbprobe root command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fbprobe",
		Short: "Inspect Firebird connections the way the velox dialect sees them",
		Long: `fbprobe renders the driver DSN for a firebird:// URL, detects the server
version and checks connectivity, using the same dialect configuration as
applications built on velox-firebird.`,
		SilenceUsage: true,
	}
	addFlags(cmd.PersistentFlags())
	cmd.AddCommand(newDSNCommand(), newVersionCommand(), newPingCommand())
	return cmd
}

func newDSNCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dsn <url>",
		Short: "Print the firebirdsql DSN for a connection URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(cmd.Flags())
			if err != nil {
				return err
			}
			ca, err := opts.Dialect().ConnectArgsString(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ca.DSN())
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version <url>",
		Short: "Connect and print the server version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd, args[0], func(ctx context.Context, drv *firebird.Driver) error {
				v, err := drv.ServerVersion(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", v, v.Product)
				return nil
			})
		},
	}
}

func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping <url>",
		Short: "Connect and run a trivial query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cmd, args[0], func(ctx context.Context, drv *firebird.Driver) error {
				if err := drv.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
}

// withDriver opens a driver for rawURL and calls fn with a context bounded
// by the configured timeout.
func withDriver(cmd *cobra.Command, rawURL string, fn func(context.Context, *firebird.Driver) error) error {
	opts, err := loadOptions(cmd.Flags())
	if err != nil {
		return err
	}
	logger := opts.Logger()
	drv, err := firebird.Open(opts.Dialect(), rawURL, firebird.WithLogger(logger))
	if err != nil {
		return err
	}
	defer drv.Close()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	logger.DebugContext(ctx, "connecting", "driver", opts.Firebird.DriverName)
	return fn(ctx, drv)
}
