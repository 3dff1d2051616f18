// Package cli is the lazctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/lazctl/internal/config"
	"github.com/danmuck/lazctl/internal/dispatch"
	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/danmuck/lazctl/internal/transport"
	"github.com/spf13/cobra"
)

// EnvConfig names the config file when --config is not given.
const EnvConfig = "LAZCTL_CONFIG"

var Version = "dev"

// App holds the flags and config shared by every subcommand.
type App struct {
	configPath string
	logLevel   string
	kind       string
	address    string
	handshake  bool
	timeout    time.Duration

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	root := &cobra.Command{
		Use:   "lazctl",
		Short: "Drive a scripted paint host over its command channel",
		Long: `lazctl sends commands to a paint host and prints query replies.

A command name ending in "?" is a query and waits for the host's reply.
Any other name is an action and returns once the command is written.
Arguments are written Name=value, with values in literal syntax:
  Width=2.5  Name=Pen  Text="hello"  Color=#FF0000  Coords=[(0,0),(10,5)]`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return app.load(cmd) },
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "config file (default $"+EnvConfig+")")
	flags.StringVar(&app.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	flags.StringVar(&app.kind, "transport", "", "transport kind: stdio|unix|tcp|exec")
	flags.StringVar(&app.address, "address", "", "socket path, host:port, or host program")
	flags.BoolVar(&app.handshake, "handshake", false, "exchange hello before sending commands")
	flags.DurationVar(&app.timeout, "timeout", 0, "query reply timeout")

	root.AddCommand(
		newSendCmd(app),
		newQueryCmd(app),
		newToolCmd(app),
		newRunCmd(app),
		newReplCmd(app),
		newSimHostCmd(app),
		newConfigCmd(app),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lazctl: %v\n", err)
		return ExitCode(err)
	}
	return 0
}

// ExitCode maps an error to a process exit status by kind.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, dispatch.ErrProtocol):
		return 2
	case errors.Is(err, dispatch.ErrTimeout):
		return 3
	case errors.Is(err, dispatch.ErrChannel):
		return 4
	case errors.Is(err, codec.ErrDecode):
		return 5
	default:
		return 1
	}
}

func (a *App) load(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("transport") {
		kind, err := transport.ParseKind(a.kind)
		if err != nil {
			return err
		}
		cfg.Transport.Kind = kind
	}
	if flags.Changed("address") {
		cfg.Transport.Address = a.address
	}
	if flags.Changed("handshake") {
		cfg.Transport.Session.Handshake = a.handshake
	}
	if flags.Changed("timeout") {
		cfg.Transport.Session.QueryTimeout = a.timeout
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logging.ConfigureLevel(cfg.LogLevel)
	a.cfg = cfg
	return nil
}

// open dials the configured host. The dispatcher keeps the dialer for
// reconnects.
func (a *App) open(ctx context.Context) (*dispatch.Dispatcher, error) {
	return dispatch.Open(ctx, transport.Dialer(a.cfg.Transport), a.cfg.Transport.Session,
		dispatch.WithClientName(a.cfg.Client),
	)
}

// withChannel opens a channel, runs fn, and closes the channel.
func (a *App) withChannel(cmd *cobra.Command, fn func(ctx context.Context, d *dispatch.Dispatcher) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Close())
	}()
	return fn(ctx, d)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lazctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lazctl %s\n", Version)
			return nil
		},
	}
}
