package cli

import (
	"context"
	"errors"
	"maps"
	"net"
	"os/signal"
	"syscall"

	"github.com/danmuck/lazctl/internal/auth"
	"github.com/danmuck/lazctl/internal/config"
	"github.com/danmuck/lazctl/internal/layer"
	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/simhost"
	"github.com/danmuck/lazctl/internal/tools"
	"github.com/danmuck/lazctl/internal/transport"
	"github.com/spf13/cobra"
)

func newSimHostCmd(app *App) *cobra.Command {
	var (
		listen     string
		httpListen string
		handshake  bool
		stdio      bool
	)
	c := &cobra.Command{
		Use:   "simhost",
		Short: "Run the stub paint host for scripting without a real host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := app.cfg.SimHost
			flags := cmd.Flags()
			if flags.Changed("listen") {
				sc.Listen = listen
			}
			if flags.Changed("http") {
				sc.HTTPListen = httpListen
			}
			if flags.Changed("require-hello") {
				sc.Handshake = handshake
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if stdio {
				return newSimHost(sc).ServeConn(ctx, transport.Stdio())
			}
			return serveSimHost(ctx, sc)
		},
	}
	c.Flags().StringVar(&listen, "listen", "", "command channel address (default from config)")
	c.Flags().StringVar(&httpListen, "http", "", "inspection API address; empty disables it")
	c.Flags().BoolVar(&handshake, "require-hello", false, "require the hello exchange")
	c.Flags().BoolVar(&stdio, "stdio", false, "serve one client on stdin/stdout, as launched by the exec transport")
	return c
}

// hostTokenSets is every token set the client packages know.
func hostTokenSets() map[string][]string {
	sets := tools.TokenSets()
	maps.Copy(sets, layer.TokenSets())
	return sets
}

func newSimHost(sc config.SimHostConfig) *simhost.Host {
	return simhost.New(
		simhost.WithHandshake(sc.Handshake),
		simhost.WithAuth(auth.ForToken(sc.Token)),
		simhost.WithTokenSets(hostTokenSets()),
		simhost.WithImageSize(sc.Width, sc.Height),
		simhost.WithLogger(logging.Component("simhost")),
	)
}

func serveSimHost(ctx context.Context, sc config.SimHostConfig) error {
	h := newSimHost(sc)
	ln, err := net.Listen("tcp", sc.Listen)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 2)
	running := 1
	go func() { errs <- h.Serve(ctx, ln) }()
	if sc.HTTPListen != "" {
		running++
		go func() { errs <- h.ListenHTTP(ctx, sc.HTTPListen) }()
	}

	var firstErr error
	for ; running > 0; running-- {
		err := <-errs
		if err != nil && firstErr == nil {
			firstErr = err
		}
		cancel()
	}
	if errors.Is(firstErr, context.Canceled) {
		return nil
	}
	return firstErr
}
