package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/lazctl/internal/dispatch"
	"github.com/spf13/cobra"
)

const replHelp = `Enter one command per line: Name [Arg=value ...]
Names ending in "?" print the host's reply; other names print "ok".
  .state      show the channel state
  .pending    list queries awaiting a reply
  .resync     probe the host after a timeout
  .reconnect  redial the host
  .quit       leave`

func newReplCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive command console on one channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withChannel(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
				return runRepl(ctx, d, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

// runRepl reads commands from in until EOF or .quit. Command errors are
// printed and the loop continues; only a closed channel ends it early.
func runRepl(ctx context.Context, d *dispatch.Dispatcher, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "lazctl> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		quit, err := replLine(ctx, d, line, out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if d.State() == dispatch.StateClosed {
				return err
			}
		}
		if quit {
			return nil
		}
		fmt.Fprint(out, "lazctl> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func replLine(ctx context.Context, d *dispatch.Dispatcher, line string, out io.Writer) (bool, error) {
	switch line {
	case "", "#":
		return false, nil
	case ".quit", ".exit":
		return true, nil
	case ".help":
		fmt.Fprintln(out, replHelp)
		return false, nil
	case ".state":
		fmt.Fprintln(out, d.State())
		return false, nil
	case ".pending":
		for _, p := range d.Pending() {
			fmt.Fprintf(out, "%d %s\n", p.MessageID, p.Command)
		}
		return false, nil
	case ".resync":
		if err := d.Resync(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(out, d.State())
		return false, nil
	case ".reconnect":
		if err := d.Reconnect(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(out, d.State())
		return false, nil
	}
	if strings.HasPrefix(line, "#") {
		return false, nil
	}

	words, err := SplitLine(line)
	if err != nil {
		return false, err
	}
	cmd, err := ParseCommand(words[0], words[1:])
	if err != nil {
		return false, err
	}
	reply, err := d.Send(ctx, cmd)
	if err != nil {
		return false, err
	}
	if cmd.IsQuery() {
		fmt.Fprintln(out, formatReply(reply))
	} else {
		fmt.Fprintln(out, "ok")
	}
	return false, nil
}
