package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/lazctl/internal/dispatch"
	"github.com/danmuck/lazctl/internal/tools"
	"github.com/spf13/cobra"
)

func newToolCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "tool",
		Short: "Tool commands: choose, mouse, keys, write, color, get",
	}
	withTools := func(cmd *cobra.Command, fn func(ctx context.Context, c *tools.Client) error) error {
		return app.withChannel(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
			return fn(ctx, tools.NewClient(d, tools.WithDefaultPressure(app.cfg.Transport.Session.DefaultPressure)))
		})
	}

	choose := &cobra.Command{
		Use:   "choose <Tool>",
		Short: "Select the active tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := tools.ParseTool(args[0])
			if err != nil {
				return err
			}
			return withTools(cmd, func(ctx context.Context, c *tools.Client) error {
				return c.Choose(ctx, tool)
			})
		},
	}

	var mouseState string
	mouse := &cobra.Command{
		Use:   "mouse <x,y[,pressure]> ...",
		Short: "Stroke the active tool through the given points",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := make([][]float64, 0, len(args))
			for _, a := range args {
				p, err := parsePoint(a)
				if err != nil {
					return err
				}
				points = append(points, p)
			}
			state, err := parseStates(mouseState)
			if err != nil {
				return err
			}
			return withTools(cmd, func(ctx context.Context, c *tools.Client) error {
				if len(state) == 0 {
					return c.Mouse(ctx, points...)
				}
				return c.MouseState(ctx, state, points...)
			})
		},
	}
	mouse.Flags().StringVar(&mouseState, "state", "", "comma-separated click state, e.g. Left,Shift")

	var keyState string
	keys := &cobra.Command{
		Use:   "keys <Key> ...",
		Short: "Press keys with the active tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := make([]tools.Key, 0, len(args))
			for _, a := range args {
				k, err := tools.ParseKey(a)
				if err != nil {
					return err
				}
				ks = append(ks, k)
			}
			state, err := parseStates(keyState)
			if err != nil {
				return err
			}
			return withTools(cmd, func(ctx context.Context, c *tools.Client) error {
				return c.Keys(ctx, ks, state...)
			})
		},
	}
	keys.Flags().StringVar(&keyState, "state", "", "comma-separated modifier state, e.g. Ctrl,Shift")

	write := &cobra.Command{
		Use:   "write <text> ...",
		Short: "Type text with the active tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTools(cmd, func(ctx context.Context, c *tools.Client) error {
				return c.Write(ctx, strings.Join(args, " "))
			})
		},
	}

	var back bool
	color := &cobra.Command{
		Use:   "color <name|#RRGGBB[AA]|rgb(...)>",
		Short: "Set the pen color, or the back color with --back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := tools.LookupColor(args[0])
			if err != nil {
				return err
			}
			return withTools(cmd, func(ctx context.Context, c *tools.Client) error {
				if back {
					return c.SetBackColor(ctx, col)
				}
				return c.SetPenColor(ctx, col)
			})
		},
	}
	color.Flags().BoolVar(&back, "back", false, "set the back color")

	get := &cobra.Command{
		Use:   "get <Property>",
		Short: "Print a tool property, e.g. PenWidth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "ToolGet" + strings.TrimSuffix(args[0], "?") + "?"
			return app.withChannel(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
				reply, err := d.Query(ctx, name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatReply(reply))
				return nil
			})
		},
	}

	root.AddCommand(choose, mouse, keys, write, color, get)
	return root
}

func parsePoint(s string) ([]float64, error) {
	parts := strings.Split(strings.Trim(s, "()"), ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: point %q is not x,y[,pressure]", ErrBadArgument, s)
	}
	p := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: point %q: %w", ErrBadArgument, s, err)
		}
		p[i] = v
	}
	return p, nil
}

func parseStates(s string) ([]tools.ClickState, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []tools.ClickState
	for _, part := range strings.Split(s, ",") {
		st, err := tools.ParseClickState(part)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
