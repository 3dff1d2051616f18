package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/danmuck/lazctl/internal/dispatch"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/spf13/cobra"
)

func newSendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "send <Command> [Name=value ...]",
		Short: "Send one command; queries print their reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ParseCommand(args[0], args[1:])
			if err != nil {
				return err
			}
			return app.withChannel(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
				reply, err := d.Send(ctx, c)
				if err != nil {
					return err
				}
				if c.IsQuery() {
					fmt.Fprintln(cmd.OutOrStdout(), formatReply(reply))
				}
				return nil
			})
		},
	}
}

func newQueryCmd(app *App) *cobra.Command {
	var shape string
	c := &cobra.Command{
		Use:   "query <Command?> [Name=value ...]",
		Short: "Send a query and print its reply",
		Long: `Send a query and print its reply. The trailing "?" is added when
missing. With --shape the reply is decoded and normalized first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !codec.IsQuery(name) {
				name += "?"
			}
			q, err := ParseCommand(name, args[1:])
			if err != nil {
				return err
			}
			want, err := parseShape(shape)
			if err != nil {
				return err
			}
			return app.withChannel(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
				v, err := d.QueryAs(ctx, want, q.Name, q.Args...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatReply(codec.Reply{Value: v}))
				return nil
			})
		},
	}
	c.Flags().StringVar(&shape, "shape", "any", "decode the reply as: any|bool|int|float|string|token|tuple|color|list|token-list|tuple-list|float-list")
	return c
}

// parseShape accepts a shape name with dashes for spaces, e.g. token-list.
func parseShape(s string) (codec.Shape, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", " ")
	for shape := codec.ShapeAny; shape <= codec.ShapeFloatList; shape++ {
		if shape.String() == name {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown shape %q", ErrBadArgument, s)
}
