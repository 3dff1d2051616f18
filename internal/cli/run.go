package cli

import (
	"context"
	"fmt"

	"github.com/danmuck/lazctl/internal/dispatch"
	"github.com/danmuck/lazctl/internal/macros"
	"github.com/danmuck/lazctl/internal/tools"
	"github.com/spf13/cobra"
)

func newRunCmd(app *App) *cobra.Command {
	var list bool
	c := &cobra.Command{
		Use:   "run <macro>",
		Short: "Run a named macro, e.g. split-rgb",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range macros.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			if _, err := macros.Lookup(args[0]); err != nil {
				return err
			}
			return app.withChannel(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
				env := macros.NewEnv(d, tools.WithDefaultPressure(app.cfg.Transport.Session.DefaultPressure))
				return macros.Run(ctx, args[0], env)
			})
		},
	}
	c.Flags().BoolVar(&list, "list", false, "list the available macros")
	return c
}
