// Package macros holds scripted sequences built from tool and layer
// commands. Each macro runs inside one undo group.
package macros

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/lazctl/internal/layer"
	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/danmuck/lazctl/internal/tools"
)

var ErrUnknownMacro = errors.New("macros: unknown macro")

// Env is what a macro drives.
type Env struct {
	Tools  *tools.Client
	Layers *layer.Client
}

// NewEnv builds both clients over one channel.
func NewEnv(ch tools.Channel, opts ...tools.ClientOption) Env {
	return Env{Tools: tools.NewClient(ch, opts...), Layers: layer.NewClient(ch)}
}

type Macro func(ctx context.Context, env Env) error

var registry = map[string]Macro{
	"split-rgb": SplitRGB,
}

func Lookup(name string) (Macro, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMacro, name)
	}
	return m, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run looks up a macro by name and runs it.
func Run(ctx context.Context, name string, env Env) error {
	m, err := Lookup(name)
	if err != nil {
		return err
	}
	logger := logging.Component("macros")
	logger.Info().Str("macro", name).Msg("macro.start")
	if err := m(ctx, env); err != nil {
		logger.Error().Err(err).Str("macro", name).Msg("macro.failed")
		return err
	}
	logger.Info().Str("macro", name).Msg("macro.done")
	return nil
}

type channel struct {
	name  string
	color codec.Color
}

// SplitRGB splits the current layer into red, green and blue layers. Each
// channel is a copy of the source darkened by a flat fill of the channel
// color and blended back with Lighten, so the three together recompose the
// original. The source layer is left selected and hidden.
func SplitRGB(ctx context.Context, env Env) error {
	return env.Layers.Undoable(ctx, func(ctx context.Context) error {
		source, err := env.Layers.ID(ctx)
		if err != nil {
			return err
		}
		channels := []channel{
			{"Blue channel", tools.Blue},
			{"Green channel", tools.Lime},
			{"Red channel", tools.Red},
		}
		for i, ch := range channels {
			if i > 0 {
				if err := env.Layers.SelectID(ctx, source); err != nil {
					return err
				}
			}
			if _, err := env.Layers.Duplicate(ctx); err != nil {
				return err
			}
			if i > 0 {
				if err := env.Layers.MoveToTop(ctx); err != nil {
					return err
				}
			}
			if err := splitChannel(ctx, env, ch); err != nil {
				return fmt.Errorf("%s: %w", ch.name, err)
			}
		}
		if err := env.Layers.SelectID(ctx, source); err != nil {
			return err
		}
		return env.Layers.SetVisible(ctx, false)
	})
}

// splitChannel darkens the current layer with a flat fill of ch.color and
// names it.
func splitChannel(ctx context.Context, env Env, ch channel) error {
	if _, err := env.Layers.New(ctx, ""); err != nil {
		return err
	}
	if err := env.Tools.Choose(ctx, tools.ToolFloodFill); err != nil {
		return err
	}
	if err := env.Tools.SetForeColor(ctx, ch.color); err != nil {
		return err
	}
	if err := env.Tools.Mouse(ctx, codec.Pt(0, 0)); err != nil {
		return err
	}
	if err := env.Layers.SetBlendOp(ctx, layer.BlendDarken); err != nil {
		return err
	}
	if err := env.Layers.MergeOver(ctx); err != nil {
		return err
	}
	if err := env.Layers.SetBlendOp(ctx, layer.BlendLighten); err != nil {
		return err
	}
	return env.Layers.SetName(ctx, ch.name)
}
