package macros

import (
	"context"
	"errors"
	"maps"
	"testing"

	"github.com/danmuck/lazctl/internal/dispatch"
	"github.com/danmuck/lazctl/internal/layer"
	"github.com/danmuck/lazctl/internal/protocol/session"
	"github.com/danmuck/lazctl/internal/simhost"
	"github.com/danmuck/lazctl/internal/testutil/testlog"
	"github.com/danmuck/lazctl/internal/tools"
)

func newEnv(t *testing.T) (Env, *dispatch.Dispatcher, *simhost.Host) {
	t.Helper()
	sets := tools.TokenSets()
	maps.Copy(sets, layer.TokenSets())
	h := simhost.New(simhost.WithTokenSets(sets))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d, err := dispatch.New(h.Connect(ctx), session.DefaultConfig())
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return NewEnv(d), d, h
}

func TestSplitRGB(t *testing.T) {
	testlog.Start(t)
	env, _, h := newEnv(t)
	ctx := context.Background()

	if err := Run(ctx, "split-rgb", env); err != nil {
		t.Fatalf("split-rgb: %v", err)
	}
	// The macro ends on an action; a query flushes it through the host.
	if _, err := env.Layers.Count(ctx); err != nil {
		t.Fatalf("count: %v", err)
	}

	layers := h.Layers()
	want := []struct {
		name    string
		blend   string
		ops     []string
		visible bool
	}{
		{"Layer 1", "Normal", nil, false},
		{"Blue channel", "Lighten", []string{"Darken(fill #0000FFFF)"}, true},
		{"Green channel", "Lighten", []string{"Darken(fill #00FF00FF)"}, true},
		{"Red channel", "Lighten", []string{"Darken(fill #FF0000FF)"}, true},
	}
	if len(layers) != len(want) {
		t.Fatalf("layer count got=%d want=%d: %+v", len(layers), len(want), layers)
	}
	for i, w := range want {
		l := layers[i]
		if l.Name != w.name || l.BlendOp != w.blend || l.Visible != w.visible {
			t.Fatalf("layer %d got=%+v want=%+v", i+1, l, w)
		}
		if len(l.Ops) != len(w.ops) {
			t.Fatalf("layer %d ops got=%v want=%v", i+1, l.Ops, w.ops)
		}
		for j := range w.ops {
			if l.Ops[j] != w.ops[j] {
				t.Fatalf("layer %d op %d got=%q want=%q", i+1, j, l.Ops[j], w.ops[j])
			}
		}
	}
	if cur := h.CurrentLayer(); cur.Name != "Layer 1" {
		t.Fatalf("current layer got=%q", cur.Name)
	}
	if got := h.UndoGroups(); got != 1 {
		t.Fatalf("undo groups got=%d want=1", got)
	}
	if tool := h.Tool(); tool != "FloodFill" {
		t.Fatalf("tool got=%q", tool)
	}
}

func TestSplitRGBFailsOnClosedChannel(t *testing.T) {
	testlog.Start(t)
	env, d, _ := newEnv(t)
	_ = d.Close()
	err := SplitRGB(context.Background(), env)
	if !errors.Is(err, dispatch.ErrChannel) {
		t.Fatalf("expected ErrChannel, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	testlog.Start(t)
	if names := Names(); len(names) != 1 || names[0] != "split-rgb" {
		t.Fatalf("names got=%v", names)
	}
	if _, err := Lookup("sharpen"); !errors.Is(err, ErrUnknownMacro) {
		t.Fatalf("expected ErrUnknownMacro, got %v", err)
	}
	if err := Run(context.Background(), "sharpen", Env{}); !errors.Is(err, ErrUnknownMacro) {
		t.Fatalf("run unknown: %v", err)
	}
}
