package layer

import (
	"context"
	"fmt"

	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/rs/zerolog"
)

// Channel is the part of the dispatcher layer commands need.
type Channel interface {
	Action(ctx context.Context, name string, args ...codec.Arg) error
	Query(ctx context.Context, name string, args ...codec.Arg) (codec.Reply, error)
}

// ID identifies a layer for the lifetime of the image.
type ID int64

// Client sends layer and image commands. Layer methods act on the current
// layer.
type Client struct {
	ch     Channel
	logger zerolog.Logger
}

func NewClient(ch Channel) *Client {
	return &Client{ch: ch, logger: logging.Component("layer")}
}

func (c *Client) ID(ctx context.Context) (ID, error) {
	return c.queryID(ctx, "LayerGetId?")
}

// Duplicate copies the current layer above itself and selects the copy.
func (c *Client) Duplicate(ctx context.Context) (ID, error) {
	return c.queryID(ctx, "LayerDuplicate?")
}

// New adds an empty layer above the current one and selects it. An empty
// name lets the host choose.
func (c *Client) New(ctx context.Context, name string) (ID, error) {
	if name == "" {
		return c.queryID(ctx, "LayerAddNew?")
	}
	return c.queryID(ctx, "LayerAddNew?", codec.A("Name", codec.String(name)))
}

func (c *Client) SelectID(ctx context.Context, id ID) error {
	return c.ch.Action(ctx, "LayerSelectId", codec.A("Id", codec.Int(id)))
}

func (c *Client) SetName(ctx context.Context, name string) error {
	return c.ch.Action(ctx, "LayerSetName", codec.A("Name", codec.String(name)))
}

func (c *Client) Name(ctx context.Context) (string, error) {
	reply, err := c.ch.Query(ctx, "LayerGetName?")
	if err != nil {
		return "", err
	}
	return reply.Text()
}

func (c *Client) SetVisible(ctx context.Context, visible bool) error {
	return c.ch.Action(ctx, "LayerSetVisible", codec.A("Visible", codec.Bool(visible)))
}

func (c *Client) Visible(ctx context.Context) (bool, error) {
	reply, err := c.ch.Query(ctx, "LayerGetVisible?")
	if err != nil {
		return false, err
	}
	return reply.Bool()
}

func (c *Client) SetBlendOp(ctx context.Context, op BlendOp) error {
	return c.ch.Action(ctx, "LayerSetBlendOp", codec.A("BlendOp", codec.Token(op.String())))
}

func (c *Client) BlendOp(ctx context.Context) (BlendOp, error) {
	reply, err := c.ch.Query(ctx, "LayerGetBlendOp?")
	if err != nil {
		return 0, err
	}
	tok, err := reply.Token()
	if err != nil {
		return 0, err
	}
	op, err := ParseBlendOp(tok)
	if err != nil {
		return 0, &codec.DecodeError{Want: "blend op", Got: tok, Err: err}
	}
	return op, nil
}

// SetOpacity takes 0..255.
func (c *Client) SetOpacity(ctx context.Context, opacity int) error {
	if opacity < 0 || opacity > 255 {
		return fmt.Errorf("%w: opacity %d outside 0..255", codec.ErrInvalidArgument, opacity)
	}
	return c.ch.Action(ctx, "LayerSetOpacity", codec.A("Opacity", codec.Int(opacity)))
}

func (c *Client) Opacity(ctx context.Context) (int, error) {
	reply, err := c.ch.Query(ctx, "LayerGetOpacity?")
	if err != nil {
		return 0, err
	}
	v, err := reply.Int()
	return int(v), err
}

// MergeOver merges the current layer into the one below using the current
// layer's blend op. The layer below becomes current.
func (c *Client) MergeOver(ctx context.Context) error {
	return c.ch.Action(ctx, "LayerMergeOver")
}

func (c *Client) RemoveCurrent(ctx context.Context) error {
	return c.ch.Action(ctx, "LayerRemoveCurrent")
}

func (c *Client) queryID(ctx context.Context, name string, args ...codec.Arg) (ID, error) {
	reply, err := c.ch.Query(ctx, name, args...)
	if err != nil {
		return 0, err
	}
	v, err := reply.Int()
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}
