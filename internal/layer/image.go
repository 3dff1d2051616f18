package layer

import (
	"context"
	"errors"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

func (c *Client) ImageSize(ctx context.Context) (width, height int, err error) {
	reply, err := c.ch.Query(ctx, "ImageGetSize?")
	if err != nil {
		return 0, 0, err
	}
	w, h, err := reply.Pair()
	if err != nil {
		return 0, 0, err
	}
	return int(w), int(h), nil
}

// Index is the current layer's 1-based position, bottom first.
func (c *Client) Index(ctx context.Context) (int, error) {
	return c.queryInt(ctx, "ImageGetLayerIndex?")
}

func (c *Client) Count(ctx context.Context) (int, error) {
	return c.queryInt(ctx, "ImageGetLayerCount?")
}

// MoveIndex moves the layer at from to position to. Both are 1-based.
func (c *Client) MoveIndex(ctx context.Context, from, to int) error {
	return c.ch.Action(ctx, "ImageMoveLayerIndex",
		codec.A("FromIndex", codec.Int(from)),
		codec.A("ToIndex", codec.Int(to)),
	)
}

// MoveToTop moves the current layer to the top of the stack.
func (c *Client) MoveToTop(ctx context.Context) error {
	index, err := c.Index(ctx)
	if err != nil {
		return err
	}
	count, err := c.Count(ctx)
	if err != nil {
		return err
	}
	return c.MoveIndex(ctx, index, count)
}

func (c *Client) DoBegin(ctx context.Context) error {
	return c.ch.Action(ctx, "ImageDoBegin")
}

func (c *Client) DoEnd(ctx context.Context) error {
	return c.ch.Action(ctx, "ImageDoEnd")
}

// Undoable runs fn inside one undo group. The group is closed even when fn
// fails or ctx is cancelled.
func (c *Client) Undoable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.DoBegin(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)
	endErr := c.DoEnd(context.WithoutCancel(ctx))
	if runErr != nil {
		c.logger.Warn().Err(runErr).AnErr("end_err", endErr).Msg("layer.undo_group_failed")
	}
	return errors.Join(runErr, endErr)
}

func (c *Client) queryInt(ctx context.Context, name string) (int, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return 0, err
	}
	v, err := reply.Int()
	return int(v), err
}
