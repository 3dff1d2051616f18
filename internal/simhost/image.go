package simhost

import (
	"fmt"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

// Layer is a snapshot of one layer in the stub image.
type Layer struct {
	ID      int64
	Name    string
	Visible bool
	BlendOp string
	Opacity int64
	// Ops records drawing applied to the layer, e.g. "fill #0000FFFF".
	Ops []string
}

// imageState is a layer stack, bottom first. Layer indexes on the wire
// are 1-based.
type imageState struct {
	width, height int
	layers        []*Layer
	cur           int
	nextID        int64
	undoDepth     int
	undoGroups    int
}

func newImageState(width, height int) *imageState {
	img := &imageState{width: width, height: height}
	img.layers = []*Layer{img.newLayer("Layer 1")}
	return img
}

func (img *imageState) newLayer(name string) *Layer {
	img.nextID++
	if name == "" {
		name = fmt.Sprintf("Layer %d", img.nextID)
	}
	return &Layer{ID: img.nextID, Name: name, Visible: true, BlendOp: "Normal", Opacity: 255}
}

func (img *imageState) current() *Layer {
	return img.layers[img.cur]
}

// insertAbove puts l above the current layer and selects it.
func (img *imageState) insertAbove(l *Layer) {
	at := img.cur + 1
	img.layers = append(img.layers, nil)
	copy(img.layers[at+1:], img.layers[at:])
	img.layers[at] = l
	img.cur = at
}

func (img *imageState) indexOf(id int64) int {
	for i, l := range img.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (img *imageState) snapshot() []Layer {
	out := make([]Layer, len(img.layers))
	for i, l := range img.layers {
		out[i] = *l
		out[i].Ops = append([]string(nil), l.Ops...)
	}
	return out
}

func (h *Host) registerImageHandlers() {
	img := func(c *Call) *imageState { return c.Host.image }

	h.mustRegister("LayerGetId?", func(c *Call) (codec.Value, error) {
		return codec.Int(img(c).current().ID), nil
	})
	h.mustRegister("LayerGetName?", func(c *Call) (codec.Value, error) {
		return codec.String(img(c).current().Name), nil
	})
	h.mustRegister("LayerGetVisible?", func(c *Call) (codec.Value, error) {
		return codec.Bool(img(c).current().Visible), nil
	})
	h.mustRegister("LayerGetBlendOp?", func(c *Call) (codec.Value, error) {
		return codec.String(img(c).current().BlendOp), nil
	})
	h.mustRegister("LayerGetOpacity?", func(c *Call) (codec.Value, error) {
		return codec.Int(img(c).current().Opacity), nil
	})
	h.mustRegister("LayerSetName", func(c *Call) (codec.Value, error) {
		name, err := c.String("Name")
		if err != nil {
			return nil, err
		}
		img(c).current().Name = name
		return nil, nil
	})
	h.mustRegister("LayerSetVisible", func(c *Call) (codec.Value, error) {
		visible, err := c.Bool("Visible")
		if err != nil {
			return nil, err
		}
		img(c).current().Visible = visible
		return nil, nil
	})
	h.mustRegister("LayerSetBlendOp", func(c *Call) (codec.Value, error) {
		op, err := c.Token("BlendOp", SetBlendOp)
		if err != nil {
			return nil, err
		}
		img(c).current().BlendOp = op
		return nil, nil
	})
	h.mustRegister("LayerSetOpacity", func(c *Call) (codec.Value, error) {
		opacity, err := c.Int("Opacity")
		if err != nil {
			return nil, err
		}
		if opacity < 0 || opacity > 255 {
			return nil, Reject(CodeInvalidArgument, "LayerSetOpacity: %d outside 0..255", opacity)
		}
		img(c).current().Opacity = opacity
		return nil, nil
	})
	h.mustRegister("LayerAddNew?", func(c *Call) (codec.Value, error) {
		name := ""
		if c.Has("Name") {
			var err error
			if name, err = c.String("Name"); err != nil {
				return nil, err
			}
		}
		l := img(c).newLayer(name)
		img(c).insertAbove(l)
		return codec.Int(l.ID), nil
	})
	h.mustRegister("LayerDuplicate?", func(c *Call) (codec.Value, error) {
		src := img(c).current()
		l := img(c).newLayer(src.Name + " copy")
		l.Visible, l.BlendOp, l.Opacity = src.Visible, src.BlendOp, src.Opacity
		l.Ops = append([]string(nil), src.Ops...)
		img(c).insertAbove(l)
		return codec.Int(l.ID), nil
	})
	h.mustRegister("LayerSelectId", func(c *Call) (codec.Value, error) {
		id, err := c.Int("Id")
		if err != nil {
			return nil, err
		}
		at := img(c).indexOf(id)
		if at < 0 {
			return nil, Reject(CodeInvalidState, "LayerSelectId: no layer %d", id)
		}
		img(c).cur = at
		return nil, nil
	})
	h.mustRegister("LayerMergeOver", func(c *Call) (codec.Value, error) {
		s := img(c)
		if s.cur == 0 {
			return nil, Reject(CodeInvalidState, "LayerMergeOver: no layer below %q", s.current().Name)
		}
		top := s.current()
		below := s.layers[s.cur-1]
		for _, op := range top.Ops {
			below.Ops = append(below.Ops, fmt.Sprintf("%s(%s)", top.BlendOp, op))
		}
		s.layers = append(s.layers[:s.cur], s.layers[s.cur+1:]...)
		s.cur--
		return nil, nil
	})
	h.mustRegister("LayerRemoveCurrent", func(c *Call) (codec.Value, error) {
		s := img(c)
		if len(s.layers) == 1 {
			return nil, Reject(CodeInvalidState, "LayerRemoveCurrent: cannot remove the last layer")
		}
		s.layers = append(s.layers[:s.cur], s.layers[s.cur+1:]...)
		if s.cur > 0 {
			s.cur--
		}
		return nil, nil
	})

	h.mustRegister("ImageGetSize?", func(c *Call) (codec.Value, error) {
		return codec.Size(img(c).width, img(c).height), nil
	})
	h.mustRegister("ImageGetLayerIndex?", func(c *Call) (codec.Value, error) {
		return codec.Int(img(c).cur + 1), nil
	})
	h.mustRegister("ImageGetLayerCount?", func(c *Call) (codec.Value, error) {
		return codec.Int(len(img(c).layers)), nil
	})
	h.mustRegister("ImageMoveLayerIndex", func(c *Call) (codec.Value, error) {
		s := img(c)
		from, err := c.Int("FromIndex")
		if err != nil {
			return nil, err
		}
		to, err := c.Int("ToIndex")
		if err != nil {
			return nil, err
		}
		n := int64(len(s.layers))
		if from < 1 || from > n || to < 1 || to > n {
			return nil, Reject(CodeInvalidArgument, "ImageMoveLayerIndex: %d -> %d outside 1..%d", from, to, n)
		}
		selected := s.current().ID
		moved := s.layers[from-1]
		s.layers = append(s.layers[:from-1], s.layers[from:]...)
		at := int(to - 1)
		s.layers = append(s.layers, nil)
		copy(s.layers[at+1:], s.layers[at:])
		s.layers[at] = moved
		s.cur = s.indexOf(selected)
		return nil, nil
	})
	h.mustRegister("ImageDoBegin", func(c *Call) (codec.Value, error) {
		img(c).undoDepth++
		return nil, nil
	})
	h.mustRegister("ImageDoEnd", func(c *Call) (codec.Value, error) {
		s := img(c)
		if s.undoDepth == 0 {
			return nil, Reject(CodeInvalidState, "ImageDoEnd without ImageDoBegin")
		}
		s.undoDepth--
		if s.undoDepth == 0 {
			s.undoGroups++
		}
		return nil, nil
	})
}
