package simhost

import (
	"github.com/danmuck/lazctl/internal/protocol/codec"
)

type propKind int

const (
	propFloat propKind = iota
	propInt
	propBool
	propString
	propToken
	propTokens
	propPair
	propColor
)

// property is one tool setting answered by a ToolSet/ToolGet pair.
type property struct {
	name     string
	arg      string
	kind     propKind
	readOnly bool
	value    codec.Value
}

// Stroke is one recorded ToolMouse call.
type Stroke struct {
	Tool   string
	Points []codec.StrokePoint
	State  []string
}

// KeyPress is one recorded ToolKeys call.
type KeyPress struct {
	Keys  []string
	State []string
}

// Token set names consulted by the built-in handlers.
const (
	SetTool       = "Tool"
	SetClickState = "ClickState"
	SetKey        = "Key"
	SetBlendOp    = "BlendOp"
)

func defaultProperties() []property {
	return []property{
		{name: "PenColor", arg: "Color", kind: propColor, value: codec.RGB(0, 0, 0)},
		{name: "BackColor", arg: "Color", kind: propColor, value: codec.RGB(255, 255, 255)},
		{name: "EraserMode", arg: "Mode", kind: propToken, value: codec.Token("EraseAlpha")},
		{name: "EraserAlpha", arg: "Alpha", kind: propInt, value: codec.Int(255)},
		{name: "PenWidth", arg: "Width", kind: propFloat, value: codec.Float(5)},
		{name: "PenStyle", arg: "Style", kind: propToken, value: codec.Token("Solid")},
		{name: "JoinStyle", arg: "Style", kind: propToken, value: codec.Token("Round")},
		{name: "LineCap", arg: "Cap", kind: propToken, value: codec.Token("Round")},
		{name: "ShapeOptions", arg: "Options", kind: propTokens, value: codec.Tokens("DrawShape", "FillShape")},
		{name: "Aliasing", arg: "Enabled", kind: propBool, value: codec.Bool(false)},
		{name: "ShapeRatio", arg: "Ratio", kind: propFloat, value: codec.Float(1)},
		{name: "BrushIndex", arg: "Index", kind: propInt, value: codec.Int(0)},
		{name: "BrushCount", kind: propInt, readOnly: true, value: codec.Int(4)},
		{name: "BrushSpacing", arg: "Spacing", kind: propInt, value: codec.Int(1)},
		{name: "FontName", arg: "Name", kind: propString, value: codec.String("Arial")},
		{name: "FontSize", arg: "Size", kind: propFloat, value: codec.Float(10)},
		{name: "FontStyle", arg: "Style", kind: propTokens, value: codec.List{}},
		{name: "TextAlign", arg: "Align", kind: propToken, value: codec.Token("Left")},
		{name: "TextOutline", arg: "Width", kind: propFloat, value: codec.Float(0)},
		{name: "TextPhong", arg: "Enabled", kind: propBool, value: codec.Bool(false)},
		{name: "LightPosition", arg: "Position", kind: propPair, value: codec.Tuple{0, 0}},
		{name: "ArrowStart", arg: "Arrow", kind: propToken, value: codec.Token("None")},
		{name: "ArrowEnd", arg: "Arrow", kind: propToken, value: codec.Token("None")},
		{name: "ArrowSize", arg: "Size", kind: propPair, value: codec.Tuple{2, 3}},
		{name: "SplineStyle", arg: "Style", kind: propToken, value: codec.Token("EasyBezier")},
		{name: "GradientType", arg: "GradientType", kind: propToken, value: codec.Token("Linear")},
		{name: "GradientColorspace", arg: "Colorspace", kind: propToken, value: codec.Token("StdRGB")},
		{name: "PhongShapeKind", arg: "Kind", kind: propToken, value: codec.Token("Rectangle")},
		{name: "DeformationGridMode", arg: "Mode", kind: propToken, value: codec.Token("Deform")},
		{name: "FloodFillOptions", arg: "Options", kind: propTokens, value: codec.Tokens("Progressive")},
		{name: "PerspectiveOptions", arg: "Options", kind: propTokens, value: codec.List{}},
	}
}

func (h *Host) registerToolHandlers() {
	for i := range h.propOrder {
		p := h.props[h.propOrder[i]]
		h.mustRegister("ToolGet"+p.name+codec.QuerySuffix, func(c *Call) (codec.Value, error) {
			return p.reply(), nil
		})
		if p.readOnly {
			continue
		}
		h.mustRegister("ToolSet"+p.name, func(c *Call) (codec.Value, error) {
			v, err := p.parse(c)
			if err != nil {
				return nil, err
			}
			p.value = v
			return nil, nil
		})
	}

	h.mustRegister("ChooseTool", func(c *Call) (codec.Value, error) {
		name, err := c.Token("Name", SetTool)
		if err != nil {
			return nil, err
		}
		c.Host.tool = name
		return nil, nil
	})
	h.mustRegister("ToolMouse", handleMouse)
	h.mustRegister("ToolKeys", func(c *Call) (codec.Value, error) {
		keys, err := c.Tokens("Keys", SetKey)
		if err != nil {
			return nil, err
		}
		state, err := c.Tokens("State", SetClickState)
		if err != nil {
			return nil, err
		}
		c.Host.keys = append(c.Host.keys, KeyPress{Keys: keys, State: state})
		return nil, nil
	})
	h.mustRegister("ToolWrite", func(c *Call) (codec.Value, error) {
		text, err := c.String("Text")
		if err != nil {
			return nil, err
		}
		c.Host.text = append(c.Host.text, text)
		return nil, nil
	})
}

func handleMouse(c *Call) (codec.Value, error) {
	coords, err := c.Arg("Coords")
	if err != nil {
		return nil, err
	}
	xy, err := (codec.Reply{Value: coords}).Tuples()
	if err != nil {
		return nil, Reject(CodeInvalidArgument, "ToolMouse: Coords must be a list of points")
	}
	state, err := c.Tokens("State", SetClickState)
	if err != nil {
		return nil, err
	}
	pv, err := c.Arg("Pressure")
	if err != nil {
		return nil, err
	}
	pressure, err := (codec.Reply{Value: pv}).Floats()
	if err != nil {
		return nil, Reject(CodeInvalidArgument, "ToolMouse: Pressure must be a list of floats")
	}
	if len(xy) == 0 || len(pressure) != len(xy) {
		return nil, Reject(CodeInvalidArgument, "ToolMouse: %d coords with %d pressures", len(xy), len(pressure))
	}
	points := make([]codec.StrokePoint, len(xy))
	for i, p := range xy {
		if len(p) != 2 {
			return nil, Reject(CodeInvalidArgument, "ToolMouse: coord %d has %d components", i, len(p))
		}
		if pressure[i] < 0 || pressure[i] > 1 {
			return nil, Reject(CodeInvalidArgument, "ToolMouse: pressure %v outside [0, 1]", pressure[i])
		}
		points[i] = codec.StrokePoint{X: p[0], Y: p[1], Pressure: pressure[i]}
	}
	h := c.Host
	h.strokes = append(h.strokes, Stroke{Tool: h.tool, Points: points, State: state})
	if h.tool == "FloodFill" {
		pen, _ := h.props["PenColor"].value.(codec.Color)
		h.image.current().Ops = append(h.image.current().Ops, "fill "+pen.String())
	}
	return nil, nil
}

// reply renders the stored value the way the host answers: enums as
// strings and colors as text.
func (p *property) reply() codec.Value {
	switch v := p.value.(type) {
	case codec.Token:
		return codec.String(v)
	case codec.Color:
		return codec.String(v.String())
	default:
		return p.value
	}
}

func (p *property) parse(c *Call) (codec.Value, error) {
	switch p.kind {
	case propFloat:
		v, err := c.Float(p.arg)
		return codec.Float(v), err
	case propInt:
		v, err := c.Int(p.arg)
		return codec.Int(v), err
	case propBool:
		v, err := c.Bool(p.arg)
		return codec.Bool(v), err
	case propString:
		v, err := c.String(p.arg)
		return codec.String(v), err
	case propToken:
		v, err := c.Token(p.arg, p.name)
		return codec.Token(v), err
	case propTokens:
		v, err := c.Tokens(p.arg, p.name)
		if err != nil {
			return nil, err
		}
		return codec.Tokens(v...), nil
	case propPair:
		v, err := c.Tuple(p.arg, 2)
		if err != nil {
			return nil, err
		}
		return codec.Tuple(v), nil
	case propColor:
		v, err := c.Color(p.arg)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, Reject(CodeInternal, "property %s has unknown kind", p.name)
	}
}
