package tools

import (
	"context"
	"fmt"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

// Channel is the part of the dispatcher the tool surface needs.
type Channel interface {
	Action(ctx context.Context, name string, args ...codec.Arg) error
	Query(ctx context.Context, name string, args ...codec.Arg) (codec.Reply, error)
}

type ClientOption func(*Client)

// WithDefaultPressure sets the pressure used for points given without one.
func WithDefaultPressure(p float64) ClientOption {
	return func(c *Client) { c.pressure = p }
}

// Client sends tool commands over a Channel.
type Client struct {
	ch       Channel
	pressure float64
}

func NewClient(ch Channel, opts ...ClientOption) *Client {
	c := &Client{ch: ch, pressure: 1.0}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Choose(ctx context.Context, tool Tool) error {
	return c.ch.Action(ctx, "ChooseTool", codec.A("Name", toolKinds.token(tool)))
}

// Mouse drags the current tool through points with the left button held.
// Points are (x, y) or (x, y, pressure); see codec.Pt.
func (c *Client) Mouse(ctx context.Context, points ...[]float64) error {
	return c.MouseState(ctx, []ClickState{StateLeft}, points...)
}

// MouseState is Mouse with an explicit button and modifier state. A single
// point is a click.
func (c *Client) MouseState(ctx context.Context, state []ClickState, points ...[]float64) error {
	stroke, err := codec.NormalizeStroke(c.pressure, points...)
	if err != nil {
		return err
	}
	coords, pressure := codec.StrokeCoords(stroke)
	return c.ch.Action(ctx, "ToolMouse",
		codec.A("Coords", coords),
		codec.A("State", clickStates.list(state)),
		codec.A("Pressure", pressure),
	)
}

func (c *Client) Keys(ctx context.Context, keys []Key, state ...ClickState) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys", codec.ErrInvalidArgument)
	}
	return c.ch.Action(ctx, "ToolKeys",
		codec.A("Keys", keyTokens.list(keys)),
		codec.A("State", clickStates.list(state)),
	)
}

func (c *Client) Key(ctx context.Context, key Key, state ...ClickState) error {
	return c.Keys(ctx, []Key{key}, state...)
}

func (c *Client) Write(ctx context.Context, text string) error {
	return c.ch.Action(ctx, "ToolWrite", codec.A("Text", codec.String(text)))
}

func (c *Client) SetPenColor(ctx context.Context, color codec.Color) error {
	return c.ch.Action(ctx, "ToolSetPenColor", codec.A("Color", color))
}

// SetForeColor is SetPenColor under the name scripts use for the
// foreground color.
func (c *Client) SetForeColor(ctx context.Context, color codec.Color) error {
	return c.SetPenColor(ctx, color)
}

func (c *Client) PenColor(ctx context.Context) (codec.Color, error) {
	return c.getColor(ctx, "ToolGetPenColor?")
}

func (c *Client) SetBackColor(ctx context.Context, color codec.Color) error {
	return c.ch.Action(ctx, "ToolSetBackColor", codec.A("Color", color))
}

func (c *Client) BackColor(ctx context.Context) (codec.Color, error) {
	return c.getColor(ctx, "ToolGetBackColor?")
}

func (c *Client) SetEraserMode(ctx context.Context, mode EraserMode) error {
	return c.ch.Action(ctx, "ToolSetEraserMode", codec.A("Mode", eraserModes.token(mode)))
}

func (c *Client) EraserMode(ctx context.Context) (EraserMode, error) {
	return getEnum(ctx, c, "ToolGetEraserMode?", eraserModes)
}

// SetEraserAlpha takes 0..255.
func (c *Client) SetEraserAlpha(ctx context.Context, alpha int) error {
	if alpha < 0 || alpha > 255 {
		return fmt.Errorf("%w: eraser alpha %d outside 0..255", codec.ErrInvalidArgument, alpha)
	}
	return c.ch.Action(ctx, "ToolSetEraserAlpha", codec.A("Alpha", codec.Int(alpha)))
}

func (c *Client) EraserAlpha(ctx context.Context) (int, error) {
	return c.getInt(ctx, "ToolGetEraserAlpha?")
}

func (c *Client) SetPenWidth(ctx context.Context, width float64) error {
	return c.ch.Action(ctx, "ToolSetPenWidth", codec.A("Width", codec.Float(width)))
}

func (c *Client) PenWidth(ctx context.Context) (float64, error) {
	return c.getFloat(ctx, "ToolGetPenWidth?")
}

func (c *Client) SetPenStyle(ctx context.Context, style PenStyle) error {
	return c.ch.Action(ctx, "ToolSetPenStyle", codec.A("Style", penStyles.token(style)))
}

func (c *Client) PenStyle(ctx context.Context) (PenStyle, error) {
	return getEnum(ctx, c, "ToolGetPenStyle?", penStyles)
}

func (c *Client) SetJoinStyle(ctx context.Context, style JoinStyle) error {
	return c.ch.Action(ctx, "ToolSetJoinStyle", codec.A("Style", joinStyles.token(style)))
}

func (c *Client) JoinStyle(ctx context.Context) (JoinStyle, error) {
	return getEnum(ctx, c, "ToolGetJoinStyle?", joinStyles)
}

func (c *Client) SetLineCap(ctx context.Context, lineCap LineCap) error {
	return c.ch.Action(ctx, "ToolSetLineCap", codec.A("Cap", lineCaps.token(lineCap)))
}

func (c *Client) LineCap(ctx context.Context) (LineCap, error) {
	return getEnum(ctx, c, "ToolGetLineCap?", lineCaps)
}

func (c *Client) SetShapeOptions(ctx context.Context, options ...ShapeOption) error {
	return c.ch.Action(ctx, "ToolSetShapeOptions", codec.A("Options", shapeOptions.list(options)))
}

func (c *Client) ShapeOptions(ctx context.Context) ([]ShapeOption, error) {
	return getEnums(ctx, c, "ToolGetShapeOptions?", shapeOptions)
}

func (c *Client) SetAliasing(ctx context.Context, enabled bool) error {
	return c.ch.Action(ctx, "ToolSetAliasing", codec.A("Enabled", codec.Bool(enabled)))
}

func (c *Client) Aliasing(ctx context.Context) (bool, error) {
	return c.getBool(ctx, "ToolGetAliasing?")
}

func (c *Client) SetShapeRatio(ctx context.Context, ratio float64) error {
	return c.ch.Action(ctx, "ToolSetShapeRatio", codec.A("Ratio", codec.Float(ratio)))
}

func (c *Client) ShapeRatio(ctx context.Context) (float64, error) {
	return c.getFloat(ctx, "ToolGetShapeRatio?")
}

func (c *Client) SetBrushIndex(ctx context.Context, index int) error {
	return c.ch.Action(ctx, "ToolSetBrushIndex", codec.A("Index", codec.Int(index)))
}

func (c *Client) BrushIndex(ctx context.Context) (int, error) {
	return c.getInt(ctx, "ToolGetBrushIndex?")
}

func (c *Client) BrushCount(ctx context.Context) (int, error) {
	return c.getInt(ctx, "ToolGetBrushCount?")
}

func (c *Client) SetBrushSpacing(ctx context.Context, spacing int) error {
	return c.ch.Action(ctx, "ToolSetBrushSpacing", codec.A("Spacing", codec.Int(spacing)))
}

func (c *Client) BrushSpacing(ctx context.Context) (int, error) {
	return c.getInt(ctx, "ToolGetBrushSpacing?")
}

func (c *Client) SetFontName(ctx context.Context, name string) error {
	return c.ch.Action(ctx, "ToolSetFontName", codec.A("Name", codec.String(name)))
}

func (c *Client) FontName(ctx context.Context) (string, error) {
	reply, err := c.ch.Query(ctx, "ToolGetFontName?")
	if err != nil {
		return "", err
	}
	return reply.Text()
}

func (c *Client) SetFontSize(ctx context.Context, size float64) error {
	return c.ch.Action(ctx, "ToolSetFontSize", codec.A("Size", codec.Float(size)))
}

func (c *Client) FontSize(ctx context.Context) (float64, error) {
	return c.getFloat(ctx, "ToolGetFontSize?")
}

func (c *Client) SetFontStyle(ctx context.Context, styles ...FontStyle) error {
	return c.ch.Action(ctx, "ToolSetFontStyle", codec.A("Style", fontStyles.list(styles)))
}

func (c *Client) FontStyle(ctx context.Context) ([]FontStyle, error) {
	return getEnums(ctx, c, "ToolGetFontStyle?", fontStyles)
}

func (c *Client) SetTextAlign(ctx context.Context, align TextAlign) error {
	return c.ch.Action(ctx, "ToolSetTextAlign", codec.A("Align", textAligns.token(align)))
}

func (c *Client) TextAlign(ctx context.Context) (TextAlign, error) {
	return getEnum(ctx, c, "ToolGetTextAlign?", textAligns)
}

func (c *Client) SetTextOutline(ctx context.Context, width float64) error {
	return c.ch.Action(ctx, "ToolSetTextOutline", codec.A("Width", codec.Float(width)))
}

func (c *Client) TextOutline(ctx context.Context) (float64, error) {
	return c.getFloat(ctx, "ToolGetTextOutline?")
}

func (c *Client) SetTextPhong(ctx context.Context, enabled bool) error {
	return c.ch.Action(ctx, "ToolSetTextPhong", codec.A("Enabled", codec.Bool(enabled)))
}

func (c *Client) TextPhong(ctx context.Context) (bool, error) {
	return c.getBool(ctx, "ToolGetTextPhong?")
}

func (c *Client) SetLightPosition(ctx context.Context, x, y float64) error {
	return c.ch.Action(ctx, "ToolSetLightPosition", codec.A("Position", codec.Point(x, y)))
}

func (c *Client) LightPosition(ctx context.Context) (float64, float64, error) {
	return c.getPair(ctx, "ToolGetLightPosition?")
}

func (c *Client) SetArrowStart(ctx context.Context, arrow Arrow) error {
	return c.ch.Action(ctx, "ToolSetArrowStart", codec.A("Arrow", arrows.token(arrow)))
}

func (c *Client) ArrowStart(ctx context.Context) (Arrow, error) {
	return getEnum(ctx, c, "ToolGetArrowStart?", arrows)
}

func (c *Client) SetArrowEnd(ctx context.Context, arrow Arrow) error {
	return c.ch.Action(ctx, "ToolSetArrowEnd", codec.A("Arrow", arrows.token(arrow)))
}

func (c *Client) ArrowEnd(ctx context.Context) (Arrow, error) {
	return getEnum(ctx, c, "ToolGetArrowEnd?", arrows)
}

func (c *Client) SetArrowSize(ctx context.Context, x, y float64) error {
	return c.ch.Action(ctx, "ToolSetArrowSize", codec.A("Size", codec.Point(x, y)))
}

func (c *Client) ArrowSize(ctx context.Context) (float64, float64, error) {
	return c.getPair(ctx, "ToolGetArrowSize?")
}

func (c *Client) SetSplineStyle(ctx context.Context, style SplineStyle) error {
	return c.ch.Action(ctx, "ToolSetSplineStyle", codec.A("Style", splineStyles.token(style)))
}

func (c *Client) SplineStyle(ctx context.Context) (SplineStyle, error) {
	return getEnum(ctx, c, "ToolGetSplineStyle?", splineStyles)
}

func (c *Client) SetGradientType(ctx context.Context, kind GradientType) error {
	return c.ch.Action(ctx, "ToolSetGradientType", codec.A("GradientType", gradientTypes.token(kind)))
}

func (c *Client) GradientType(ctx context.Context) (GradientType, error) {
	return getEnum(ctx, c, "ToolGetGradientType?", gradientTypes)
}

func (c *Client) SetGradientColorspace(ctx context.Context, space Colorspace) error {
	return c.ch.Action(ctx, "ToolSetGradientColorspace", codec.A("Colorspace", colorspaces.token(space)))
}

func (c *Client) GradientColorspace(ctx context.Context) (Colorspace, error) {
	return getEnum(ctx, c, "ToolGetGradientColorspace?", colorspaces)
}

func (c *Client) SetPhongShapeKind(ctx context.Context, kind PhongShapeKind) error {
	return c.ch.Action(ctx, "ToolSetPhongShapeKind", codec.A("Kind", phongShapeKinds.token(kind)))
}

func (c *Client) PhongShapeKind(ctx context.Context) (PhongShapeKind, error) {
	return getEnum(ctx, c, "ToolGetPhongShapeKind?", phongShapeKinds)
}

func (c *Client) SetDeformationGridMode(ctx context.Context, mode DeformationMode) error {
	return c.ch.Action(ctx, "ToolSetDeformationGridMode", codec.A("Mode", deformationModes.token(mode)))
}

func (c *Client) DeformationGridMode(ctx context.Context) (DeformationMode, error) {
	return getEnum(ctx, c, "ToolGetDeformationGridMode?", deformationModes)
}

func (c *Client) SetFloodFillOptions(ctx context.Context, options ...FloodFillOption) error {
	return c.ch.Action(ctx, "ToolSetFloodFillOptions", codec.A("Options", floodFillOptions.list(options)))
}

func (c *Client) FloodFillOptions(ctx context.Context) ([]FloodFillOption, error) {
	return getEnums(ctx, c, "ToolGetFloodFillOptions?", floodFillOptions)
}

func (c *Client) SetPerspectiveOptions(ctx context.Context, options ...PerspectiveOption) error {
	return c.ch.Action(ctx, "ToolSetPerspectiveOptions", codec.A("Options", perspectiveOptions.list(options)))
}

func (c *Client) PerspectiveOptions(ctx context.Context) ([]PerspectiveOption, error) {
	return getEnums(ctx, c, "ToolGetPerspectiveOptions?", perspectiveOptions)
}

func (c *Client) getColor(ctx context.Context, name string) (codec.Color, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return codec.Color{}, err
	}
	return reply.Color()
}

func (c *Client) getFloat(ctx context.Context, name string) (float64, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return 0, err
	}
	return reply.Float()
}

func (c *Client) getInt(ctx context.Context, name string) (int, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return 0, err
	}
	v, err := reply.Int()
	return int(v), err
}

func (c *Client) getBool(ctx context.Context, name string) (bool, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return false, err
	}
	return reply.Bool()
}

func (c *Client) getPair(ctx context.Context, name string) (float64, float64, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return 0, 0, err
	}
	return reply.Pair()
}

func getEnum[T ~uint8](ctx context.Context, c *Client, name string, cat catalogue[T]) (T, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return 0, err
	}
	return cat.decode(reply)
}

func getEnums[T ~uint8](ctx context.Context, c *Client, name string, cat catalogue[T]) ([]T, error) {
	reply, err := c.ch.Query(ctx, name)
	if err != nil {
		return nil, err
	}
	return cat.decodeAll(reply)
}
