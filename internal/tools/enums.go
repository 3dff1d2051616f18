package tools

// Token enums for the tool commands. Each type's zero value is its first
// token; values outside the declared range have no wire form.

type Tool uint8

const (
	ToolHand Tool = iota
	ToolHotSpot
	ToolMoveLayer
	ToolRotateLayer
	ToolZoomLayer
	ToolPen
	ToolBrush
	ToolClone
	ToolColorPicker
	ToolEraser
	ToolEditShape
	ToolRectangle
	ToolEllipse
	ToolPolygon
	ToolSpline
	ToolFloodFill
	ToolGradient
	ToolPhongShape
	ToolSelectPen
	ToolSelectRect
	ToolSelectEllipse
	ToolSelectPoly
	ToolSelectSpline
	ToolMoveSelection
	ToolRotateSelection
	ToolMagicWand
	ToolDeformationGrid
	ToolTextureMapping
	ToolLayerMapping
	ToolText
)

var toolKinds = newCatalogue[Tool]("Tool",
	"Hand",
	"HotSpot",
	"MoveLayer",
	"RotateLayer",
	"ZoomLayer",
	"Pen",
	"Brush",
	"Clone",
	"ColorPicker",
	"Eraser",
	"EditShape",
	"Rect",
	"Ellipse",
	"Polygon",
	"Spline",
	"FloodFill",
	"Gradient",
	"Phong",
	"SelectPen",
	"SelectRect",
	"SelectEllipse",
	"SelectPoly",
	"SelectSpline",
	"MoveSelection",
	"RotateSelection",
	"MagicWand",
	"Deformation",
	"TextureMapping",
	"LayerMapping",
	"Text",
)

func (v Tool) String() string { return toolKinds.str(v) }

func ParseTool(s string) (Tool, error) { return toolKinds.parse(s) }

type ClickState uint8

const (
	StateLeft ClickState = iota
	StateRight
	StateShift
	StateAlt
	StateCtrl
)

var clickStates = newCatalogue[ClickState]("ClickState",
	"Left",
	"Right",
	"Shift",
	"Alt",
	"Ctrl",
)

func (v ClickState) String() string { return clickStates.str(v) }

func ParseClickState(s string) (ClickState, error) { return clickStates.parse(s) }

type EraserMode uint8

const (
	EraserAlpha EraserMode = iota
	EraserSoften
)

var eraserModes = newCatalogue[EraserMode]("EraserMode",
	"EraseAlpha",
	"Soften",
)

func (v EraserMode) String() string { return eraserModes.str(v) }

func ParseEraserMode(s string) (EraserMode, error) { return eraserModes.parse(s) }

type PenStyle uint8

const (
	PenSolid PenStyle = iota
	PenDash
	PenDot
	PenDashDot
	PenDashDotDot
)

var penStyles = newCatalogue[PenStyle]("PenStyle",
	"Solid",
	"Dash",
	"Dot",
	"DashDot",
	"DashDotDot",
)

func (v PenStyle) String() string { return penStyles.str(v) }

func ParsePenStyle(s string) (PenStyle, error) { return penStyles.parse(s) }

type JoinStyle uint8

const (
	JoinBevel JoinStyle = iota
	JoinMiter
	JoinRound
)

var joinStyles = newCatalogue[JoinStyle]("JoinStyle",
	"Bevel",
	"Miter",
	"Round",
)

func (v JoinStyle) String() string { return joinStyles.str(v) }

func ParseJoinStyle(s string) (JoinStyle, error) { return joinStyles.parse(s) }

type LineCap uint8

const (
	CapRound LineCap = iota
	CapSquare
	CapFlat
)

var lineCaps = newCatalogue[LineCap]("LineCap",
	"Round",
	"Square",
	"Flat",
)

func (v LineCap) String() string { return lineCaps.str(v) }

func ParseLineCap(s string) (LineCap, error) { return lineCaps.parse(s) }

type FontStyle uint8

const (
	FontBold FontStyle = iota
	FontItalic
	FontUnderline
	FontStrikeOut
)

var fontStyles = newCatalogue[FontStyle]("FontStyle",
	"Bold",
	"Italic",
	"Underline",
	"StrikeOut",
)

func (v FontStyle) String() string { return fontStyles.str(v) }

func ParseFontStyle(s string) (FontStyle, error) { return fontStyles.parse(s) }

type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

var textAligns = newCatalogue[TextAlign]("TextAlign",
	"Left",
	"Center",
	"Right",
)

func (v TextAlign) String() string { return textAligns.str(v) }

func ParseTextAlign(s string) (TextAlign, error) { return textAligns.parse(s) }

type ShapeOption uint8

const (
	ShapeDraw ShapeOption = iota
	ShapeFill
	ShapeClose
)

var shapeOptions = newCatalogue[ShapeOption]("ShapeOptions",
	"DrawShape",
	"FillShape",
	"CloseShape",
)

func (v ShapeOption) String() string { return shapeOptions.str(v) }

func ParseShapeOption(s string) (ShapeOption, error) { return shapeOptions.parse(s) }

type Arrow uint8

const (
	ArrowNone Arrow = iota
	ArrowTail
	ArrowTip
	ArrowNormal
	ArrowCut
	ArrowFlipped
	ArrowFlippedCut
	ArrowTriangle
	ArrowTriangleBack1
	ArrowTriangleBack2
	ArrowHollowTriangle
	ArrowHollowTriangleBack1
	ArrowHollowTriangleBack2
)

var arrows = newCatalogue[Arrow]("Arrow",
	"None",
	"Tail",
	"Tip",
	"Normal",
	"Cut",
	"Flipped",
	"FlippedCut",
	"Triangle",
	"TriangleBack1",
	"TriangleBack2",
	"HollowTriangle",
	"HollowTriangleBack1",
	"HollowTriangleBack2",
)

func (v Arrow) String() string { return arrows.str(v) }

func ParseArrow(s string) (Arrow, error) { return arrows.parse(s) }

type SplineStyle uint8

const (
	SplineInside SplineStyle = iota
	SplineInsideWithEnds
	SplineCrossing
	SplineCrossingWithEnds
	SplineOutside
	SplineRoundOutside
	SplineVertexToSide
	SplineEasyBezier
)

var splineStyles = newCatalogue[SplineStyle]("SplineStyle",
	"Inside",
	"InsideWithEnds",
	"Crossing",
	"CrossingWithEnds",
	"Outside",
	"RoundOutside",
	"VertexToSide",
	"EasyBezier",
)

func (v SplineStyle) String() string { return splineStyles.str(v) }

func ParseSplineStyle(s string) (SplineStyle, error) { return splineStyles.parse(s) }

type GradientType uint8

const (
	GradientLinear GradientType = iota
	GradientReflected
	GradientDiamond
	GradientRadial
	GradientAngular
)

var gradientTypes = newCatalogue[GradientType]("GradientType",
	"Linear",
	"Reflected",
	"Diamond",
	"Radial",
	"Angular",
)

func (v GradientType) String() string { return gradientTypes.str(v) }

func ParseGradientType(s string) (GradientType, error) { return gradientTypes.parse(s) }

type Colorspace uint8

const (
	ColorspaceStdRGB Colorspace = iota
	ColorspaceLinearRGB
	ColorspaceLinearHSLPositive
	ColorspaceLinearHSLNegative
	ColorspaceCorrHSLPositive
	ColorspaceCorrHSLNegative
)

var colorspaces = newCatalogue[Colorspace]("GradientColorspace",
	"StdRGB",
	"LinearRGB",
	"LinearHSLPositive",
	"LinearHSLNegative",
	"GSBPositive",
	"GSBNegative",
)

func (v Colorspace) String() string { return colorspaces.str(v) }

func ParseColorspace(s string) (Colorspace, error) { return colorspaces.parse(s) }

type PhongShapeKind uint8

const (
	PhongRectangle PhongShapeKind = iota
	PhongRoundRectangle
	PhongHalfSphere
	PhongConeTop
	PhongConeSide
	PhongHorizCylinder
	PhongVertCylinder
)

var phongShapeKinds = newCatalogue[PhongShapeKind]("PhongShapeKind",
	"Rectangle",
	"RoundRectangle",
	"HalfSphere",
	"ConeTop",
	"ConeSide",
	"HorizCylinder",
	"VertCylinder",
)

func (v PhongShapeKind) String() string { return phongShapeKinds.str(v) }

func ParsePhongShapeKind(s string) (PhongShapeKind, error) { return phongShapeKinds.parse(s) }

type DeformationMode uint8

const (
	DeformationDeform DeformationMode = iota
	DeformationMovePointWithoutDeformation
)

var deformationModes = newCatalogue[DeformationMode]("DeformationGridMode",
	"Deform",
	"MovePointWithoutDeformation",
)

func (v DeformationMode) String() string { return deformationModes.str(v) }

func ParseDeformationMode(s string) (DeformationMode, error) { return deformationModes.parse(s) }

type FloodFillOption uint8

const (
	FloodFillProgressive FloodFillOption = iota
	FloodFillAll
)

var floodFillOptions = newCatalogue[FloodFillOption]("FloodFillOptions",
	"Progressive",
	"FillAll",
)

func (v FloodFillOption) String() string { return floodFillOptions.str(v) }

func ParseFloodFillOption(s string) (FloodFillOption, error) { return floodFillOptions.parse(s) }

type PerspectiveOption uint8

const (
	PerspectiveRepeat PerspectiveOption = iota
	PerspectiveTwoPlanes
)

var perspectiveOptions = newCatalogue[PerspectiveOption]("PerspectiveOptions",
	"Repeat",
	"TwoPlanes",
)

func (v PerspectiveOption) String() string { return perspectiveOptions.str(v) }

func ParsePerspectiveOption(s string) (PerspectiveOption, error) { return perspectiveOptions.parse(s) }

type Key uint8

const (
	KeyUnknown Key = iota
	KeyBackspace
	KeyTab
	KeyReturn
	KeyEscape
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyLeft
	KeyUp
	KeyRight
	KeyDown
	KeyInsert
	KeyDelete
	KeyNum0
	KeyNum1
	KeyNum2
	KeyNum3
	KeyNum4
	KeyNum5
	KeyNum6
	KeyNum7
	KeyNum8
	KeyNum9
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyDigit0
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9
	KeyShift
	KeyCtrl
	KeyAlt
)

var keyTokens = newCatalogue[Key]("Key",
	"Unknown",
	"Backspace",
	"Tab",
	"Return",
	"Escape",
	"PageUp",
	"PageDown",
	"Home",
	"End",
	"Left",
	"Up",
	"Right",
	"Down",
	"Insert",
	"Delete",
	"Num0",
	"Num1",
	"Num2",
	"Num3",
	"Num4",
	"Num5",
	"Num6",
	"Num7",
	"Num8",
	"Num9",
	"F1",
	"F2",
	"F3",
	"F4",
	"F5",
	"F6",
	"F7",
	"F8",
	"F9",
	"F10",
	"F11",
	"F12",
	"A",
	"B",
	"C",
	"D",
	"E",
	"F",
	"G",
	"H",
	"I",
	"J",
	"K",
	"L",
	"M",
	"N",
	"O",
	"P",
	"Q",
	"R",
	"S",
	"T",
	"U",
	"V",
	"W",
	"X",
	"Y",
	"Z",
	"0",
	"1",
	"2",
	"3",
	"4",
	"5",
	"6",
	"7",
	"8",
	"9",
	"Shift",
	"Ctrl",
	"Alt",
)

func (v Key) String() string { return keyTokens.str(v) }

func ParseKey(s string) (Key, error) { return keyTokens.parse(s) }
