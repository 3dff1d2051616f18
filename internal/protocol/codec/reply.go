package codec

import "fmt"

// Shape is the call site's expectation of a reply payload.
type Shape uint8

const (
	ShapeAny Shape = iota
	ShapeBool
	ShapeInt
	ShapeFloat
	ShapeString
	ShapeToken
	ShapeTuple
	ShapeColor
	ShapeList
	ShapeTokenList
	ShapeTupleList
	ShapeFloatList
)

func (s Shape) String() string {
	switch s {
	case ShapeAny:
		return "any"
	case ShapeBool:
		return "bool"
	case ShapeInt:
		return "int"
	case ShapeFloat:
		return "float"
	case ShapeString:
		return "string"
	case ShapeToken:
		return "token"
	case ShapeTuple:
		return "tuple"
	case ShapeColor:
		return "color"
	case ShapeList:
		return "list"
	case ShapeTokenList:
		return "token list"
	case ShapeTupleList:
		return "tuple list"
	case ShapeFloatList:
		return "float list"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// Reply is the decoded result of a query. Actions yield the zero Reply.
type Reply struct {
	// Command is the semantic name the host answered for.
	Command string
	Value   Value
}

func (r Reply) IsZero() bool {
	return r.Command == "" && r.Value == nil
}

// As checks the reply against shape and returns the value normalized for
// that shape. Colors are always returned as Color.
func (r Reply) As(shape Shape) (Value, error) {
	switch shape {
	case ShapeAny:
		if r.Value == nil {
			return nil, shapeMismatch(shape, nil)
		}
		return r.Value, nil
	case ShapeBool:
		v, err := r.Bool()
		return Bool(v), err
	case ShapeInt:
		v, err := r.Int()
		return Int(v), err
	case ShapeFloat:
		v, err := r.Float()
		return Float(v), err
	case ShapeString:
		v, err := r.Text()
		return String(v), err
	case ShapeToken:
		v, err := r.Token()
		return Token(v), err
	case ShapeTuple:
		v, err := r.Tuple()
		return Tuple(v), err
	case ShapeColor:
		return r.Color()
	case ShapeList:
		v, ok := r.Value.(List)
		if !ok {
			return nil, shapeMismatch(shape, r.Value)
		}
		return v, nil
	case ShapeTokenList:
		v, err := r.Tokens()
		if err != nil {
			return nil, err
		}
		return Tokens(v...), nil
	case ShapeTupleList:
		v, err := r.Tuples()
		if err != nil {
			return nil, err
		}
		out := make(List, len(v))
		for i, t := range v {
			out[i] = Tuple(t)
		}
		return out, nil
	case ShapeFloatList:
		v, err := r.Floats()
		if err != nil {
			return nil, err
		}
		return Floats(v...), nil
	default:
		return nil, &DecodeError{Want: shape.String(), Reason: "unknown shape"}
	}
}

func (r Reply) Bool() (bool, error) {
	v, ok := r.Value.(Bool)
	if !ok {
		return false, shapeMismatch(ShapeBool, r.Value)
	}
	return bool(v), nil
}

func (r Reply) Int() (int64, error) {
	v, ok := r.Value.(Int)
	if !ok {
		return 0, shapeMismatch(ShapeInt, r.Value)
	}
	return int64(v), nil
}

func (r Reply) Float() (float64, error) {
	v, ok := r.Value.(Float)
	if !ok {
		return 0, shapeMismatch(ShapeFloat, r.Value)
	}
	return float64(v), nil
}

func (r Reply) Text() (string, error) {
	v, ok := r.Value.(String)
	if !ok {
		return "", shapeMismatch(ShapeString, r.Value)
	}
	return string(v), nil
}

// Token accepts the token kind and plain strings, since hosts commonly
// return enum values as strings.
func (r Reply) Token() (string, error) {
	return tokenOf(r.Value)
}

func (r Reply) Tuple() ([]float64, error) {
	v, ok := r.Value.(Tuple)
	if !ok {
		return nil, shapeMismatch(ShapeTuple, r.Value)
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

// Pair decodes a 2-tuple.
func (r Reply) Pair() (float64, float64, error) {
	t, err := r.Tuple()
	if err != nil {
		return 0, 0, err
	}
	if len(t) != 2 {
		return 0, 0, &DecodeError{Want: "pair", Got: fmt.Sprintf("%d-tuple", len(t))}
	}
	return t[0], t[1], nil
}

// Color accepts the color kind, a textual color, or a 4-tuple.
func (r Reply) Color() (Color, error) {
	switch v := r.Value.(type) {
	case Color:
		return v, nil
	case String:
		c, err := ParseColor(string(v))
		if err != nil {
			return Color{}, &DecodeError{Want: "color", Got: "string", Err: err}
		}
		return c, nil
	case Tuple:
		c, err := ColorFromTuple(v)
		if err != nil {
			return Color{}, &DecodeError{Want: "color", Got: "tuple", Err: err}
		}
		return c, nil
	default:
		return Color{}, shapeMismatch(ShapeColor, r.Value)
	}
}

func (r Reply) Tokens() ([]string, error) {
	list, ok := r.Value.(List)
	if !ok {
		return nil, shapeMismatch(ShapeTokenList, r.Value)
	}
	out := make([]string, len(list))
	for i, e := range list {
		tok, err := tokenOf(e)
		if err != nil {
			return nil, &DecodeError{Want: "token list", Reason: fmt.Sprintf("element %d", i), Err: err}
		}
		out[i] = tok
	}
	return out, nil
}

func (r Reply) Tuples() ([][]float64, error) {
	list, ok := r.Value.(List)
	if !ok {
		return nil, shapeMismatch(ShapeTupleList, r.Value)
	}
	out := make([][]float64, len(list))
	for i, e := range list {
		t, ok := e.(Tuple)
		if !ok {
			return nil, &DecodeError{Want: "tuple list", Reason: fmt.Sprintf("element %d", i), Err: shapeMismatch(ShapeTuple, e)}
		}
		out[i] = append([]float64(nil), t...)
	}
	return out, nil
}

func (r Reply) Floats() ([]float64, error) {
	list, ok := r.Value.(List)
	if !ok {
		return nil, shapeMismatch(ShapeFloatList, r.Value)
	}
	out := make([]float64, len(list))
	for i, e := range list {
		f, ok := e.(Float)
		if !ok {
			return nil, &DecodeError{Want: "float list", Reason: fmt.Sprintf("element %d", i), Err: shapeMismatch(ShapeFloat, e)}
		}
		out[i] = float64(f)
	}
	return out, nil
}

func tokenOf(v Value) (string, error) {
	switch x := v.(type) {
	case Token:
		return string(x), nil
	case String:
		return string(x), nil
	default:
		return "", shapeMismatch(ShapeToken, v)
	}
}
