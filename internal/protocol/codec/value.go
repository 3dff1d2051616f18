package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/lazctl/internal/protocol/tlv"
)

// Kind identifies the wire kind of a Value. Values match tlv type ids.
type Kind uint8

const (
	KindInt    = Kind(tlv.TypeInt)
	KindFloat  = Kind(tlv.TypeFloat)
	KindBool   = Kind(tlv.TypeBool)
	KindString = Kind(tlv.TypeString)
	KindToken  = Kind(tlv.TypeToken)
	KindTuple  = Kind(tlv.TypeTuple)
	KindList   = Kind(tlv.TypeList)
	KindColor  = Kind(tlv.TypeColor)
)

func (k Kind) String() string {
	return tlv.TypeName(uint8(k))
}

// maxListDepth bounds nested list decoding.
const maxListDepth = 8

// Value is one argument or reply value.
type Value interface {
	Kind() Kind
}

type (
	Int    int64
	Float  float64
	Bool   bool
	String string
	// Token is an enum-like value drawn from a closed set. The codec does
	// not validate it; rejecting unknown tokens is the host's job.
	Token string
	// Tuple is a fixed-arity group of numbers, e.g. a coordinate or size.
	Tuple []float64
	List  []Value
)

func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }
func (Token) Kind() Kind  { return KindToken }
func (Tuple) Kind() Kind  { return KindTuple }
func (List) Kind() Kind   { return KindList }

// Format renders v in the literal syntax accepted by ParseLiteral.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		s := strconv.FormatFloat(float64(x), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case Bool:
		return strconv.FormatBool(bool(x))
	case String:
		return strconv.Quote(string(x))
	case Token:
		return string(x)
	case Color:
		return x.String()
	case Tuple:
		parts := make([]string, len(x))
		for i, c := range x {
			parts[i] = Format(Float(c))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case List:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal reports whether a and b are the same value of the same kind.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Float:
		y := b.(Float)
		return x == y || (math.IsNaN(float64(x)) && math.IsNaN(float64(y)))
	case Tuple:
		y := b.(Tuple)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(Float(x[i]), Float(y[i])) {
				return false
			}
		}
		return true
	case List:
		y := b.(List)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func encodeValue(id uint16, v Value) (tlv.Field, error) {
	switch x := v.(type) {
	case nil:
		return tlv.Field{}, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	case Int:
		return tlv.Field{ID: id, Type: tlv.TypeInt, Value: tlv.PutInt(int64(x))}, nil
	case Float:
		return tlv.Field{ID: id, Type: tlv.TypeFloat, Value: tlv.PutFloat(float64(x))}, nil
	case Bool:
		return tlv.Field{ID: id, Type: tlv.TypeBool, Value: tlv.PutBool(bool(x))}, nil
	case String:
		return tlv.Field{ID: id, Type: tlv.TypeString, Value: []byte(x)}, nil
	case Token:
		return tlv.Field{ID: id, Type: tlv.TypeToken, Value: []byte(x)}, nil
	case Tuple:
		if len(x) == 0 {
			return tlv.Field{}, fmt.Errorf("%w: empty tuple", ErrInvalidArgument)
		}
		return tlv.Field{ID: id, Type: tlv.TypeTuple, Value: tlv.PutTuple(x)}, nil
	case Color:
		return tlv.Field{ID: id, Type: tlv.TypeColor, Value: tlv.PutColor(x.R, x.G, x.B, x.A)}, nil
	case List:
		if len(x) > math.MaxUint16+1 {
			return tlv.Field{}, fmt.Errorf("%w: list too long (%d)", ErrInvalidArgument, len(x))
		}
		elems := make([]tlv.Field, 0, len(x))
		for i, e := range x {
			f, err := encodeValue(uint16(i), e)
			if err != nil {
				return tlv.Field{}, fmt.Errorf("list[%d]: %w", i, err)
			}
			elems = append(elems, f)
		}
		return tlv.Field{ID: id, Type: tlv.TypeList, Value: tlv.EncodeFields(elems)}, nil
	default:
		return tlv.Field{}, fmt.Errorf("%w: unsupported value type %T", ErrInvalidArgument, v)
	}
}

func decodeValue(f tlv.Field) (Value, error) {
	return decodeValueDepth(f, 0)
}

func decodeValueDepth(f tlv.Field, depth int) (Value, error) {
	switch f.Type {
	case tlv.TypeInt:
		v, err := tlv.IntFromBytes(f.Value)
		if err != nil {
			return nil, decodeFailure("int", err)
		}
		return Int(v), nil
	case tlv.TypeFloat:
		v, err := tlv.FloatFromBytes(f.Value)
		if err != nil {
			return nil, decodeFailure("float", err)
		}
		return Float(v), nil
	case tlv.TypeBool:
		v, err := tlv.BoolFromBytes(f.Value)
		if err != nil {
			return nil, decodeFailure("bool", err)
		}
		return Bool(v), nil
	case tlv.TypeString:
		return String(f.Value), nil
	case tlv.TypeToken:
		return Token(f.Value), nil
	case tlv.TypeTuple:
		v, err := tlv.TupleFromBytes(f.Value)
		if err != nil {
			return nil, decodeFailure("tuple", err)
		}
		return Tuple(v), nil
	case tlv.TypeColor:
		c, err := tlv.ColorFromBytes(f.Value)
		if err != nil {
			return nil, decodeFailure("color", err)
		}
		return Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
	case tlv.TypeList:
		if depth >= maxListDepth {
			return nil, &DecodeError{Want: "list", Reason: "nesting too deep"}
		}
		elems, err := tlv.DecodeFields(f.Value)
		if err != nil {
			return nil, decodeFailure("list", err)
		}
		out := make(List, 0, len(elems))
		for i, e := range elems {
			if int(e.ID) != i {
				return nil, &DecodeError{Want: "list", Reason: fmt.Sprintf("element %d has index %d", i, e.ID)}
			}
			v, err := decodeValueDepth(e, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return nil, &DecodeError{Want: "value", Got: tlv.TypeName(f.Type), Reason: "unknown value type"}
	}
}
