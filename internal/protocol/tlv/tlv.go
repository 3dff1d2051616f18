package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const HeaderLen = 7

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrInvalidValue     = errors.New("tlv: invalid value")
)

// Type IDs from the wire contract.
const (
	TypeInt    uint8 = 1
	TypeFloat  uint8 = 2
	TypeBool   uint8 = 3
	TypeString uint8 = 4
	TypeToken  uint8 = 5
	TypeTuple  uint8 = 6
	TypeList   uint8 = 7
	TypeColor  uint8 = 8
	TypeU32    uint8 = 9
)

// TypeName returns a readable name for a type id.
func TypeName(t uint8) string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeToken:
		return "token"
	case TypeTuple:
		return "tuple"
	case TypeList:
		return "list"
	case TypeColor:
		return "color"
	case TypeU32:
		return "u32"
	default:
		return fmt.Sprintf("type(%d)", t)
	}
}

// Field is one decoded TLV field.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

func EncodeField(f Field) []byte {
	buf := make([]byte, HeaderLen+len(f.Value))
	binary.BigEndian.PutUint16(buf[0:2], f.ID)
	buf[2] = f.Type
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(f.Value)))
	copy(buf[7:], f.Value)
	return buf
}

func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	i := 0
	for i < len(payload) {
		if len(payload)-i < HeaderLen {
			return nil, ErrShortFieldHeader
		}
		id := binary.BigEndian.Uint16(payload[i : i+2])
		typeID := payload[i+2]
		l := binary.BigEndian.Uint32(payload[i+3 : i+7])
		i += HeaderLen
		if uint32(len(payload)-i) < l {
			return nil, ErrShortFieldValue
		}
		val := make([]byte, l)
		copy(val, payload[i:i+int(l)])
		i += int(l)
		fields = append(fields, Field{ID: id, Type: typeID, Value: val})
	}
	return fields, nil
}

func EncodeFields(fields []Field) []byte {
	out := make([]byte, 0)
	for _, f := range fields {
		out = append(out, EncodeField(f)...)
	}
	return out
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// GetFields returns every field with id, in wire order.
func GetFields(fields []Field, id uint16) []Field {
	var out []Field
	for _, f := range fields {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

func MustType(f Field, expected uint8) error {
	if f.Type != expected {
		return fmt.Errorf("tlv: field %d type mismatch: got %s want %s", f.ID, TypeName(f.Type), TypeName(expected))
	}
	return nil
}

func PutInt(v int64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(v))
	return out
}

func IntFromBytes(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: int length %d", ErrInvalidValue, len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func PutFloat(v float64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, math.Float64bits(v))
	return out
}

func FloatFromBytes(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: float length %d", ErrInvalidValue, len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func PutBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func BoolFromBytes(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("%w: bool length %d", ErrInvalidValue, len(b))
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte %#x", ErrInvalidValue, b[0])
	}
}

func PutTuple(components []float64) []byte {
	out := make([]byte, 8*len(components))
	for i, c := range components {
		binary.BigEndian.PutUint64(out[i*8:i*8+8], math.Float64bits(c))
	}
	return out
}

func TupleFromBytes(b []byte) ([]float64, error) {
	if len(b) == 0 || len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: tuple length %d", ErrInvalidValue, len(b))
	}
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(b[i*8 : i*8+8]))
	}
	return out, nil
}

func PutColor(r, g, b, a uint8) []byte {
	return []byte{r, g, b, a}
}

func ColorFromBytes(b []byte) ([4]uint8, error) {
	if len(b) != 4 {
		return [4]uint8{}, fmt.Errorf("%w: color length %d", ErrInvalidValue, len(b))
	}
	return [4]uint8{b[0], b[1], b[2], b[3]}, nil
}

func PutU32(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

func U32FromBytes(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("tlv: invalid u32 length: %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}
