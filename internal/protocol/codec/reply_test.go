package codec

import (
	"errors"
	"testing"
)

func TestReplyAccessorsRejectShapeMismatch(t *testing.T) {
	cases := []struct {
		name string
		call func(Reply) error
	}{
		{"int from float", func(r Reply) error { _, err := r.Int(); return err }},
		{"bool from float", func(r Reply) error { _, err := r.Bool(); return err }},
		{"text from float", func(r Reply) error { _, err := r.Text(); return err }},
		{"tuple from float", func(r Reply) error { _, err := r.Tuple(); return err }},
		{"tokens from float", func(r Reply) error { _, err := r.Tokens(); return err }},
		{"color from float", func(r Reply) error { _, err := r.Color(); return err }},
	}
	r := Reply{Command: "ToolGetPenWidth", Value: Float(2.5)}
	for _, tc := range cases {
		err := tc.call(r)
		var dErr *DecodeError
		if !errors.As(err, &dErr) || !errors.Is(err, ErrDecode) {
			t.Fatalf("%s: expected DecodeError, got %v", tc.name, err)
		}
		if dErr.Got != "float" {
			t.Fatalf("%s: expected got=float, got %q", tc.name, dErr.Got)
		}
	}
}

func TestReplyFloatNeverCoercesInt(t *testing.T) {
	r := Reply{Value: Int(2)}
	if _, err := r.Float(); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestReplyTokenAcceptsString(t *testing.T) {
	for _, v := range []Value{Token("RoundJoin"), String("RoundJoin")} {
		got, err := Reply{Value: v}.Token()
		if err != nil || got != "RoundJoin" {
			t.Fatalf("token from %s: got %q (%v)", v.Kind(), got, err)
		}
	}
}

func TestReplyTextualColorRoundTrip(t *testing.T) {
	c, err := Reply{Value: String("#FF800040")}.Color()
	if err != nil {
		t.Fatalf("color: %v", err)
	}
	want := Tuple{255, 128, 0, 64}
	if !Equal(c.Tuple(), want) {
		t.Fatalf("expected %s, got %s", Format(want), Format(c.Tuple()))
	}
	back, err := ColorFromTuple(c.Tuple())
	if err != nil || back != c {
		t.Fatalf("tuple back to color: %v (%v)", back, err)
	}
	f, err := EncodeCommandFrame(1, NewCommand("ToolSetPenColor", A("Color", back)))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cmd, err := DecodeCommandFrame(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, _ := cmd.Arg("Color")
	if !Equal(v, c) {
		t.Fatalf("color changed across the boundary: %s", Format(v))
	}
}

func TestReplyColorFromTupleAndColorKind(t *testing.T) {
	want := RGBA(1, 2, 3, 4)
	for _, v := range []Value{want, Tuple{1, 2, 3, 4}, String("rgba(1, 2, 3, 4)")} {
		got, err := Reply{Value: v}.Color()
		if err != nil || got != want {
			t.Fatalf("color from %s: got %v (%v)", v.Kind(), got, err)
		}
	}
	if _, err := (Reply{Value: Tuple{1, 2, 3}}).Color(); !errors.Is(err, ErrDecode) {
		t.Fatalf("3-tuple must not decode as color, got %v", err)
	}
	if _, err := (Reply{Value: String("not-a-color")}).Color(); !errors.Is(err, ErrDecode) {
		t.Fatalf("bad text must not decode as color, got %v", err)
	}
}

func TestReplyListAccessors(t *testing.T) {
	tuples, err := Reply{Value: List{Tuple{0, 0}, Tuple{1, 2}}}.Tuples()
	if err != nil || len(tuples) != 2 || tuples[1][1] != 2 {
		t.Fatalf("tuples: %v (%v)", tuples, err)
	}
	tokens, err := Reply{Value: List{Token("Left"), String("Shift")}}.Tokens()
	if err != nil || len(tokens) != 2 || tokens[1] != "Shift" {
		t.Fatalf("tokens: %v (%v)", tokens, err)
	}
	floats, err := Reply{Value: Floats(1, 2)}.Floats()
	if err != nil || floats[1] != 2 {
		t.Fatalf("floats: %v (%v)", floats, err)
	}
	if _, err := (Reply{Value: List{Tuple{0, 0}, Int(1)}}).Tuples(); !errors.Is(err, ErrDecode) {
		t.Fatalf("mixed list must fail, got %v", err)
	}
}

func TestReplyPair(t *testing.T) {
	x, y, err := Reply{Value: Tuple{640, 480}}.Pair()
	if err != nil || x != 640 || y != 480 {
		t.Fatalf("pair: %v %v (%v)", x, y, err)
	}
	if _, _, err := (Reply{Value: Tuple{1, 2, 3}}).Pair(); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestReplyAsShape(t *testing.T) {
	v, err := Reply{Value: String("#00FF00")}.As(ShapeColor)
	if err != nil || v != RGB(0, 255, 0) {
		t.Fatalf("as color: %v (%v)", v, err)
	}
	v, err = Reply{Value: Int(3)}.As(ShapeAny)
	if err != nil || v != Int(3) {
		t.Fatalf("as any: %v (%v)", v, err)
	}
	if _, err := (Reply{}).As(ShapeAny); !errors.Is(err, ErrDecode) {
		t.Fatalf("empty reply must fail, got %v", err)
	}
	if _, err := (Reply{Value: Int(3)}).As(ShapeList); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
