package codec

import (
	"errors"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	cases := []struct {
		in   string
		want Value
	}{
		{"true", Bool(true)},
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"2.5", Float(2.5)},
		{".5", Float(0.5)},
		{"1e3", Float(1000)},
		{`"Hello, \"world\""`, String(`Hello, "world"`)},
		{"#FF0000", RGB(255, 0, 0)},
		{"rgba(1, 2, 3, 4)", RGBA(1, 2, 3, 4)},
		{"(1, 2.5)", Tuple{1, 2.5}},
		{"[(0, 0), (10, 20)]", List{Tuple{0, 0}, Tuple{10, 20}}},
		{"[Left, Shift]", List{Token("Left"), Token("Shift")}},
		{"[]", List{}},
		{"FloodFill", Token("FloodFill")},
		{"NaN", Token("NaN")},
	}
	for _, tc := range cases {
		got, err := ParseLiteral(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if !Equal(got, tc.want) {
			t.Fatalf("parse %q: want %s got %s", tc.in, Format(tc.want), Format(got))
		}
	}
}

func TestParseLiteralFormatInverse(t *testing.T) {
	values := []Value{
		Int(5), Float(3), Float(-0.25), Bool(false), String("a b"), Token("Pen"),
		Tuple{1, 2, 0.5}, RGBA(9, 8, 7, 6), List{Int(1), List{Token("x")}},
	}
	for _, v := range values {
		got, err := ParseLiteral(Format(v))
		if err != nil {
			t.Fatalf("parse %s: %v", Format(v), err)
		}
		if !Equal(got, v) {
			t.Fatalf("format/parse mismatch: %s -> %s", Format(v), Format(got))
		}
	}
}

func TestParseLiteralErrors(t *testing.T) {
	for _, in := range []string{"", "(", "()", "(1, x)", "[1, 2", `"open`, "1 2", "#12"} {
		if _, err := ParseLiteral(in); err == nil {
			t.Fatalf("parse %q: expected error", in)
		}
	}
	if _, err := ParseLiteral("(a)"); !errors.Is(err, ErrInvalidLiteral) {
		t.Fatalf("expected ErrInvalidLiteral, got %v", err)
	}
}
