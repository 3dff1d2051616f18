package codec

import "fmt"

// Number is any caller-side numeric type accepted for coordinate-like values.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Point normalizes a coordinate to a float tuple, so integer and float
// callers produce the same wire value.
func Point[N Number](x, y N) Tuple {
	return Tuple{float64(x), float64(y)}
}

// Size is Point under another name for width/height pairs.
func Size[N Number](w, h N) Tuple {
	return Point(w, h)
}

// Floats converts numbers to a list of floats.
func Floats[N Number](values ...N) List {
	out := make(List, len(values))
	for i, v := range values {
		out[i] = Float(float64(v))
	}
	return out
}

// Tokens builds a token list. A single token and a one-element slice are
// encoded identically.
func Tokens[S ~string](tokens ...S) List {
	out := make(List, len(tokens))
	for i, tok := range tokens {
		out[i] = Token(string(tok))
	}
	return out
}

// StrokePoint is one normalized (x, y, pressure) sample.
type StrokePoint struct {
	X, Y, Pressure float64
}

// Pt builds a stroke point from any numeric type. The optional trailing
// value is the pressure.
func Pt[N Number](x, y N, pressure ...N) []float64 {
	out := []float64{float64(x), float64(y)}
	for _, p := range pressure {
		out = append(out, float64(p))
	}
	return out
}

// NormalizeStroke turns 2- or 3-component points into (x, y, pressure)
// triples, substituting defaultPressure where the pressure is omitted.
func NormalizeStroke(defaultPressure float64, points ...[]float64) ([]StrokePoint, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty stroke", ErrInvalidPoint)
	}
	out := make([]StrokePoint, 0, len(points))
	for i, p := range points {
		switch len(p) {
		case 2:
			out = append(out, StrokePoint{X: p[0], Y: p[1], Pressure: defaultPressure})
		case 3:
			out = append(out, StrokePoint{X: p[0], Y: p[1], Pressure: p[2]})
		default:
			return nil, fmt.Errorf("%w: point %d has %d components", ErrInvalidPoint, i, len(p))
		}
	}
	return out, nil
}

// StrokeTriples renders points as a list of (x, y, pressure) tuples.
func StrokeTriples(points []StrokePoint) List {
	out := make(List, len(points))
	for i, p := range points {
		out[i] = Tuple{p.X, p.Y, p.Pressure}
	}
	return out
}

// StrokeCoords splits points into the coordinate list and the parallel
// pressure list expected by mouse-style commands.
func StrokeCoords(points []StrokePoint) (coords List, pressure List) {
	coords = make(List, len(points))
	pressure = make(List, len(points))
	for i, p := range points {
		coords[i] = Tuple{p.X, p.Y}
		pressure[i] = Float(p.Pressure)
	}
	return coords, pressure
}
