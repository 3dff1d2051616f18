package simhost

import (
	"github.com/danmuck/lazctl/internal/protocol/codec"
)

// Call is one command being handled. Handlers run with the host lock held
// and may read or change host state through Host.
type Call struct {
	Command   codec.Command
	MessageID uint64
	Host      *Host
}

func (c *Call) Arg(name string) (codec.Value, error) {
	v, ok := c.Command.Arg(name)
	if !ok {
		return nil, Reject(CodeInvalidArgument, "%s: missing argument %s", c.Command.Name, name)
	}
	return v, nil
}

func (c *Call) Has(name string) bool {
	_, ok := c.Command.Arg(name)
	return ok
}

func (c *Call) wrongKind(name, want string, got codec.Value) error {
	return Reject(CodeInvalidArgument, "%s: argument %s must be %s, got %s", c.Command.Name, name, want, got.Kind())
}

// Float accepts floats and integers.
func (c *Call) Float(name string) (float64, error) {
	v, err := c.Arg(name)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case codec.Float:
		return float64(x), nil
	case codec.Int:
		return float64(x), nil
	default:
		return 0, c.wrongKind(name, "float", v)
	}
}

func (c *Call) Int(name string) (int64, error) {
	v, err := c.Arg(name)
	if err != nil {
		return 0, err
	}
	x, ok := v.(codec.Int)
	if !ok {
		return 0, c.wrongKind(name, "int", v)
	}
	return int64(x), nil
}

func (c *Call) Bool(name string) (bool, error) {
	v, err := c.Arg(name)
	if err != nil {
		return false, err
	}
	x, ok := v.(codec.Bool)
	if !ok {
		return false, c.wrongKind(name, "bool", v)
	}
	return bool(x), nil
}

func (c *Call) String(name string) (string, error) {
	v, err := c.Arg(name)
	if err != nil {
		return "", err
	}
	x, ok := v.(codec.String)
	if !ok {
		return "", c.wrongKind(name, "string", v)
	}
	return string(x), nil
}

// Token reads an enum argument and checks it against the named token set.
func (c *Call) Token(name, set string) (string, error) {
	v, err := c.Arg(name)
	if err != nil {
		return "", err
	}
	tok, err := (codec.Reply{Value: v}).Token()
	if err != nil {
		return "", c.wrongKind(name, "token", v)
	}
	if err := c.Host.checkToken(set, tok); err != nil {
		return "", err
	}
	return tok, nil
}

// Tokens reads a token list and checks every element.
func (c *Call) Tokens(name, set string) ([]string, error) {
	v, err := c.Arg(name)
	if err != nil {
		return nil, err
	}
	toks, err := (codec.Reply{Value: v}).Tokens()
	if err != nil {
		return nil, c.wrongKind(name, "token list", v)
	}
	for _, tok := range toks {
		if err := c.Host.checkToken(set, tok); err != nil {
			return nil, err
		}
	}
	return toks, nil
}

// Tuple reads a tuple with exactly n components.
func (c *Call) Tuple(name string, n int) ([]float64, error) {
	v, err := c.Arg(name)
	if err != nil {
		return nil, err
	}
	t, ok := v.(codec.Tuple)
	if !ok || len(t) != n {
		return nil, Reject(CodeInvalidArgument, "%s: argument %s must be a %d-tuple", c.Command.Name, name, n)
	}
	return append([]float64(nil), t...), nil
}

// Color accepts the color kind, textual colors and 4-tuples.
func (c *Call) Color(name string) (codec.Color, error) {
	v, err := c.Arg(name)
	if err != nil {
		return codec.Color{}, err
	}
	col, err := (codec.Reply{Value: v}).Color()
	if err != nil {
		return codec.Color{}, Reject(CodeInvalidArgument, "%s: argument %s: %v", c.Command.Name, name, err)
	}
	return col, nil
}
