package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

var ErrUnknownToken = errors.New("tools: unknown token")

// catalogue maps a closed enum onto its wire tokens. Index i is the token
// for the enum value i.
type catalogue[T ~uint8] struct {
	name   string
	tokens []string
}

func (c catalogue[T]) str(v T) string {
	if int(v) < len(c.tokens) {
		return c.tokens[v]
	}
	return fmt.Sprintf("%s(%d)", c.name, uint8(v))
}

// parse accepts the canonical token, ignoring case and surrounding space.
func (c catalogue[T]) parse(s string) (T, error) {
	s = strings.TrimSpace(s)
	for i, tok := range c.tokens {
		if strings.EqualFold(tok, s) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownToken, c.name, s)
}

func (c catalogue[T]) parseAll(in []string) ([]T, error) {
	out := make([]T, len(in))
	for i, s := range in {
		v, err := c.parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// decode turns a token reply into an enum value.
func (c catalogue[T]) decode(r codec.Reply) (T, error) {
	tok, err := r.Token()
	if err != nil {
		return 0, err
	}
	v, err := c.parse(tok)
	if err != nil {
		return 0, &codec.DecodeError{Want: c.name, Got: tok, Err: err}
	}
	return v, nil
}

func (c catalogue[T]) decodeAll(r codec.Reply) ([]T, error) {
	toks, err := r.Tokens()
	if err != nil {
		return nil, err
	}
	out, err := c.parseAll(toks)
	if err != nil {
		return nil, &codec.DecodeError{Want: c.name + " list", Err: err}
	}
	return out, nil
}

func (c catalogue[T]) token(v T) codec.Token {
	return codec.Token(c.str(v))
}

func (c catalogue[T]) list(vs []T) codec.List {
	out := make(codec.List, len(vs))
	for i, v := range vs {
		out[i] = c.token(v)
	}
	return out
}

func (c catalogue[T]) all() []string {
	return append([]string(nil), c.tokens...)
}

func newCatalogue[T ~uint8](name string, tokens ...string) catalogue[T] {
	return catalogue[T]{name: name, tokens: tokens}
}
