package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

var ErrBadArgument = errors.New("cli: bad argument")

// ParseCommand builds a command from its name and Name=value words.
func ParseCommand(name string, words []string) (codec.Command, error) {
	args := make([]codec.Arg, 0, len(words))
	for _, w := range words {
		key, raw, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return codec.Command{}, fmt.Errorf("%w: %q is not Name=value", ErrBadArgument, w)
		}
		v, err := codec.ParseLiteral(raw)
		if err != nil {
			return codec.Command{}, fmt.Errorf("%w: %s: %w", ErrBadArgument, key, err)
		}
		args = append(args, codec.A(strings.TrimSpace(key), v))
	}
	cmd := codec.NewCommand(name, args...)
	if err := cmd.Validate(); err != nil {
		return codec.Command{}, err
	}
	return cmd, nil
}

// SplitLine splits a command line on spaces outside quotes, tuples and
// lists, so `Coords=[(0, 0), (5, 5)]` stays one word.
func SplitLine(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		depth   int
		quoted  bool
		escaped bool
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q", ErrBadArgument, r)
			}
		case depth == 0 && (r == ' ' || r == '\t'):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated string", ErrBadArgument)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed bracket", ErrBadArgument)
	}
	flush()
	return words, nil
}

// formatReply renders a query reply the way ParseLiteral reads it back.
func formatReply(reply codec.Reply) string {
	if reply.Value == nil {
		return "<none>"
	}
	return codec.Format(reply.Value)
}
