package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLiteral parses the textual value syntax rendered by Format:
//
//	true, false          Bool
//	42, -7               Int
//	2.5, 1e3, .5         Float
//	"quoted"             String
//	#RRGGBB[AA], rgb()   Color
//	(x, y, ...)          Tuple
//	[a, b, ...]          List
//	anything else        Token
func ParseLiteral(text string) (Value, error) {
	p := &literalParser{src: text}
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.fail("trailing input")
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) fail(reason string) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrInvalidLiteral, reason, p.pos, p.src)
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value(depth int) (Value, error) {
	if depth > maxListDepth {
		return nil, p.fail("nesting too deep")
	}
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return nil, p.fail("empty value")
	case c == '"':
		return p.quoted()
	case c == '(':
		return p.tuple()
	case c == '[':
		return p.list(depth)
	default:
		return p.scalar()
	}
}

func (p *literalParser) quoted() (Value, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return nil, p.fail("bad string")
			}
			return String(s), nil
		}
		p.pos++
	}
	return nil, p.fail("unterminated string")
}

func (p *literalParser) tuple() (Value, error) {
	p.pos++
	var out Tuple
	for {
		p.skipSpace()
		if p.peek() == ')' && len(out) == 0 {
			return nil, p.fail("empty tuple")
		}
		word := p.word()
		f, err := strconv.ParseFloat(word, 64)
		if err != nil || !numericStart(word) {
			return nil, p.fail(fmt.Sprintf("tuple component %q", word))
		}
		out = append(out, f)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		default:
			return nil, p.fail("expected ',' or ')'")
		}
	}
}

func (p *literalParser) list(depth int) (Value, error) {
	p.pos++
	out := List{}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.fail("expected ',' or ']'")
		}
	}
}

// word consumes up to the next delimiter.
func (p *literalParser) word() string {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte(",()[] \t\r\n\"", p.src[p.pos]) < 0 {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *literalParser) scalar() (Value, error) {
	start := p.pos
	word := p.word()
	lower := strings.ToLower(word)
	if (lower == "rgb" || lower == "rgba") && p.peek() == '(' {
		end := strings.IndexByte(p.src[p.pos:], ')')
		if end < 0 {
			return nil, p.fail("unterminated color")
		}
		p.pos += end + 1
		c, err := ParseColor(p.src[start:p.pos])
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	switch {
	case word == "":
		return nil, p.fail("unexpected delimiter")
	case word == "true":
		return Bool(true), nil
	case word == "false":
		return Bool(false), nil
	case strings.HasPrefix(word, "#"):
		c, err := ParseColor(word)
		if err != nil {
			return nil, err
		}
		return c, nil
	case numericStart(word):
		if i, err := strconv.ParseInt(word, 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return nil, p.fail(fmt.Sprintf("bad number %q", word))
		}
		return Float(f), nil
	default:
		return Token(word), nil
	}
}

// numericStart keeps words like NaN and Inf as tokens.
func numericStart(word string) bool {
	if word == "" {
		return false
	}
	c := word[0]
	if c == '+' || c == '-' {
		if len(word) == 1 {
			return false
		}
		c = word[1]
	}
	return (c >= '0' && c <= '9') || c == '.'
}
