package codec

import (
	"fmt"
	"strings"
)

// QuerySuffix marks a command name as a query.
const QuerySuffix = "?"

// IsQuery reports whether name is query-shaped. The suffix is the sole
// signal that separates blocking queries from fire-and-forget actions.
func IsQuery(name string) bool {
	return strings.HasSuffix(name, QuerySuffix)
}

// SemanticName strips the query suffix. Replies are matched on this name.
func SemanticName(name string) string {
	return strings.TrimSuffix(name, QuerySuffix)
}

// Arg is one named command argument.
type Arg struct {
	Name  string
	Value Value
}

// A builds an Arg.
func A(name string, v Value) Arg {
	return Arg{Name: name, Value: v}
}

// Command is one outgoing request. Args keep caller order so that encoding
// is deterministic; the order carries no meaning for the host.
type Command struct {
	Name string
	Args []Arg
}

func NewCommand(name string, args ...Arg) Command {
	return Command{Name: name, Args: args}
}

func (c Command) IsQuery() bool {
	return IsQuery(c.Name)
}

// Semantic returns the command name without the query suffix.
func (c Command) Semantic() string {
	return SemanticName(c.Name)
}

// Arg returns the value of the named argument.
func (c Command) Arg(name string) (Value, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

func (c Command) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" || SemanticName(name) == "" {
		return ErrEmptyCommandName
	}
	if name != c.Name || strings.ContainsAny(c.Name, " \t\r\n") {
		return fmt.Errorf("%w: command name %q contains whitespace", ErrInvalidArgument, c.Name)
	}
	seen := make(map[string]struct{}, len(c.Args))
	for i, a := range c.Args {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: args[%d] missing name", ErrInvalidArgument, i)
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateArgument, a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.Value == nil {
			return fmt.Errorf("%w: %s has no value", ErrInvalidArgument, a.Name)
		}
	}
	return nil
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteString(Format(a.Value))
	}
	return b.String()
}
