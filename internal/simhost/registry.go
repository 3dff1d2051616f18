package simhost

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/lazctl/internal/protocol/codec"
)

var (
	ErrRouteExists      = errors.New("simhost: command already registered")
	ErrHandlerNil       = errors.New("simhost: handler is nil")
	ErrInvalidRouteName = errors.New("simhost: invalid command name")
)

// Host error codes carried in error frames.
const (
	CodeUnknownCommand  uint32 = 1
	CodeInvalidArgument uint32 = 2
	CodeUnknownToken    uint32 = 3
	CodeInvalidState    uint32 = 4
	CodeMalformed       uint32 = 5
	CodeWrongShape      uint32 = 6
	CodeInternal        uint32 = 7
)

// AckCodeUnauthorized rejects a hello whose token fails the host's auth.
// Codes 1 and 2 are the session's invalid-hello and protocol-mismatch.
const AckCodeUnauthorized uint32 = 3

// HostError is returned by handlers to reject a command.
type HostError struct {
	Code   uint32
	Detail string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("simhost: code=%d: %s", e.Code, e.Detail)
}

func Reject(code uint32, format string, args ...any) error {
	return &HostError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Handler runs one command. Query handlers return the reply value; action
// handlers return nil.
type Handler func(c *Call) (codec.Value, error)

// Route is one registered command.
type Route struct {
	Name    string
	Query   bool
	Handler Handler
}

// Registry stores handlers by semantic command name.
type Registry struct {
	items map[string]Route
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Route)}
}

// Register adds a handler. A trailing "?" registers a query.
func (r *Registry) Register(name string, h Handler) error {
	if h == nil {
		return ErrHandlerNil
	}
	semantic := codec.SemanticName(name)
	if !isValidName(semantic) {
		return fmt.Errorf("%w: %q", ErrInvalidRouteName, name)
	}
	if _, ok := r.items[semantic]; ok {
		return fmt.Errorf("%w: %s", ErrRouteExists, semantic)
	}
	r.items[semantic] = Route{Name: semantic, Query: codec.IsQuery(name), Handler: h}
	return nil
}

func (r *Registry) Resolve(semantic string) (Route, bool) {
	route, ok := r.items[semantic]
	return route, ok
}

// Names returns wire names in sorted order, queries with their suffix.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.items))
	for _, route := range r.items {
		name := route.Name
		if route.Query {
			name += codec.QuerySuffix
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !(isAlpha || isDigit || c == '_' || c == '.') {
			return false
		}
	}
	return true
}
