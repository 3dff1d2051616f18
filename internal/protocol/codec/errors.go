package codec

import (
	"errors"
	"fmt"
)

var (
	ErrDecode             = errors.New("codec: decode error")
	ErrEmptyCommandName   = errors.New("codec: empty command name")
	ErrDuplicateArgument  = errors.New("codec: duplicate argument")
	ErrInvalidArgument    = errors.New("codec: invalid argument")
	ErrInvalidPoint       = errors.New("codec: invalid point")
	ErrInvalidColor       = errors.New("codec: invalid color")
	ErrInvalidLiteral     = errors.New("codec: invalid literal")
	ErrUnexpectedEnvelope = errors.New("codec: unexpected envelope")
)

// DecodeError reports a payload that does not match the shape the call
// site expects. It always matches ErrDecode under errors.Is.
type DecodeError struct {
	Want   string
	Got    string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "codec: decode"
	if e.Want != "" {
		msg += " " + e.Want
	}
	if e.Got != "" {
		msg += fmt.Sprintf(": got %s", e.Got)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeFailure(want string, err error) *DecodeError {
	return &DecodeError{Want: want, Err: err}
}

func shapeMismatch(want Shape, got Value) *DecodeError {
	gotName := "nil"
	if got != nil {
		gotName = got.Kind().String()
	}
	return &DecodeError{Want: want.String(), Got: gotName}
}
