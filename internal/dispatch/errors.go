package dispatch

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrChannel  = errors.New("dispatch: channel error")
	ErrProtocol = errors.New("dispatch: protocol error")
	ErrTimeout  = errors.New("dispatch: timeout")

	ErrClosed        = errors.New("dispatch: channel closed")
	ErrDegraded      = errors.New("dispatch: channel degraded")
	ErrNoDialer      = errors.New("dispatch: no dialer configured")
	ErrQueryShaped   = errors.New("dispatch: command name is query-shaped")
	ErrActionShaped  = errors.New("dispatch: command name is action-shaped")
	ErrNilConnection = errors.New("dispatch: nil connection")
)

// ChannelError reports an unusable transport. It matches ErrChannel.
type ChannelError struct {
	Op      string
	Command string
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("dispatch: channel %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("dispatch: channel %s %s: %v", e.Op, e.Command, e.Err)
}

func (e *ChannelError) Is(target error) bool { return target == ErrChannel }
func (e *ChannelError) Unwrap() error        { return e.Err }

// ProtocolError carries the host's rejection of a well-formed command.
type ProtocolError struct {
	Command   string
	MessageID uint64
	Code      uint32
	Detail    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("dispatch: host rejected %s (message_id=%d code=%d): %s", e.Command, e.MessageID, e.Code, e.Detail)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// TimeoutError reports a query without a reply inside Bound.
type TimeoutError struct {
	Command   string
	MessageID uint64
	Bound     time.Duration
	// Err is the context error when the caller's deadline fired first.
	Err error
}

func (e *TimeoutError) Error() string {
	if e.MessageID == 0 && e.Err != nil {
		return fmt.Sprintf("dispatch: %s not sent: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("dispatch: no reply to %s (message_id=%d) within %v", e.Command, e.MessageID, e.Bound)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
func (e *TimeoutError) Unwrap() error        { return e.Err }

// Protocol-level error codes produced locally, outside the host's range.
const (
	CodeReplyMismatch uint32 = 0xFFFF0001
)
