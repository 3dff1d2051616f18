package dispatch

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/danmuck/lazctl/internal/protocol/session"
)

// inboxSize bounds frames buffered between the reader and the dispatcher.
const inboxSize = 64

type inbound struct {
	frame frame.Frame
	err   error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// link is one live connection: a buffered writer plus a reader goroutine
// feeding decoded frames into inbox.
type link struct {
	conn  io.ReadWriteCloser
	r     *bufio.Reader
	w     *bufio.Writer
	inbox chan inbound
	stop  chan struct{}
	once  sync.Once
}

func newLink(conn io.ReadWriteCloser) *link {
	return &link{
		conn:  conn,
		r:     bufio.NewReader(conn),
		w:     bufio.NewWriter(conn),
		inbox: make(chan inbound, inboxSize),
		stop:  make(chan struct{}),
	}
}

func (l *link) start(limits frame.Limits) {
	go l.readLoop(limits)
}

func (l *link) readLoop(limits frame.Limits) {
	for {
		f, err := frame.ReadFrame(l.r, limits)
		select {
		case l.inbox <- inbound{frame: f, err: err}:
		case <-l.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

func (l *link) close() error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		err = l.conn.Close()
	})
	return err
}

// write sends f and flushes it to the transport.
func (l *link) write(ctx context.Context, f frame.Frame, limits frame.Limits, timeout time.Duration) error {
	if wd, ok := l.conn.(writeDeadliner); ok && timeout > 0 {
		deadline := time.Now().Add(timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := wd.SetWriteDeadline(deadline); err == nil {
			defer func() { _ = wd.SetWriteDeadline(time.Time{}) }()
		}
	}
	if err := frame.WriteFrame(l.w, f, limits); err != nil {
		return err
	}
	return l.w.Flush()
}

// handshake runs hello / hello.ack before the reader starts. On timeout the
// connection is closed to unblock the exchange.
func (l *link) handshake(ctx context.Context, hello session.Hello, timeout time.Duration) (session.HelloAck, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		ack session.HelloAck
		err error
	}
	done := make(chan result, 1)
	go func() {
		if err := session.WriteHello(l.w, hello); err != nil {
			done <- result{err: err}
			return
		}
		if err := l.w.Flush(); err != nil {
			done <- result{err: err}
			return
		}
		ack, err := session.ReadHelloAck(l.r)
		done <- result{ack: ack, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = l.close()
		return session.HelloAck{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return res.ack, res.err
		}
		return res.ack, res.ack.Check(hello)
	}
}
