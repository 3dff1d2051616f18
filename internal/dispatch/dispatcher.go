package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/observability"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/danmuck/lazctl/internal/protocol/schema"
	"github.com/danmuck/lazctl/internal/protocol/session"
	"github.com/rs/zerolog"
)

const (
	kindAction = "action"
	kindQuery  = "query"
)

// DialFunc opens a fresh connection to the host.
type DialFunc func(ctx context.Context) (io.ReadWriteCloser, error)

type Option func(*Dispatcher)

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithDialer enables Reconnect.
func WithDialer(dial DialFunc) Option {
	return func(d *Dispatcher) { d.dial = dial }
}

func WithLimits(limits frame.Limits) Option {
	return func(d *Dispatcher) { d.limits = limits }
}

// WithClientName sets the client name sent in the hello.
func WithClientName(name string) Option {
	return func(d *Dispatcher) { d.client = name }
}

// Dispatcher is the sole owner of the host channel.
type Dispatcher struct {
	cfg    session.Config
	limits frame.Limits
	logger zerolog.Logger
	dial   DialFunc
	client string

	// mu admits one command, resync or reconnect at a time.
	mu       sync.Mutex
	link     *link
	nextID   uint64
	host     string
	pending  *session.PendingTable
	state    atomic.Int32
	shutdown chan struct{}
	shutOnce sync.Once
}

func newDispatcher(cfg session.Config, opts []Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg.WithDefaults(),
		limits:   frame.DefaultLimits(),
		logger:   logging.Component("dispatch"),
		client:   "lazctl",
		pending:  session.NewPendingTable(),
		shutdown: make(chan struct{}),
	}
	d.state.Store(int32(StateClosed))
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// New wraps an established connection. With cfg.Handshake set, the hello
// exchange runs before New returns.
func New(conn io.ReadWriteCloser, cfg session.Config, opts ...Option) (*Dispatcher, error) {
	if conn == nil {
		return nil, ErrNilConnection
	}
	d := newDispatcher(cfg, opts)
	if err := d.attach(context.Background(), conn); err != nil {
		return nil, err
	}
	return d, nil
}

// Open dials the host and keeps dial for Reconnect.
func Open(ctx context.Context, dial DialFunc, cfg session.Config, opts ...Option) (*Dispatcher, error) {
	if dial == nil {
		return nil, &ChannelError{Op: "dial", Err: ErrNoDialer}
	}
	d := newDispatcher(cfg, opts)
	d.dial = dial
	conn, err := dial(ctx)
	if err != nil {
		return nil, &ChannelError{Op: "dial", Err: err}
	}
	if err := d.attach(ctx, conn); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) attach(ctx context.Context, conn io.ReadWriteCloser) error {
	l := newLink(conn)
	if d.cfg.Handshake {
		hello := session.NewHello(d.client)
		hello.Token = d.cfg.Token
		ack, err := l.handshake(ctx, hello, d.cfg.HandshakeTimeout)
		if err != nil {
			_ = l.close()
			return &ChannelError{Op: "handshake", Err: err}
		}
		d.host = ack.Host
		d.logger.Info().Str("host", ack.Host).Uint16("protocol", ack.Protocol).Msg("dispatch.handshake")
	}
	l.start(d.limits)
	d.link = l
	d.pending.Clear()
	d.setState(StateOpen)
	return nil
}

func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Host returns the host name reported in the handshake, if any.
func (d *Dispatcher) Host() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.host
}

func (d *Dispatcher) Config() session.Config {
	return d.cfg
}

// Pending lists queries still awaiting a reply. Outside a degraded channel
// it is empty.
func (d *Dispatcher) Pending() []session.PendingQuery {
	return d.pending.List()
}

// Send dispatches cmd. A name ending in "?" blocks for its reply; any other
// name returns a zero Reply once the frame is flushed.
func (d *Dispatcher) Send(ctx context.Context, cmd codec.Command) (codec.Reply, error) {
	kind := kindAction
	if cmd.IsQuery() {
		kind = kindQuery
	}
	if err := cmd.Validate(); err != nil {
		observability.RecordCommand(kind, cmd.Semantic(), observability.OutcomeInvalid)
		return codec.Reply{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	reply, err := d.sendLocked(ctx, cmd, kind)
	observability.RecordCommand(kind, cmd.Semantic(), outcomeOf(err))
	return reply, err
}

// Action sends a fire-and-forget command.
func (d *Dispatcher) Action(ctx context.Context, name string, args ...codec.Arg) error {
	if codec.IsQuery(name) {
		return fmt.Errorf("%w: %s", ErrQueryShaped, name)
	}
	_, err := d.Send(ctx, codec.NewCommand(name, args...))
	return err
}

// Query sends a query and returns its raw reply.
func (d *Dispatcher) Query(ctx context.Context, name string, args ...codec.Arg) (codec.Reply, error) {
	if !codec.IsQuery(name) {
		return codec.Reply{}, fmt.Errorf("%w: %s", ErrActionShaped, name)
	}
	return d.Send(ctx, codec.NewCommand(name, args...))
}

// QueryAs sends a query and decodes the reply by shape.
func (d *Dispatcher) QueryAs(ctx context.Context, shape codec.Shape, name string, args ...codec.Arg) (codec.Value, error) {
	reply, err := d.Query(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	v, err := reply.As(shape)
	if err != nil {
		d.logger.Warn().Err(err).Str("command", name).Str("shape", shape.String()).Msg("dispatch.decode_failed")
		return nil, err
	}
	return v, nil
}

func (d *Dispatcher) sendLocked(ctx context.Context, cmd codec.Command, kind string) (codec.Reply, error) {
	if err := d.usableLocked("send", cmd.Name); err != nil {
		return codec.Reply{}, err
	}
	if err := d.drainLocked(cmd.Name); err != nil {
		return codec.Reply{}, err
	}
	if err := ctx.Err(); err != nil {
		// Nothing was written, so the channel stays usable.
		return codec.Reply{}, &TimeoutError{Command: cmd.Name, Err: err}
	}

	id := d.newMessageIDLocked()
	f, err := codec.EncodeCommandFrame(id, cmd)
	if err != nil {
		return codec.Reply{}, err
	}
	start := time.Now()
	if err := d.link.write(ctx, f, d.limits, d.cfg.WriteTimeout); err != nil {
		return codec.Reply{}, d.failLocked("write", cmd.Name, err)
	}
	d.logger.Debug().
		Str("command", cmd.Name).
		Uint64("message_id", id).
		Str("kind", kind).
		Int("args", len(cmd.Args)).
		Msg("dispatch.sent")
	if kind == kindAction {
		return codec.Reply{}, nil
	}

	reply, err := d.awaitLocked(ctx, cmd, id, start)
	observability.RecordQueryDuration(cmd.Semantic(), outcomeOf(err), time.Since(start))
	return reply, err
}

func (d *Dispatcher) awaitLocked(ctx context.Context, cmd codec.Command, id uint64, start time.Time) (codec.Reply, error) {
	bound := d.cfg.QueryTimeout
	d.pending.Put(session.PendingQuery{
		MessageID: id,
		Command:   cmd.Semantic(),
		SentAt:    start,
		Deadline:  start.Add(bound),
	})
	timer := time.NewTimer(bound)
	defer timer.Stop()

	for {
		select {
		case <-d.shutdown:
			d.pending.Remove(id)
			return codec.Reply{}, &ChannelError{Op: "await", Command: cmd.Name, Err: ErrClosed}
		case <-ctx.Done():
			waited := bound
			if deadline, ok := ctx.Deadline(); ok {
				waited = deadline.Sub(start)
			}
			d.degradeLocked(cmd.Name, id, ctx.Err())
			return codec.Reply{}, &TimeoutError{Command: cmd.Name, MessageID: id, Bound: waited, Err: ctx.Err()}
		case <-timer.C:
			d.degradeLocked(cmd.Name, id, ErrTimeout)
			return codec.Reply{}, &TimeoutError{Command: cmd.Name, MessageID: id, Bound: bound}
		case in := <-d.link.inbox:
			if in.err != nil {
				return codec.Reply{}, d.failLocked("read", cmd.Name, in.err)
			}
			env, err := codec.DecodeEnvelope(in.frame)
			if in.frame.Header.MessageID != id {
				d.discardLocked(in.frame, env, err, id)
				continue
			}
			d.pending.Remove(id)
			return d.resolve(cmd, id, env, err)
		}
	}
}

// resolve turns the envelope correlated to cmd into a reply or error.
func (d *Dispatcher) resolve(cmd codec.Command, id uint64, env codec.Envelope, err error) (codec.Reply, error) {
	if err != nil {
		if errors.Is(err, codec.ErrDecode) {
			return codec.Reply{}, err
		}
		return codec.Reply{}, &ProtocolError{Command: cmd.Name, MessageID: id, Code: CodeReplyMismatch, Detail: err.Error()}
	}
	if env.MessageType == schema.MsgSyncAck {
		return codec.Reply{}, &ProtocolError{Command: cmd.Name, MessageID: id, Code: CodeReplyMismatch, Detail: "sync ack in place of reply"}
	}
	if env.Command != cmd.Semantic() {
		return codec.Reply{}, &ProtocolError{
			Command:   cmd.Name,
			MessageID: id,
			Code:      CodeReplyMismatch,
			Detail:    fmt.Sprintf("reply names %q", env.Command),
		}
	}
	if env.IsError() {
		d.logger.Warn().
			Str("command", cmd.Name).
			Uint64("message_id", id).
			Uint32("code", env.ErrCode).
			Str("detail", env.ErrDetail).
			Msg("dispatch.host_error")
		return codec.Reply{}, &ProtocolError{Command: cmd.Name, MessageID: id, Code: env.ErrCode, Detail: env.ErrDetail}
	}
	d.logger.Debug().Str("command", cmd.Name).Uint64("message_id", id).Msg("dispatch.resolved")
	return env.Reply(), nil
}

// Resync sends a sync probe and discards everything up to its ack. The host
// runs commands in order, so the ack proves any timed-out query has been
// answered or dropped, and the channel returns to open.
func (d *Dispatcher) Resync(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.aliveLocked("sync", ""); err != nil {
		return err
	}

	id := d.newMessageIDLocked()
	f, err := codec.EncodeSyncFrame(id)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := d.link.write(ctx, f, d.limits, d.cfg.WriteTimeout); err != nil {
		observability.RecordResync("sync", false)
		return d.failLocked("sync", "", err)
	}

	timer := time.NewTimer(d.cfg.SyncTimeout)
	defer timer.Stop()
	for {
		select {
		case <-d.shutdown:
			return &ChannelError{Op: "sync", Err: ErrClosed}
		case <-ctx.Done():
			observability.RecordResync("sync", false)
			d.degradeLocked("sync", id, ctx.Err())
			return &TimeoutError{Command: "sync", MessageID: id, Bound: time.Since(start), Err: ctx.Err()}
		case <-timer.C:
			observability.RecordResync("sync", false)
			d.degradeLocked("sync", id, ErrTimeout)
			return &TimeoutError{Command: "sync", MessageID: id, Bound: d.cfg.SyncTimeout}
		case in := <-d.link.inbox:
			if in.err != nil {
				observability.RecordResync("sync", false)
				return d.failLocked("read", "sync", in.err)
			}
			h := in.frame.Header
			if h.MessageType == schema.MsgSyncAck && h.MessageID == id {
				dropped := d.pending.Clear()
				d.logger.Info().Uint64("message_id", id).Int("dropped", len(dropped)).Msg("dispatch.resynced")
				observability.RecordResync("sync", true)
				d.setState(StateOpen)
				return nil
			}
			env, err := codec.DecodeEnvelope(in.frame)
			d.discardLocked(in.frame, env, err, id)
		}
	}
}

// Reconnect replaces the connection using the dialer given to Open or
// WithDialer. Pending queries are dropped.
func (d *Dispatcher) Reconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.shutdown:
		return &ChannelError{Op: "reconnect", Err: ErrClosed}
	default:
	}
	if d.dial == nil {
		return &ChannelError{Op: "reconnect", Err: ErrNoDialer}
	}
	if d.link != nil {
		_ = d.link.close()
		d.link = nil
	}
	d.pending.Clear()
	d.setState(StateClosed)

	conn, err := d.dial(ctx)
	if err != nil {
		observability.RecordResync("reconnect", false)
		return &ChannelError{Op: "reconnect", Err: err}
	}
	if err := d.attach(ctx, conn); err != nil {
		observability.RecordResync("reconnect", false)
		return err
	}
	observability.RecordResync("reconnect", true)
	d.logger.Info().Msg("dispatch.reconnected")
	return nil
}

// Close tears the channel down. A query blocked in another goroutine fails
// with a ChannelError.
func (d *Dispatcher) Close() error {
	d.shutOnce.Do(func() { close(d.shutdown) })
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	if d.link != nil {
		err = d.link.close()
		d.link = nil
	}
	d.pending.Clear()
	d.setState(StateClosed)
	return err
}

func (d *Dispatcher) newMessageIDLocked() uint64 {
	d.nextID++
	return d.nextID
}

// aliveLocked fails once the channel is closed; a degraded channel passes.
func (d *Dispatcher) aliveLocked(op, command string) error {
	select {
	case <-d.shutdown:
		return &ChannelError{Op: op, Command: command, Err: ErrClosed}
	default:
	}
	if d.State() == StateClosed || d.link == nil {
		return &ChannelError{Op: op, Command: command, Err: ErrClosed}
	}
	return nil
}

func (d *Dispatcher) usableLocked(op, command string) error {
	if err := d.aliveLocked(op, command); err != nil {
		return err
	}
	if d.State() == StateDegraded {
		return &ChannelError{Op: op, Command: command, Err: ErrDegraded}
	}
	return nil
}

// drainLocked discards frames that arrived while no query was waiting,
// such as host errors for earlier actions.
func (d *Dispatcher) drainLocked(command string) error {
	for {
		select {
		case in := <-d.link.inbox:
			if in.err != nil {
				return d.failLocked("read", command, in.err)
			}
			env, err := codec.DecodeEnvelope(in.frame)
			d.discardLocked(in.frame, env, err, 0)
		default:
			return nil
		}
	}
}

func (d *Dispatcher) discardLocked(f frame.Frame, env codec.Envelope, decodeErr error, expected uint64) {
	reason := "unmatched"
	switch {
	case decodeErr != nil:
		reason = "undecodable"
	case env.IsError():
		reason = "host_error"
	case env.MessageType == schema.MsgSyncAck:
		reason = "sync_ack"
	}
	if _, ok := d.pending.Take(f.Header.MessageID); ok {
		reason = "late"
	}
	event := d.logger.Warn().
		Uint64("message_id", f.Header.MessageID).
		Uint64("expected", expected).
		Str("type", schema.MessageName(f.Header.MessageType)).
		Str("reason", reason)
	if env.Command != "" {
		event = event.Str("command", env.Command)
	}
	if env.IsError() {
		event = event.Uint32("code", env.ErrCode).Str("detail", env.ErrDetail)
	}
	if decodeErr != nil {
		event = event.Err(decodeErr)
	}
	event.Msg("dispatch.discarded")
	observability.RecordStaleReply(reason)
}

func (d *Dispatcher) degradeLocked(command string, id uint64, cause error) {
	d.logger.Warn().
		Str("command", command).
		Uint64("message_id", id).
		AnErr("cause", cause).
		Msg("dispatch.degraded")
	d.setState(StateDegraded)
}

func (d *Dispatcher) failLocked(op, command string, err error) error {
	d.logger.Error().Err(err).Str("op", op).Str("command", command).Msg("dispatch.channel_failed")
	if d.link != nil {
		_ = d.link.close()
	}
	d.pending.Clear()
	d.setState(StateClosed)
	return &ChannelError{Op: op, Command: command, Err: err}
}

func (d *Dispatcher) setState(s State) {
	old := State(d.state.Swap(int32(s)))
	if old != s {
		d.logger.Debug().Str("from", old.String()).Str("to", s.String()).Msg("dispatch.state")
	}
	observability.SetChannelState(s.String(), stateNames...)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrChannel):
		return observability.OutcomeChannel
	case errors.Is(err, ErrTimeout):
		return observability.OutcomeTimeout
	case errors.Is(err, ErrProtocol):
		return observability.OutcomeProtocol
	case errors.Is(err, codec.ErrDecode):
		return observability.OutcomeDecode
	default:
		return observability.OutcomeInvalid
	}
}
