package simhost

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/lazctl/internal/auth"
	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/observability"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/danmuck/lazctl/internal/protocol/schema"
	"github.com/danmuck/lazctl/internal/protocol/session"
	"github.com/rs/zerolog"
)

// JournalEntry records one received command in arrival order.
type JournalEntry struct {
	MessageID uint64
	Command   codec.Command
	At        time.Time
}

// ReplyFilter rewrites the frames written in answer to one command. It can
// drop, reorder, or add frames to simulate a misbehaving host.
type ReplyFilter func(cmd codec.Command, messageID uint64, out []frame.Frame) []frame.Frame

type Option func(*Host)

func WithName(name string) Option {
	return func(h *Host) { h.name = name }
}

// WithHandshake makes the host require hello before any frame.
func WithHandshake(required bool) Option {
	return func(h *Host) { h.requireHello = required }
}

// WithTokenSets adds closed token sets checked by enum arguments. Keys are
// property names (e.g. "PenStyle") or the Set* constants.
func WithTokenSets(sets map[string][]string) Option {
	return func(h *Host) {
		for name, tokens := range sets {
			set := make(map[string]struct{}, len(tokens))
			for _, tok := range tokens {
				set[tok] = struct{}{}
			}
			h.tokens[name] = set
		}
	}
}

// WithAuth checks the hello token. It only applies with WithHandshake.
func WithAuth(v auth.Validator) Option {
	return func(h *Host) { h.auth = v }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

func WithLimits(limits frame.Limits) Option {
	return func(h *Host) { h.limits = limits }
}

func WithImageSize(width, height int) Option {
	return func(h *Host) { h.image = newImageState(width, height) }
}

// Host is the stub interpreter. One command runs at a time.
type Host struct {
	name         string
	requireHello bool
	auth         auth.Validator
	limits       frame.Limits
	logger       zerolog.Logger
	registry     *Registry
	started      time.Time
	handled      atomic.Uint64

	mu        sync.Mutex
	tokens    map[string]map[string]struct{}
	props     map[string]*property
	propOrder []string
	tool      string
	strokes   []Stroke
	keys      []KeyPress
	text      []string
	image     *imageState
	journal   []JournalEntry
	silent    map[string]bool
	delays    map[string]time.Duration
	filter    ReplyFilter
}

func New(opts ...Option) *Host {
	h := &Host{
		name:     "simhost",
		auth:     auth.Open{},
		limits:   frame.DefaultLimits(),
		logger:   logging.Component("simhost"),
		registry: NewRegistry(),
		started:  time.Now(),
		tokens:   make(map[string]map[string]struct{}),
		props:    make(map[string]*property),
		tool:     "Hand",
		image:    newImageState(640, 480),
		silent:   make(map[string]bool),
		delays:   make(map[string]time.Duration),
	}
	for _, p := range defaultProperties() {
		p := p
		h.props[p.name] = &p
		h.propOrder = append(h.propOrder, p.name)
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerToolHandlers()
	h.registerImageHandlers()
	return h
}

func (h *Host) Name() string {
	return h.name
}

// Register adds a custom command handler. A trailing "?" marks a query.
func (h *Host) Register(name string, fn Handler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Register(name, fn)
}

func (h *Host) mustRegister(name string, fn Handler) {
	if err := h.registry.Register(name, fn); err != nil {
		panic(err)
	}
}

// Commands lists every registered wire name.
func (h *Host) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Names()
}

// Silence makes the host swallow the named commands without replying.
func (h *Host) Silence(names ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range names {
		h.silent[codec.SemanticName(name)] = true
	}
}

// Delay holds the named command for d before running it. Later commands
// wait behind it.
func (h *Host) Delay(name string, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delays[codec.SemanticName(name)] = d
}

func (h *Host) SetReplyFilter(f ReplyFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filter = f
}

func (h *Host) Journal() []JournalEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]JournalEntry, len(h.journal))
	copy(out, h.journal)
	return out
}

// Property returns the stored value of a tool property.
func (h *Host) Property(name string) (codec.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.props[name]
	if !ok {
		return nil, false
	}
	return p.value, true
}

// Properties returns every tool property name in sorted order.
func (h *Host) Properties() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := append([]string(nil), h.propOrder...)
	sort.Strings(out)
	return out
}

func (h *Host) Tool() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tool
}

func (h *Host) Strokes() []Stroke {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Stroke(nil), h.strokes...)
}

func (h *Host) KeyPresses() []KeyPress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]KeyPress(nil), h.keys...)
}

func (h *Host) Text() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.text...)
}

// Layers returns the layer stack, bottom first.
func (h *Host) Layers() []Layer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.image.snapshot()
}

func (h *Host) CurrentLayer() Layer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.image.snapshot()[h.image.cur]
}

// UndoGroups counts completed ImageDoBegin/ImageDoEnd groups.
func (h *Host) UndoGroups() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.image.undoGroups
}

func (h *Host) checkToken(set, tok string) error {
	allowed, ok := h.tokens[set]
	if !ok {
		return nil
	}
	if _, ok := allowed[tok]; !ok {
		return Reject(CodeUnknownToken, "unknown %s token %q", set, tok)
	}
	return nil
}

// Handle runs one inbound frame and returns the frames to write back.
func (h *Host) Handle(f frame.Frame) []frame.Frame {
	id := f.Header.MessageID
	switch f.Header.MessageType {
	case schema.MsgSync:
		ack, err := codec.EncodeSyncAckFrame(id)
		if err != nil {
			h.logger.Error().Err(err).Uint64("message_id", id).Msg("simhost.sync_ack")
			return nil
		}
		return []frame.Frame{ack}
	case schema.MsgCommand:
	default:
		h.logger.Warn().Uint64("message_id", id).Str("type", schema.MessageName(f.Header.MessageType)).Msg("simhost.unexpected_frame")
		return nil
	}

	cmd, err := codec.DecodeCommandFrame(f)
	if err != nil {
		observability.RecordHostCommand("", "malformed")
		return h.errorFrames(id, "", &HostError{Code: CodeMalformed, Detail: err.Error()})
	}

	semantic := cmd.Semantic()
	h.mu.Lock()
	h.journal = append(h.journal, JournalEntry{MessageID: id, Command: cmd, At: time.Now()})
	silent := h.silent[semantic]
	delay := h.delays[semantic]
	filter := h.filter
	h.mu.Unlock()

	if silent {
		h.logger.Debug().Str("command", cmd.Name).Uint64("message_id", id).Msg("simhost.silenced")
		observability.RecordHostCommand(semantic, "silenced")
		return nil
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	out := h.execute(id, cmd)
	if filter != nil {
		out = filter(cmd, id, out)
	}
	return out
}

func (h *Host) execute(id uint64, cmd codec.Command) []frame.Frame {
	h.handled.Add(1)
	semantic := cmd.Semantic()
	h.mu.Lock()
	route, ok := h.registry.Resolve(semantic)
	if !ok {
		h.mu.Unlock()
		observability.RecordHostCommand(semantic, "unknown")
		return h.errorFrames(id, cmd.Name, Reject(CodeUnknownCommand, "unknown command %s", cmd.Name))
	}
	if route.Query != cmd.IsQuery() {
		h.mu.Unlock()
		observability.RecordHostCommand(semantic, "wrong_shape")
		return h.errorFrames(id, cmd.Name, Reject(CodeWrongShape, "%s must be sent as %s", semantic, shapeName(route.Query)))
	}
	v, err := route.Handler(&Call{Command: cmd, MessageID: id, Host: h})
	h.mu.Unlock()

	if err != nil {
		observability.RecordHostCommand(semantic, "rejected")
		return h.errorFrames(id, cmd.Name, err)
	}
	observability.RecordHostCommand(semantic, observability.OutcomeOK)
	if !cmd.IsQuery() {
		return nil
	}
	if v == nil {
		return h.errorFrames(id, cmd.Name, Reject(CodeInternal, "%s produced no result", semantic))
	}
	reply, err := codec.EncodeReplyFrame(id, cmd.Name, v)
	if err != nil {
		return h.errorFrames(id, cmd.Name, Reject(CodeInternal, "encode %s: %v", semantic, err))
	}
	h.logger.Debug().Str("command", cmd.Name).Uint64("message_id", id).Str("result", codec.Format(v)).Msg("simhost.reply")
	return []frame.Frame{reply}
}

func (h *Host) errorFrames(id uint64, command string, err error) []frame.Frame {
	var hostErr *HostError
	if !errors.As(err, &hostErr) {
		hostErr = &HostError{Code: CodeInternal, Detail: err.Error()}
	}
	h.logger.Warn().
		Str("command", command).
		Uint64("message_id", id).
		Uint32("code", hostErr.Code).
		Str("detail", hostErr.Detail).
		Msg("simhost.rejected")
	f, encErr := codec.EncodeErrorFrame(id, command, hostErr.Code, hostErr.Detail)
	if encErr != nil {
		h.logger.Error().Err(encErr).Msg("simhost.encode_error")
		return nil
	}
	return []frame.Frame{f}
}

func shapeName(query bool) string {
	if query {
		return "a query"
	}
	return "an action"
}

// ServeConn runs the command loop on one connection until EOF or ctx ends.
func (h *Host) ServeConn(ctx context.Context, conn io.ReadWriteCloser) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	if h.requireHello {
		if err := h.acceptHello(reader, writer); err != nil {
			h.logger.Warn().Err(err).Msg("simhost.hello_failed")
			return err
		}
	}

	for {
		f, err := frame.ReadFrame(reader, h.limits)
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			return err
		}
		for _, out := range h.Handle(f) {
			if err := frame.WriteFrame(writer, out, h.limits); err != nil {
				return err
			}
		}
		if err := writer.Flush(); err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			return err
		}
	}
}

func (h *Host) acceptHello(r *bufio.Reader, w *bufio.Writer) error {
	hello, err := session.ReadHello(r)
	if err != nil {
		return err
	}
	ack := session.AcceptHello(hello, h.name, time.Now())
	if ack.Status == session.AckStatusAccepted {
		if err := h.auth.Validate(hello.Token); err != nil {
			ack.Status = session.AckStatusRejected
			ack.Code = AckCodeUnauthorized
			ack.Message = err.Error()
		}
	}
	if err := session.WriteHelloAck(w, ack); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if ack.Status != session.AckStatusAccepted {
		return fmt.Errorf("%w: %s", session.ErrHelloRejected, ack.Message)
	}
	h.logger.Info().Str("client_id", hello.ClientID).Str("client", hello.Client).Msg("simhost.hello")
	return nil
}

// Serve accepts connections until ctx ends or the listener closes.
func (h *Host) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	h.logger.Info().Str("addr", ln.Addr().String()).Msg("simhost.listening")
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			remote := conn.RemoteAddr().String()
			h.logger.Info().Str("remote", remote).Msg("simhost.client_connected")
			if err := h.ServeConn(ctx, conn); err != nil {
				h.logger.Warn().Err(err).Str("remote", remote).Msg("simhost.client_failed")
			}
			h.logger.Info().Str("remote", remote).Msg("simhost.client_disconnected")
		}()
	}
}

// Connect returns the client end of an in-memory connection served by h.
func (h *Host) Connect(ctx context.Context) net.Conn {
	client, server := net.Pipe()
	go func() {
		if err := h.ServeConn(ctx, server); err != nil {
			h.logger.Debug().Err(err).Msg("simhost.pipe_closed")
		}
	}()
	return client
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
