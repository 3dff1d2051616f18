package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/lazctl/internal/auth"
	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/danmuck/lazctl/internal/protocol/session"
	"github.com/danmuck/lazctl/internal/simhost"
	"github.com/danmuck/lazctl/internal/testutil/testlog"
)

func testConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.QueryTimeout = 2 * time.Second
	cfg.SyncTimeout = 2 * time.Second
	return cfg
}

func connect(t *testing.T, h *simhost.Host, cfg session.Config) *Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d, err := New(h.Connect(ctx), cfg)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// settle waits until the host has run everything sent so far.
func settle(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Resync(ctx); err != nil {
		t.Fatalf("resync: %v", err)
	}
}

func TestSetThenGetPenWidth(t *testing.T) {
	testlog.Start(t)
	d := connect(t, simhost.New(), testConfig())
	ctx := context.Background()

	if err := d.Action(ctx, "ToolSetPenWidth", codec.A("Width", codec.Float(2.5))); err != nil {
		t.Fatalf("set: %v", err)
	}
	reply, err := d.Query(ctx, "ToolGetPenWidth?")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reply.Command != "ToolGetPenWidth" {
		t.Fatalf("reply command got=%q", reply.Command)
	}
	if got, err := reply.Float(); err != nil || got != 2.5 {
		t.Fatalf("width got=%v err=%v", got, err)
	}
	if d.State() != StateOpen || len(d.Pending()) != 0 {
		t.Fatalf("state=%s pending=%d", d.State(), len(d.Pending()))
	}
}

func TestActionsAreOrderedAndNonBlocking(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	d := connect(t, h, testConfig())
	ctx := context.Background()

	if err := d.Action(ctx, "ChooseTool", codec.A("Name", codec.Token("Pen"))); err != nil {
		t.Fatalf("choose: %v", err)
	}
	points, _ := codec.NormalizeStroke(1, codec.Pt(10, 20), codec.Pt(30, 40, 0.5))
	coords, pressure := codec.StrokeCoords(points)
	if err := d.Action(ctx, "ToolMouse",
		codec.A("Coords", coords),
		codec.A("State", codec.Tokens("Left")),
		codec.A("Pressure", pressure),
	); err != nil {
		t.Fatalf("mouse: %v", err)
	}
	settle(t, d)

	journal := h.Journal()
	if len(journal) != 2 {
		t.Fatalf("journal len=%d", len(journal))
	}
	if journal[0].Command.Name != "ChooseTool" || journal[1].Command.Name != "ToolMouse" {
		t.Fatalf("journal order: %s, %s", journal[0].Command.Name, journal[1].Command.Name)
	}
	if journal[0].MessageID >= journal[1].MessageID {
		t.Fatalf("message ids not increasing: %d, %d", journal[0].MessageID, journal[1].MessageID)
	}
	strokes := h.Strokes()
	if len(strokes) != 1 || strokes[0].Tool != "Pen" || len(strokes[0].Points) != 2 || strokes[0].Points[1].Pressure != 0.5 {
		t.Fatalf("unexpected strokes: %+v", strokes)
	}
}

func TestStaleRepliesNeverCross(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	h.SetReplyFilter(func(cmd codec.Command, id uint64, out []frame.Frame) []frame.Frame {
		if !cmd.IsQuery() {
			return out
		}
		stale, _ := codec.EncodeReplyFrame(id+100, cmd.Name, codec.Float(-1))
		hostErr, _ := codec.EncodeErrorFrame(id+200, cmd.Name, simhost.CodeInternal, "noise")
		ack, _ := codec.EncodeSyncAckFrame(id + 300)
		return append([]frame.Frame{stale, hostErr, ack}, out...)
	})
	d := connect(t, h, testConfig())
	ctx := context.Background()

	for i, width := range []float64{1, 2.5, 7} {
		if err := d.Action(ctx, "ToolSetPenWidth", codec.A("Width", codec.Float(width))); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
		got, err := d.QueryAs(ctx, codec.ShapeFloat, "ToolGetPenWidth?")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if got != codec.Float(width) {
			t.Fatalf("get %d: got=%v want=%v", i, got, width)
		}
	}
}

func TestMismatchedReplyIsProtocolError(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	h.SetReplyFilter(func(cmd codec.Command, id uint64, out []frame.Frame) []frame.Frame {
		wrong, _ := codec.EncodeReplyFrame(id, "ToolGetPenStyle", codec.String("Solid"))
		return []frame.Frame{wrong}
	})
	d := connect(t, h, testConfig())

	_, err := d.Query(context.Background(), "ToolGetPenWidth?")
	var perr *ProtocolError
	if !errors.As(err, &perr) || perr.Code != CodeReplyMismatch {
		t.Fatalf("expected reply mismatch, got %v", err)
	}
	if d.State() != StateOpen {
		t.Fatalf("mismatch should not degrade, state=%s", d.State())
	}
}

func TestHostErrorIsProtocolError(t *testing.T) {
	testlog.Start(t)
	d := connect(t, simhost.New(), testConfig())

	_, err := d.Query(context.Background(), "ToolGetNothing?")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	var perr *ProtocolError
	if !errors.As(err, &perr) || perr.Code != simhost.CodeUnknownCommand || perr.MessageID == 0 {
		t.Fatalf("unexpected protocol error: %+v", perr)
	}
	if _, err := d.Query(context.Background(), "ToolGetPenWidth?"); err != nil {
		t.Fatalf("channel should stay usable: %v", err)
	}
}

func TestActionHostErrorIsDiscarded(t *testing.T) {
	testlog.Start(t)
	h := simhost.New(simhost.WithTokenSets(map[string][]string{simhost.SetTool: {"Pen"}}))
	d := connect(t, h, testConfig())
	ctx := context.Background()

	if err := d.Action(ctx, "ChooseTool", codec.A("Name", codec.Token("Lasso"))); err != nil {
		t.Fatalf("action should not wait for the host: %v", err)
	}
	settle(t, d)
	got, err := d.QueryAs(ctx, codec.ShapeFloat, "ToolGetPenWidth?")
	if err != nil || got != codec.Float(5) {
		t.Fatalf("query after rejected action got=%v err=%v", got, err)
	}
	if h.Tool() != "Hand" {
		t.Fatalf("tool changed to %q", h.Tool())
	}
}

func TestSilentHostDegradesUntilResync(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	h.Silence("ToolGetPenWidth?")
	cfg := testConfig()
	cfg.QueryTimeout = 50 * time.Millisecond
	d := connect(t, h, cfg)
	ctx := context.Background()

	_, err := d.Query(ctx, "ToolGetPenWidth?")
	var terr *TimeoutError
	if !errors.As(err, &terr) || terr.Bound != cfg.QueryTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !errors.Is(err, ErrTimeout) || d.State() != StateDegraded {
		t.Fatalf("err=%v state=%s", err, d.State())
	}
	if pending := d.Pending(); len(pending) != 1 || pending[0].Command != "ToolGetPenWidth" {
		t.Fatalf("pending got=%+v", pending)
	}

	_, err = d.Query(ctx, "ToolGetPenStyle?")
	if !errors.Is(err, ErrChannel) || !errors.Is(err, ErrDegraded) {
		t.Fatalf("expected degraded channel error, got %v", err)
	}
	if err := d.Action(ctx, "ToolSetPenWidth", codec.A("Width", codec.Float(1))); !errors.Is(err, ErrDegraded) {
		t.Fatalf("expected degraded action, got %v", err)
	}

	settle(t, d)
	if d.State() != StateOpen || len(d.Pending()) != 0 {
		t.Fatalf("after resync state=%s pending=%d", d.State(), len(d.Pending()))
	}
	if _, err := d.Query(ctx, "ToolGetPenStyle?"); err != nil {
		t.Fatalf("query after resync: %v", err)
	}
}

func TestLateReplyIsDiscardedAfterResync(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	h.Delay("ToolGetPenWidth?", 200*time.Millisecond)
	cfg := testConfig()
	cfg.QueryTimeout = 30 * time.Millisecond
	d := connect(t, h, cfg)
	ctx := context.Background()

	if _, err := d.Query(ctx, "ToolGetPenWidth?"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	settle(t, d)

	h.Delay("ToolGetPenWidth?", 0)
	if err := d.Action(ctx, "ToolSetPenWidth", codec.A("Width", codec.Float(9))); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := d.QueryAs(ctx, codec.ShapeFloat, "ToolGetPenWidth?")
	if err != nil || got != codec.Float(9) {
		t.Fatalf("got=%v err=%v", got, err)
	}
}

func TestContextCancelIsTimeout(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	h.Silence("ToolGetPenWidth?")
	d := connect(t, h, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Query(ctx, "ToolGetPenWidth?")
	if !errors.Is(err, ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout wrapping deadline, got %v", err)
	}
	if d.State() != StateDegraded {
		t.Fatalf("state=%s", d.State())
	}
}

func TestCancelledContextFailsBeforeSend(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	d := connect(t, h, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range []string{"ToolGetPenWidth?", "ToolSetPenWidth"} {
		cmd := codec.NewCommand(name)
		if name == "ToolSetPenWidth" {
			cmd = codec.NewCommand(name, codec.Arg{Name: "Width", Value: codec.Float(2)})
		}
		_, err := d.Send(ctx, cmd)
		if !errors.Is(err, ErrTimeout) || !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected timeout wrapping cancel, got %v", name, err)
		}
		var terr *TimeoutError
		if !errors.As(err, &terr) || terr.Command != name {
			t.Fatalf("%s: expected *TimeoutError, got %T", name, err)
		}
	}
	if d.State() != StateOpen {
		t.Fatalf("unsent command should not degrade, state=%s", d.State())
	}
	if n := len(h.Journal()); n != 0 {
		t.Fatalf("host saw %d commands", n)
	}
	if _, err := d.Query(context.Background(), "ToolGetPenWidth?"); err != nil {
		t.Fatalf("query after cancelled send: %v", err)
	}
}

func TestQueryAsDecodeMismatch(t *testing.T) {
	testlog.Start(t)
	d := connect(t, simhost.New(), testConfig())

	_, err := d.QueryAs(context.Background(), codec.ShapeBool, "ToolGetPenWidth?")
	if !errors.Is(err, codec.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	var derr *codec.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *codec.DecodeError, got %T", err)
	}
	if d.State() != StateOpen {
		t.Fatalf("decode failure should not degrade, state=%s", d.State())
	}
}

func TestNameShapeIsEnforced(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	d := connect(t, h, testConfig())
	ctx := context.Background()

	if err := d.Action(ctx, "ToolGetPenWidth?"); !errors.Is(err, ErrQueryShaped) {
		t.Fatalf("expected ErrQueryShaped, got %v", err)
	}
	if _, err := d.Query(ctx, "ToolSetPenWidth"); !errors.Is(err, ErrActionShaped) {
		t.Fatalf("expected ErrActionShaped, got %v", err)
	}
	if _, err := d.Send(ctx, codec.NewCommand("")); !errors.Is(err, codec.ErrEmptyCommandName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
	settle(t, d)
	if n := len(h.Journal()); n != 0 {
		t.Fatalf("rejected commands reached the host: %d", n)
	}
}

func TestClosedChannelFailsFast(t *testing.T) {
	testlog.Start(t)
	d := connect(t, simhost.New(), testConfig())
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	_, err := d.Query(context.Background(), "ToolGetPenWidth?")
	if !errors.Is(err, ErrChannel) || !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed channel error, got %v", err)
	}
	if err := d.Resync(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("resync after close: %v", err)
	}
	if err := d.Reconnect(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("reconnect after close: %v", err)
	}
	if d.State() != StateClosed {
		t.Fatalf("state=%s", d.State())
	}
}

func TestHostHangupClosesChannel(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	hostCtx, stopHost := context.WithCancel(context.Background())
	d, err := New(h.Connect(hostCtx), testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Close()

	stopHost()
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err = d.Query(context.Background(), "ToolGetPenWidth?")
		if err != nil || time.Now().After(deadline) {
			break
		}
	}
	if !errors.Is(err, ErrChannel) {
		t.Fatalf("expected channel error, got %v", err)
	}
	if d.State() != StateClosed {
		t.Fatalf("state=%s", d.State())
	}
	if _, err := d.Query(context.Background(), "ToolGetPenWidth?"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected fast failure, got %v", err)
	}
}

func TestHandshakeReportsHost(t *testing.T) {
	testlog.Start(t)
	h := simhost.New(simhost.WithHandshake(true), simhost.WithName("paint-host"))
	cfg := testConfig()
	cfg.Handshake = true
	d := connect(t, h, cfg)
	if d.Host() != "paint-host" {
		t.Fatalf("host got=%q", d.Host())
	}
	if _, err := d.Query(context.Background(), "ImageGetSize?"); err != nil {
		t.Fatalf("query after handshake: %v", err)
	}
}

func TestHandshakeToken(t *testing.T) {
	testlog.Start(t)
	h := simhost.New(simhost.WithHandshake(true), simhost.WithAuth(auth.SharedToken("s3cret")))
	cfg := testConfig()
	cfg.Handshake = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg.Token = "guess"
	_, err := New(h.Connect(ctx), cfg)
	if !errors.Is(err, ErrChannel) || !errors.Is(err, session.ErrHelloRejected) {
		t.Fatalf("expected rejected hello, got %v", err)
	}

	cfg.Token = "s3cret"
	d := connect(t, h, cfg)
	if _, err := d.Query(context.Background(), "ImageGetSize?"); err != nil {
		t.Fatalf("query after authorized handshake: %v", err)
	}
}

func TestHandshakeTimeout(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.Handshake = true
	cfg.HandshakeTimeout = 50 * time.Millisecond

	conn := newSilentConn()
	_, err := New(conn, cfg)
	if !errors.Is(err, ErrChannel) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected handshake timeout, got %v", err)
	}
	select {
	case <-conn.closed:
	default:
		t.Fatalf("timed-out handshake left the connection open")
	}
}

func TestReconnectKeepsMessageIDsIncreasing(t *testing.T) {
	testlog.Start(t)
	h := simhost.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dials := 0
	dial := func(context.Context) (io.ReadWriteCloser, error) {
		dials++
		return h.Connect(ctx), nil
	}
	d, err := Open(ctx, dial, testConfig())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer d.Close()

	if _, err := d.Query(ctx, "ToolGetPenWidth?"); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if err := d.Reconnect(ctx); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if _, err := d.Query(ctx, "ToolGetPenWidth?"); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if dials != 2 {
		t.Fatalf("dials=%d", dials)
	}
	journal := h.Journal()
	if len(journal) != 2 || journal[1].MessageID <= journal[0].MessageID {
		t.Fatalf("journal=%+v", journal)
	}
}

func TestReconnectWithoutDialer(t *testing.T) {
	testlog.Start(t)
	d := connect(t, simhost.New(), testConfig())
	if err := d.Reconnect(context.Background()); !errors.Is(err, ErrNoDialer) {
		t.Fatalf("expected ErrNoDialer, got %v", err)
	}
	if _, err := Open(context.Background(), nil, testConfig()); !errors.Is(err, ErrNoDialer) {
		t.Fatalf("expected ErrNoDialer from Open, got %v", err)
	}
	if _, err := New(nil, testConfig()); !errors.Is(err, ErrNilConnection) {
		t.Fatalf("expected ErrNilConnection, got %v", err)
	}
}

// silentConn accepts writes and never answers until closed.
type silentConn struct {
	closed chan struct{}
	once   sync.Once
}

func newSilentConn() *silentConn {
	return &silentConn{closed: make(chan struct{})}
}

func (c *silentConn) Read(p []byte) (int, error) {
	<-c.closed
	return 0, io.EOF
}

func (c *silentConn) Write(p []byte) (int, error) { return len(p), nil }

func (c *silentConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
