package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/danmuck/lazctl/internal/protocol/frame"
	"github.com/danmuck/lazctl/internal/testutil/testlog"
)

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}

func TestNextBackoffDelayJitterRange(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       true,
	}
	rng := rand.New(rand.NewSource(7))
	for attempt := 1; attempt <= 3; attempt++ {
		base := NextBackoffDelay(BackoffConfig{InitialDelay: cfg.InitialDelay, Multiplier: 2, MaxDelay: cfg.MaxDelay}, attempt, nil)
		got := NextBackoffDelay(cfg, attempt, rng)
		if got < base/2 || got > base*3/2 {
			t.Fatalf("attempt %d jitter out of range: %v (base %v)", attempt, got, base)
		}
	}
}

func TestWaitBackoffHonorsContext(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitBackoff(ctx, BackoffConfig{InitialDelay: time.Hour}, 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WaitBackoff(context.Background(), BackoffConfig{InitialDelay: time.Millisecond}, 1, nil); err != nil {
		t.Fatalf("short wait: %v", err)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	testlog.Start(t)
	cfg := Config{QueryTimeout: time.Second}.WithDefaults()
	d := DefaultConfig()
	if cfg.QueryTimeout != time.Second {
		t.Fatalf("explicit value overwritten: %v", cfg.QueryTimeout)
	}
	if cfg.SyncTimeout != d.SyncTimeout || cfg.MaxConnectAttempts != d.MaxConnectAttempts || cfg.DefaultPressure != 1 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.DefaultPressure = 2
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.DefaultPressure = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero pressure selects the default: %v", err)
	}
	if got := cfg.WithDefaults().DefaultPressure; got != 1 {
		t.Fatalf("zero pressure got=%v want=1", got)
	}
	cfg = DefaultConfig()
	cfg.QueryTimeout = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPendingTableLifecycle(t *testing.T) {
	testlog.Start(t)
	table := NewPendingTable()
	now := time.Unix(1700000000, 0)
	table.Put(PendingQuery{MessageID: 2, Command: "ToolGetPenWidth", SentAt: now, Deadline: now.Add(time.Second)})
	table.Put(PendingQuery{MessageID: 1, Command: "ToolGetPenColor", SentAt: now})
	if table.Len() != 2 {
		t.Fatalf("unexpected len=%d", table.Len())
	}
	if list := table.List(); list[0].MessageID != 1 || list[1].MessageID != 2 {
		t.Fatalf("list not ordered: %+v", list)
	}
	item, ok := table.Take(2)
	if !ok || item.Command != "ToolGetPenWidth" {
		t.Fatalf("take: %+v %v", item, ok)
	}
	if item.Expired(now) || !item.Expired(now.Add(time.Second)) {
		t.Fatalf("deadline check broken")
	}
	if _, ok := table.Take(2); ok {
		t.Fatalf("second take must miss")
	}
	if cleared := table.Clear(); len(cleared) != 1 || table.Len() != 0 {
		t.Fatalf("clear: %+v len=%d", cleared, table.Len())
	}
}

func TestHelloRoundTrip(t *testing.T) {
	testlog.Start(t)
	hello := NewHello("lazctl")
	var buf bytes.Buffer
	if err := WriteHello(&buf, hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	r := bufio.NewReader(&buf)
	got, err := ReadHello(r)
	if err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if got != hello {
		t.Fatalf("unexpected hello: %+v", got)
	}

	ack := AcceptHello(got, "simhost", time.Unix(1700000000, 0))
	if err := WriteHelloAck(&buf, ack); err != nil {
		t.Fatalf("write ack: %v", err)
	}
	gotAck, err := ReadHelloAck(r)
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if err := gotAck.Check(hello); err != nil {
		t.Fatalf("check ack: %v", err)
	}
}

func TestHelloFollowedByFrameOnSameReader(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteHello(&buf, NewHello("lazctl")); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	if err := frame.WriteFrame(&buf, frame.Frame{Header: frame.Header{MessageID: 3, MessageType: 4}}, frame.DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	r := bufio.NewReader(&buf)
	if _, err := ReadHello(r); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	f, err := frame.ReadFrame(r, frame.DefaultLimits())
	if err != nil || f.Header.MessageID != 3 {
		t.Fatalf("frame after hello: %+v (%v)", f.Header, err)
	}
}

func TestAcceptHelloRejectsProtocolMismatch(t *testing.T) {
	testlog.Start(t)
	hello := NewHello("lazctl")
	hello.Protocol = frame.Version + 1
	ack := AcceptHello(hello, "simhost", time.Now())
	if ack.Status != AckStatusRejected {
		t.Fatalf("expected rejection, got %+v", ack)
	}
	if err := ack.Check(hello); !errors.Is(err, ErrHelloRejected) {
		t.Fatalf("expected ErrHelloRejected, got %v", err)
	}
}

func TestHelloAckCheckClientMismatch(t *testing.T) {
	testlog.Start(t)
	ack := AcceptHello(NewHello("a"), "simhost", time.Now())
	if err := ack.Check(NewHello("b")); !errors.Is(err, ErrInvalidHelloAck) {
		t.Fatalf("expected ErrInvalidHelloAck, got %v", err)
	}
}

func TestWriteHelloRejectsInvalidClientID(t *testing.T) {
	testlog.Start(t)
	err := WriteHello(&bytes.Buffer{}, Hello{ClientID: "not-a-uuid", Protocol: 1})
	if !errors.Is(err, ErrInvalidHello) {
		t.Fatalf("expected ErrInvalidHello, got %v", err)
	}
}
