package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"strings"
	"time"

	"github.com/danmuck/lazctl/internal/logging"
	"github.com/danmuck/lazctl/internal/protocol/session"
)

type Kind string

const (
	KindStdio Kind = "stdio"
	KindUnix  Kind = "unix"
	KindTCP   Kind = "tcp"
	// KindExec launches the host program and talks over its stdin/stdout.
	KindExec Kind = "exec"
)

var (
	ErrUnknownKind     = errors.New("transport: unknown kind")
	ErrMissingAddress  = errors.New("transport: missing address")
	ErrPeerMismatch    = errors.New("transport: host runs as a different user")
	ErrPeerUnsupported = errors.New("transport: peer credentials unsupported on this platform")
)

// Config selects how to reach the host.
type Config struct {
	Kind Kind
	// Address is a socket path, a host:port, or for exec the program.
	Address string
	// Args are the program arguments for exec.
	Args []string
	// VerifyPeer requires a unix socket host to run as the current user.
	VerifyPeer bool
	Session    session.Config
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindStdio, KindUnix, KindTCP, KindExec:
		return k, nil
	case "":
		return KindStdio, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (c Config) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Kind != KindStdio && c.Kind != "" && strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w for %s", ErrMissingAddress, c.Kind)
	}
	return c.Session.Validate()
}

// Dial opens the configured connection, retrying with backoff up to
// Session.MaxConnectAttempts.
func Dial(ctx context.Context, cfg Config) (io.ReadWriteCloser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind, _ := ParseKind(string(cfg.Kind))
	if kind == KindStdio {
		return Stdio(), nil
	}
	if kind == KindExec {
		return Launch(ctx, cfg.Address, cfg.Args...)
	}

	scfg := cfg.Session.WithDefaults()
	logger := logging.Component("transport")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	attempts := scfg.MaxConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dialOnce(ctx, kind, cfg.Address, scfg.ConnectTimeout)
		if err == nil && cfg.VerifyPeer && kind == KindUnix {
			if err = verifyPeer(conn); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		if err == nil {
			logger.Info().Str("kind", string(kind)).Str("addr", cfg.Address).Int("attempt", attempt).Msg("transport.connected")
			return conn, nil
		}
		lastErr = err
		logger.Warn().Err(err).Str("kind", string(kind)).Str("addr", cfg.Address).Int("attempt", attempt).Msg("transport.dial_failed")
		if attempt == attempts {
			break
		}
		if err := session.WaitBackoff(ctx, scfg.Backoff, attempt, rng); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("transport: dial %s %s after %d attempts: %w", kind, cfg.Address, attempts, lastErr)
}

// Dialer returns a function that re-runs Dial, suitable for reconnects.
func Dialer(cfg Config) func(ctx context.Context) (io.ReadWriteCloser, error) {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		return Dial(ctx, cfg)
	}
}

func dialOnce(ctx context.Context, kind Kind, addr string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.DialContext(ctx, string(kind), addr)
}

func verifyPeer(conn net.Conn) error {
	ok, err := peerUIDMatchesCurrentUser(conn)
	if err != nil {
		return fmt.Errorf("transport: peer check: %w", err)
	}
	if !ok {
		return ErrPeerMismatch
	}
	return nil
}

// stdio writes commands to stdout and reads replies from stdin.
type stdio struct {
	in  *os.File
	out *os.File
}

// Stdio returns the process's own stdin/stdout as one connection. Logging
// must not write to stdout while it is in use.
func Stdio() io.ReadWriteCloser {
	return &stdio{in: os.Stdin, out: os.Stdout}
}

func (s *stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s *stdio) SetWriteDeadline(t time.Time) error {
	return s.out.SetWriteDeadline(t)
}

func (s *stdio) Close() error {
	return errors.Join(s.in.Close(), s.out.Close())
}
