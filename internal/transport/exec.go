package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/danmuck/lazctl/internal/logging"
)

// ExitError reports how a launched host ended.
type ExitError struct {
	Program string
	Code    int32
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("transport: host %s exited with code %d", e.Program, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// process is a launched host: commands go to its stdin, replies come from
// its stdout.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr bytes.Buffer

	closeOnce sync.Once
	closeErr  error
}

// Launch starts program with args and returns its stdio as one connection.
// Closing the connection closes the host's stdin and waits for it to exit.
func Launch(ctx context.Context, program string, args ...string) (io.ReadWriteCloser, error) {
	if program == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingAddress, KindExec)
	}
	p := &process{cmd: exec.CommandContext(ctx, program, args...)}
	p.cmd.Stderr = &p.stderr
	var err error
	if p.stdin, err = p.cmd.StdinPipe(); err != nil {
		return nil, err
	}
	if p.stdout, err = p.cmd.StdoutPipe(); err != nil {
		return nil, err
	}
	if err := p.cmd.Start(); err != nil {
		return nil, p.exitError(err)
	}
	logger := logging.Component("transport")
	logger.Info().
		Str("kind", string(KindExec)).
		Str("program", program).
		Int("pid", p.cmd.Process.Pid).
		Msg("transport.launched")
	return p, nil
}

func (p *process) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *process) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *process) Close() error {
	p.closeOnce.Do(func() {
		_ = p.stdin.Close()
		if err := p.cmd.Wait(); err != nil {
			p.closeErr = p.exitError(err)
		}
	})
	return p.closeErr
}

func (p *process) exitError(err error) error {
	code := int32(1)
	var exitErr *exec.ExitError
	var execErr *exec.Error
	switch {
	case errors.As(err, &exitErr):
		code = int32(exitErr.ExitCode())
	case errors.As(err, &execErr):
		code = 127
	}
	return &ExitError{Program: p.cmd.Path, Code: code, Stderr: p.stderr.String(), Err: err}
}
