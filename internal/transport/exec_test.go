//go:build unix

package transport

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/danmuck/lazctl/internal/testutil/testlog"
)

func TestLaunchEchoesThroughCat(t *testing.T) {
	testlog.Start(t)
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	conn, err := Dial(context.Background(), Config{Kind: KindExec, Address: "cat", Session: fastSession()})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := conn.Write([]byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(conn, buf); err != nil || string(buf) != "ping" {
		t.Fatalf("read got=%q err=%v", buf, err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestLaunchReportsExitCode(t *testing.T) {
	testlog.Start(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	conn, err := Launch(context.Background(), "sh", "-c", "echo nope >&2; exit 3")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	err = conn.Close()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 3 || exitErr.Stderr != "nope\n" {
		t.Fatalf("exit got code=%d stderr=%q", exitErr.Code, exitErr.Stderr)
	}
}

func TestLaunchMissingProgram(t *testing.T) {
	testlog.Start(t)
	_, err := Launch(context.Background(), "lazctl-no-such-host")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 127 {
		t.Fatalf("expected exit code 127, got %v", err)
	}
	if _, err := Launch(context.Background(), ""); !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("expected ErrMissingAddress, got %v", err)
	}
}
