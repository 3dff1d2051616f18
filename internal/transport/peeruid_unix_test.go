//go:build linux || darwin

package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/danmuck/lazctl/internal/testutil/testlog"
)

func TestDialUnixVerifiesPeer(t *testing.T) {
	testlog.Start(t)
	socketPath := fmt.Sprintf("/tmp/lazctl-peer-%d.sock", time.Now().UnixNano())
	_ = os.Remove(socketPath)
	defer os.Remove(socketPath) //nolint:errcheck

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen unix: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			buf := make([]byte, 1)
			_, _ = conn.Read(buf)
		}
	}()

	conn, err := Dial(context.Background(), Config{
		Kind:       KindUnix,
		Address:    socketPath,
		VerifyPeer: true,
		Session:    fastSession(),
	})
	if err != nil {
		t.Fatalf("dial unix: %v", err)
	}
	_ = conn.Close()
}
