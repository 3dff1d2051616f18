package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/danmuck/lazctl/internal/testutil/testlog"
	"github.com/danmuck/lazctl/internal/transport"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lazctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateMatchesDefault(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeFile(t, Template))
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("template differs from defaults:\n got=%+v\nwant=%+v", cfg, Default())
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeFile(t, `
client = "split-bot"

[transport]
kind = "unix"
address = "/tmp/lazpaint.sock"
verify_peer = true

[session]
handshake = true
query_timeout = "1500ms"
default_pressure = 0.5
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Client != "split-bot" {
		t.Fatalf("client got=%q", cfg.Client)
	}
	if cfg.Transport.Kind != transport.KindUnix || cfg.Transport.Address != "/tmp/lazpaint.sock" || !cfg.Transport.VerifyPeer {
		t.Fatalf("transport got=%+v", cfg.Transport)
	}
	s := cfg.Transport.Session
	if !s.Handshake || s.QueryTimeout != 1500*time.Millisecond || s.DefaultPressure != 0.5 {
		t.Fatalf("session got=%+v", s)
	}
	if s.WriteTimeout != 5*time.Second || s.MaxConnectAttempts != 5 {
		t.Fatalf("undefined keys lost their defaults: %+v", s)
	}
	if cfg.SimHost != Default().SimHost {
		t.Fatalf("simhost got=%+v", cfg.SimHost)
	}
}

func TestLoadExecTransport(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeFile(t, `
[transport]
kind = "exec"
address = "lazctl"
args = ["simhost", "--stdio"]

[session]
handshake = true
token = "s3cret"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tc := cfg.Transport
	if tc.Kind != transport.KindExec || tc.Address != "lazctl" || !reflect.DeepEqual(tc.Args, []string{"simhost", "--stdio"}) {
		t.Fatalf("transport got=%+v", tc)
	}
	if tc.Session.Token != "s3cret" {
		t.Fatalf("token got=%q", tc.Session.Token)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"duration": "[session]\nquery_timeout = \"soon\"\n",
		"kind":     "[transport]\nkind = \"udp\"\n",
		"address":  "[transport]\nkind = \"tcp\"\naddress = \"\"\n",
		"pressure": "[session]\ndefault_pressure = 1.5\n",
		"size":     "[simhost]\nwidth = 0\n",
		"client":   "client = \" \"\n",
		"unknown":  "colour = \"red\"\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(writeFile(t, "[simhost]\nheight = -1\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Load(writeFile(t, "[session]\ndefault_pressure = 0\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("explicit zero pressure: expected ErrInvalidConfig, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	cfg.Client = "roundtrip"
	cfg.Transport.Kind = transport.KindStdio
	cfg.Transport.Address = ""
	cfg.Transport.Session.QueryTimeout = 750 * time.Millisecond
	cfg.Transport.Session.Backoff.Jitter = false
	cfg.Transport.Session.Token = "s3cret"
	cfg.SimHost.Handshake = true
	cfg.SimHost.Token = "s3cret"

	out, err := Encode(cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Load(writeFile(t, string(out)))
	if err != nil {
		t.Fatalf("load encoded: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, cfg)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "lazctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
}
