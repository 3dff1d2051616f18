package config

import (
	"fmt"
	"os"

	"github.com/danmuck/lazctl/internal/transport"
	gotoml "github.com/pelletier/go-toml/v2"
)

// Template is the annotated starting config written by `lazctl config init`.
// Every value matches Default.
const Template = `client = "lazctl"
log_level = "info"

[transport]
# stdio | unix | tcp | exec (address is the host program, args its arguments)
kind = "tcp"
address = "127.0.0.1:7300"
verify_peer = false

[session]
handshake = false
# presented in the hello when the host requires a token
token = ""
connect_timeout = "5s"
handshake_timeout = "5s"
query_timeout = "10s"
write_timeout = "5s"
sync_timeout = "5s"
max_connect_attempts = 5
default_pressure = 1.0
backoff_initial = "250ms"
backoff_max = "5s"
backoff_multiplier = 2.0
backoff_jitter = true

[simhost]
listen = "127.0.0.1:7300"
http_listen = "127.0.0.1:7301"
handshake = false
# hello token clients must present; empty admits all
token = ""
width = 640
height = 480
`

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

// Encode renders cfg in the file format Load reads.
func Encode(cfg Config) ([]byte, error) {
	s := cfg.Transport.Session
	kind := cfg.Transport.Kind
	if kind == "" {
		kind = transport.KindStdio
	}
	raw := fileConfig{
		Client:   cfg.Client,
		LogLevel: cfg.LogLevel,
		Transport: fileTransport{
			Kind:       string(kind),
			Address:    cfg.Transport.Address,
			Args:       cfg.Transport.Args,
			VerifyPeer: cfg.Transport.VerifyPeer,
		},
		Session: fileSession{
			Handshake:          s.Handshake,
			Token:              s.Token,
			ConnectTimeout:     s.ConnectTimeout.String(),
			HandshakeTimeout:   s.HandshakeTimeout.String(),
			QueryTimeout:       s.QueryTimeout.String(),
			WriteTimeout:       s.WriteTimeout.String(),
			SyncTimeout:        s.SyncTimeout.String(),
			MaxConnectAttempts: s.MaxConnectAttempts,
			DefaultPressure:    s.DefaultPressure,
			BackoffInitial:     s.Backoff.InitialDelay.String(),
			BackoffMax:         s.Backoff.MaxDelay.String(),
			BackoffMultiplier:  s.Backoff.Multiplier,
			BackoffJitter:      s.Backoff.Jitter,
		},
		SimHost: fileSimHost{
			Listen:     cfg.SimHost.Listen,
			HTTPListen: cfg.SimHost.HTTPListen,
			Handshake:  cfg.SimHost.Handshake,
			Token:      cfg.SimHost.Token,
			Width:      cfg.SimHost.Width,
			Height:     cfg.SimHost.Height,
		},
	}
	out, err := gotoml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
