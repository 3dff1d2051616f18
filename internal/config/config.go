package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/lazctl/internal/protocol/session"
	"github.com/danmuck/lazctl/internal/transport"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the effective lazctl configuration.
type Config struct {
	Client    string
	LogLevel  string
	Transport transport.Config
	SimHost   SimHostConfig
}

// SimHostConfig drives `lazctl simhost`.
type SimHostConfig struct {
	Listen     string
	HTTPListen string
	Handshake  bool
	// Token is the hello token clients must present; empty admits all.
	Token  string
	Width  int
	Height int
}

type fileConfig struct {
	Client    string        `toml:"client"`
	LogLevel  string        `toml:"log_level"`
	Transport fileTransport `toml:"transport"`
	Session   fileSession   `toml:"session"`
	SimHost   fileSimHost   `toml:"simhost"`
}

type fileTransport struct {
	Kind       string   `toml:"kind"`
	Address    string   `toml:"address"`
	Args       []string `toml:"args,omitempty"`
	VerifyPeer bool     `toml:"verify_peer"`
}

type fileSession struct {
	Handshake          bool    `toml:"handshake"`
	Token              string  `toml:"token"`
	ConnectTimeout     string  `toml:"connect_timeout"`
	HandshakeTimeout   string  `toml:"handshake_timeout"`
	QueryTimeout       string  `toml:"query_timeout"`
	WriteTimeout       string  `toml:"write_timeout"`
	SyncTimeout        string  `toml:"sync_timeout"`
	MaxConnectAttempts int     `toml:"max_connect_attempts"`
	DefaultPressure    float64 `toml:"default_pressure"`
	BackoffInitial     string  `toml:"backoff_initial"`
	BackoffMax         string  `toml:"backoff_max"`
	BackoffMultiplier  float64 `toml:"backoff_multiplier"`
	BackoffJitter      bool    `toml:"backoff_jitter"`
}

type fileSimHost struct {
	Listen     string `toml:"listen"`
	HTTPListen string `toml:"http_listen"`
	Handshake  bool   `toml:"handshake"`
	Token      string `toml:"token"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
}

func Default() Config {
	return Config{
		Client:   "lazctl",
		LogLevel: "info",
		Transport: transport.Config{
			Kind:    transport.KindTCP,
			Address: "127.0.0.1:7300",
			Session: session.DefaultConfig(),
		},
		SimHost: SimHostConfig{
			Listen:     "127.0.0.1:7300",
			HTTPListen: "127.0.0.1:7301",
			Width:      640,
			Height:     480,
		},
	}
}

// Load reads path and applies every defined key over Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %s", ErrInvalidConfig, undecoded[0])
	}

	if meta.IsDefined("client") {
		cfg.Client = strings.TrimSpace(raw.Client)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("transport", "kind") {
		kind, err := transport.ParseKind(raw.Transport.Kind)
		if err != nil {
			return Config{}, err
		}
		cfg.Transport.Kind = kind
	}
	if meta.IsDefined("transport", "address") {
		cfg.Transport.Address = strings.TrimSpace(raw.Transport.Address)
	}
	if meta.IsDefined("transport", "args") {
		cfg.Transport.Args = append([]string(nil), raw.Transport.Args...)
	}
	if meta.IsDefined("transport", "verify_peer") {
		cfg.Transport.VerifyPeer = raw.Transport.VerifyPeer
	}

	s := &cfg.Transport.Session
	if meta.IsDefined("session", "handshake") {
		s.Handshake = raw.Session.Handshake
	}
	if meta.IsDefined("session", "token") {
		s.Token = raw.Session.Token
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.Session.ConnectTimeout, &s.ConnectTimeout},
		{"handshake_timeout", raw.Session.HandshakeTimeout, &s.HandshakeTimeout},
		{"query_timeout", raw.Session.QueryTimeout, &s.QueryTimeout},
		{"write_timeout", raw.Session.WriteTimeout, &s.WriteTimeout},
		{"sync_timeout", raw.Session.SyncTimeout, &s.SyncTimeout},
		{"backoff_initial", raw.Session.BackoffInitial, &s.Backoff.InitialDelay},
		{"backoff_max", raw.Session.BackoffMax, &s.Backoff.MaxDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined("session", d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse session.%s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("session", "max_connect_attempts") {
		s.MaxConnectAttempts = raw.Session.MaxConnectAttempts
	}
	if meta.IsDefined("session", "default_pressure") {
		// A zero session pressure means "use the default", so it cannot be
		// set explicitly.
		if raw.Session.DefaultPressure <= 0 {
			return Config{}, fmt.Errorf("%w: session.default_pressure %v outside (0, 1]", ErrInvalidConfig, raw.Session.DefaultPressure)
		}
		s.DefaultPressure = raw.Session.DefaultPressure
	}
	if meta.IsDefined("session", "backoff_multiplier") {
		s.Backoff.Multiplier = raw.Session.BackoffMultiplier
	}
	if meta.IsDefined("session", "backoff_jitter") {
		s.Backoff.Jitter = raw.Session.BackoffJitter
	}

	if meta.IsDefined("simhost", "listen") {
		cfg.SimHost.Listen = strings.TrimSpace(raw.SimHost.Listen)
	}
	if meta.IsDefined("simhost", "http_listen") {
		cfg.SimHost.HTTPListen = strings.TrimSpace(raw.SimHost.HTTPListen)
	}
	if meta.IsDefined("simhost", "handshake") {
		cfg.SimHost.Handshake = raw.SimHost.Handshake
	}
	if meta.IsDefined("simhost", "token") {
		cfg.SimHost.Token = raw.SimHost.Token
	}
	if meta.IsDefined("simhost", "width") {
		cfg.SimHost.Width = raw.SimHost.Width
	}
	if meta.IsDefined("simhost", "height") {
		cfg.SimHost.Height = raw.SimHost.Height
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Client) == "" {
		return fmt.Errorf("%w: client is required", ErrInvalidConfig)
	}
	if err := cfg.Transport.Validate(); err != nil {
		return fmt.Errorf("%w: transport: %w", ErrInvalidConfig, err)
	}
	if cfg.SimHost.Width <= 0 || cfg.SimHost.Height <= 0 {
		return fmt.Errorf("%w: simhost size %dx%d", ErrInvalidConfig, cfg.SimHost.Width, cfg.SimHost.Height)
	}
	return nil
}
