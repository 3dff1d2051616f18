package session

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("session: invalid config")

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines channel reliability settings.
type Config struct {
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	// QueryTimeout bounds the wait for one query reply.
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	// SyncTimeout bounds a resync probe after a timed-out query.
	SyncTimeout time.Duration
	// Handshake enables the hello / hello.ack exchange before framing starts.
	Handshake bool
	// Token is presented in the hello when the host requires one.
	Token              string
	MaxConnectAttempts int
	// DefaultPressure is substituted for stroke points without a pressure.
	// Zero selects DefaultConfig's pressure, so valid explicit values are
	// in (0, 1].
	DefaultPressure float64
	Backoff         BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout:     5 * time.Second,
		HandshakeTimeout:   5 * time.Second,
		QueryTimeout:       10 * time.Second,
		WriteTimeout:       5 * time.Second,
		SyncTimeout:        5 * time.Second,
		Handshake:          false,
		MaxConnectAttempts: 5,
		DefaultPressure:    1.0,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills zero-valued durations, counts and pressure from
// DefaultConfig. Handshake and Jitter are left as given.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = d.QueryTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.SyncTimeout <= 0 {
		c.SyncTimeout = d.SyncTimeout
	}
	if c.MaxConnectAttempts <= 0 {
		c.MaxConnectAttempts = d.MaxConnectAttempts
	}
	if c.DefaultPressure == 0 {
		c.DefaultPressure = d.DefaultPressure
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff.InitialDelay = d.Backoff.InitialDelay
	}
	if c.Backoff.Multiplier == 0 {
		c.Backoff.Multiplier = d.Backoff.Multiplier
	}
	if c.Backoff.MaxDelay <= 0 {
		c.Backoff.MaxDelay = d.Backoff.MaxDelay
	}
	return c
}

func (c Config) Validate() error {
	if c.QueryTimeout < 0 || c.WriteTimeout < 0 || c.SyncTimeout < 0 ||
		c.ConnectTimeout < 0 || c.HandshakeTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if c.MaxConnectAttempts < 0 {
		return fmt.Errorf("%w: max_connect_attempts must be >= 0", ErrInvalidConfig)
	}
	if c.DefaultPressure < 0 || c.DefaultPressure > 1 {
		return fmt.Errorf("%w: default_pressure %v outside [0, 1]", ErrInvalidConfig, c.DefaultPressure)
	}
	if c.Backoff.Multiplier != 0 && c.Backoff.Multiplier < 1 {
		return fmt.Errorf("%w: backoff multiplier %v < 1", ErrInvalidConfig, c.Backoff.Multiplier)
	}
	return nil
}
