// Package session owns channel-level settings and control helpers shared by
// the dispatcher and the stub host.
//
// Ownership boundary:
// - timeouts and dial retry backoff
// - hello / hello.ack control messages
// - pending query bookkeeping
package session
