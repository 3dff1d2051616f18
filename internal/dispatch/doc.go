// Package dispatch owns the channel to the paint host.
//
// A Dispatcher serializes every command onto one connection. Actions return
// once the frame is flushed to the transport; queries block until the reply
// carrying their message id arrives, the query bound expires, or the channel
// fails. Replies whose id does not match the single pending query are
// logged and discarded.
//
// Channel states:
// - open: commands flow normally
// - degraded: a query timed out; its reply may still arrive, so further
//   commands are refused until Resync confirms the host drained it or
//   Reconnect replaces the connection
// - closed: transport failed or Close was called
package dispatch
