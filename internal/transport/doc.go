// Package transport opens the byte stream to the paint host: the process's
// own stdio when the host launched us, a unix socket, or TCP.
package transport
