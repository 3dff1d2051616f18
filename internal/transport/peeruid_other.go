//go:build !linux && !darwin

package transport

import "net"

func peerUIDMatchesCurrentUser(net.Conn) (bool, error) {
	return false, ErrPeerUnsupported
}
