// Package tcpwatch periodically probes a TCP endpoint and keeps running connectivity statistics.
package tcpwatch

import (
	"context"
	"net"
	"net/netip"

	"github.com/pouriyajamshidi/tcpwatch/pingers"
)

var (
	// List of compile time checks for all pingers
	_ Pinger       = (*pingers.TCPPinger)(nil)
	_ sourceAddrer = (*pingers.TCPPinger)(nil)
)

// Pinger performs one connection attempt per call. A nil error means the
// target accepted the connection.
type Pinger interface {
	Ping(ctx context.Context) error
	IP() netip.Addr
	Port() uint16
}

// sourceAddrer is implemented by pingers that can report the local address
// a successful attempt was made from.
type sourceAddrer interface {
	PingSource(ctx context.Context) (net.Addr, error)
}
