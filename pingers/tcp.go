// Package pingers implements protocol-specific ping functionality for network connectivity testing.
package pingers

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/pouriyajamshidi/tcpwatch/option"
)

const tcp = "tcp"

// TCPPinger opens and immediately closes one TCP connection per Ping.
//
// A zero timeout leaves the attempt unbounded: it only ends when the
// operating system gives up on the connection.
type TCPPinger struct {
	dialer  *net.Dialer
	ip      netip.Addr
	port    uint16
	timeout time.Duration
}

type TCPOptions = option.Option[TCPPinger]

// NewTCPPinger creates a new TCP pinger for the specified IP address and port with optional configuration.
func NewTCPPinger(ip netip.Addr, port uint16, opts ...TCPOptions) *TCPPinger {
	t := &TCPPinger{
		ip:     ip,
		port:   port,
		dialer: &net.Dialer{},
	}
	option.Apply(t, opts...)
	return t
}

// WithDialer configures a custom net.Dialer for TCP connections, e.g. one
// bound to a local address.
func WithDialer(dialer *net.Dialer) TCPOptions {
	return func(t *TCPPinger) {
		t.dialer = dialer
	}
}

// WithTimeout bounds every attempt to timeout. Zero means no bound.
func WithTimeout(timeout time.Duration) TCPOptions {
	return func(t *TCPPinger) {
		t.timeout = timeout
	}
}

// IP implements tcpwatch.Pinger.
func (t *TCPPinger) IP() netip.Addr {
	return t.ip
}

// Port implements tcpwatch.Pinger.
func (t *TCPPinger) Port() uint16 {
	return t.port
}

// Timeout returns the per-attempt bound, zero when unbounded.
func (t *TCPPinger) Timeout() time.Duration {
	return t.timeout
}

func (t *TCPPinger) address() string {
	return net.JoinHostPort(t.ip.String(), strconv.Itoa(int(t.port)))
}

// Ping implements tcpwatch.Pinger.
func (t *TCPPinger) Ping(ctx context.Context) error {
	_, err := t.PingSource(ctx)
	return err
}

// PingSource behaves like Ping and also returns the local address the
// connection was made from.
func (t *TCPPinger) PingSource(ctx context.Context) (net.Addr, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	conn, err := t.dialer.DialContext(ctx, tcp, t.address())
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.LocalAddr(), nil
}
