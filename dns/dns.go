// Package dns resolves the probe target to a single address before probing starts.
package dns

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"time"

	"github.com/rs/zerolog"

	"github.com/pouriyajamshidi/tcpwatch/option"
)

var (
	ErrNoIPv4Address = errors.New("no ipv4 address found")
	ErrNoIPv6Address = errors.New("no ipv6 address found")
	ErrNoIPAddresses = errors.New("no ip addresses")
	ErrResolve       = errors.New("resolve hostname")
)

// Lookuper is the subset of *net.Resolver used for name lookups.
type Lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Resolver turns a hostname into one address, optionally restricted to a family.
type Resolver struct {
	lookup  Lookuper
	timeout time.Duration
	useIPv4 bool
	useIPv6 bool
	log     zerolog.Logger
}

type ResolverOption = option.Option[Resolver]

// WithTimeout sets the DNS resolution timeout used when the context has no deadline.
func WithTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// WithIPv4Only configures the resolver to only return IPv4 addresses
func WithIPv4Only() ResolverOption {
	return func(r *Resolver) {
		r.useIPv4 = true
		r.useIPv6 = false
	}
}

// WithIPv6Only configures the resolver to only return IPv6 addresses
func WithIPv6Only() ResolverOption {
	return func(r *Resolver) {
		r.useIPv4 = false
		r.useIPv6 = true
	}
}

// WithLookuper replaces net.DefaultResolver.
func WithLookuper(l Lookuper) ResolverOption {
	return func(r *Resolver) {
		r.lookup = l
	}
}

// WithLogger configures the logger used for resolution diagnostics.
func WithLogger(l zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = l
	}
}

const (
	defaultTimeout = 2 * time.Second
	ipv4OrIPv6     = "ip" // allows LookupNetIP to use both IPv4 and IPv6
)

// NewResolver creates a new DNS resolver with optional configuration
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		lookup:  net.DefaultResolver,
		timeout: defaultTimeout,
		log:     zerolog.Nop(),
	}
	option.Apply(r, opts...)
	return r
}

// ResolveHostname resolves host to a single address. Literal IPs are
// returned without a lookup. When several addresses match, one is picked at
// random.
func (r *Resolver) ResolveHostname(ctx context.Context, host string) (netip.Addr, error) {
	if ip, err := netip.ParseAddr(host); err == nil {
		return ip.Unmap(), nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ipAddrs, err := r.lookup.LookupNetIP(ctx, ipv4OrIPv6, host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s: %w", ErrResolve, host, err)
	}

	r.log.Debug().Str("host", host).Int("addresses", len(ipAddrs)).Msg("hostname resolved")

	var filtered []netip.Addr
	switch {
	case r.useIPv4:
		filtered = filterIPv4(ipAddrs)
		if len(filtered) == 0 {
			return netip.Addr{}, fmt.Errorf("%w: %s", ErrNoIPv4Address, host)
		}
	case r.useIPv6:
		filtered = filterIPv6(ipAddrs)
		if len(filtered) == 0 {
			return netip.Addr{}, fmt.Errorf("%w: %s", ErrNoIPv6Address, host)
		}
	default:
		filtered = unmapAddresses(ipAddrs)
	}

	return selectRandomIP(filtered)
}

func selectRandomIP(ipAddrs []netip.Addr) (netip.Addr, error) {
	if len(ipAddrs) == 0 {
		return netip.Addr{}, ErrNoIPAddresses
	}
	return ipAddrs[rand.IntN(len(ipAddrs))], nil
}

func filterIPv4(ipAddrs []netip.Addr) []netip.Addr {
	var ipList []netip.Addr
	for _, ip := range ipAddrs {
		// static builds (CGO=0) return IPv4-mapped IPv6 addresses
		if ip.Is4() || ip.Is4In6() {
			ipList = append(ipList, ip.Unmap())
		}
	}
	return ipList
}

func filterIPv6(ipAddrs []netip.Addr) []netip.Addr {
	var ipList []netip.Addr
	for _, ip := range ipAddrs {
		if ip.Is6() && !ip.Is4In6() {
			ipList = append(ipList, ip)
		}
	}
	return ipList
}

func unmapAddresses(ipAddrs []netip.Addr) []netip.Addr {
	ipList := make([]netip.Addr, len(ipAddrs))
	for i, ip := range ipAddrs {
		ipList[i] = ip.Unmap()
	}
	return ipList
}
