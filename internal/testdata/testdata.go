// Package testdata provides shared test helpers and fixtures.
package testdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/pouriyajamshidi/tcpwatch/printers"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// Common test fixture values
const (
	TestHostname = "example.com"
	TestPort     = uint16(443)
)

var (
	TestIP         = netip.MustParseAddr("192.168.1.1")
	TestTimestamp  = time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	TestSourceAddr = "10.0.0.1:12345"
	ErrRefused     = errors.New("connection refused")
)

// MockAddr implements net.Addr for testing.
type MockAddr struct {
	Addr string
}

func (m MockAddr) Network() string { return "tcp" }
func (m MockAddr) String() string  { return m.Addr }

var _ net.Addr = (*MockAddr)(nil)

// ToPtr returns a pointer to the provided value.
func ToPtr[T any](v T) *T {
	return &v
}

// IPStats returns empty statistics for TestIP:TestPort addressed by IP.
func IPStats() statistics.Statistics {
	return statistics.New(TestIP, TestPort)
}

// HostnameStats returns empty statistics for TestHostname resolved to TestIP.
func HostnameStats() statistics.Statistics {
	s := statistics.New(TestIP, TestPort)
	s.Hostname = TestHostname
	s.DestIsIP = false
	return s
}

// SuccessProbe is a successful probe started at TestTimestamp.
func SuccessProbe(elapsed time.Duration) statistics.Probe {
	return statistics.Probe{
		Start:         TestTimestamp,
		Elapsed:       elapsed,
		CycleDuration: max(elapsed, time.Second),
		LocalAddr:     MockAddr{Addr: TestSourceAddr},
	}
}

// FailureProbe is a refused probe started at TestTimestamp.
func FailureProbe() statistics.Probe {
	return statistics.Probe{
		Start:         TestTimestamp,
		Err:           ErrRefused,
		CycleDuration: time.Second,
	}
}

// MixedStats tracks up, up, down, up on hostname statistics.
func MixedStats() statistics.Statistics {
	s := HostnameStats()
	probes := []statistics.Probe{
		{Start: TestTimestamp, Elapsed: 10 * time.Millisecond, CycleDuration: time.Second},
		{Start: TestTimestamp.Add(time.Second), Elapsed: 30 * time.Millisecond, CycleDuration: time.Second},
		{Start: TestTimestamp.Add(2 * time.Second), Err: ErrRefused, CycleDuration: 2 * time.Second},
		{Start: TestTimestamp.Add(4 * time.Second), Elapsed: 20 * time.Millisecond, CycleDuration: time.Second},
	}
	for _, p := range probes {
		s.Track(p)
	}
	return s
}

// DecodeJSONEvents parses a stream of JSON events.
func DecodeJSONEvents(t *testing.T, r io.Reader) []printers.Event {
	t.Helper()

	var events []printers.Event
	dec := json.NewDecoder(r)
	for {
		var e printers.Event
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("parse JSON: %v", err)
		}
		events = append(events, e)
	}
}

// DecodeJSONEvent parses output that must contain exactly one JSON event.
func DecodeJSONEvent(t *testing.T, buf *bytes.Buffer) printers.Event {
	t.Helper()

	output := buf.String()
	events := DecodeJSONEvents(t, buf)
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d\nOutput: %s", len(events), output)
	}
	return events[0]
}
