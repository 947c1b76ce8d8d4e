package tcpwatch_test

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// mockPinger implements Pinger interface for testing
type mockPinger struct {
	ip       netip.Addr
	port     uint16
	pingErr  error
	calls    atomic.Int64
	pingFunc func(ctx context.Context, call int64) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	call := m.calls.Add(1)
	if m.pingFunc != nil {
		return m.pingFunc(ctx, call)
	}
	return m.pingErr
}

func (m *mockPinger) IP() netip.Addr {
	return m.ip
}

func (m *mockPinger) Port() uint16 {
	return m.port
}

// sourcePinger also reports the local address it connected from.
type sourcePinger struct {
	mockPinger
	local net.Addr
}

func (s *sourcePinger) PingSource(ctx context.Context) (net.Addr, error) {
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s.local, nil
}

// mockPrinter implements Printer interface for testing
type mockPrinter struct {
	mu                 sync.Mutex
	startCalls         int
	successCalls       int
	failureCalls       int
	statisticsCalls    int
	totalDownTimeCalls int
	errorCalls         int
	doneCalls          int
	lastDowntime       []statistics.Statistics
	streaks            []uint
}

func (m *mockPrinter) PrintStart(s *statistics.Statistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
}

func (m *mockPrinter) PrintProbeSuccess(_ statistics.Probe, s *statistics.Statistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successCalls++
	m.streaks = append(m.streaks, s.OngoingSuccessfulProbes)
}

func (m *mockPrinter) PrintProbeFailure(_ statistics.Probe, s *statistics.Statistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureCalls++
	m.streaks = append(m.streaks, s.OngoingUnsuccessfulProbes)
}

func (m *mockPrinter) PrintTotalDownTime(s *statistics.Statistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalDownTimeCalls++
	m.lastDowntime = append(m.lastDowntime, *s)
}

func (m *mockPrinter) PrintStatistics(s *statistics.Statistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statisticsCalls++
}

func (m *mockPrinter) PrintError(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCalls++
}

func (m *mockPrinter) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doneCalls++
}

func (m *mockPrinter) counts() (success, failure, statistics int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successCalls, m.failureCalls, m.statisticsCalls
}

// recordingObserver keeps every probe it is shown.
type recordingObserver struct {
	probes []statistics.Probe
	totals []uint
}

func (r *recordingObserver) Observe(p statistics.Probe, s *statistics.Statistics) {
	r.probes = append(r.probes, p)
	r.totals = append(r.totals, s.TotalProbes())
}

func collect(ch <-chan statistics.Probe) []statistics.Probe {
	var out []statistics.Probe
	for p := range ch {
		out = append(out, p)
	}
	return out
}
