package tcpwatch_test

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pouriyajamshidi/tcpwatch"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

var (
	errRefused = errors.New("connection refused")
	base       = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newStats() statistics.Statistics {
	return statistics.New(netip.MustParseAddr("192.0.2.10"), 443)
}

func feed(probes ...statistics.Probe) <-chan statistics.Probe {
	ch := make(chan statistics.Probe, len(probes))
	for _, p := range probes {
		ch <- p
	}
	close(ch)
	return ch
}

func TestTracker_MixedScenario(t *testing.T) {
	printer := &mockPrinter{}
	tracker := tcpwatch.NewTracker(newStats(), tcpwatch.WithPrinter(printer))

	s := tracker.Run(feed(
		statistics.Probe{Start: base, Elapsed: 1 * time.Second, CycleDuration: 2 * time.Second},
		statistics.Probe{Start: base.Add(2 * time.Second), Elapsed: 3 * time.Second, CycleDuration: 3 * time.Second},
		statistics.Probe{Start: base.Add(5 * time.Second), Err: errRefused, CycleDuration: 2 * time.Second},
		statistics.Probe{Start: base.Add(7 * time.Second), Elapsed: 2 * time.Second, CycleDuration: 5 * time.Second},
		statistics.Probe{Start: base.Add(12 * time.Second), Err: errRefused, CycleDuration: 20 * time.Second},
	))

	assert.Equal(t, uint(3), s.TotalSuccessfulProbes)
	assert.Equal(t, uint(2), s.TotalUnsuccessfulProbes)
	assert.Equal(t, 10*time.Second, s.TotalUptime)
	assert.Equal(t, 22*time.Second, s.TotalDowntime)
	assert.Equal(t, 1*time.Second, s.MinLatency)
	assert.Equal(t, 3*time.Second, s.MaxLatency)
	assert.Equal(t, 6*time.Second, s.SumLatency)

	success, failure, _ := printer.counts()
	assert.Equal(t, 3, success)
	assert.Equal(t, 2, failure)
	assert.Equal(t, 1, printer.totalDownTimeCalls)
	assert.Equal(t, []uint{1, 2, 1, 1, 1}, printer.streaks)
}

func TestTracker_PrintsDowntimeOnRecovery(t *testing.T) {
	printer := &mockPrinter{}
	tracker := tcpwatch.NewTracker(newStats(), tcpwatch.WithPrinter(printer))

	tracker.Run(feed(
		statistics.Probe{Start: base, Err: errRefused, CycleDuration: time.Second},
		statistics.Probe{Start: base.Add(time.Second), Err: errRefused, CycleDuration: time.Second},
		statistics.Probe{Start: base.Add(2 * time.Second), Elapsed: time.Millisecond, CycleDuration: time.Second},
		statistics.Probe{Start: base.Add(3 * time.Second), Elapsed: time.Millisecond, CycleDuration: time.Second},
	))

	require.Len(t, printer.lastDowntime, 1)
	recovered := printer.lastDowntime[0]
	assert.Equal(t, 2*time.Second, recovered.LastDowntime)
	assert.Equal(t, uint(1), recovered.OngoingSuccessfulProbes, "statistics must include the recovering probe")
}

func TestTracker_EmptyStream(t *testing.T) {
	printer := &mockPrinter{}
	tracker := tcpwatch.NewTracker(newStats(), tcpwatch.WithPrinter(printer))

	s := tracker.Run(feed())

	assert.Zero(t, s.TotalProbes())
	assert.True(t, s.StartTime.IsZero())
	success, failure, _ := printer.counts()
	assert.Zero(t, success)
	assert.Zero(t, failure)
}

func TestTracker_WithoutPrinter(t *testing.T) {
	tracker := tcpwatch.NewTracker(newStats())

	s := tracker.Run(feed(
		statistics.Probe{Start: base, Elapsed: time.Millisecond, CycleDuration: time.Second},
	))

	assert.Equal(t, uint(1), s.TotalSuccessfulProbes)
}

func TestTracker_Observers(t *testing.T) {
	first := &recordingObserver{}
	second := &recordingObserver{}
	tracker := tcpwatch.NewTracker(newStats(), tcpwatch.WithObserver(first), tcpwatch.WithObserver(second))

	tracker.Run(feed(
		statistics.Probe{Start: base, Elapsed: time.Millisecond, CycleDuration: time.Second},
		statistics.Probe{Start: base.Add(time.Second), Err: errRefused, CycleDuration: time.Second},
	))

	for _, o := range []*recordingObserver{first, second} {
		require.Len(t, o.probes, 2)
		assert.Equal(t, []uint{1, 2}, o.totals)
		assert.True(t, o.probes[0].Successful())
		assert.False(t, o.probes[1].Successful())
	}
}

func TestTracker_StatsRequests(t *testing.T) {
	printer := &mockPrinter{}
	requests := make(chan struct{})
	probes := make(chan statistics.Probe)

	tracker := tcpwatch.NewTracker(newStats(),
		tcpwatch.WithPrinter(printer),
		tcpwatch.WithStatsRequests(requests),
	)

	done := make(chan statistics.Statistics, 1)
	go func() {
		done <- tracker.Run(probes)
	}()

	probes <- statistics.Probe{Start: base, Elapsed: time.Millisecond, CycleDuration: time.Second}
	requests <- struct{}{}
	requests <- struct{}{}
	close(requests)
	probes <- statistics.Probe{Start: base.Add(time.Second), Elapsed: time.Millisecond, CycleDuration: time.Second}
	close(probes)

	s := <-done

	_, _, stats := printer.counts()
	assert.Equal(t, 2, stats)
	assert.Equal(t, uint(2), s.TotalSuccessfulProbes)
}
