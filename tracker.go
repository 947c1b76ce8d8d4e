package tcpwatch

import (
	"github.com/rs/zerolog"

	"github.com/pouriyajamshidi/tcpwatch/option"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// Observer is notified of every tracked probe. It runs on the tracker's
// goroutine and must not keep s beyond the call.
type Observer interface {
	Observe(p statistics.Probe, s *statistics.Statistics)
}

// Tracker is the single consumer of a probe stream. It owns the
// statistics until Run returns.
type Tracker struct {
	stats         statistics.Statistics
	printer       Printer
	observers     []Observer
	statsRequests <-chan struct{}
	log           zerolog.Logger
}

type TrackerOption = option.Option[Tracker]

// WithPrinter configures the printer that reports every probe.
func WithPrinter(printer Printer) TrackerOption {
	return func(t *Tracker) {
		t.printer = printer
	}
}

// WithObserver adds an observer notified after every probe.
func WithObserver(o Observer) TrackerOption {
	return func(t *Tracker) {
		t.observers = append(t.observers, o)
	}
}

// WithStatsRequests makes the tracker print interim statistics whenever a
// value arrives on requests.
func WithStatsRequests(requests <-chan struct{}) TrackerOption {
	return func(t *Tracker) {
		t.statsRequests = requests
	}
}

// WithTrackerLogger configures the logger used for tracker diagnostics.
func WithTrackerLogger(l zerolog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = l
	}
}

// NewTracker creates a tracker that folds probes into stats.
func NewTracker(stats statistics.Statistics, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		stats: stats,
		log:   zerolog.Nop(),
	}
	option.Apply(t, opts...)
	return t
}

// Run consumes probes in arrival order until the stream is closed and
// drained, then returns the final statistics.
func (t *Tracker) Run(probes <-chan statistics.Probe) statistics.Statistics {
	requests := t.statsRequests

	for {
		select {
		case p, ok := <-probes:
			if !ok {
				t.log.Debug().
					Uint("probes", t.stats.TotalProbes()).
					Str("run_id", t.stats.RunID).
					Msg("probe stream closed")
				return t.stats
			}
			t.consume(p)

		case _, ok := <-requests:
			if !ok {
				requests = nil
				continue
			}
			if t.printer != nil {
				t.printer.PrintStatistics(&t.stats)
			}
		}
	}
}

func (t *Tracker) consume(p statistics.Probe) {
	wasDown := t.stats.OngoingUnsuccessfulProbes > 0

	t.stats.Track(p)

	if t.printer != nil {
		if p.Successful() {
			if wasDown {
				t.printer.PrintTotalDownTime(&t.stats)
			}
			t.printer.PrintProbeSuccess(p, &t.stats)
		} else {
			t.printer.PrintProbeFailure(p, &t.stats)
		}
	}

	for _, o := range t.observers {
		o.Observe(p, &t.stats)
	}
}
