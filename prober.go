package tcpwatch

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pouriyajamshidi/tcpwatch/option"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

const DefaultInterval = 1 * time.Second

// State is the scheduler state of a Prober.
type State int32

const (
	StateRunning State = iota
	StateWaiting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Prober invokes its Pinger once per interval and publishes one probe per
// attempt.
type Prober struct {
	pinger          Pinger
	Interval        time.Duration
	ProbeCountLimit uint
	log             zerolog.Logger
	state           atomic.Int32
}

type ProberOption = option.Option[Prober]

// WithInterval configures the interval between probe attempts.
func WithInterval(interval time.Duration) ProberOption {
	return func(p *Prober) {
		p.Interval = interval
	}
}

// WithProbeCount configures the maximum number of probes before stopping.
// If set to 0, probing continues indefinitely.
func WithProbeCount(count uint) ProberOption {
	return func(p *Prober) {
		p.ProbeCountLimit = count
	}
}

// WithProberLogger configures the logger used for scheduler diagnostics.
func WithProberLogger(l zerolog.Logger) ProberOption {
	return func(p *Prober) {
		p.log = l
	}
}

// NewProber creates a new prober with the given pinger and optional configuration.
func NewProber(p Pinger, opts ...ProberOption) *Prober {
	pr := &Prober{
		pinger:   p,
		Interval: DefaultInterval,
		log:      zerolog.Nop(),
	}
	option.Apply(pr, opts...)
	return pr
}

// State returns the current scheduler state. It is safe for concurrent use.
func (p *Prober) State() State {
	return State(p.state.Load())
}

func (p *Prober) setState(s State) {
	p.state.Store(int32(s))
}

// Run probes until ctx is cancelled or the probe count limit is reached,
// sending every probe to out. out is closed when Run returns.
//
// Cancellation is checked before each attempt and wakes the paced wait.
// An attempt already in flight is never aborted; a bounded pinger caps how
// long that can take.
func (p *Prober) Run(ctx context.Context, out chan<- statistics.Probe) {
	defer close(out)
	defer p.setState(StateStopped)

	pingCtx := context.WithoutCancel(ctx)
	p.log.Debug().
		Str("target", p.pinger.IP().String()).
		Uint16("port", p.pinger.Port()).
		Dur("interval", p.Interval).
		Uint("count", p.ProbeCountLimit).
		Msg("prober started")

	var probeCount uint

	for {
		if ctx.Err() != nil {
			p.log.Debug().Uint("probes", probeCount).Msg("prober cancelled")
			return
		}

		p.setState(StateRunning)

		probe := p.attempt(pingCtx)

		if probe.Elapsed < p.Interval {
			p.setState(StateWaiting)
			p.wait(ctx, p.Interval-probe.Elapsed)
		}

		probe.CycleDuration = time.Since(probe.Start)
		out <- probe

		probeCount++
		if p.ProbeCountLimit > 0 && probeCount >= p.ProbeCountLimit {
			p.log.Debug().Uint("probes", probeCount).Msg("probe count limit reached")
			return
		}
	}
}

func (p *Prober) attempt(ctx context.Context) statistics.Probe {
	var (
		local net.Addr
		err   error
	)

	start := time.Now()
	if sp, ok := p.pinger.(sourceAddrer); ok {
		local, err = sp.PingSource(ctx)
	} else {
		err = p.pinger.Ping(ctx)
	}
	elapsed := time.Since(start)

	if err != nil {
		p.log.Debug().Err(err).Dur("elapsed", elapsed).Msg("probe failed")
	}

	return statistics.Probe{
		Start:     start,
		Elapsed:   elapsed,
		Err:       err,
		LocalAddr: local,
	}
}

// wait sleeps for d or until ctx is done, whichever comes first.
func (p *Prober) wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
