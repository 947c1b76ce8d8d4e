// Package statistics holds the probe record and the running statistics folded from it.
package statistics

import (
	"fmt"
	"math"
	"net/netip"
	"time"

	"github.com/google/uuid"
)

type protocol string

const TCP protocol = "TCP"

// Statistics is the running aggregate of a probing session.
//
// A Statistics value has a single owner while a session is active: only the
// goroutine consuming the probe stream may call Track or read the fields.
type Statistics struct {
	// Target information
	IP       netip.Addr
	Port     uint16
	Protocol protocol
	Hostname string
	DestIsIP bool
	RunID    string

	// Probe counters
	TotalSuccessfulProbes     uint
	TotalUnsuccessfulProbes   uint
	OngoingSuccessfulProbes   uint
	OngoingUnsuccessfulProbes uint

	// Time tracking. Zero values mean unset.
	StartTime             time.Time
	EndTime               time.Time
	LastSuccessfulProbe   time.Time
	LastUnsuccessfulProbe time.Time

	// Uptime/Downtime tracking
	TotalUptime   time.Duration
	TotalDowntime time.Duration
	LastDowntime  time.Duration // length of the most recently ended downtime period
	LongestUp     LongestTime
	LongestDown   LongestTime

	// Latency tracking, meaningful only when TotalSuccessfulProbes > 0
	MinLatency    time.Duration
	MaxLatency    time.Duration
	SumLatency    time.Duration
	LatestLatency time.Duration

	period period
}

// period is the run of consecutive probes sharing the same outcome.
type period struct {
	start    time.Time
	duration time.Duration
	up       bool
}

// New returns empty statistics for the given target.
func New(ip netip.Addr, port uint16) Statistics {
	return Statistics{
		IP:       ip,
		Port:     port,
		Protocol: TCP,
		Hostname: ip.String(),
		DestIsIP: true,
		RunID:    uuid.NewString(),
	}
}

// Track folds one probe into the statistics. Probes must be tracked in the
// order they were produced.
func (s *Statistics) Track(p Probe) {
	s.trackPeriod(p)

	if p.Successful() {
		s.OngoingSuccessfulProbes++
		s.OngoingUnsuccessfulProbes = 0
		s.TotalSuccessfulProbes++
		s.LastSuccessfulProbe = p.Start
		s.TotalUptime += p.CycleDuration

		if s.TotalSuccessfulProbes == 1 {
			s.MinLatency = p.Elapsed
			s.MaxLatency = p.Elapsed
		} else {
			s.MinLatency = min(s.MinLatency, p.Elapsed)
			s.MaxLatency = max(s.MaxLatency, p.Elapsed)
		}
		s.SumLatency += p.Elapsed
		s.LatestLatency = p.Elapsed
	} else {
		s.OngoingUnsuccessfulProbes++
		s.OngoingSuccessfulProbes = 0
		s.TotalUnsuccessfulProbes++
		s.LastUnsuccessfulProbe = p.Start
		s.TotalDowntime += p.CycleDuration
	}

	if s.StartTime.IsZero() {
		s.StartTime = p.Start
	}
	s.EndTime = p.End()
}

func (s *Statistics) trackPeriod(p Probe) {
	up := p.Successful()

	if s.period.start.IsZero() || s.period.up != up {
		if up && !s.period.start.IsZero() {
			s.LastDowntime = s.period.duration
		}
		s.period = period{start: p.Start, up: up}
	}

	s.period.duration += p.CycleDuration

	if up {
		SetLongestDuration(s.period.start, s.period.duration, &s.LongestUp)
	} else {
		SetLongestDuration(s.period.start, s.period.duration, &s.LongestDown)
	}
}

// TotalProbes returns the number of probes tracked so far.
func (s *Statistics) TotalProbes() uint {
	return s.TotalSuccessfulProbes + s.TotalUnsuccessfulProbes
}

// PacketLoss returns the percentage of failed probes, 0 when nothing was tracked.
func (s *Statistics) PacketLoss() float64 {
	total := s.TotalProbes()
	if total == 0 {
		return 0
	}

	loss := float64(s.TotalUnsuccessfulProbes) / float64(total) * 100
	if math.IsNaN(loss) {
		return 0
	}
	return loss
}

// Latency returns min, avg and max latency. ok is false when no probe
// succeeded, in which case the result must not be reported.
func (s *Statistics) Latency() (result LatencyResult, ok bool) {
	if s.TotalSuccessfulProbes == 0 {
		return LatencyResult{}, false
	}

	return LatencyResult{
		Min: s.MinLatency,
		Avg: s.SumLatency / time.Duration(s.TotalSuccessfulProbes),
		Max: s.MaxLatency,
	}, true
}

// TotalDuration is the span between the first probe start and the last probe end.
func (s *Statistics) TotalDuration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// PortStr returns the port as a string.
func (s *Statistics) PortStr() string {
	return fmt.Sprint(s.Port)
}

// StartTimeFormatted returns the run start in time.DateTime layout.
func (s *Statistics) StartTimeFormatted() string {
	return s.StartTime.Format(time.DateTime)
}

// EndTimeFormatted returns the run end in time.DateTime layout.
func (s *Statistics) EndTimeFormatted() string {
	return s.EndTime.Format(time.DateTime)
}

// LatestLatencyStr returns the latest successful latency in milliseconds.
func (s *Statistics) LatestLatencyStr() string {
	return FormatMilliseconds(s.LatestLatency)
}

// LatencyResult holds min, average and max latency of the successful probes.
type LatencyResult struct {
	Min time.Duration
	Avg time.Duration
	Max time.Duration
}

// LongestTime holds information about the longest period of uptime or downtime.
type LongestTime struct {
	Start    time.Time     // Start time of the longest period.
	End      time.Time     // End time of the longest period.
	Duration time.Duration // Duration of the longest period.
}

// NewLongestTime creates and returns a LongestTime instance with the provided start time and duration.
func NewLongestTime(startTime time.Time, duration time.Duration) LongestTime {
	return LongestTime{
		Start:    startTime,
		End:      startTime.Add(duration),
		Duration: duration,
	}
}

// SetLongestDuration updates longest when the given period is at least as long.
func SetLongestDuration(start time.Time, duration time.Duration, longest *LongestTime) {
	if start.IsZero() || duration == 0 {
		return
	}

	newLongest := NewLongestTime(start, duration)

	if longest.End.IsZero() || newLongest.Duration >= longest.Duration {
		*longest = newLongest
	}
}
