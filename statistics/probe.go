package statistics

import (
	"net"
	"time"
)

// Probe is the record of a single connection attempt.
type Probe struct {
	// Start is when the attempt began.
	Start time.Time
	// Elapsed is the time consumed by the connection attempt itself.
	Elapsed time.Duration
	// Err is nil for a successful attempt.
	Err error
	// CycleDuration is the wall-clock span attributed to the iteration that
	// produced the probe: the attempt plus any paced wait actually taken.
	// It is never smaller than Elapsed.
	CycleDuration time.Duration
	// LocalAddr is the source address of a successful attempt, when known.
	LocalAddr net.Addr
}

// Successful reports whether the connection was established.
func (p Probe) Successful() bool {
	return p.Err == nil
}

// End returns the moment the connection attempt finished.
func (p Probe) End() time.Time {
	return p.Start.Add(p.Elapsed)
}

// LatencyStr returns the attempt duration in milliseconds with 3 decimal points.
func (p Probe) LatencyStr() string {
	return FormatMilliseconds(p.Elapsed)
}

// StartFormatted returns the start time in time.DateTime layout.
func (p Probe) StartFormatted() string {
	return p.Start.Format(time.DateTime)
}

// SourceAddr returns the local address used for the attempt or an empty string.
func (p Probe) SourceAddr() string {
	if p.LocalAddr == nil {
		return ""
	}
	return p.LocalAddr.String()
}
