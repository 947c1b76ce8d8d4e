package tcpwatch

import (
	"context"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// streamBuffer is the capacity of the probe stream between prober and tracker.
const streamBuffer = 16

// Watch runs prober and tracker connected by a single ordered probe stream
// and blocks until both have stopped.
//
// Cancelling ctx stops the prober, which closes the stream; the tracker then
// drains whatever is buffered. The returned statistics include every probe
// the prober emitted.
func Watch(ctx context.Context, prober *Prober, tracker *Tracker) statistics.Statistics {
	probes := make(chan statistics.Probe, streamBuffer)
	done := make(chan statistics.Statistics, 1)

	go func() {
		done <- tracker.Run(probes)
	}()

	prober.Run(ctx, probes)

	return <-done
}
