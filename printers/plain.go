package printers

import (
	"fmt"
	"io"

	"github.com/gookit/color"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// PlainPrinter is a printer that prints the results in a simple, plain text format.
type PlainPrinter struct {
	out  io.Writer
	opts options
}

// NewPlainPrinter creates a new PlainPrinter writing to out.
func NewPlainPrinter(out io.Writer, opts ...Option) *PlainPrinter {
	return &PlainPrinter{out: out, opts: newOptions(opts)}
}

func (p *PlainPrinter) println(msg string) {
	fmt.Fprintln(p.out, msg)
}

// PrintStart prints the start message indicating the operation on the given hostname and port.
func (p *PlainPrinter) PrintStart(s *statistics.Statistics) {
	p.println(startMessage(s))
}

// PrintProbeSuccess prints a success message for a probe, including latency and streak info.
func (p *PlainPrinter) PrintProbeSuccess(probe statistics.Probe, s *statistics.Statistics) {
	if p.opts.ShowFailuresOnly {
		return
	}
	p.println(successMessage(p.opts, probe, s))
}

// PrintProbeFailure prints a failure message for a probe.
func (p *PlainPrinter) PrintProbeFailure(probe statistics.Probe, s *statistics.Statistics) {
	p.println(failureMessage(p.opts, probe, s))
}

// PrintTotalDownTime prints the length of the downtime that just ended.
func (p *PlainPrinter) PrintTotalDownTime(s *statistics.Statistics) {
	p.println(downtimeMessage(s))
}

// PrintError prints error messages.
func (p *PlainPrinter) PrintError(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// PrintStatistics prints detailed statistics about the session.
func (p *PlainPrinter) PrintStatistics(s *statistics.Statistics) {
	writeStatistics(func(_ color.Color, format string, args ...any) {
		fmt.Fprintf(p.out, format, args...)
	}, s)
}

// Done is a no-op for plain text output.
func (p *PlainPrinter) Done() {}
