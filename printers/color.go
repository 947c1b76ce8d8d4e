package printers

import (
	"fmt"
	"io"

	"github.com/gookit/color"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// ColorPrinter provides functionality for printing messages with color support.
// Formatting is identical to PlainPrinter.
type ColorPrinter struct {
	out  io.Writer
	opts options
}

// NewColorPrinter creates a new ColorPrinter writing to out.
func NewColorPrinter(out io.Writer, opts ...Option) *ColorPrinter {
	return &ColorPrinter{out: out, opts: newOptions(opts)}
}

func (p *ColorPrinter) paint(c color.Color, format string, args ...any) {
	fmt.Fprint(p.out, c.Sprintf(format, args...))
}

// PrintStart prints the target's hostname and port in light cyan.
func (p *ColorPrinter) PrintStart(s *statistics.Statistics) {
	p.paint(color.LightCyan, "%s\n", startMessage(s))
}

// PrintProbeSuccess prints a successful probe in light green.
func (p *ColorPrinter) PrintProbeSuccess(probe statistics.Probe, s *statistics.Statistics) {
	if p.opts.ShowFailuresOnly {
		return
	}
	p.paint(color.LightGreen, "%s\n", successMessage(p.opts, probe, s))
}

// PrintProbeFailure prints a failed probe in red.
func (p *ColorPrinter) PrintProbeFailure(probe statistics.Probe, s *statistics.Statistics) {
	p.paint(color.Red, "%s\n", failureMessage(p.opts, probe, s))
}

// PrintTotalDownTime prints the length of the downtime that just ended.
func (p *ColorPrinter) PrintTotalDownTime(s *statistics.Statistics) {
	p.paint(color.Yellow, "%s\n", downtimeMessage(s))
}

// PrintError prints an error message in red.
func (p *ColorPrinter) PrintError(format string, args ...any) {
	p.paint(color.Red, format+"\n", args...)
}

// PrintStatistics prints a summary of the session.
// It includes transmitted and received probes, packet loss percentage,
// uptime/downtime durations, longest uptime/downtime and latency.
func (p *ColorPrinter) PrintStatistics(s *statistics.Statistics) {
	writeStatistics(p.paint, s)
}

// Done is a no-op for terminal output.
func (p *ColorPrinter) Done() {}
