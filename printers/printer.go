// Package printers contains the logic for printing information
package printers

import (
	"fmt"
	"time"

	"github.com/gookit/color"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// target renders "host (ip)" for resolved names and just the IP otherwise.
func target(s *statistics.Statistics) string {
	if s.DestIsIP || s.Hostname == "" || s.Hostname == s.IP.String() {
		return s.IP.String()
	}
	return fmt.Sprintf("%s (%s)", s.Hostname, s.IP)
}

func startMessage(s *statistics.Statistics) string {
	return fmt.Sprintf("Watching %s on port %d", s.Hostname, s.Port)
}

func successMessage(o options, p statistics.Probe, s *statistics.Statistics) string {
	msg := fmt.Sprintf("Reply from %s on port %d", target(s), s.Port)

	if o.ShowSourceAddress && p.SourceAddr() != "" {
		msg += " using " + p.SourceAddr()
	}

	msg += fmt.Sprintf(" TCP_conn=%d time=%s ms", s.OngoingSuccessfulProbes, p.LatencyStr())

	if o.ShowTimestamp {
		msg = p.StartFormatted() + " " + msg
	}
	return msg
}

func failureMessage(o options, p statistics.Probe, s *statistics.Statistics) string {
	msg := fmt.Sprintf("No reply from %s on port %d TCP_conn=%d",
		target(s),
		s.Port,
		s.OngoingUnsuccessfulProbes)

	if o.ShowTimestamp {
		msg = p.StartFormatted() + " " + msg
	}
	return msg
}

func downtimeMessage(s *statistics.Statistics) string {
	return fmt.Sprintf("No response received for %s", statistics.DurationToString(s.LastDowntime))
}

func statisticsTitle(s *statistics.Statistics) string {
	return fmt.Sprintf("%s tcpwatch statistics", target(s))
}

// paintFunc writes one formatted segment of a text report in the given color.
type paintFunc func(c color.Color, format string, args ...any)

// writeStatistics renders the statistics report shared by the text printers.
// Plain output passes a paintFunc that ignores the color.
func writeStatistics(paint paintFunc, s *statistics.Statistics) {
	paint(color.Yellow, "\n--- %s ---\n", statisticsTitle(s))

	paint(color.Yellow, "%d probes transmitted on port %d | ", s.TotalProbes(), s.Port)
	paint(color.Yellow, "%d received, ", s.TotalSuccessfulProbes)

	loss := s.PacketLoss()
	switch {
	case loss == 0:
		paint(color.Green, "%.2f%%", loss)
	case loss > 0 && loss <= 30:
		paint(color.LightYellow, "%.2f%%", loss)
	default:
		paint(color.Red, "%.2f%%", loss)
	}
	paint(color.Yellow, " packet loss\n")

	paint(color.Yellow, "successful probes:   ")
	paint(color.Green, "%d\n", s.TotalSuccessfulProbes)

	paint(color.Yellow, "unsuccessful probes: ")
	paint(color.Red, "%d\n", s.TotalUnsuccessfulProbes)

	paint(color.Yellow, "last successful probe:   ")
	if s.LastSuccessfulProbe.IsZero() {
		paint(color.Red, "Never succeeded\n")
	} else {
		paint(color.Green, "%v\n", s.LastSuccessfulProbe.Format(time.DateTime))
	}

	paint(color.Yellow, "last unsuccessful probe: ")
	if s.LastUnsuccessfulProbe.IsZero() {
		paint(color.Green, "Never failed\n")
	} else {
		paint(color.Red, "%v\n", s.LastUnsuccessfulProbe.Format(time.DateTime))
	}

	paint(color.Yellow, "total uptime: ")
	paint(color.Green, "  %s\n", statistics.DurationToString(s.TotalUptime))
	paint(color.Yellow, "total downtime: ")
	paint(color.Red, "%s\n", statistics.DurationToString(s.TotalDowntime))

	if s.LongestUp.Duration != 0 {
		paint(color.Yellow, "longest consecutive uptime:   ")
		paint(color.Green, "%v ", statistics.DurationToString(s.LongestUp.Duration))
		paint(color.Yellow, "from ")
		paint(color.FgLightBlue, "%v ", s.LongestUp.Start.Format(time.DateTime))
		paint(color.Yellow, "to ")
		paint(color.FgLightBlue, "%v\n", s.LongestUp.End.Format(time.DateTime))
	}

	if s.LongestDown.Duration != 0 {
		paint(color.Yellow, "longest consecutive downtime: ")
		paint(color.Red, "%v ", statistics.DurationToString(s.LongestDown.Duration))
		paint(color.Yellow, "from ")
		paint(color.FgLightBlue, "%v ", s.LongestDown.Start.Format(time.DateTime))
		paint(color.Yellow, "to ")
		paint(color.FgLightBlue, "%v\n", s.LongestDown.End.Format(time.DateTime))
	}

	if latency, ok := s.Latency(); ok {
		paint(color.Yellow, "rtt ")
		paint(color.Green, "min")
		paint(color.Yellow, "/")
		paint(color.Cyan, "avg")
		paint(color.Yellow, "/")
		paint(color.Red, "max: ")
		paint(color.Green, "%s", statistics.FormatMilliseconds(latency.Min))
		paint(color.Yellow, "/")
		paint(color.Cyan, "%s", statistics.FormatMilliseconds(latency.Avg))
		paint(color.Yellow, "/")
		paint(color.Red, "%s", statistics.FormatMilliseconds(latency.Max))
		paint(color.Yellow, " ms\n")
	}

	paint(color.Yellow, "--------------------------------------\n")

	if !s.StartTime.IsZero() {
		paint(color.Yellow, "started at: %v\n", s.StartTimeFormatted())
	}
	if !s.EndTime.IsZero() {
		paint(color.Yellow, "ended at:   %v\n", s.EndTimeFormatted())
	}

	paint(color.Yellow, "duration (HH:MM:SS): %v\n\n", statistics.FormatClock(s.TotalUptime+s.TotalDowntime))
}
