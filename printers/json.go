package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// EventType is a special type for each method
// in the printer interface so that automatic tools
// can understand what kind of an event they've received.
// For instance, start vs probe vs statistics...
type EventType string

const (
	StartEvent      EventType = "start"      // Event type for `PrintStart` method.
	ProbeEvent      EventType = "probe"      // Event type for both `PrintProbeSuccess` and `PrintProbeFailure`.
	RecoveredEvent  EventType = "recovered"  // Event type for `PrintTotalDownTime` method.
	StatisticsEvent EventType = "statistics" // Event type for `PrintStatistics` method.
	ErrorEvent      EventType = "error"      // Event type for `PrintError` method.
)

// Event contains all possible fields for structured output.
// Because one event usually contains only a subset of fields,
// other fields will be omitted in the output.
type Event struct {
	Type EventType `json:"type" yaml:"type"`
	// Success is a pointer on purpose, otherwise success=false would be
	// omitted, but it still has to be omitted for non-probe messages.
	Success    *bool  `json:"success,omitempty" yaml:"success,omitempty"`
	Timestamp  string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Message    string `json:"message" yaml:"message"`
	RunID      string `json:"runId,omitempty" yaml:"runId,omitempty"`
	IPAddr     string `json:"ipAddress,omitempty" yaml:"ipAddress,omitempty"`
	Hostname   string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Port       uint16 `json:"port,omitempty" yaml:"port,omitempty"`
	SourceAddr string `json:"sourceAddress,omitempty" yaml:"sourceAddress,omitempty"`
	DestIsIP   *bool  `json:"destinationIsIP,omitempty" yaml:"destinationIsIP,omitempty"`

	Latency float64 `json:"latency,omitempty" yaml:"latency,omitempty"` // Latency in ms of a successful probe.

	StartTimestamp        string `json:"startTimestamp,omitempty" yaml:"startTimestamp,omitempty"`
	EndTimestamp          string `json:"endTimestamp,omitempty" yaml:"endTimestamp,omitempty"`
	LastSuccessfulProbe   string `json:"lastSuccessfulProbe,omitempty" yaml:"lastSuccessfulProbe,omitempty"`
	LastUnsuccessfulProbe string `json:"lastUnsuccessfulProbe,omitempty" yaml:"lastUnsuccessfulProbe,omitempty"`
	LongestUptimeStart    string `json:"longestUptimeStart,omitempty" yaml:"longestUptimeStart,omitempty"`
	LongestUptimeEnd      string `json:"longestUptimeEnd,omitempty" yaml:"longestUptimeEnd,omitempty"`
	LongestDowntimeStart  string `json:"longestDowntimeStart,omitempty" yaml:"longestDowntimeStart,omitempty"`
	LongestDowntimeEnd    string `json:"longestDowntimeEnd,omitempty" yaml:"longestDowntimeEnd,omitempty"`

	// Latency summary with 3 decimal places, present only when a probe succeeded.
	LatencyMin string `json:"latencyMin,omitempty" yaml:"latencyMin,omitempty"`
	LatencyAvg string `json:"latencyAvg,omitempty" yaml:"latencyAvg,omitempty"`
	LatencyMax string `json:"latencyMax,omitempty" yaml:"latencyMax,omitempty"`

	TotalDuration   float64 `json:"totalDuration,omitempty" yaml:"totalDuration,omitempty"`     // seconds
	LongestUptime   float64 `json:"longestUptime,omitempty" yaml:"longestUptime,omitempty"`     // seconds
	LongestDowntime float64 `json:"longestDowntime,omitempty" yaml:"longestDowntime,omitempty"` // seconds
	TotalPacketLoss string  `json:"totalPacketLoss,omitempty" yaml:"totalPacketLoss,omitempty"` // percent

	TotalPackets              uint `json:"totalPackets,omitempty" yaml:"totalPackets,omitempty"`
	TotalSuccessfulProbes     uint `json:"totalSuccessfulProbes,omitempty" yaml:"totalSuccessfulProbes,omitempty"`
	TotalUnsuccessfulProbes   uint `json:"totalUnsuccessfulProbes,omitempty" yaml:"totalUnsuccessfulProbes,omitempty"`
	OngoingSuccessfulProbes   uint `json:"ongoingSuccessfulProbes,omitempty" yaml:"ongoingSuccessfulProbes,omitempty"`
	OngoingUnsuccessfulProbes uint `json:"ongoingUnsuccessfulProbes,omitempty" yaml:"ongoingUnsuccessfulProbes,omitempty"`

	TotalUptime   float64 `json:"totalUptime,omitempty" yaml:"totalUptime,omitempty"`     // seconds
	TotalDowntime float64 `json:"totalDowntime,omitempty" yaml:"totalDowntime,omitempty"` // seconds
	LastDowntime  float64 `json:"lastDowntime,omitempty" yaml:"lastDowntime,omitempty"`   // seconds
}

// encoder is satisfied by both json.Encoder and yaml.Encoder.
type encoder interface {
	Encode(v any) error
}

// eventPrinter turns printer calls into Events and hands them to an encoder.
type eventPrinter struct {
	enc  encoder
	opts options
}

func (p *eventPrinter) emit(e Event) {
	if err := p.enc.Encode(e); err != nil {
		log.Warn().Err(err).Str("event", string(e.Type)).Msg("failed to encode event")
	}
}

func destination(e *Event, s *statistics.Statistics) {
	destIsIP := s.DestIsIP
	e.IPAddr = s.IP.String()
	e.Port = s.Port
	e.DestIsIP = &destIsIP
	if !s.DestIsIP {
		e.Hostname = s.Hostname
	}
}

// PrintStart prints the initial message before doing probes.
func (p *eventPrinter) PrintStart(s *statistics.Statistics) {
	e := Event{
		Type:    StartEvent,
		Message: startMessage(s),
		RunID:   s.RunID,
	}
	destination(&e, s)
	e.Hostname = s.Hostname
	p.emit(e)
}

// PrintProbeSuccess prints a successful probe.
func (p *eventPrinter) PrintProbeSuccess(probe statistics.Probe, s *statistics.Statistics) {
	if p.opts.ShowFailuresOnly {
		return
	}

	success := true
	e := Event{
		Type:                    ProbeEvent,
		Success:                 &success,
		Message:                 successMessage(p.opts, probe, s),
		Latency:                 statistics.DurationToMilliseconds(probe.Elapsed),
		OngoingSuccessfulProbes: s.OngoingSuccessfulProbes,
	}
	destination(&e, s)

	if p.opts.ShowTimestamp {
		e.Timestamp = probe.StartFormatted()
	}
	if p.opts.ShowSourceAddress {
		e.SourceAddr = probe.SourceAddr()
	}

	p.emit(e)
}

// PrintProbeFailure prints a failed probe.
func (p *eventPrinter) PrintProbeFailure(probe statistics.Probe, s *statistics.Statistics) {
	success := false
	e := Event{
		Type:                      ProbeEvent,
		Success:                   &success,
		Message:                   failureMessage(p.opts, probe, s),
		OngoingUnsuccessfulProbes: s.OngoingUnsuccessfulProbes,
	}
	destination(&e, s)

	if p.opts.ShowTimestamp {
		e.Timestamp = probe.StartFormatted()
	}

	p.emit(e)
}

// PrintTotalDownTime prints the downtime that ended with the latest probe.
func (p *eventPrinter) PrintTotalDownTime(s *statistics.Statistics) {
	p.emit(Event{
		Type:         RecoveredEvent,
		Message:      downtimeMessage(s),
		LastDowntime: s.LastDowntime.Seconds(),
	})
}

// PrintError formats and prints an error message.
func (p *eventPrinter) PrintError(format string, args ...any) {
	p.emit(Event{
		Type:    ErrorEvent,
		Message: fmt.Sprintf(format, args...),
	})
}

// PrintStatistics prints all gathered stats.
func (p *eventPrinter) PrintStatistics(s *statistics.Statistics) {
	e := Event{
		Type:      StatisticsEvent,
		RunID:     s.RunID,
		Timestamp: time.Now().Format(time.DateTime),
		Message: fmt.Sprintf("%s - %d probes transmitted on port %d | %d received",
			statisticsTitle(s),
			s.TotalProbes(),
			s.Port,
			s.TotalSuccessfulProbes),
		TotalPackets:            s.TotalProbes(),
		TotalSuccessfulProbes:   s.TotalSuccessfulProbes,
		TotalUnsuccessfulProbes: s.TotalUnsuccessfulProbes,
		TotalPacketLoss:         fmt.Sprintf("%.2f", s.PacketLoss()),
		TotalUptime:             s.TotalUptime.Seconds(),
		TotalDowntime:           s.TotalDowntime.Seconds(),
		TotalDuration:           (s.TotalUptime + s.TotalDowntime).Seconds(),
	}
	destination(&e, s)

	if !s.StartTime.IsZero() {
		e.StartTimestamp = s.StartTimeFormatted()
	}
	if !s.EndTime.IsZero() {
		e.EndTimestamp = s.EndTimeFormatted()
	}
	if !s.LastSuccessfulProbe.IsZero() {
		e.LastSuccessfulProbe = s.LastSuccessfulProbe.Format(time.DateTime)
	}
	if !s.LastUnsuccessfulProbe.IsZero() {
		e.LastUnsuccessfulProbe = s.LastUnsuccessfulProbe.Format(time.DateTime)
	}

	if s.LongestUp.Duration != 0 {
		e.LongestUptime = s.LongestUp.Duration.Seconds()
		e.LongestUptimeStart = s.LongestUp.Start.Format(time.DateTime)
		e.LongestUptimeEnd = s.LongestUp.End.Format(time.DateTime)
	}
	if s.LongestDown.Duration != 0 {
		e.LongestDowntime = s.LongestDown.Duration.Seconds()
		e.LongestDowntimeStart = s.LongestDown.Start.Format(time.DateTime)
		e.LongestDowntimeEnd = s.LongestDown.End.Format(time.DateTime)
	}

	if latency, ok := s.Latency(); ok {
		e.LatencyMin = statistics.FormatMilliseconds(latency.Min)
		e.LatencyAvg = statistics.FormatMilliseconds(latency.Avg)
		e.LatencyMax = statistics.FormatMilliseconds(latency.Max)
	}

	p.emit(e)
}

// JSONPrinter prints every event as one JSON object.
type JSONPrinter struct {
	eventPrinter
}

// NewJSONPrinter creates a new JSONPrinter instance.
// If pretty is true, the JSON output will be formatted with indentation.
func NewJSONPrinter(out io.Writer, pretty bool, opts ...Option) *JSONPrinter {
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "\t")
	}

	return &JSONPrinter{eventPrinter{enc: enc, opts: newOptions(opts)}}
}

// Done is a no-op, every event is written as soon as it is encoded.
func (p *JSONPrinter) Done() {}
