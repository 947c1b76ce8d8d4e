package printers_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pouriyajamshidi/tcpwatch/internal/testdata"
	"github.com/pouriyajamshidi/tcpwatch/printers"
)

func decodeYAMLEvents(t *testing.T, r io.Reader) []printers.Event {
	t.Helper()

	var events []printers.Event
	dec := yaml.NewDecoder(r)
	for {
		var e printers.Event
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func TestYAMLPrinter_Session(t *testing.T) {
	var buf bytes.Buffer
	p := printers.NewYAMLPrinter(&buf, printers.WithTimestamp())
	stats := testdata.HostnameStats()

	p.PrintStart(&stats)

	success := testdata.SuccessProbe(time.Millisecond)
	stats.Track(success)
	p.PrintProbeSuccess(success, &stats)

	failure := testdata.FailureProbe()
	stats.Track(failure)
	p.PrintProbeFailure(failure, &stats)

	p.PrintStatistics(&stats)
	p.Done()

	assert.Contains(t, buf.String(), "---\n", "events must be separate documents")

	events := decodeYAMLEvents(t, &buf)
	require.Len(t, events, 4)

	assert.Equal(t, printers.StartEvent, events[0].Type)
	assert.Equal(t, "example.com", events[0].Hostname)

	assert.Equal(t, printers.ProbeEvent, events[1].Type)
	require.NotNil(t, events[1].Success)
	assert.True(t, *events[1].Success)
	assert.Equal(t, "2024-01-15 10:30:45", events[1].Timestamp)

	assert.Equal(t, printers.ProbeEvent, events[2].Type)
	require.NotNil(t, events[2].Success)
	assert.False(t, *events[2].Success)

	assert.Equal(t, printers.StatisticsEvent, events[3].Type)
	assert.Equal(t, uint(2), events[3].TotalPackets)
	assert.Equal(t, "50.00", events[3].TotalPacketLoss)
	assert.Equal(t, "1.000", events[3].LatencyAvg)
}

func TestYAMLPrinter_FailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	p := printers.NewYAMLPrinter(&buf, printers.WithFailuresOnly())
	stats := testdata.IPStats()

	success := testdata.SuccessProbe(time.Millisecond)
	stats.Track(success)
	p.PrintProbeSuccess(success, &stats)
	p.Done()

	assert.Empty(t, decodeYAMLEvents(t, &buf))
}
