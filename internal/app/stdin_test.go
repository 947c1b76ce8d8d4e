package app

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitorStdin(t *testing.T) {
	requests := make(chan struct{}, 10)

	monitorStdin(t.Context(), strings.NewReader("\nstats\n\r\n\nignored"), requests)

	assert.Len(t, requests, 3)
}

func TestMonitorStdin_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	requests := make(chan struct{})

	done := make(chan struct{})
	go func() {
		monitorStdin(ctx, strings.NewReader("\n\n"), requests)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitorStdin did not return after cancellation")
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	assert.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f), "regular files are not terminals")
}
