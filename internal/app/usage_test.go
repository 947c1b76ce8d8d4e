package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v45/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.1.9", 1},
		{"2.0.0", "10.0.0", -1},
		{"1.0", "1.0.0", -1},
		{"1.0.0.1", "1.0.0", 1},
		{"", "0.1.0", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compareVersions(tt.v1, tt.v2), "compareVersions(%q, %q)", tt.v1, tt.v2)
	}
}

func newReleaseServer(t *testing.T, tag string) *github.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/"+Owner+"/"+Repo+"/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := github.NewClient(srv.Client())
	u, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.BaseURL = u

	return c
}

func TestCheckForUpdates(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		current string
		want    string
	}{
		{"newer release", "v1.3.0", "1.2.0", "Found newer version 1.3.0"},
		{"same release", "v1.2.0", "1.2.0", "TCPWATCH is on the latest version: 1.2.0"},
		{"local build ahead", "1.1.0", "1.2.0", "Current version 1.2.0 is newer than the latest release 1.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newReleaseServer(t, tt.tag)

			msg, err := checkForUpdates(t.Context(), c, tt.current)
			require.NoError(t, err)
			assert.Contains(t, msg, tt.want)
		})
	}
}

func TestCheckForUpdates_UnexpectedTag(t *testing.T) {
	c := newReleaseServer(t, "nightly")

	_, err := checkForUpdates(t.Context(), c, "1.0.0")
	assert.ErrorContains(t, err, "nightly")
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)

	out := buf.String()
	assert.Contains(t, out, "<hostname/ip> <port number>")
	assert.Contains(t, out, "-c : stop after <n> probes")
	assert.Contains(t, out, "--metrics-addr : serve Prometheus metrics")
	assert.Contains(t, out, "--yaml : output in YAML format.")
}

func TestPrintVersion(t *testing.T) {
	old := Version
	Version = "9.9.9"
	defer func() { Version = old }()

	var buf bytes.Buffer
	PrintVersion(&buf)
	assert.Equal(t, "TCPWATCH version 9.9.9\n", buf.String())
}
