package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-github/v45/github"
	"github.com/gookit/color"
)

// Version is set at compile time
var Version = ""

const (
	Owner = "pouriyajamshidi"
	Repo  = "tcpwatch"
)

var releaseTag = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)

// PrintUsage prints how tcpwatch should be run
func PrintUsage(w io.Writer) {
	executableName := os.Args[0]

	fmt.Fprint(w, color.LightCyan.Sprintf("\nTCPWATCH version %s\n\n", Version))
	fmt.Fprint(w, color.Red.Sprintf("Try running %s like:\n", executableName))
	fmt.Fprint(w, color.Red.Sprintf("%s <hostname/ip> <port number>. For example:\n", executableName))
	fmt.Fprint(w, color.Red.Sprintf("%s www.example.com 443\n", executableName))
	fmt.Fprint(w, color.Yellow.Sprintf("\n[optional flags]\n"))

	fs, _ := newFlagSet()
	fs.VisitAll(func(f *flag.Flag) {
		flagName := f.Name
		if len(f.Name) > 1 {
			flagName = "-" + flagName
		}

		fmt.Fprint(w, color.Yellow.Sprintf("  -%s : %s\n", flagName, f.Usage))
	})
}

func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := range min(len(parts1), len(parts2)) {
		n1, _ := strconv.Atoi(parts1[i])
		n2, _ := strconv.Atoi(parts2[i])

		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
	}

	// for cases in which version numbers differ in length
	if len(parts1) < len(parts2) {
		return -1
	}

	if len(parts1) > len(parts2) {
		return 1
	}

	return 0
}

// PrintVersion displays the version
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "TCPWATCH version %s\n", Version)
}

// CheckForUpdates checks for newer versions of tcpwatch and returns update message
func CheckForUpdates(ctx context.Context) (string, error) {
	// unauthenticated requests from the same IP are limited to 60 per hour
	return checkForUpdates(ctx, github.NewClient(nil), Version)
}

func checkForUpdates(ctx context.Context, c *github.Client, current string) (string, error) {
	latestRelease, _, err := c.Repositories.GetLatestRelease(ctx, Owner, Repo)
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}

	latestTagName := latestRelease.GetTagName()
	latestVersion := releaseTag.FindStringSubmatch(latestTagName)

	if len(latestVersion) == 0 {
		return "", fmt.Errorf("version name does not match expected format: %s", latestTagName)
	}

	switch compareVersions(current, latestVersion[1]) {
	case -1:
		return fmt.Sprintf("Found newer version %s\nPlease update TCPWATCH from the URL below:\nhttps://github.com/%s/%s/releases/tag/%s",
			latestVersion[1], Owner, Repo, latestTagName), nil
	case 1:
		return fmt.Sprintf("Current version %s is newer than the latest release %s",
			current, latestVersion[1]), nil
	default:
		return fmt.Sprintf("TCPWATCH is on the latest version: %s", current), nil
	}
}
