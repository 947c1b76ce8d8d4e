// Package app wires configuration, resolution, probing and reporting into
// the tcpwatch command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/gookit/color"
	"github.com/rs/zerolog"

	"github.com/pouriyajamshidi/tcpwatch"
	"github.com/pouriyajamshidi/tcpwatch/dns"
	"github.com/pouriyajamshidi/tcpwatch/internal/config"
	"github.com/pouriyajamshidi/tcpwatch/internal/logger"
	"github.com/pouriyajamshidi/tcpwatch/metrics"
	"github.com/pouriyajamshidi/tcpwatch/pingers"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

// Run executes the tcpwatch application and returns an exit code
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := ProcessUserInput(args)
	if err != nil {
		return handleError(ctx, err, stdout, stderr)
	}

	log := logger.Init(cfg.Log.Level, cfg.Log.Format)

	port, _ := cfg.PortNumber()

	ip, err := resolveTarget(ctx, cfg, log)
	if err != nil {
		return handleError(ctx, err, stdout, stderr)
	}

	pinger, err := buildPinger(ip, port, cfg)
	if err != nil {
		return handleError(ctx, err, stdout, stderr)
	}

	stats := statistics.New(ip, port)
	if _, err := netip.ParseAddr(cfg.Host); err != nil {
		stats.Hostname = cfg.Host
		stats.DestIsIP = false
	}

	printer, err := tcpwatch.NewPrinter(printerConfig(cfg, stdout))
	if err != nil {
		return handleError(ctx, err, stdout, stderr)
	}
	defer printer.Done()

	trackerOpts := []tcpwatch.TrackerOption{
		tcpwatch.WithPrinter(printer),
		tcpwatch.WithTrackerLogger(log),
	}

	if cfg.MetricsAddr != "" {
		exporter := metrics.NewExporter(&stats)
		trackerOpts = append(trackerOpts, tcpwatch.WithObserver(exporter))

		go func() {
			if err := exporter.Serve(ctx, cfg.MetricsAddr, log); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
	}

	if !cfg.NonInteractive && isTerminal(stdin) {
		requests := make(chan struct{})
		go monitorStdin(ctx, stdin, requests)
		trackerOpts = append(trackerOpts, tcpwatch.WithStatsRequests(requests))
	}

	prober := tcpwatch.NewProber(pinger,
		tcpwatch.WithInterval(cfg.Interval),
		tcpwatch.WithProbeCount(cfg.Count),
		tcpwatch.WithProberLogger(log),
	)
	tracker := tcpwatch.NewTracker(stats, trackerOpts...)

	log.Debug().
		Str("target", stats.Hostname).
		Stringer("ip", ip).
		Uint16("port", port).
		Str("run_id", stats.RunID).
		Msg("starting")

	printer.PrintStart(&stats)

	final := tcpwatch.Watch(ctx, prober, tracker)

	printer.PrintStatistics(&final)

	return 0
}

func resolveTarget(ctx context.Context, cfg *config.Config, log zerolog.Logger) (netip.Addr, error) {
	opts := []dns.ResolverOption{dns.WithLogger(log)}
	if cfg.IPv4 {
		opts = append(opts, dns.WithIPv4Only())
	} else if cfg.IPv6 {
		opts = append(opts, dns.WithIPv6Only())
	}

	return dns.NewResolver(opts...).ResolveHostname(ctx, cfg.Host)
}

func buildPinger(ip netip.Addr, port uint16, cfg *config.Config) (*pingers.TCPPinger, error) {
	opts := []pingers.TCPOptions{pingers.WithTimeout(cfg.Timeout)}

	if cfg.Interface != "" {
		dialer, err := newNetworkInterface(cfg.Interface, cfg.IPv4, cfg.IPv6)
		if err != nil {
			return nil, fmt.Errorf("setup network interface: %w", err)
		}
		opts = append(opts, pingers.WithDialer(dialer))
	}

	return pingers.NewTCPPinger(ip, port, opts...), nil
}

func printerConfig(cfg *config.Config, out io.Writer) tcpwatch.PrinterConfig {
	return tcpwatch.PrinterConfig{
		OutputJSON:        cfg.Output.Format == config.FormatJSON,
		PrettyJSON:        cfg.Output.Pretty,
		OutputYAML:        cfg.Output.Format == config.FormatYAML,
		NoColor:           cfg.Output.Format == config.FormatPlain,
		WithTimestamp:     cfg.Output.Timestamp,
		WithSourceAddress: cfg.Output.SourceAddress,
		ShowFailuresOnly:  cfg.Output.FailuresOnly,
		OutputDBPath:      cfg.Output.DBPath,
		Target:            cfg.Host,
		Port:              cfg.Port,
		Out:               out,
	}
}

func handleError(ctx context.Context, err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, ErrUsageRequested) {
		PrintUsage(stdout)
		return 1
	}

	if errors.Is(err, ErrVersionRequested) {
		PrintVersion(stdout)
		return 0
	}

	if errors.Is(err, ErrUpdateCheckRequested) {
		msg, checkErr := CheckForUpdates(ctx)
		if checkErr != nil {
			printError(stderr, checkErr)
			return 1
		}
		fmt.Fprintln(stdout, msg)
		return 0
	}

	printError(stderr, err)
	return 1
}

func printError(w io.Writer, err error) {
	fmt.Fprint(w, color.Red.Sprintf("%v\n", err))
}
