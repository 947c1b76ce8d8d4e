package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/netip"
	"slices"

	"github.com/pouriyajamshidi/tcpwatch/internal/config"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

var (
	// ErrUsageRequested indicates usage help was requested
	ErrUsageRequested = errors.New("usage requested")

	// ErrVersionRequested indicates version display was requested
	ErrVersionRequested = errors.New("version requested")

	// ErrUpdateCheckRequested indicates update check was requested
	ErrUpdateCheckRequested = errors.New("update check requested")
)

type flags struct {
	useIPv4           *bool
	useIPv6           *bool
	probesBeforeQuit  *uint
	showTimestamp     *bool
	outputJSON        *bool
	prettyJSON        *bool
	outputYAML        *bool
	noColor           *bool
	saveToDB          *string
	interval          *float64
	timeout           *float64
	interfaceName     *string
	showSourceAddress *bool
	showFailuresOnly  *bool
	metricsAddr       *string
	configPath        *string
	logLevel          *string
	nonInteractive    *bool
	showVer           *bool
	checkUpdates      *bool
}

func newFlagSet() (*flag.FlagSet, *flags) {
	fs := flag.NewFlagSet("tcpwatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		// no-op, usage is printed by handleError
	}

	f := &flags{
		useIPv4: fs.Bool("4", false, "only use IPv4 to initiate probes."),
		useIPv6: fs.Bool("6", false, "only use IPv6 to initiate probes."),
		probesBeforeQuit: fs.Uint("c",
			0,
			"stop after <n> probes, regardless of the result. By default, no limit will be applied."),
		showTimestamp: fs.Bool("D", false, "show timestamp for each probe in the output."),
		outputJSON:    fs.Bool("j", false, "output in JSON format."),
		prettyJSON: fs.Bool("pretty",
			false,
			"use indentation when using json output format. No effect without the '-j' flag."),
		outputYAML: fs.Bool("yaml", false, "output in YAML format."),
		noColor:    fs.Bool("no-color", false, "do not colorize output."),
		saveToDB:   fs.String("db", "", "path and file name to store the final statistics to a sqlite3 database."),
		interval: fs.Float64("i",
			1,
			"interval between sending probes. Real number allowed with dot as a decimal separator. The default is one second"),
		timeout: fs.Float64("t",
			0,
			"time to wait for a response, in seconds. Real number allowed. 0 means infinite timeout."),
		interfaceName: fs.String("I",
			"",
			"enforce using a specific interface name or IP address to initiate probes."),
		showSourceAddress: fs.Bool("show-source-address", false, "show source address and port used for probes."),
		showFailuresOnly:  fs.Bool("show-failures-only", false, "show only the failed probes."),
		metricsAddr:       fs.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9115."),
		configPath:        fs.String("config", "", "path to a YAML configuration file."),
		logLevel:          fs.String("log-level", "", "diagnostic log level: debug, info, warn or error."),
		nonInteractive: fs.Bool("non-interactive",
			false,
			"let tcpwatch run in the background, for instance using nohup or disown"),
		showVer:      fs.Bool("v", false, "show version and exit."),
		checkUpdates: fs.Bool("u", false, "check for updates and exit."),
	}

	return fs, f
}

// valueFlags lists the flags that consume the following argument.
var valueFlags = []string{"c", "t", "i", "I", "db", "metrics-addr", "config", "log-level"}

// permuteArgs permute args for flag parsing stops just before the first non-flag argument.
// see: https://pkg.go.dev/flag
func permuteArgs(args []string) error {
	var flagArgs []string
	var nonFlagArgs []string

	for i := 0; i < len(args); i++ {
		v := args[i]
		if len(v) > 1 && v[0] == '-' {
			optionName := v[1:]
			if optionName[0] == '-' {
				optionName = optionName[1:]
			}

			if !slices.Contains(valueFlags, optionName) {
				flagArgs = append(flagArgs, v)
				continue
			}

			// out of index
			if len(args) <= i+1 {
				return ErrUsageRequested
			}
			// the next flag has come
			optionVal := args[i+1]
			if len(optionVal) > 0 && optionVal[0] == '-' {
				return ErrUsageRequested
			}
			flagArgs = append(flagArgs, args[i:i+2]...)
			i++
		} else {
			nonFlagArgs = append(nonFlagArgs, v)
		}
	}
	permutedArgs := slices.Concat(flagArgs, nonFlagArgs)

	// replace args in place
	copy(args, permutedArgs)

	return nil
}

// ProcessUserInput parses command-line flags on top of the loaded
// configuration. Returns ErrUsageRequested, ErrVersionRequested, or
// ErrUpdateCheckRequested for special control flow.
func ProcessUserInput(args []string) (*config.Config, error) {
	fs, f := newFlagSet()

	args = slices.Clone(args)
	if err := permuteArgs(args); err != nil {
		return nil, err
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsageRequested, err)
	}

	if *f.showVer {
		return nil, ErrVersionRequested
	}

	if *f.checkUpdates {
		return nil, ErrUpdateCheckRequested
	}

	positional := fs.Args()
	if len(positional) != 0 && len(positional) != 2 {
		return nil, ErrUsageRequested
	}

	cfg, err := config.Load(*f.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(positional) == 2 {
		cfg.Host = positional[0]
		cfg.Port = positional[1]
	}

	// only flags given on the command line override the configuration
	fs.Visit(func(fl *flag.Flag) {
		applyFlag(cfg, f, fl.Name)
	})

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingHost) || errors.Is(err, config.ErrIPVersionConflict) {
			return nil, fmt.Errorf("%w: %w", ErrUsageRequested, err)
		}
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyFlag(cfg *config.Config, f *flags, name string) {
	switch name {
	case "4":
		cfg.IPv4 = *f.useIPv4
	case "6":
		cfg.IPv6 = *f.useIPv6
	case "c":
		cfg.Count = *f.probesBeforeQuit
	case "D":
		cfg.Output.Timestamp = *f.showTimestamp
	case "j":
		if *f.outputJSON {
			cfg.Output.Format = config.FormatJSON
		}
	case "pretty":
		cfg.Output.Pretty = *f.prettyJSON
	case "yaml":
		if *f.outputYAML && !*f.outputJSON {
			cfg.Output.Format = config.FormatYAML
		}
	case "no-color":
		if *f.noColor && cfg.Output.Format == config.FormatColor {
			cfg.Output.Format = config.FormatPlain
		}
	case "db":
		cfg.Output.DBPath = *f.saveToDB
	case "i":
		cfg.Interval = statistics.SecondsToDuration(*f.interval)
	case "t":
		cfg.Timeout = statistics.SecondsToDuration(*f.timeout)
	case "I":
		cfg.Interface = *f.interfaceName
	case "show-source-address":
		cfg.Output.SourceAddress = *f.showSourceAddress
	case "show-failures-only":
		cfg.Output.FailuresOnly = *f.showFailuresOnly
	case "metrics-addr":
		cfg.MetricsAddr = *f.metricsAddr
	case "log-level":
		cfg.Log.Level = *f.logLevel
	case "non-interactive":
		cfg.NonInteractive = *f.nonInteractive
	}
}

// newNetworkInterface uses the given IP address or a NIC to find the first IP address
// to use as the source of the probes. The given IP address must exist on the system.
func newNetworkInterface(ipAddress string, useIPv4, useIPv6 bool) (*net.Dialer, error) {
	interfaceAddress := net.ParseIP(ipAddress)
	isInvalid := true

	if interfaceAddress != nil {
		addrs, err := net.InterfaceAddrs()
		if err != nil {
			return nil, fmt.Errorf("get ip addresses: %w", err)
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if ok && interfaceAddress.Equal(ipNet.IP) {
				isInvalid = false
				break
			}
		}
	} else { // we are probably given an interface name
		iface, err := net.InterfaceByName(ipAddress)
		if err != nil {
			return nil, fmt.Errorf("interface %s not found: %w", ipAddress, err)
		}

		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("get interface addresses: %w", err)
		}

		interfaceAddress = pickInterfaceAddress(addrs, useIPv4, useIPv6)
		if interfaceAddress == nil {
			return nil, fmt.Errorf("no usable ip address on interface %s", ipAddress)
		}
		isInvalid = false
	}

	if isInvalid {
		return nil, fmt.Errorf("ip address %s not assigned to any interface", ipAddress)
	}

	return &net.Dialer{
		LocalAddr: &net.TCPAddr{
			IP: interfaceAddress,
		},
	}, nil
}

// pickInterfaceAddress returns the first address of the requested family.
// Link-local IPv6 addresses need a zone and are skipped.
func pickInterfaceAddress(addrs []net.Addr, useIPv4, useIPv6 bool) net.IP {
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		nipAddr, ok := netip.AddrFromSlice(ipNet.IP)
		if !ok {
			continue
		}
		nipAddr = nipAddr.Unmap()

		if nipAddr.Is4() && !useIPv6 {
			return ipNet.IP
		}
		if nipAddr.Is6() && !useIPv4 && !nipAddr.IsLinkLocalUnicast() {
			return ipNet.IP
		}
	}
	return nil
}
