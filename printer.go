package tcpwatch

import (
	"errors"
	"io"
	"os"

	"github.com/pouriyajamshidi/tcpwatch/printers"
	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

var (
	_ Printer = (*printers.ColorPrinter)(nil)
	_ Printer = (*printers.PlainPrinter)(nil)
	_ Printer = (*printers.JSONPrinter)(nil)
	_ Printer = (*printers.YAMLPrinter)(nil)
	_ Printer = (*printers.DatabasePrinter)(nil)
)

// ErrPrettyWithoutJSON is returned when pretty printing is requested without JSON output.
var ErrPrettyWithoutJSON = errors.New("--pretty has no effect without the -j flag")

// Printer defines a set of methods that any printer implementation must provide.
// Printers are responsible for outputting information, but should not modify data or perform calculations.
type Printer interface {
	// PrintStart prints the first message to indicate the target's address and port.
	// This message is printed only once, at the very beginning.
	PrintStart(s *statistics.Statistics)

	// PrintProbeSuccess is called after each successful probe, once the
	// statistics already include it.
	PrintProbeSuccess(p statistics.Probe, s *statistics.Statistics)

	// PrintProbeFailure is called after each failed probe, once the
	// statistics already include it.
	PrintProbeFailure(p statistics.Probe, s *statistics.Statistics)

	// PrintTotalDownTime should print a downtime duration.
	//
	// This is being called when host was unavailable for some time
	// but the latest probe was successful (became available).
	PrintTotalDownTime(s *statistics.Statistics)

	// PrintStatistics should print a message with
	// helpful statistics information.
	//
	// This is being called on exit and when user hits "Enter".
	PrintStatistics(s *statistics.Statistics)

	// PrintError should print an error message.
	// Printer should also apply \n to the given string, if needed.
	PrintError(format string, args ...any)

	// Done flushes and releases whatever the printer holds.
	Done()
}

// PrinterConfig holds all configuration options for Printer creation
type PrinterConfig struct {
	OutputJSON        bool
	PrettyJSON        bool
	OutputYAML        bool
	NoColor           bool
	WithTimestamp     bool
	WithSourceAddress bool
	ShowFailuresOnly  bool
	OutputDBPath      string
	Target            string
	Port              string
	Out               io.Writer
}

// NewPrinter creates and returns an appropriate printer based on configuration
func NewPrinter(cfg PrinterConfig) (Printer, error) {
	if cfg.PrettyJSON && !cfg.OutputJSON {
		return nil, ErrPrettyWithoutJSON
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	var opts []printers.Option
	if cfg.WithTimestamp {
		opts = append(opts, printers.WithTimestamp())
	}
	if cfg.WithSourceAddress {
		opts = append(opts, printers.WithSourceAddress())
	}
	if cfg.ShowFailuresOnly {
		opts = append(opts, printers.WithFailuresOnly())
	}

	switch {
	case cfg.OutputJSON:
		return printers.NewJSONPrinter(out, cfg.PrettyJSON, opts...), nil

	case cfg.OutputYAML:
		return printers.NewYAMLPrinter(out, opts...), nil

	case cfg.OutputDBPath != "":
		return printers.NewDatabasePrinter(out, cfg.Target, cfg.Port, cfg.OutputDBPath, opts...)

	case cfg.NoColor:
		return printers.NewPlainPrinter(out, opts...), nil

	default:
		return printers.NewColorPrinter(out, opts...), nil
	}
}
