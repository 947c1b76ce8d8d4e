package printers

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/gookit/color"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

const (
	dataTableSchema = `CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL,
    timestamp DATETIME,
    ip_address TEXT,
    hostname TEXT,
    port INTEGER,

    latency_min REAL,
    latency_avg REAL,
    latency_max REAL,

    total_duration TEXT,
    start_time DATETIME,
    end_time DATETIME,

    never_succeed_probe INTEGER, -- 1 if a probe never succeeded
    never_failed_probe INTEGER, -- 1 if a probe never failed
    last_successful_probe DATETIME,
    last_unsuccessful_probe DATETIME,

    longest_uptime TEXT,
    longest_uptime_start DATETIME,
    longest_uptime_end DATETIME,

    longest_downtime TEXT,
    longest_downtime_start DATETIME,
    longest_downtime_end DATETIME,

    total_packets INTEGER,
    total_packet_loss REAL,
    total_successful_probes INTEGER,
    total_unsuccessful_probes INTEGER,

    total_uptime TEXT,
    total_downtime TEXT
	);`

	// SQL statement for inserting statistics into the table
	statSaveSchema = `INSERT INTO %s (
	run_id,
	timestamp,
	ip_address,
	hostname,
	port,
	total_successful_probes,
	total_unsuccessful_probes,
	never_succeed_probe,
	never_failed_probe,
	last_successful_probe,
	last_unsuccessful_probe,
	total_packets,
	total_packet_loss,
	total_uptime,
	total_downtime,
	longest_uptime,
	longest_uptime_start,
	longest_uptime_end,
	longest_downtime,
	longest_downtime_start,
	longest_downtime_end,
	latency_min,
	latency_avg,
	latency_max,
	start_time,
	end_time,
	total_duration) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
)

// DatabasePrinter stores every statistics report as one row of a SQLite table.
// Individual probes are never written.
type DatabasePrinter struct {
	Conn      *sqlite.Conn
	DBPath    string
	TableName string
	out       io.Writer
}

// NewDatabasePrinter opens (or creates) the database at path and creates the
// data table for target and port. Progress messages are written to out.
func NewDatabasePrinter(out io.Writer, target, port, path string, _ ...Option) (*DatabasePrinter, error) {
	filename := addDBExtension(path)

	conn, err := sqlite.OpenConn(filename, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return nil, fmt.Errorf("creating the database %q: %w", filename, err)
	}

	tableName := sanitizeTableName(target, port, time.Now())

	err = sqlitex.Execute(conn, fmt.Sprintf(dataTableSchema, tableName), &sqlitex.ExecOptions{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating the data table: %w", err)
	}

	return &DatabasePrinter{
		Conn:      conn,
		DBPath:    filename,
		TableName: tableName,
		out:       out,
	}, nil
}

func addDBExtension(filename string) string {
	if strings.HasSuffix(filename, ".db") {
		return filename
	}

	return filename + ".db"
}

// sanitizeTableName formats the table name as
// "example_com_port__year_month_day_hour_minute_sec".
// A table name can't have '.', '-' or ':' and can't start with a number.
func sanitizeTableName(hostname, port string, now time.Time) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", ":", "_", " ", "_")

	tableName := fmt.Sprintf("%s_%s__%s",
		replacer.Replace(hostname),
		port,
		replacer.Replace(now.Format(time.DateTime)),
	)

	if unicode.IsNumber(rune(tableName[0])) {
		tableName = "_" + tableName
	}

	return tableName
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateTime)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// PrintStart prints where the statistics are going to be saved.
func (db *DatabasePrinter) PrintStart(s *statistics.Statistics) {
	fmt.Fprint(db.out, color.LightCyan.Sprintf("%s - saving statistics to: %s\n", startMessage(s), db.DBPath))
}

// PrintProbeSuccess does nothing: probe history is not persisted.
func (db *DatabasePrinter) PrintProbeSuccess(_ statistics.Probe, _ *statistics.Statistics) {}

// PrintProbeFailure does nothing: probe history is not persisted.
func (db *DatabasePrinter) PrintProbeFailure(_ statistics.Probe, _ *statistics.Statistics) {}

// PrintTotalDownTime does nothing: the downtime is part of the statistics row.
func (db *DatabasePrinter) PrintTotalDownTime(_ *statistics.Statistics) {}

// saveStats writes one statistics row.
func (db *DatabasePrinter) saveStats(s *statistics.Statistics) error {
	var latencyMin, latencyAvg, latencyMax any
	if latency, ok := s.Latency(); ok {
		latencyMin = statistics.DurationToMilliseconds(latency.Min)
		latencyAvg = statistics.DurationToMilliseconds(latency.Avg)
		latencyMax = statistics.DurationToMilliseconds(latency.Max)
	}

	// "0s" rather than empty, so the column always parses as a duration.
	longestUptime, longestDowntime := "0s", "0s"
	if s.LongestUp.Duration != 0 {
		longestUptime = s.LongestUp.Duration.String()
	}
	if s.LongestDown.Duration != 0 {
		longestDowntime = s.LongestDown.Duration.String()
	}

	args := []any{
		s.RunID,
		time.Now().Format(time.DateTime),
		s.IP.String(),
		s.Hostname,
		int64(s.Port),
		int64(s.TotalSuccessfulProbes),
		int64(s.TotalUnsuccessfulProbes),
		boolToInt(s.LastSuccessfulProbe.IsZero()),
		boolToInt(s.LastUnsuccessfulProbe.IsZero()),
		formatTime(s.LastSuccessfulProbe),
		formatTime(s.LastUnsuccessfulProbe),
		int64(s.TotalProbes()),
		s.PacketLoss(),
		s.TotalUptime.String(),
		s.TotalDowntime.String(),
		longestUptime,
		formatTime(s.LongestUp.Start),
		formatTime(s.LongestUp.End),
		longestDowntime,
		formatTime(s.LongestDown.Start),
		formatTime(s.LongestDown.End),
		latencyMin,
		latencyAvg,
		latencyMax,
		formatTime(s.StartTime),
		formatTime(s.EndTime),
		s.TotalDuration().String(),
	}

	return sqlitex.Execute(
		db.Conn,
		fmt.Sprintf(statSaveSchema, db.TableName),
		&sqlitex.ExecOptions{Args: args},
	)
}

// PrintStatistics saves the statistics to the database.
// A failed write is reported but does not stop probing.
func (db *DatabasePrinter) PrintStatistics(s *statistics.Statistics) {
	if err := db.saveStats(s); err != nil {
		db.PrintError("Error while writing stats to the database %q: %s", db.DBPath, err)
		return
	}

	fmt.Fprint(db.out, color.Yellow.Sprintf("\nStatistics for %q have been saved to %q in the table %q\n",
		s.Hostname,
		db.DBPath,
		db.TableName))
}

// PrintError prints an error message in red.
func (db *DatabasePrinter) PrintError(format string, args ...any) {
	fmt.Fprint(db.out, color.Red.Sprintf(format+"\n", args...))
}

// Done closes the database connection.
func (db *DatabasePrinter) Done() {
	if err := db.Conn.Close(); err != nil {
		db.PrintError("Error while closing the database %q: %s", db.DBPath, err)
	}
}
