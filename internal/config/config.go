// Package config centralizes pipeline configuration. All tunables are sourced
// from command-line flags with environment-variable fallbacks so the binary
// stays 12-factor friendly; flags are defined first so `-help` shows every
// knob and its default.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-batch_size=1000"})
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds all process configuration. Fields are plain values so the
// struct can be copied freely after construction; nothing mutates it later.
type Config struct {
	// IO locates the three source extracts.
	FlightsCSV  string // flight legs extract
	AirportsCSV string // airport directory
	AirlinesCSV string // airline directory

	// Delimiter optionally fixes the CSV field delimiter for all three
	// extracts. Empty means auto-detect per file.
	Delimiter string

	// DB describes the target store. DSN, when set, overrides the discrete
	// host/port/database/user/password parts.
	Driver   string // "mysql", "postgres", "sqlite" or "mssql"
	DSN      string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// BatchSize is the number of fact rows per bulk insert.
	BatchSize int

	// VerifyThreshold is the minimum flight count for an airport to appear in
	// the busy-airport verification query.
	VerifyThreshold int

	// SkipVerify disables the post-load verification queries.
	SkipVerify bool
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to an
// environment-variable fallback via getenv, and then parsing args.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOr := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOr := func(k string, d bool) bool {
		switch strings.ToLower(getenv(k)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return d
	}

	// Source extracts
	fs.StringVar(&cfg.FlightsCSV, "flights_csv", envOr("FLIGHTS_CSV", "data/flights.csv"), "Path to the flight legs CSV")
	fs.StringVar(&cfg.AirportsCSV, "airports_csv", envOr("AIRPORTS_CSV", "data/airports.csv"), "Path to the airport directory CSV")
	fs.StringVar(&cfg.AirlinesCSV, "airlines_csv", envOr("AIRLINES_CSV", "data/airlines.csv"), "Path to the airline directory CSV")
	fs.StringVar(&cfg.Delimiter, "delimiter", envOr("CSV_DELIMITER", ""), "CSV delimiter; empty = auto-detect per file")

	// DB connectivity
	fs.StringVar(&cfg.Driver, "db_driver", envOr("DB_DRIVER", "mysql"), "Target store: 'mysql', 'postgres', 'sqlite' or 'mssql'")
	fs.StringVar(&cfg.DSN, "dsn", getenv("DB_DSN"), "Full DSN; overrides host/port/database/user/password")
	fs.StringVar(&cfg.Host, "db_host", envOr("DB_HOST", "localhost"), "DB host")
	fs.StringVar(&cfg.Port, "db_port", envOr("DB_PORT", "3306"), "DB port")
	fs.StringVar(&cfg.Database, "db_name", envOr("DB_NAME", "flight_delays_db"), "DB name (file path for sqlite)")
	fs.StringVar(&cfg.User, "db_user", envOr("DB_USER", "root"), "DB user")
	fs.StringVar(&cfg.Password, "db_password", envOr("DB_PASSWORD", ""), "DB password")

	// Throughput & verification
	fs.IntVar(&cfg.BatchSize, "batch_size", intEnvOr("BATCH_SIZE", 50000), "Fact rows per bulk insert")
	fs.IntVar(&cfg.VerifyThreshold, "verify_threshold", intEnvOr("VERIFY_THRESHOLD", 50000), "Minimum flight count for the busy-airport query")
	fs.BoolVar(&cfg.SkipVerify, "skip_verify", boolEnvOr("SKIP_VERIFY", false), "Skip the post-load verification queries")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// Load is the production entry point. It wires the loader to flag.CommandLine,
// reads environment variables via os.Getenv, and parses os.Args[1:].
func Load() *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// ResolveDSN returns the connection string for the configured driver. An
// explicit -dsn wins; otherwise the discrete parts are assembled per driver.
func (c *Config) ResolveDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database), nil
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   c.Host + ":" + c.Port,
			Path:   "/" + c.Database,
		}
		return u.String(), nil
	case "sqlite":
		// Database doubles as the file path for sqlite.
		return c.Database, nil
	case "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + c.Port,
			RawQuery: "database=" + url.QueryEscape(c.Database),
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("unknown db driver %q", c.Driver)
}

// DelimiterRune returns the configured delimiter as a rune, or 0 when the
// delimiter should be auto-detected.
func (c *Config) DelimiterRune() rune {
	if c.Delimiter == "" {
		return 0
	}
	if c.Delimiter == `\t` {
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}
