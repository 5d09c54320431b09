package config

import (
	"flag"
	"strings"
	"testing"
)

func load(t *testing.T, env map[string]string, args ...string) *Config {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	getenv := func(k string) string { return env[k] }
	return LoadFromArgs(fs, getenv, args)
}

func TestDefaults(t *testing.T) {
	cfg := load(t, nil)
	if cfg.Driver != "mysql" {
		t.Fatalf("default driver = %q; want mysql", cfg.Driver)
	}
	if cfg.BatchSize != 50000 {
		t.Fatalf("default batch_size = %d; want 50000", cfg.BatchSize)
	}
	if cfg.Database != "flight_delays_db" {
		t.Fatalf("default db_name = %q", cfg.Database)
	}
	if cfg.SkipVerify {
		t.Fatalf("skip_verify defaults to true")
	}
}

// TestPrecedence verifies env seeds the default and an explicit flag wins.
func TestPrecedence(t *testing.T) {
	env := map[string]string{
		"DB_DRIVER":  "postgres",
		"BATCH_SIZE": "1000",
		"DB_HOST":    "db.internal",
	}
	cfg := load(t, env, "-batch_size=250")
	if cfg.Driver != "postgres" {
		t.Fatalf("driver = %q; want env value postgres", cfg.Driver)
	}
	if cfg.Host != "db.internal" {
		t.Fatalf("host = %q; want env value", cfg.Host)
	}
	if cfg.BatchSize != 250 {
		t.Fatalf("batch_size = %d; flag should beat env", cfg.BatchSize)
	}
}

func TestBoolEnv(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "on"} {
		cfg := load(t, map[string]string{"SKIP_VERIFY": v})
		if !cfg.SkipVerify {
			t.Fatalf("SKIP_VERIFY=%q not recognized as true", v)
		}
	}
	cfg := load(t, map[string]string{"SKIP_VERIFY": "garbage"})
	if cfg.SkipVerify {
		t.Fatalf("unparseable SKIP_VERIFY should keep the default")
	}
}

func TestResolveDSN(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  Config{Driver: "mysql", DSN: "user:pw@tcp(h:1)/db"},
			want: "user:pw@tcp(h:1)/db",
		},
		{
			name: "mysql",
			cfg:  Config{Driver: "mysql", Host: "localhost", Port: "3306", Database: "flight_delays_db", User: "root", Password: "pw"},
			want: "root:pw@tcp(localhost:3306)/flight_delays_db?parseTime=true",
		},
		{
			name: "postgres",
			cfg:  Config{Driver: "postgres", Host: "localhost", Port: "5432", Database: "marts", User: "etl", Password: "pw"},
			want: "postgres://etl:pw@localhost:5432/marts",
		},
		{
			name: "sqlite uses the db name as path",
			cfg:  Config{Driver: "sqlite", Database: "out/flights.db"},
			want: "out/flights.db",
		},
		{
			name: "mssql",
			cfg:  Config{Driver: "mssql", Host: "localhost", Port: "1433", Database: "marts", User: "sa", Password: "pw"},
			want: "sqlserver://sa:pw@localhost:1433?database=marts",
		},
	}
	for _, tc := range cases {
		got, err := tc.cfg.ResolveDSN()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: dsn = %q; want %q", tc.name, got, tc.want)
		}
	}

	if _, err := (&Config{Driver: "oracle"}).ResolveDSN(); err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("unknown driver should error with the driver name, got %v", err)
	}
}

func TestDelimiterRune(t *testing.T) {
	cases := []struct {
		in   string
		want rune
	}{
		{"", 0},
		{",", ','},
		{";", ';'},
		{`\t`, '\t'},
	}
	for _, tc := range cases {
		c := Config{Delimiter: tc.in}
		if got := c.DelimiterRune(); got != tc.want {
			t.Fatalf("DelimiterRune(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
