package mysql

import (
	"context"
	"testing"
)

func TestMyIdent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"f_flights", "`f_flights`"},
		{"airline_id", "`airline_id`"},
		{"tick`name", "`tick``name`"},
	}
	for _, tc := range cases {
		if got := myIdent(tc.in); got != tc.want {
			t.Fatalf("myIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestMyFQN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"f_flights", "`f_flights`"},
		{"marts.f_flights", "`marts`.`f_flights`"},
	}
	for _, tc := range cases {
		if got := myFQN(tc.in); got != tc.want {
			t.Fatalf("myFQN(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("d_airlines", []string{"airline_id", "iata_code", "airline"}, 2)
	want := "INSERT INTO `d_airlines` (`airline_id`,`iata_code`,`airline`) VALUES (?,?,?),(?,?,?)"
	if got != want {
		t.Fatalf("buildInsertSQL =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildInsertSQLSingleRow(t *testing.T) {
	got := buildInsertSQL("t", []string{"a"}, 1)
	if got != "INSERT INTO `t` (`a`) VALUES (?)" {
		t.Fatalf("buildInsertSQL = %q", got)
	}
}

func TestNewRepositoryRejectsBadDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"}); err == nil {
		t.Fatalf("expected DSN parse error")
	}
}
