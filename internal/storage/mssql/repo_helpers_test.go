package mssql

import (
	"context"
	"testing"
)

func TestMsIdent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"f_flights", "[f_flights]"},
		{"weird]name", "[weird]]name]"},
	}
	for _, tc := range cases {
		if got := msIdent(tc.in); got != tc.want {
			t.Fatalf("msIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestMsFQN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"f_flights", "[f_flights]"},
		{"dbo.f_flights", "[dbo].[f_flights]"},
	}
	for _, tc := range cases {
		if got := msFQN(tc.in); got != tc.want {
			t.Fatalf("msFQN(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewRepositoryRejectsBadDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), Config{DSN: "://not-a-dsn"}); err == nil {
		t.Fatalf("expected DSN parse error")
	}
}
