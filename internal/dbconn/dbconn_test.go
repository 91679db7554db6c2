package dbconn

import (
	"context"
	"strings"
	"testing"

	"dbmover/internal/dbtest"
)

func TestOpenValidation(t *testing.T) {
	ctx := context.Background()

	if _, _, err := Open(ctx, Config{Driver: "", DSN: "x"}); err == nil {
		t.Fatal("expected error for empty driver")
	}
	if _, _, err := Open(ctx, Config{Driver: "no-such-driver", DSN: "x"}); err == nil {
		t.Fatal("expected error for unregistered driver")
	}
}

func TestOpenAndClose(t *testing.T) {
	dbtest.NewStore("dbconn-open")

	db, closeFn, err := Open(context.Background(), Config{Driver: "dbtest", DSN: "dbconn-open"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if db == nil || closeFn == nil {
		t.Fatal("Open returned nil handle or close func")
	}
	closeFn()
}

func TestOpenUnknownDSNFailsPing(t *testing.T) {
	// No store registered behind this DSN: the open-time ping must fail
	// instead of deferring the error to first query.
	_, _, err := Open(context.Background(), Config{Driver: "dbtest", DSN: "dbconn-missing"})
	if err == nil {
		t.Fatal("expected ping failure for unknown DSN")
	}
}

func TestExpandDSN(t *testing.T) {
	plain, err := ExpandDSN("file:out.db")
	if err != nil || plain != "file:out.db" {
		t.Fatalf("plain DSN: %q, %v", plain, err)
	}

	t.Setenv("DBMOVER_TEST_DSN", "postgres://u:p@h/db")
	got, err := ExpandDSN("env:DBMOVER_TEST_DSN")
	if err != nil {
		t.Fatalf("ExpandDSN: %v", err)
	}
	if got != "postgres://u:p@h/db" {
		t.Fatalf("ExpandDSN = %q", got)
	}

	if _, err := ExpandDSN("env:DBMOVER_TEST_UNSET"); err == nil {
		t.Fatal("expected error for unset env var")
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver string
		n      int
		want   string
	}{
		{driver: "pgx", n: 3, want: "$1, $2, $3"},
		{driver: "postgres", n: 2, want: "$1, $2"},
		{driver: "sqlserver", n: 2, want: "@p1, @p2"},
		{driver: "mysql", n: 3, want: "?, ?, ?"},
		{driver: "sqlite", n: 1, want: "?"},
		{driver: "dbtest", n: 2, want: "?, ?"},
	}
	for _, tc := range tests {
		t.Run(tc.driver, func(t *testing.T) {
			if got := Placeholders(tc.driver, tc.n); got != tc.want {
				t.Fatalf("Placeholders(%q, %d) = %q; want %q", tc.driver, tc.n, got, tc.want)
			}
		})
	}
}

func TestPlaceholdersZero(t *testing.T) {
	t.Parallel()

	if got := Placeholders("pgx", 0); got != "" {
		t.Fatalf("Placeholders(pgx, 0) = %q; want empty", got)
	}
	if !strings.Contains(Placeholders("pgx", 12), "$12") {
		t.Fatal("multi-digit ordinal missing")
	}
}
