package migrations

import (
	"errors"
	"strings"
	"testing"
)

func TestLoad_EmbeddedFiles(t *testing.T) {
	for _, tc := range []struct {
		dir   string
		table string
	}{
		{"postgres", "walkforward_runs"},
		{"clickhouse", "price_series"},
	} {
		fsys := PostgresFS
		if tc.dir == "clickhouse" {
			fsys = ClickhouseFS
		}
		files, err := load(fsys, tc.dir)
		if err != nil {
			t.Fatalf("load %s: %v", tc.dir, err)
		}
		if len(files) == 0 {
			t.Fatalf("no %s migrations embedded", tc.dir)
		}
		if !strings.Contains(files[0].SQL, tc.table) {
			t.Errorf("%s: first migration does not create %s", tc.dir, tc.table)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header
CREATE TABLE a (x Int8) ENGINE = Memory;

-- second
CREATE TABLE b (y Int8) ENGINE = Memory;
`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("Expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[1], "CREATE TABLE b") {
		t.Errorf("Unexpected second statement %q", stmts[1])
	}
}

func TestEmbeddedClickhouseMigrationsSplit(t *testing.T) {
	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, f := range files {
		if err := validateNoSemicolonInStrings(f.SQL); err != nil {
			t.Errorf("%s: %v", f.Name, err)
		}
		for _, stmt := range splitStatements(f.SQL) {
			if !strings.HasPrefix(stmt, "CREATE") {
				t.Errorf("%s: unexpected statement %q", f.Name, stmt)
			}
		}
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	tests := []struct {
		sql     string
		wantErr bool
	}{
		{"SELECT 1;", false},
		{"SELECT 'a;b';", true},
		{"SELECT 'it''s';", false},
		{"SELECT 'it'';s';", true},
	}
	for _, tc := range tests {
		err := validateNoSemicolonInStrings(tc.sql)
		if tc.wantErr && !errors.Is(err, ErrSemicolonInLiteral) {
			t.Errorf("%q: expected ErrSemicolonInLiteral, got %v", tc.sql, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%q: unexpected error %v", tc.sql, err)
		}
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://user:pw@localhost:9000/lab")
	if err != nil || db != "lab" {
		t.Errorf("got %q, %v", db, err)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for DSN without database")
	}
}
