package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// openAt opens (or reopens) the database at path and closes it when the test
// ends.
func openAt(t *testing.T, path string) *DB {
	t.Helper()
	database, err := New(path, nil)
	if err != nil {
		t.Fatalf("New(%s) error = %v", filepath.Base(path), err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNew_SchemaAndPragmas(t *testing.T) {
	database := openAt(t, filepath.Join(t.TempDir(), "casadark.db"))
	conn := database.Conn()

	for _, table := range []string{"projects", "scenes", "jobs", "config", "_migrations"} {
		var found string
		if err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&found); err != nil {
			t.Errorf("missing table %s: %v", table, err)
		}
	}

	pragmas := map[string]string{"journal_mode": "wal", "foreign_keys": "1"}
	for pragma, want := range pragmas {
		var got string
		if err := conn.QueryRow("PRAGMA " + pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", pragma, err)
		}
		if got != want {
			t.Errorf("PRAGMA %s = %s, want %s", pragma, got, want)
		}
	}
}

func TestNew_ReopenKeepsMigrationHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casadark.db")
	if err := openAt(t, path).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	names, err := openAt(t, path).AppliedMigrations(context.Background())
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	want := "001_initial.sql,002_jobs.sql,003_job_settings.sql"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("AppliedMigrations() = %s, want %s", got, want)
	}
}

func TestNew_FailsExportsLeftRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casadark.db")
	first := openAt(t, path)
	_, err := first.Conn().Exec(`INSERT INTO jobs (id, type, status, progress, created_at, updated_at)
		VALUES ('j-running', 'export', 'running', 50, ?, ?), ('j-pending', 'export', 'pending', 0, ?, ?)`,
		FormatTime(time.Now()), FormatTime(time.Now()), FormatTime(time.Now()), FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("seed jobs: %v", err)
	}
	first.Close()

	conn := openAt(t, path).Conn()
	statuses := map[string]string{"j-running": "failed", "j-pending": "pending"}
	for id, want := range statuses {
		var status, msg string
		if err := conn.QueryRow(`SELECT status, COALESCE(error, '') FROM jobs WHERE id = ?`, id).Scan(&status, &msg); err != nil {
			t.Fatalf("load %s: %v", id, err)
		}
		if status != want {
			t.Errorf("%s status = %s, want %s", id, status, want)
		}
		if want == "failed" && msg != InterruptedJobError {
			t.Errorf("%s error = %q, want %q", id, msg, InterruptedJobError)
		}
	}
}

func TestScenesCascadeWithProject(t *testing.T) {
	conn := openAt(t, filepath.Join(t.TempDir(), "casadark.db")).Conn()
	if _, err := conn.Exec(`INSERT INTO projects (id, title, fps, created_at, updated_at)
		VALUES ('p1', 'Casa', 24, datetime('now'), datetime('now'))`); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO scenes (project_id, position, number, text)
		VALUES ('p1', 0, 1, 'Oi.')`); err != nil {
		t.Fatalf("insert scene: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO scenes (project_id, position, number, text)
		VALUES ('p1', 1, 1, 'Dup.')`); err == nil {
		t.Fatal("expected unique violation for duplicate scene number")
	}
	if _, err := conn.Exec(`DELETE FROM projects WHERE id = 'p1'`); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM scenes").Scan(&count); err != nil {
		t.Fatalf("count scenes: %v", err)
	}
	if count != 0 {
		t.Errorf("scene count after project delete = %d, want 0", count)
	}
}

func TestFormatTime_SortsAsText(t *testing.T) {
	earlier := FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	later := FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 120000000, time.FixedZone("BRT", -3*3600)))

	if len(earlier) != len(later) {
		t.Errorf("widths differ: %q vs %q", earlier, later)
	}
	if !strings.HasSuffix(earlier, "Z") || !strings.HasSuffix(later, "Z") {
		t.Errorf("timestamps not in UTC: %q, %q", earlier, later)
	}
	if earlier >= later {
		t.Errorf("%q should sort before %q", earlier, later)
	}
}
