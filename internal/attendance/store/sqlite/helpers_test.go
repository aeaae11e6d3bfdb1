package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/ravantech1548/Face-recogn-attendance/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production. The connection is closed when the test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Shared cache keeps the database alive while the pool holds a conn.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		name,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}
	if err := db.Migrate(context.Background(), conn, db.SQLite); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn, closed on cleanup.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

// seedStaff inserts an active staff member.
func seedStaff(t *testing.T, conn *sql.DB, id, name, dept string) {
	t.Helper()

	if _, err := conn.ExecContext(context.Background(), `
INSERT INTO staff(staff_id, full_name, department, is_active, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, 1, 0, 0)`, id, name, dept); err != nil {
		t.Fatalf("seedStaff(%s): %v", id, err)
	}
}

func deactivateStaff(t *testing.T, conn *sql.DB, id string) {
	t.Helper()

	if _, err := conn.ExecContext(context.Background(),
		`UPDATE staff SET is_active = 0 WHERE staff_id = ?`, id); err != nil {
		t.Fatalf("deactivateStaff(%s): %v", id, err)
	}
}
