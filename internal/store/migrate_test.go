package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenPathRecordsSchemaVersion(t *testing.T) {
	st, err := OpenPath(filepath.Join(t.TempDir(), "verbatim.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer st.Close()

	var version int
	if err := st.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	scripts, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(scripts) == 0 || version != len(scripts) {
		t.Fatalf("user_version = %d, want %d", version, len(scripts))
	}
}

func TestOpenPathRefusesNewerDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verbatim.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	_ = db.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestForeignKeysEnforcedOnEveryConnection(t *testing.T) {
	st, err := OpenPath(filepath.Join(t.TempDir(), "verbatim.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer st.Close()
	st.db.SetMaxOpenConns(4)

	ctx := context.Background()
	conns := make([]*sql.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := st.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn failed: %v", err)
		}
		conns = append(conns, conn)
	}
	for i, conn := range conns {
		var enabled int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if enabled != 1 {
			t.Fatalf("conn %d: foreign_keys = %d", i, enabled)
		}
		_ = conn.Close()
	}
}

func TestIsBusy(t *testing.T) {
	if isBusy(nil) {
		t.Fatal("nil is not busy")
	}
	if !isBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("expected busy message to match")
	}
	if isBusy(errors.New("UNIQUE constraint failed")) {
		t.Fatal("constraint errors are not busy")
	}
}

func TestWithBusyRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := withBusyRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got %v after %d", err, calls)
	}
}
