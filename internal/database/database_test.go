package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	db := openTestDB(t)

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Errorf("Failed to query sessions table: %v", err)
	}
	if err := db.db.QueryRow("SELECT COUNT(*) FROM level_visits").Scan(&count); err != nil {
		t.Errorf("Failed to query level_visits table: %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "dir", "journal.db")

	db, err := Open(nestedPath)
	if err != nil {
		t.Fatalf("Failed to open database with nested path: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := db.CreateSession(ctx, 42)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	s, err := db.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed after reopen: %v", err)
	}
	if s.BaseSeed != 42 {
		t.Errorf("BaseSeed = %d, want 42", s.BaseSeed)
	}
}

func TestOpenWithConfigRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "journal.db"))
	cfg.Driver = "mysql"

	if _, err := OpenWithConfig(cfg); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestCreateAndGetSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.CreateSession(ctx, 42)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	second, err := db.CreateSession(ctx, 99)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if first == second {
		t.Error("sessions should get distinct ids")
	}

	s, err := db.GetSession(ctx, second)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if s.BaseSeed != 99 {
		t.Errorf("BaseSeed = %d, want 99", s.BaseSeed)
	}
	if time.Since(s.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, expected now", s.CreatedAt)
	}

	if _, err := db.GetSession(ctx, 12345); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession(missing) err = %v, want ErrSessionNotFound", err)
	}
}

func TestUpdateSessionSeed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, _ := db.CreateSession(ctx, 1)
	if err := db.UpdateSessionSeed(ctx, id, 2); err != nil {
		t.Fatalf("UpdateSessionSeed failed: %v", err)
	}

	s, _ := db.GetSession(ctx, id)
	if s.BaseSeed != 2 {
		t.Errorf("BaseSeed = %d, want 2", s.BaseSeed)
	}

	if err := db.UpdateSessionSeed(ctx, 9999, 3); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("UpdateSessionSeed(missing) err = %v, want ErrSessionNotFound", err)
	}
}

func TestRecordAndListVisits(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sid, err := db.CreateSession(ctx, 42)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	visits := []Visit{
		{SessionID: sid, Level: 1, Seed: 1042, Style: "open", Layout: "straight", Fingerprint: "aa", ReturnX: 100, ReturnY: 50},
		{SessionID: sid, Level: 5, Seed: 5042, Style: "narrow", Layout: "winding", Fingerprint: "bb", ReturnX: 12.5, ReturnY: 7.25},
	}
	for _, v := range visits {
		if err := db.RecordVisit(ctx, v); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	got, err := db.ListVisits(ctx, sid)
	if err != nil {
		t.Fatalf("ListVisits failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListVisits = %d visits, want 2", len(got))
	}

	for i, v := range got {
		want := visits[i]
		if v.Level != want.Level || v.Seed != want.Seed || v.Style != want.Style ||
			v.Layout != want.Layout || v.Fingerprint != want.Fingerprint ||
			v.ReturnX != want.ReturnX || v.ReturnY != want.ReturnY {
			t.Errorf("visit %d = %+v, want %+v", i, v, want)
		}
		if v.ID == 0 || v.EnteredAt.IsZero() {
			t.Errorf("visit %d missing id or timestamp: %+v", i, v)
		}
	}

	latest, err := db.LatestVisit(ctx, sid)
	if err != nil {
		t.Fatalf("LatestVisit failed: %v", err)
	}
	if latest == nil || latest.Level != 5 {
		t.Errorf("LatestVisit = %+v, want level 5", latest)
	}
}

func TestLatestVisitEmptySession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sid, _ := db.CreateSession(ctx, 42)
	v, err := db.LatestVisit(ctx, sid)
	if err != nil {
		t.Fatalf("LatestVisit failed: %v", err)
	}
	if v != nil {
		t.Errorf("LatestVisit = %+v, want nil", v)
	}

	visits, err := db.ListVisits(ctx, sid)
	if err != nil || len(visits) != 0 {
		t.Errorf("ListVisits = %v, %v; want empty", visits, err)
	}
}

func TestRecordVisitUnknownSession(t *testing.T) {
	db := openTestDB(t)

	err := db.RecordVisit(context.Background(), Visit{SessionID: 777, Level: 1, Style: "open", Layout: "straight"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("RecordVisit err = %v, want ErrSessionNotFound", err)
	}
}

func TestVisitsAreScopedToSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a, _ := db.CreateSession(ctx, 1)
	b, _ := db.CreateSession(ctx, 2)
	db.RecordVisit(ctx, Visit{SessionID: a, Level: 1, Style: "open", Layout: "straight", Fingerprint: "x"})
	db.RecordVisit(ctx, Visit{SessionID: b, Level: 2, Style: "open", Layout: "straight", Fingerprint: "y"})
	db.RecordVisit(ctx, Visit{SessionID: b, Level: 3, Style: "open", Layout: "straight", Fingerprint: "z"})

	va, _ := db.ListVisits(ctx, a)
	vb, _ := db.ListVisits(ctx, b)
	if len(va) != 1 || len(vb) != 2 {
		t.Errorf("visits per session = %d/%d, want 1/2", len(va), len(vb))
	}
}

func TestFingerprintsFor(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sid, _ := db.CreateSession(ctx, 42)
	for _, fp := range []string{"abc", "abc", "def"} {
		db.RecordVisit(ctx, Visit{SessionID: sid, Level: 4, Seed: 4042, Style: "open", Layout: "winding", Fingerprint: fp})
	}
	db.RecordVisit(ctx, Visit{SessionID: sid, Level: 5, Seed: 5042, Style: "narrow", Layout: "winding", Fingerprint: "zzz"})

	fps, err := db.FingerprintsFor(ctx, 4, 4042)
	if err != nil {
		t.Fatalf("FingerprintsFor failed: %v", err)
	}
	if len(fps) != 2 || fps[0] != "abc" || fps[1] != "def" {
		t.Errorf("FingerprintsFor = %v, want [abc def]", fps)
	}
}

func TestClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err == nil {
		t.Error("Expected error querying closed database")
	}
}
