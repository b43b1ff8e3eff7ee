package backup

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dailycal.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE daily_levels (day_key INTEGER PRIMARY KEY, level_id INTEGER NOT NULL, state INTEGER NOT NULL)`,
		`INSERT INTO daily_levels VALUES (1709251200, 3, 0), (1709337600, 5, 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}
	return dbPath
}

func countDays(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM daily_levels").Scan(&n); err != nil {
		t.Fatalf("count days in %s: %v", path, err)
	}
	return n
}

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[min(i, len(ts)-1)]
		i++
		return t
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC))

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if want := filepath.Join(mgr.Dir(), "dailycal-20240315-093005.db"); path != want {
		t.Errorf("Create() = %s, want %s", path, want)
	}
	if n := countDays(t, path); n != 2 {
		t.Errorf("backup holds %d days, want 2", n)
	}
}

func TestCreateSameSecondGetsCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC))

	first, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("second backup overwrote the first")
	}
	if filepath.Base(second) != "dailycal-20240315-093005-1.db" {
		t.Errorf("second backup = %s", filepath.Base(second))
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() returned %d backups, want 2", len(backups))
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Create() error = %v, want ErrNoDatabase", err)
	}
}

func TestCreateRejectsForeignDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE tasks (id TEXT)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := NewManager(dbPath).Create(); err == nil {
		t.Error("Create() accepted a database without daily_levels")
	}
}

func TestListOrderAndFilter(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"dailycal-20240101-120000.db",
		"dailycal-20240301-120000.db",
		"dailycal-20240201-120000-2.db",
		"snapshot-20240401-120000.db",
		"dailycal-notastamp.db",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, b := range backups {
		got = append(got, filepath.Base(b.Path))
	}
	want := []string{"dailycal-20240301-120000.db", "dailycal-20240201-120000-2.db", "dailycal-20240101-120000.db"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListWithoutDirectory(t *testing.T) {
	backups, err := NewManager(filepath.Join(t.TempDir(), "dailycal.db")).List()
	if err != nil || len(backups) != 0 {
		t.Errorf("List() = %v, %v; want empty", backups, err)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	var stamps []time.Time
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		stamps = append(stamps, base.Add(time.Duration(i)*time.Hour))
	}
	mgr.now = fixedClock(stamps...)

	for range stamps {
		if _, err := mgr.Create(); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 14 {
		t.Fatalf("kept %d backups, want 14", len(backups))
	}
	if !backups[0].Timestamp.Equal(stamps[19]) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, stamps[19])
	}
	if !backups[13].Timestamp.Equal(stamps[6]) {
		t.Errorf("oldest kept backup = %v, want %v", backups[13].Timestamp, stamps[6])
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("Restore() accepted a missing file")
	}

	junk := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(junk, []byte("not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(junk); err == nil {
		t.Error("Restore() accepted a corrupt file")
	}
	if n := countDays(t, dbPath); n != 2 {
		t.Errorf("database changed after rejected restore: %d days", n)
	}
}
