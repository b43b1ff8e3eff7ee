// Package migration applies the numbered SQL files embedded under migrations/
// to a sqlite or postgres database and tracks the result in schema_version.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/dailycal/internal/logger"
)

// ErrSchemaTooNew is returned when the database was migrated by a newer binary.
var ErrSchemaTooNew = errors.New("database schema is newer than this version of dailycal")

// Dialect selects the bind-parameter style of the target database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Migration is one NNN_name.sql file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status describes where a database stands against the available migrations.
type Status struct {
	Current int
	Latest  int
	Pending []Migration
}

// UpToDate reports whether nothing is left to apply.
func (s Status) UpToDate() bool { return len(s.Pending) == 0 }

// Runner applies migrations from fsys to db.
type Runner struct {
	db      *sql.DB
	fsys    fs.FS
	dialect Dialect
}

func NewRunner(db *sql.DB, fsys fs.FS, dialect Dialect) *Runner {
	return &Runner{db: db, fsys: fsys, dialect: dialect}
}

// Rebind rewrites ? placeholders as $1, $2, ... for postgres.
func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// Load parses the *.sql files at the root of fsys, ordered by version.
// Other files are ignored.
func Load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	seen := make(map[int]string, len(names))
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		m, err := parseName(name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", m.Version, prev, name)
		}
		seen[m.Version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		m.SQL = string(body)
		out = append(out, m)
	}

	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

// parseName splits "002_state_index.sql" into version 2 and name "state_index".
func parseName(file string) (Migration, error) {
	stem := strings.TrimSuffix(path.Base(file), ".sql")
	num, name, ok := strings.Cut(stem, "_")
	if !ok || name == "" {
		return Migration{}, fmt.Errorf("invalid migration filename %s: want NNN_name.sql", file)
	}
	version, err := strconv.Atoi(num)
	if err != nil {
		return Migration{}, fmt.Errorf("invalid version number in %s: %w", file, err)
	}
	if version < 1 {
		return Migration{}, fmt.Errorf("invalid version number in %s: must be at least 1", file)
	}
	return Migration{Version: version, Name: name}, nil
}

func (r *Runner) ensureTable() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	return nil
}

// Version returns the recorded schema version, 0 for a fresh database.
func (r *Runner) Version() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	var v int
	if err := r.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// SetVersion overwrites the recorded schema version.
func (r *Runner) SetVersion(version int) error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := r.stamp(tx, version); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Runner) stamp(tx *sql.Tx, version int) error {
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("clear schema version: %w", err)
	}
	if _, err := tx.Exec(Rebind(r.dialect, `INSERT INTO schema_version (version) VALUES (?)`), version); err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	return nil
}

// Status compares the database against the available migrations. A database
// ahead of the newest file yields ErrSchemaTooNew.
func (r *Runner) Status() (Status, error) {
	all, err := Load(r.fsys)
	if err != nil {
		return Status{}, err
	}
	current, err := r.Version()
	if err != nil {
		return Status{}, err
	}

	st := Status{Current: current}
	if n := len(all); n > 0 {
		st.Latest = all[n-1].Version
	}
	if current > st.Latest {
		return st, fmt.Errorf("%w: database at %d, newest known %d", ErrSchemaTooNew, current, st.Latest)
	}
	for _, m := range all {
		if m.Version > current {
			st.Pending = append(st.Pending, m)
		}
	}
	return st, nil
}

// Apply runs every pending migration in its own transaction and returns the
// ones that committed. It stops at the first failure.
func (r *Runner) Apply() ([]Migration, error) {
	st, err := r.Status()
	if err != nil {
		return nil, err
	}
	if st.UpToDate() {
		logger.Debug("schema up to date", "version", st.Current)
		return nil, nil
	}

	logger.Info("applying migrations", "from", st.Current, "to", st.Latest, "count", len(st.Pending))
	start := time.Now()
	var applied []Migration
	for _, m := range st.Pending {
		if err := r.applyOne(m); err != nil {
			return applied, err
		}
		applied = append(applied, m)
		logger.Info("migration applied", "version", m.Version, "name", m.Name)
	}
	logger.Info("migrations complete", "count", len(applied), "elapsed", time.Since(start))
	return applied, nil
}

func (r *Runner) applyOne(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}
	if err := r.stamp(tx, m.Version); err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", m.Version, err)
	}
	return nil
}
