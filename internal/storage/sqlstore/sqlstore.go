// Package sqlstore holds the ledger queries shared by the SQL backends.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/migration"
	"github.com/julianstephens/dailycal/internal/models"
	"github.com/julianstephens/dailycal/internal/storage"
)

// DB implements the profile and ledger half of storage.Provider over a
// database/sql handle. Backends own opening and closing the handle.
type DB struct {
	db         *sql.DB
	dialect    migration.Dialect
	migrations fs.FS
	// isConflict reports whether err is a primary key violation.
	isConflict func(error) bool
}

func New(db *sql.DB, dialect migration.Dialect, migrations fs.FS, isConflict func(error) bool) *DB {
	return &DB{
		db:         db,
		dialect:    dialect,
		migrations: migrations,
		isConflict: isConflict,
	}
}

func (d *DB) q(query string) string {
	return migration.Rebind(d.dialect, query)
}

// Migrate applies pending migrations.
func (d *DB) Migrate() error {
	_, err := d.runner().Apply()
	return err
}

// ValidateSchema fails when the database is newer than this binary.
func (d *DB) ValidateSchema() error {
	_, err := d.runner().Status()
	return err
}

// SchemaStatus returns the current schema version and the number of pending migrations.
func (d *DB) SchemaStatus() (current, pending int, err error) {
	st, err := d.runner().Status()
	if err != nil {
		return 0, 0, err
	}
	return st.Current, len(st.Pending), nil
}

func (d *DB) runner() *migration.Runner {
	return migration.NewRunner(d.db, d.migrations, d.dialect)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func (d *DB) getInt(qr querier, key string) (int64, error) {
	var raw string
	err := qr.QueryRow(d.q("SELECT value FROM settings WHERE key = ?"), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt setting %s=%q: %w", key, raw, err)
	}
	return v, nil
}

func (d *DB) setInt(qr querier, key string, v int64) error {
	_, err := qr.Exec(d.q(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`), key, strconv.FormatInt(v, 10))
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (d *DB) GetRegistrationDate() (int64, error) {
	return d.getInt(d.db, constants.SettingRegistrationDate)
}

func (d *DB) SetRegistrationDate(ts int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cur, err := d.getInt(tx, constants.SettingRegistrationDate)
	if err != nil {
		return err
	}
	if cur != 0 && cur != ts {
		return storage.ErrRegistrationSet
	}
	if err := d.setInt(tx, constants.SettingRegistrationDate, ts); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) GetLastPlayed() (int64, error) {
	return d.getInt(d.db, constants.SettingLastPlayed)
}

func (d *DB) SetLastPlayed(key int64) error {
	return d.setInt(d.db, constants.SettingLastPlayed, key)
}

func (d *DB) GetPlayedDays() (int, error) {
	n, err := d.getInt(d.db, constants.SettingPlayedDays)
	return int(n), err
}

const dayColumns = "day_key, level_id, state, played_at, completed_at"

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLite keeps timestamps as RFC 3339 text, Postgres as timestamptz.
func (d *DB) encodeTime(t time.Time) any {
	if d.dialect == migration.Postgres {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (d *DB) scanDay(row rowScanner) (models.CalendarDay, error) {
	var day models.CalendarDay
	var state int
	if d.dialect == migration.Postgres {
		var completed sql.NullTime
		if err := row.Scan(&day.Key, &day.LevelID, &state, &day.PlayedAt, &completed); err != nil {
			return day, err
		}
		day.PlayedAt = day.PlayedAt.UTC()
		if completed.Valid {
			t := completed.Time.UTC()
			day.CompletedAt = &t
		}
	} else {
		var played string
		var completed sql.NullString
		if err := row.Scan(&day.Key, &day.LevelID, &state, &played, &completed); err != nil {
			return day, err
		}
		t, err := time.Parse(time.RFC3339Nano, played)
		if err != nil {
			return day, fmt.Errorf("corrupt played_at for day %d: %w", day.Key, err)
		}
		day.PlayedAt = t
		if completed.Valid {
			t, err := time.Parse(time.RFC3339Nano, completed.String)
			if err != nil {
				return day, fmt.Errorf("corrupt completed_at for day %d: %w", day.Key, err)
			}
			day.CompletedAt = &t
		}
	}
	day.State = models.LevelState(state)
	return day, nil
}

func (d *DB) GetDay(key int64) (models.CalendarDay, bool, error) {
	row := d.db.QueryRow(d.q("SELECT "+dayColumns+" FROM daily_levels WHERE day_key = ?"), key)
	day, err := d.scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CalendarDay{}, false, nil
	}
	if err != nil {
		return models.CalendarDay{}, false, fmt.Errorf("failed to read day %d: %w", key, err)
	}
	return day, true, nil
}

func (d *DB) GetDays(startKey, endKey int64) (map[int64]models.CalendarDay, error) {
	rows, err := d.db.Query(d.q("SELECT "+dayColumns+" FROM daily_levels WHERE day_key >= ? AND day_key < ?"), startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query days: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]models.CalendarDay)
	for rows.Next() {
		day, err := d.scanDay(rows)
		if err != nil {
			return nil, err
		}
		out[day.Key] = day
	}
	return out, rows.Err()
}

func (d *DB) GetAllDays() ([]models.CalendarDay, error) {
	rows, err := d.db.Query("SELECT " + dayColumns + " FROM daily_levels ORDER BY day_key")
	if err != nil {
		return nil, fmt.Errorf("failed to query days: %w", err)
	}
	defer rows.Close()

	var days []models.CalendarDay
	for rows.Next() {
		day, err := d.scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (d *DB) RecordPlay(rec models.PlayRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if rec.Day != nil {
		var completed any
		if rec.Day.CompletedAt != nil {
			completed = d.encodeTime(*rec.Day.CompletedAt)
		}
		_, err := tx.Exec(d.q("INSERT INTO daily_levels ("+dayColumns+") VALUES (?, ?, ?, ?, ?)"),
			rec.Day.Key, rec.Day.LevelID, int(rec.Day.State), d.encodeTime(rec.Day.PlayedAt), completed)
		if err != nil {
			if d.isConflict != nil && d.isConflict(err) {
				return fmt.Errorf("%w: %d", storage.ErrDayExists, rec.Day.Key)
			}
			return fmt.Errorf("failed to insert day %d: %w", rec.Day.Key, err)
		}

		count, err := d.getInt(tx, constants.SettingPlayedDays)
		if err != nil {
			return err
		}
		if err := d.setInt(tx, constants.SettingPlayedDays, count+1); err != nil {
			return err
		}
	}

	if err := d.setInt(tx, constants.SettingLastPlayed, rec.Key); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) CompleteDay(key int64, at time.Time) error {
	res, err := d.db.Exec(d.q("UPDATE daily_levels SET state = ?, completed_at = ? WHERE day_key = ?"),
		int(models.StateCompleted), d.encodeTime(at), key)
	if err != nil {
		return fmt.Errorf("failed to complete day %d: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", storage.ErrDayNotFound, key)
	}
	return nil
}
