/*
Package sqlite provides a SQLite-backed implementation of generic.HolidayStore.

PURPOSE:
  Persists materialized holiday dates so that they can be served, audited
  and read by other systems without evaluating rules. Rules themselves are
  never stored.

KEY TABLES:
  holidays: One row per (calendar, date, name)

INDEXES:
  - idx_holidays_unique:        Upsert key, one row per holiday per day
  - idx_holidays_calendar_date: Range and single-day lookups (hot path)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, as in the in-memory store.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the materialization writer.

USAGE:
  store, err := sqlite.New("./data/recurrence.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  cal := holiday.NewUSFederal(store, logger)
  cal.Materialize(ctx, 2026)

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/recurrence-engine/generic"
)

const dateLayout = "2006-01-02"

// Store implements generic.HolidayStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		rule TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(calendar_id, date, name);
	CREATE INDEX IF NOT EXISTS idx_holidays_calendar_date
		ON holidays(calendar_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HOLIDAY STORE (generic.HolidayStore interface)
// =============================================================================

// SaveHolidays upserts all holidays in one transaction.
func (s *Store) SaveHolidays(ctx context.Context, holidays []generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertHolidays(ctx, tx, holidays); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceYear deletes the stored year and saves holidays in one transaction.
// On error the previously stored year is left untouched.
func (s *Store) ReplaceYear(ctx context.Context, calendarID string, year int, holidays []generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM holidays WHERE calendar_id = ? AND strftime('%Y', date) = ?",
		calendarID, fmt.Sprintf("%04d", year),
	); err != nil {
		return fmt.Errorf("replace year %d: %w", year, err)
	}
	if err := upsertHolidays(ctx, tx, holidays); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertHolidays(ctx context.Context, tx *sql.Tx, holidays []generic.Holiday) error {
	query := `
		INSERT INTO holidays (id, calendar_id, date, name, rule, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(calendar_id, date, name) DO UPDATE SET
			id = excluded.id,
			rule = excluded.rule
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, h := range holidays {
		id := h.ID
		if id == "" {
			id = generic.HolidayID(h.CalendarID, h.Date, h.Rule)
		}
		if _, err := stmt.ExecContext(ctx, id, h.CalendarID, h.Date.Time.Format(dateLayout), h.Name, h.Rule, now); err != nil {
			return fmt.Errorf("save holiday %s: %w", id, err)
		}
	}
	return nil
}

// LoadHolidays returns holidays in [from, to), ordered by date then name.
func (s *Store) LoadHolidays(ctx context.Context, calendarID string, from, to generic.TimePoint) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, calendar_id, date, name, rule
		FROM holidays
		WHERE calendar_id = ? AND date >= ? AND date < ?
		ORDER BY date ASC, name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, calendarID, from.Time.Format(dateLayout), to.Time.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &h.CalendarID, &dateStr, &h.Name, &h.Rule); err != nil {
			return nil, err
		}
		t, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("holiday %s: bad date %q: %w", h.ID, dateStr, err)
		}
		h.Date = generic.NewTimePoint(t.Year(), t.Month(), t.Day())
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

// IsHoliday checks if a date is a stored holiday for the given calendar.
func (s *Store) IsHoliday(ctx context.Context, calendarID string, date generic.TimePoint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM holidays WHERE calendar_id = ? AND date = ?",
		calendarID, date.Time.Format(dateLayout),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteYear removes one calendar year of a calendar.
func (s *Store) DeleteYear(ctx context.Context, calendarID string, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM holidays WHERE calendar_id = ? AND strftime('%Y', date) = ?",
		calendarID, fmt.Sprintf("%04d", year),
	)
	return err
}

// Reset deletes every stored holiday.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays")
	return err
}
