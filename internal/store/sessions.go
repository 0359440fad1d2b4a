package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

// ErrSessionNotFound is returned when a session id matches no row.
var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = "id, start_time, duration_minutes, type, source, note, created_at"

// InsertSession stores a session. An empty ID is replaced with a new UUID,
// and the stored row (with its final ID) is returned.
func (db *DB) InsertSession(s SessionRow) (SessionRow, error) {
	if s.StartTime.IsZero() {
		return SessionRow{}, fmt.Errorf("%w: session %q has no start time", analyzer.ErrInvalidInput, s.ID)
	}
	if !finite(s.DurationMinutes) {
		return SessionRow{}, fmt.Errorf("%w: session %q has a non-finite duration", analyzer.ErrInvalidInput, s.ID)
	}
	s = normalizeSession(s, time.Now())
	_, err := db.conn.Exec(
		"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.ID, formatTime(s.StartTime), s.DurationMinutes, s.Type, s.Source, s.Note, formatTime(s.CreatedAt),
	)
	if err != nil {
		return SessionRow{}, err
	}
	return s, nil
}

// InsertSessions stores many sessions in one transaction. Rows whose ID is
// already present are skipped. It returns the number of rows inserted.
func (db *DB) InsertSessions(rows []SessionRow) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO sessions (" + sessionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	inserted := 0
	for i, r := range rows {
		if r.StartTime.IsZero() {
			return 0, &analyzer.InvalidSessionError{Index: i, ID: r.ID, Reason: "missing start time"}
		}
		if !finite(r.DurationMinutes) {
			return 0, &analyzer.InvalidSessionError{Index: i, ID: r.ID, Reason: "non-finite duration"}
		}
		r = normalizeSession(r, now)
		res, err := stmt.Exec(r.ID, formatTime(r.StartTime), r.DurationMinutes, r.Type, r.Source, r.Note, formatTime(r.CreatedAt))
		if err != nil {
			return 0, fmt.Errorf("inserting session %s: %w", r.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListSessions returns sessions that started at or after since, newest
// first. A zero since returns every session.
func (db *DB) ListSessions(since time.Time) ([]SessionRow, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	var args []any
	if !since.IsZero() {
		query += " WHERE start_time >= ?"
		args = append(args, formatTime(since))
	}
	query += " ORDER BY start_time DESC, id"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []SessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSession returns the session with the given ID.
func (db *DB) GetSession(id string) (SessionRow, error) {
	row := db.conn.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRow{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, err
}

// DeleteSession removes the session with the given ID.
func (db *DB) DeleteSession(id string) error {
	res, err := db.conn.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// CountSessions returns the number of stored sessions.
func (db *DB) CountSessions() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

// AnalyzerSessions loads every stored session in the analyzer's input form.
func (db *DB) AnalyzerSessions() ([]analyzer.Session, error) {
	rows, err := db.ListSessions(time.Time{})
	if err != nil {
		return nil, err
	}
	return ToAnalyzer(rows), nil
}

// ToAnalyzer converts stored rows into analyzer sessions.
func ToAnalyzer(rows []SessionRow) []analyzer.Session {
	sessions := make([]analyzer.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, analyzer.Session{
			ID:              r.ID,
			StartTime:       r.StartTime,
			DurationMinutes: r.DurationMinutes,
			Type:            analyzer.ParseSessionType(r.Type),
		})
	}
	return sessions
}

// FromAnalyzer converts an analyzer session into a row tagged with source.
func FromAnalyzer(s analyzer.Session, source string) SessionRow {
	return SessionRow{
		ID:              s.ID,
		StartTime:       s.StartTime,
		DurationMinutes: s.DurationMinutes,
		Type:            string(analyzer.ParseSessionType(string(s.Type))),
		Source:          source,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(sc rowScanner) (SessionRow, error) {
	var s SessionRow
	var start, created string
	var note sql.NullString
	if err := sc.Scan(&s.ID, &start, &s.DurationMinutes, &s.Type, &s.Source, &note, &created); err != nil {
		return SessionRow{}, err
	}
	var err error
	if s.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return SessionRow{}, fmt.Errorf("session %s: parsing start_time: %w", s.ID, err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	s.Note = note.String
	return s, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func normalizeSession(s SessionRow, now time.Time) SessionRow {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Type == "" {
		s.Type = string(analyzer.TypeCoding)
	}
	if s.Source == "" {
		s.Source = "cli"
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	return s
}

// formatTime stores times as fixed-width UTC RFC3339 so that string order in
// SQLite matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
