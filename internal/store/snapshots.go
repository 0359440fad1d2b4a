package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const snapshotColumns = "id, taken_at, command, version"

// CreateSnapshot inserts an empty snapshot and returns its ID.
func (db *DB) CreateSnapshot(command, version string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO snapshots (taken_at, command, version) VALUES (?, ?, ?)",
		formatTime(time.Now()), command, version,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordSnapshot stores a snapshot together with its metrics in one
// transaction, so a failed insert never leaves a partial snapshot behind.
func (db *DB) RecordSnapshot(command, version string, metrics []AggregateMetric) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO snapshots (taken_at, command, version) VALUES (?, ?, ?)",
		formatTime(time.Now()), command, version,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, m := range metrics {
		if _, err := tx.Exec(
			"INSERT INTO aggregate_metrics (snapshot_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
			id, m.MetricName, m.MetricValue, m.Detail,
		); err != nil {
			return 0, fmt.Errorf("inserting metric %s: %w", m.MetricName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetLatestSnapshot returns the most recent snapshot, or nil if none exist.
func (db *DB) GetLatestSnapshot() (*Snapshot, error) {
	return db.GetSnapshotN(1)
}

// GetSnapshot returns a snapshot by ID, or nil if it does not exist.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	return optionalSnapshot(db.conn.QueryRow("SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id))
}

// GetSnapshotN returns the Nth most recent snapshot (1 = latest), or nil
// when fewer than n exist.
func (db *DB) GetSnapshotN(n int) (*Snapshot, error) {
	if n < 1 {
		return nil, nil
	}
	return optionalSnapshot(db.conn.QueryRow(
		"SELECT "+snapshotColumns+" FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?", n-1,
	))
}

// GetRecentSnapshots returns up to n snapshots, newest first.
func (db *DB) GetRecentSnapshots(n int) ([]Snapshot, error) {
	rows, err := db.conn.Query("SELECT "+snapshotColumns+" FROM snapshots ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func optionalSnapshot(row *sql.Row) (*Snapshot, error) {
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSnapshot(sc rowScanner) (Snapshot, error) {
	var s Snapshot
	var takenAt string
	if err := sc.Scan(&s.ID, &takenAt, &s.Command, &s.Version); err != nil {
		return Snapshot{}, err
	}
	var err error
	if s.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %d: parsing taken_at: %w", s.ID, err)
	}
	return s, nil
}

// InsertAggregateMetric adds one metric to an existing snapshot.
func (db *DB) InsertAggregateMetric(snapshotID int64, name string, value float64, detail string) error {
	_, err := db.conn.Exec(
		"INSERT INTO aggregate_metrics (snapshot_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
		snapshotID, name, value, detail,
	)
	return err
}

// GetAggregateMetrics returns the metrics of a snapshot in insertion order.
func (db *DB) GetAggregateMetrics(snapshotID int64) ([]AggregateMetric, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, metric_name, metric_value, detail FROM aggregate_metrics WHERE snapshot_id = ? ORDER BY id",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []AggregateMetric
	for rows.Next() {
		var m AggregateMetric
		var detail sql.NullString
		if err := rows.Scan(&m.ID, &m.SnapshotID, &m.MetricName, &m.MetricValue, &detail); err != nil {
			return nil, err
		}
		m.Detail = detail.String
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
