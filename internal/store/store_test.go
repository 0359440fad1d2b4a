package store

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_SetsVersionAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)

	require.NoError(t, db.Migrate())
	v, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)
}

func TestOpen_CreatesFileAndParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "devpulse.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.InsertSession(SessionRow{StartTime: time.Now(), DurationMinutes: 5})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopen and read back; migrations must not run twice.
	db, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	n, err := db.CountSessions()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertSession_AssignsDefaults(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	row, err := db.InsertSession(SessionRow{StartTime: start, DurationMinutes: 25})
	require.NoError(t, err)
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "coding", row.Type)
	assert.Equal(t, "cli", row.Source)
	assert.False(t, row.CreatedAt.IsZero())

	got, err := db.GetSession(row.ID)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(start), "start time round-trip: got %s", got.StartTime)
	assert.Equal(t, 25.0, got.DurationMinutes)
}

func TestInsertSession_RejectsMissingStartTime(t *testing.T) {
	db := newTestDB(t)
	_, err := db.InsertSession(SessionRow{DurationMinutes: 5})
	assert.ErrorIs(t, err, analyzer.ErrInvalidInput)
}

func TestInsertSessions_SkipsDuplicateIDs(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	rows := []SessionRow{
		{ID: "a", StartTime: start, DurationMinutes: 10, Type: "coding"},
		{ID: "b", StartTime: start, DurationMinutes: 5, Type: "break"},
	}
	n, err := db.InsertSessions(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = db.InsertSessions(append(rows, SessionRow{ID: "c", StartTime: start, DurationMinutes: 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := db.CountSessions()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestInsertSessions_InvalidRowRollsBack(t *testing.T) {
	db := newTestDB(t)
	rows := []SessionRow{
		{ID: "ok", StartTime: time.Now(), DurationMinutes: 10},
		{ID: "bad", DurationMinutes: 5},
	}

	_, err := db.InsertSessions(rows)
	var invalid *analyzer.InvalidSessionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 1, invalid.Index)

	n, err := db.CountSessions()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListSessions_NewestFirstAndSince(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := db.InsertSession(SessionRow{
			ID:              string(rune('a' + i)),
			StartTime:       base.AddDate(0, 0, i),
			DurationMinutes: float64(10 * (i + 1)),
		})
		require.NoError(t, err)
	}

	all, err := db.ListSessions(time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	recent, err := db.ListSessions(base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	row, err := db.InsertSession(SessionRow{StartTime: time.Now(), DurationMinutes: 3})
	require.NoError(t, err)

	require.NoError(t, db.DeleteSession(row.ID))
	assert.ErrorIs(t, db.DeleteSession(row.ID), ErrSessionNotFound)

	_, err = db.GetSession(row.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAnalyzerSessions_FeedsAggregate(t *testing.T) {
	db := newTestDB(t)
	day0 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	day1 := day0.AddDate(0, 0, 1)

	_, err := db.InsertSessions([]SessionRow{
		{StartTime: day0, DurationMinutes: 30, Type: "coding"},
		{StartTime: day0, DurationMinutes: 10, Type: "break"},
		{StartTime: day1, DurationMinutes: 45, Type: "coding"},
	})
	require.NoError(t, err)

	sessions, err := db.AnalyzerSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	daily, err := analyzer.Aggregate(sessions)
	require.NoError(t, err)
	assert.Equal(t, 40.0, daily["2026-03-02"].Total)
	assert.Equal(t, 45.0, daily["2026-03-03"].Coding)

	streaks := analyzer.Streaks(daily, day1)
	assert.Equal(t, analyzer.StreakResult{Current: 2, Longest: 2}, streaks)
}

func TestFromAnalyzer_NormalizesType(t *testing.T) {
	row := FromAnalyzer(analyzer.Session{ID: "x", StartTime: time.Now(), Type: "weird"}, "import")
	assert.Equal(t, "coding", row.Type)
	assert.Equal(t, "import", row.Source)
}

func TestSnapshots(t *testing.T) {
	db := newTestDB(t)

	latest, err := db.GetLatestSnapshot()
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := db.CreateSnapshot("track", "test")
	require.NoError(t, err)
	second, err := db.CreateSnapshot("track", "test")
	require.NoError(t, err)

	require.NoError(t, db.InsertAggregateMetric(first, "current_streak", 2, ""))
	require.NoError(t, db.InsertAggregateMetric(second, "current_streak", 3, "note"))

	latest, err = db.GetLatestSnapshot()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second, latest.ID)

	prev, err := db.GetSnapshotN(2)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, first, prev.ID)

	missing, err := db.GetSnapshotN(3)
	require.NoError(t, err)
	assert.Nil(t, missing)

	recent, err := db.GetRecentSnapshots(5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second, recent[0].ID)

	metrics, err := db.GetAggregateMetrics(second)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, "current_streak", metrics[0].MetricName)
	assert.Equal(t, 3.0, metrics[0].MetricValue)
	assert.Equal(t, "note", metrics[0].Detail)
}

func TestRecordSnapshot(t *testing.T) {
	db := newTestDB(t)

	id, err := db.RecordSnapshot("track", "test", []AggregateMetric{
		{MetricName: "current_streak", MetricValue: 4},
		{MetricName: "today_score", MetricValue: 52.5, Detail: "recomputed"},
	})
	require.NoError(t, err)

	snap, err := db.GetSnapshot(id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "track", snap.Command)
	assert.False(t, snap.TakenAt.IsZero())

	metrics, err := db.GetAggregateMetrics(id)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "today_score", metrics[1].MetricName)
	assert.Equal(t, "recomputed", metrics[1].Detail)

	missing, err := db.GetSnapshot(id + 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	none, err := db.GetSnapshotN(0)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestInsertSession_RejectsNonFiniteDuration(t *testing.T) {
	db := newTestDB(t)
	for _, d := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := db.InsertSession(SessionRow{StartTime: time.Now(), DurationMinutes: d})
		assert.ErrorIs(t, err, analyzer.ErrInvalidInput)

		_, err = db.InsertSessions([]SessionRow{{ID: "x", StartTime: time.Now(), DurationMinutes: d}})
		var invalid *analyzer.InvalidSessionError
		assert.True(t, errors.As(err, &invalid))
	}

	n, err := db.CountSessions()
	require.NoError(t, err)
	assert.Zero(t, n)
}
