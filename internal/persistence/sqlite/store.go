// Package sqlite provides the SQL-backed persistence implementation using
// modernc.org/sqlite.
package sqlite

import (
	"context"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	type TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	status TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	latitude REAL,
	longitude REAL,
	property_id TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	qr_code TEXT NOT NULL DEFAULT '',
	window_start TEXT NOT NULL,
	window_end TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	CHECK (start_time < end_time)
);

CREATE TABLE IF NOT EXISTS event_participants (
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	participant_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	check_in_status TEXT NOT NULL DEFAULT '',
	check_in_time TEXT,
	check_in_latitude REAL,
	check_in_longitude REAL,
	check_in_accuracy REAL,
	check_in_error TEXT,
	position INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (event_id, participant_id)
);

CREATE TABLE IF NOT EXISTS attendance_records (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	participant_id TEXT NOT NULL,
	occurred_at TEXT NOT NULL,
	status TEXT NOT NULL,
	latitude REAL,
	longitude REAL,
	accuracy REAL,
	error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_attendance_event ON attendance_records(event_id);

CREATE TABLE IF NOT EXISTS participants (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL COLLATE NOCASE UNIQUE,
	role TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	price INTEGER,
	type TEXT,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store bundles the SQL-backed repositories behind one connection pool.
type Store struct {
	pool         *ConnectionPool
	Events       *EventRepository
	Attendance   *AttendanceRepository
	Participants *ParticipantRepository
	Properties   *PropertyRepository
}

// Open opens (or creates) the database at dsn and returns a Store. Migrate
// must be called before the repositories are used.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Store{
		pool:         pool,
		Events:       NewEventRepository(pool),
		Attendance:   NewAttendanceRepository(pool),
		Participants: NewParticipantRepository(pool),
		Properties:   NewPropertyRepository(pool),
	}, nil
}

// Migrate bootstraps the baseline schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		// Rows written by hand or by earlier tooling may carry second
		// precision only.
		t, err = time.Parse(time.RFC3339, value)
	}
	return t, err
}
