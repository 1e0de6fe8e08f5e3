package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/estate-events/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository using
// SQLite. The ledger table only ever receives INSERTs; rowid order is
// insertion order.
type AttendanceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// AppendRecord appends an attendance record to its event's ledger.
func (r *AttendanceRepository) AppendRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.EventID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO attendance_records (id, event_id, participant_id, occurred_at, status,
			latitude, longitude, accuracy, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	lat, lng, accuracy := capturedLocationValues(record.Location)
	_, err := r.helper.Exec(ctx, query,
		record.ID,
		record.EventID,
		record.ParticipantID,
		formatTime(record.Timestamp),
		record.Status,
		lat,
		lng,
		accuracy,
		nullString(record.ErrorMessage),
	)
	return r.mapper.MapError(err)
}

// ListRecords returns an event's ledger in insertion order.
func (r *AttendanceRepository) ListRecords(ctx context.Context, eventID string) ([]persistence.AttendanceRecord, error) {
	var exists int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(1) FROM events WHERE id = ?`, eventID).Scan(&exists); err != nil {
		return nil, r.mapper.MapError(err)
	}
	if exists == 0 {
		return nil, persistence.ErrNotFound
	}

	query := `
		SELECT id, event_id, participant_id, occurred_at, status, latitude, longitude, accuracy, error_message
		FROM attendance_records
		WHERE event_id = ?
		ORDER BY rowid ASC
	`
	rows, err := r.helper.Query(ctx, query, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		var (
			record     persistence.AttendanceRecord
			occurredAt string
			lat        sql.NullFloat64
			lng        sql.NullFloat64
			accuracy   sql.NullFloat64
			errMessage sql.NullString
		)
		if err := rows.Scan(
			&record.ID,
			&record.EventID,
			&record.ParticipantID,
			&occurredAt,
			&record.Status,
			&lat,
			&lng,
			&accuracy,
			&errMessage,
		); err != nil {
			return nil, err
		}
		if record.Timestamp, err = parseTime(occurredAt); err != nil {
			return nil, err
		}
		if lat.Valid && lng.Valid {
			record.Location = &persistence.CapturedLocation{
				Latitude:  lat.Float64,
				Longitude: lng.Float64,
				Accuracy:  accuracy.Float64,
			}
		}
		if errMessage.Valid {
			msg := errMessage.String
			record.ErrorMessage = &msg
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
