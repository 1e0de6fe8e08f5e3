package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/estate-events/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const eventColumns = `id, title, type, start_time, end_time, status, location, description,
	latitude, longitude, property_id, created_by, qr_code, window_start, window_end,
	created_at, updated_at`

// CreateEvent inserts a new event with its participants.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.insertEventTx(tx, event); err != nil {
			return r.mapper.MapError(err)
		}
		for i, participant := range event.Participants {
			if err := r.insertParticipantTx(tx, event.ID, participant, i); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// UpdateEvent replaces an event row and its participant set.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE events
			SET title = ?, type = ?, start_time = ?, end_time = ?, status = ?, location = ?,
			    description = ?, latitude = ?, longitude = ?, property_id = ?, created_by = ?,
			    qr_code = ?, window_start = ?, window_end = ?, updated_at = ?
			WHERE id = ?
		`
		lat, lng := coordinateValues(event.Coordinates)
		result, err := r.helper.ExecTx(tx, query,
			event.Title,
			string(event.Type),
			formatTime(event.Start),
			formatTime(event.End),
			string(event.Status),
			event.Location,
			event.Description,
			lat,
			lng,
			nullString(event.PropertyID),
			event.CreatedBy,
			event.QRCode,
			formatTime(event.WindowStart),
			formatTime(event.WindowEnd),
			formatTime(event.UpdatedAt),
			event.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := r.helper.ExecTx(tx, `DELETE FROM event_participants WHERE event_id = ?`, event.ID); err != nil {
			return r.mapper.MapError(err)
		}
		for i, participant := range event.Participants {
			if err := r.insertParticipantTx(tx, event.ID, participant, i); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// GetEvent retrieves an event and its participants by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	row := r.helper.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM events WHERE id = ?`, eventColumns), id)
	event, err := scanEvent(row)
	if err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}

	participants, err := r.loadParticipants(ctx, id)
	if err != nil {
		return persistence.Event{}, err
	}
	event.Participants = participants
	return event, nil
}

// ListEvents returns all events ordered by start time ascending.
func (r *EventRepository) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY start_time ASC, id ASC`, eventColumns)
	return r.queryEvents(ctx, query)
}

// ListEventsInRange returns events starting within [start, end].
func (r *EventRepository) ListEventsInRange(ctx context.Context, start, end time.Time) ([]persistence.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time ASC, id ASC
	`, eventColumns)
	return r.queryEvents(ctx, query, formatTime(start), formatTime(end))
}

// DeleteEvent removes an event; participants and attendance records cascade.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// AddEventParticipant appends a participant to an event's participant set.
func (r *EventRepository) AddEventParticipant(ctx context.Context, eventID string, participant persistence.EventParticipant) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := r.helper.QueryRowTx(tx, `SELECT COUNT(1) FROM events WHERE id = ?`, eventID).Scan(&exists); err != nil {
			return r.mapper.MapError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		var position int
		if err := r.helper.QueryRowTx(tx, `SELECT COALESCE(MAX(position)+1, 0) FROM event_participants WHERE event_id = ?`, eventID).Scan(&position); err != nil {
			return r.mapper.MapError(err)
		}
		return r.mapper.MapError(r.insertParticipantTx(tx, eventID, participant, position))
	})
}

// UpdateEventParticipant replaces a participant row, including its check-in
// projection.
func (r *EventRepository) UpdateEventParticipant(ctx context.Context, eventID string, participant persistence.EventParticipant) error {
	query := `
		UPDATE event_participants
		SET name = ?, email = ?, role = ?, check_in_status = ?, check_in_time = ?,
		    check_in_latitude = ?, check_in_longitude = ?, check_in_accuracy = ?, check_in_error = ?
		WHERE event_id = ? AND participant_id = ?
	`
	lat, lng, accuracy := capturedLocationValues(participant.CheckInLocation)
	result, err := r.helper.Exec(ctx, query,
		participant.Name,
		participant.Email,
		string(participant.Role),
		participant.CheckInStatus,
		nullTime(participant.CheckInTime),
		lat,
		lng,
		accuracy,
		nullString(participant.CheckInError),
		eventID,
		participant.ParticipantID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *EventRepository) insertEventTx(tx *sql.Tx, event persistence.Event) error {
	query := fmt.Sprintf(`INSERT INTO events (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, eventColumns)
	lat, lng := coordinateValues(event.Coordinates)
	_, err := r.helper.ExecTx(tx, query,
		event.ID,
		event.Title,
		string(event.Type),
		formatTime(event.Start),
		formatTime(event.End),
		string(event.Status),
		event.Location,
		event.Description,
		lat,
		lng,
		nullString(event.PropertyID),
		event.CreatedBy,
		event.QRCode,
		formatTime(event.WindowStart),
		formatTime(event.WindowEnd),
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	return err
}

func (r *EventRepository) insertParticipantTx(tx *sql.Tx, eventID string, participant persistence.EventParticipant, position int) error {
	query := `
		INSERT INTO event_participants (event_id, participant_id, name, email, role,
			check_in_status, check_in_time, check_in_latitude, check_in_longitude,
			check_in_accuracy, check_in_error, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	lat, lng, accuracy := capturedLocationValues(participant.CheckInLocation)
	_, err := r.helper.ExecTx(tx, query,
		eventID,
		participant.ParticipantID,
		participant.Name,
		participant.Email,
		string(participant.Role),
		participant.CheckInStatus,
		nullTime(participant.CheckInTime),
		lat,
		lng,
		accuracy,
		nullString(participant.CheckInError),
		position,
	)
	return err
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]persistence.Event, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		participants, err := r.loadParticipants(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Participants = participants
	}
	return events, nil
}

func (r *EventRepository) loadParticipants(ctx context.Context, eventID string) ([]persistence.EventParticipant, error) {
	query := `
		SELECT participant_id, name, email, role, check_in_status, check_in_time,
			check_in_latitude, check_in_longitude, check_in_accuracy, check_in_error
		FROM event_participants
		WHERE event_id = ?
		ORDER BY position ASC
	`
	rows, err := r.helper.Query(ctx, query, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var participants []persistence.EventParticipant
	for rows.Next() {
		var (
			participant persistence.EventParticipant
			role        string
			checkInAt   sql.NullString
			lat         sql.NullFloat64
			lng         sql.NullFloat64
			accuracy    sql.NullFloat64
			checkInErr  sql.NullString
		)
		if err := rows.Scan(
			&participant.ParticipantID,
			&participant.Name,
			&participant.Email,
			&role,
			&participant.CheckInStatus,
			&checkInAt,
			&lat,
			&lng,
			&accuracy,
			&checkInErr,
		); err != nil {
			return nil, err
		}
		participant.Role = persistence.ParticipantRole(role)
		if checkInAt.Valid {
			at, err := parseTime(checkInAt.String)
			if err != nil {
				return nil, err
			}
			participant.CheckInTime = &at
		}
		if lat.Valid && lng.Valid {
			participant.CheckInLocation = &persistence.CapturedLocation{
				Latitude:  lat.Float64,
				Longitude: lng.Float64,
				Accuracy:  accuracy.Float64,
			}
		}
		if checkInErr.Valid {
			msg := checkInErr.String
			participant.CheckInError = &msg
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event       persistence.Event
		eventType   string
		status      string
		startAt     string
		endAt       string
		lat         sql.NullFloat64
		lng         sql.NullFloat64
		propertyID  sql.NullString
		windowStart string
		windowEnd   string
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&eventType,
		&startAt,
		&endAt,
		&status,
		&event.Location,
		&event.Description,
		&lat,
		&lng,
		&propertyID,
		&event.CreatedBy,
		&event.QRCode,
		&windowStart,
		&windowEnd,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Event{}, err
	}

	event.Type = persistence.EventType(eventType)
	event.Status = persistence.EventStatus(status)
	if lat.Valid && lng.Valid {
		event.Coordinates = &persistence.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	if propertyID.Valid {
		id := propertyID.String
		event.PropertyID = &id
	}

	var err error
	if event.Start, err = parseTime(startAt); err != nil {
		return persistence.Event{}, err
	}
	if event.End, err = parseTime(endAt); err != nil {
		return persistence.Event{}, err
	}
	if event.WindowStart, err = parseTime(windowStart); err != nil {
		return persistence.Event{}, err
	}
	if event.WindowEnd, err = parseTime(windowEnd); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func coordinateValues(coords *persistence.Coordinates) (interface{}, interface{}) {
	if coords == nil {
		return nil, nil
	}
	return coords.Latitude, coords.Longitude
}

func capturedLocationValues(loc *persistence.CapturedLocation) (interface{}, interface{}, interface{}) {
	if loc == nil {
		return nil, nil, nil
	}
	return loc.Latitude, loc.Longitude, loc.Accuracy
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*value), Valid: true}
}
