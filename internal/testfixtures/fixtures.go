package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/estate-events/internal/application"
	"github.com/example/estate-events/internal/checkin"
)

var (
	eventCounter       uint64
	participantCounter uint64
	propertyCounter    uint64
	recordCounter      uint64
)

var referenceTime = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Event fixtures -----------------------------

// EventOption configures the generated event fixture.
type EventOption func(*application.Event)

// NewEventFixture returns a deterministic property viewing event with a
// derived check-in window and issued check-in URL. Options override fields
// after the defaults are applied.
func NewEventFixture(opts ...EventOption) application.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	end := start.Add(time.Hour)
	created := referenceTime.Add(-24 * time.Hour)

	event := application.Event{
		ID:            id,
		Title:         fmt.Sprintf("Open House %03d", idx),
		Type:          application.EventTypePropertyViewing,
		Start:         start,
		End:           end,
		Status:        application.EventStatusScheduled,
		Location:      "123 Main St, Los Angeles, CA",
		Coordinates:   &application.Coordinates{Latitude: 34.052235, Longitude: -118.243683},
		CreatedBy:     "user-001",
		QRCode:        fmt.Sprintf("http://localhost:5173/event/%s/check-in", id),
		CheckInWindow: checkin.ComputeWindow(start, end),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the event identifier and reissues the check-in URL to
// match.
func WithEventID(id string) EventOption {
	return func(event *application.Event) {
		event.ID = id
		event.QRCode = fmt.Sprintf("http://localhost:5173/event/%s/check-in", id)
	}
}

// WithEventSchedule overrides start and end and recomputes the check-in
// window from them.
func WithEventSchedule(start, end time.Time) EventOption {
	return func(event *application.Event) {
		event.Start = start
		event.End = end
		event.CheckInWindow = checkin.ComputeWindow(start, end)
	}
}

// WithEventCoordinates overrides the venue coordinates. Passing nil produces
// an event without a recorded venue position.
func WithEventCoordinates(coords *application.Coordinates) EventOption {
	return func(event *application.Event) {
		event.Coordinates = coords
	}
}

// WithEventParticipants sets the registered participant list.
func WithEventParticipants(participants ...application.EventParticipant) EventOption {
	return func(event *application.Event) {
		event.Participants = participants
	}
}

// NewEventParticipantFixture returns a registered event participant without a
// check-in projection.
func NewEventParticipantFixture(id, name, email string, role application.ParticipantRole) application.EventParticipant {
	return application.EventParticipant{
		ParticipantID: id,
		Name:          name,
		Email:         email,
		Role:          role,
	}
}

// ------------------------- Participant fixtures ---------------------------

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*application.Participant)

// NewParticipantFixture returns a deterministic directory participant.
func NewParticipantFixture(opts ...ParticipantOption) application.Participant {
	idx := atomic.AddUint64(&participantCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)

	participant := application.Participant{
		ID:        fmt.Sprintf("user-%03d", idx),
		Name:      fmt.Sprintf("Participant %03d", idx),
		Email:     fmt.Sprintf("participant%03d@example.com", idx),
		Role:      application.RoleClient,
		Phone:     fmt.Sprintf("555-0%03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&participant)
	}
	return participant
}

// WithParticipantRole overrides the directory role.
func WithParticipantRole(role application.ParticipantRole) ParticipantOption {
	return func(participant *application.Participant) {
		participant.Role = role
	}
}

// WithParticipantEmail overrides the email address.
func WithParticipantEmail(email string) ParticipantOption {
	return func(participant *application.Participant) {
		participant.Email = email
	}
}

// --------------------------- Property fixtures ----------------------------

// PropertyOption configures the generated property fixture.
type PropertyOption func(*application.Property)

// NewPropertyFixture returns a deterministic property catalog entry.
func NewPropertyFixture(opts ...PropertyOption) application.Property {
	idx := atomic.AddUint64(&propertyCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	price := int64(500000 + idx*10000)

	property := application.Property{
		ID:          fmt.Sprintf("prop-%03d", idx),
		Name:        fmt.Sprintf("Listing %03d", idx),
		Address:     fmt.Sprintf("%d Main St, Los Angeles, CA", 100+idx),
		Coordinates: application.Coordinates{Latitude: 34.052235, Longitude: -118.243683},
		Price:       &price,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&property)
	}
	return property
}

// WithPropertyCoordinates overrides the property position.
func WithPropertyCoordinates(lat, lng float64) PropertyOption {
	return func(property *application.Property) {
		property.Coordinates = application.Coordinates{Latitude: lat, Longitude: lng}
	}
}

// -------------------------- Attendance fixtures ---------------------------

// RecordOption configures the generated attendance record fixture.
type RecordOption func(*application.AttendanceRecord)

// NewAttendanceRecordFixture returns a successful ledger entry for the given
// event and participant.
func NewAttendanceRecordFixture(eventID, participantID string, opts ...RecordOption) application.AttendanceRecord {
	idx := atomic.AddUint64(&recordCounter, 1)

	record := application.AttendanceRecord{
		ID:            fmt.Sprintf("rec-%03d", idx),
		EventID:       eventID,
		ParticipantID: participantID,
		Timestamp:     referenceTime.Add(time.Duration(idx) * time.Second),
		Status:        checkin.StatusSuccess,
		Location:      &application.CapturedLocation{Latitude: 34.052235, Longitude: -118.243683, Accuracy: 10},
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithRecordTimestamp overrides the ledger timestamp.
func WithRecordTimestamp(at time.Time) RecordOption {
	return func(record *application.AttendanceRecord) {
		record.Timestamp = at
	}
}

// WithRecordFailure marks the record as a failed attempt carrying the given
// message and no location.
func WithRecordFailure(message string) RecordOption {
	return func(record *application.AttendanceRecord) {
		record.Status = checkin.StatusFailed
		record.Location = nil
		record.ErrorMessage = &message
	}
}
