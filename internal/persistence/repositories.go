package persistence

import (
	"context"
	"time"
)

// EventRepository exposes CRUD operations for events and their participant
// associations. Deleting an event discards its attendance ledger.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	ListEventsInRange(ctx context.Context, start, end time.Time) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
	AddEventParticipant(ctx context.Context, eventID string, participant EventParticipant) error
	UpdateEventParticipant(ctx context.Context, eventID string, participant EventParticipant) error
}

// AttendanceRepository stores the append-only attendance ledger. There are
// deliberately no update or delete operations: appended records are immutable
// history.
type AttendanceRepository interface {
	AppendRecord(ctx context.Context, record AttendanceRecord) error
	ListRecords(ctx context.Context, eventID string) ([]AttendanceRecord, error)
}

// ParticipantRepository exposes operations on the shared participant
// directory.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) error
	GetParticipant(ctx context.Context, id string) (Participant, error)
	GetParticipantByEmail(ctx context.Context, email string) (Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

// PropertyRepository exposes operations on the property catalog.
type PropertyRepository interface {
	CreateProperty(ctx context.Context, property Property) error
	GetProperty(ctx context.Context, id string) (Property, error)
	ListProperties(ctx context.Context) ([]Property, error)
}
