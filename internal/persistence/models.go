package persistence

import "time"

// EventType enumerates the kinds of events an agency schedules.
type EventType string

const (
	EventTypePropertyViewing EventType = "property-viewing"
	EventTypeClientMeeting   EventType = "client-meeting"
	EventTypeContractSigning EventType = "contract-signing"
	EventTypeInternalMeeting EventType = "internal-meeting"
	EventTypeFollowUp        EventType = "follow-up"
)

// EventStatus enumerates event lifecycle states.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusPending   EventStatus = "pending"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// ParticipantRole enumerates the roles a participant can hold.
type ParticipantRole string

const (
	RoleAgent  ParticipantRole = "agent"
	RoleClient ParticipantRole = "client"
	RoleAdmin  ParticipantRole = "admin"
	RoleOther  ParticipantRole = "other"
)

// Coordinates is a stored latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// CapturedLocation is a device fix embedded in an attendance record or in a
// participant's check-in projection.
type CapturedLocation struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Event represents a calendar event stored in persistence. WindowStart and
// WindowEnd are derived from Start/End (±1h) and recomputed whenever those
// change; QRCode is the check-in URL issued once at creation.
type Event struct {
	ID           string
	Title        string
	Type         EventType
	Start        time.Time
	End          time.Time
	Status       EventStatus
	Location     string
	Description  string
	Coordinates  *Coordinates
	PropertyID   *string
	CreatedBy    string
	QRCode       string
	WindowStart  time.Time
	WindowEnd    time.Time
	Participants []EventParticipant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventParticipant associates a participant with an event and carries the
// per-event check-in projection: a cache of the participant's most recent
// attendance entry. The ledger stays authoritative.
type EventParticipant struct {
	ParticipantID   string
	Name            string
	Email           string
	Role            ParticipantRole
	CheckInStatus   string
	CheckInTime     *time.Time
	CheckInLocation *CapturedLocation
	CheckInError    *string
}

// AttendanceRecord is one entry of an event's append-only attendance ledger.
// Records are never mutated or removed once appended.
type AttendanceRecord struct {
	ID            string
	EventID       string
	ParticipantID string
	Timestamp     time.Time
	Status        string
	Location      *CapturedLocation
	ErrorMessage  *string
}

// Participant represents a directory entry shared across events.
type Participant struct {
	ID        string
	Name      string
	Email     string
	Role      ParticipantRole
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Property represents a listed property an event can reference.
type Property struct {
	ID          string
	Name        string
	Address     string
	Price       *int64
	Type        *string
	Coordinates Coordinates
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
