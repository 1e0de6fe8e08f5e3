package application

import (
	"time"

	"github.com/example/estate-events/internal/checkin"
	"github.com/example/estate-events/internal/location"
)

// Coordinates identifies a point on the globe in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// CapturedLocation records the device position attached to a check-in.
type CapturedLocation struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// EventType identifies the category of a scheduled event.
type EventType string

const (
	EventTypePropertyViewing EventType = "property-viewing"
	EventTypeClientMeeting   EventType = "client-meeting"
	EventTypeContractSigning EventType = "contract-signing"
	EventTypeInternalMeeting EventType = "internal-meeting"
	EventTypeFollowUp        EventType = "follow-up"
)

// EventStatus identifies the lifecycle state of an event.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusPending   EventStatus = "pending"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// ParticipantRole identifies how a person relates to the agency.
type ParticipantRole string

const (
	RoleAgent  ParticipantRole = "agent"
	RoleClient ParticipantRole = "client"
	RoleAdmin  ParticipantRole = "admin"
	RoleOther  ParticipantRole = "other"
)

// ParticipantInput captures caller provided participant assignments for an event.
type ParticipantInput struct {
	ParticipantID string
	Name          string
	Email         string
	Role          ParticipantRole
}

// EventInput captures caller provided event fields.
type EventInput struct {
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
	Participants []ParticipantInput
}

// Event represents a persisted event with its check-in projection.
type Event struct {
	ID            string
	Title         string
	Type          EventType
	Start         time.Time
	End           time.Time
	Status        EventStatus
	Location      string
	Description   string
	Coordinates   *Coordinates
	PropertyID    *string
	CreatedBy     string
	QRCode        string
	CheckInWindow checkin.Window
	Participants  []EventParticipant
	AttendanceLog []AttendanceRecord
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventParticipant is a participant assignment enriched with the latest
// check-in projection for the event.
type EventParticipant struct {
	ParticipantID   string
	Name            string
	Email           string
	Role            ParticipantRole
	CheckInStatus   checkin.Status
	CheckInTime     *time.Time
	CheckInLocation *CapturedLocation
	CheckInError    *string
}

// EventUpdate carries partial updates for an existing event. Nil fields are
// left untouched.
type EventUpdate struct {
	Title        *string
	Type         *EventType
	Start        *time.Time
	End          *time.Time
	Status       *EventStatus
	Location     *string
	Description  *string
	Coordinates  *Coordinates
	PropertyID   *string
	Participants *[]ParticipantInput
}

// AttendanceRecord is a single append-only ledger entry for an event.
type AttendanceRecord struct {
	ID            string
	EventID       string
	ParticipantID string
	Timestamp     time.Time
	Status        checkin.Status
	Location      *CapturedLocation
	ErrorMessage  *string
}

// AttendanceEntry joins a ledger record with the participant identity it
// belongs to, for reporting and export.
type AttendanceEntry struct {
	Record AttendanceRecord
	Name   string
	Email  string
	Role   ParticipantRole
}

// CheckInParams wraps the data required to record a check-in attempt.
type CheckInParams struct {
	EventID       string
	ParticipantID string
	Email         string
	Name          string
	Source        location.Source
}

// WarningCode identifies an advisory condition attached to a check-in result.
type WarningCode string

const (
	// WarningOutsideWindow flags attempts outside the event check-in window.
	WarningOutsideWindow WarningCode = "outside_window"
	// WarningOutOfRange flags attempts farther from the venue than allowed.
	WarningOutOfRange WarningCode = "out_of_range"
)

// CheckInWarning describes an advisory condition. Warnings never change the
// recorded outcome of the attempt.
type CheckInWarning struct {
	Code       WarningCode
	Message    string
	DistanceKm float64
}

// CheckInResult captures the outcome of a completed check-in attempt.
type CheckInResult struct {
	Participant EventParticipant
	Status      checkin.Status
	State       checkin.State
	Warnings    []CheckInWarning
	Record      AttendanceRecord
}

// ParticipantInputRecord captures caller provided participant fields.
type ParticipantInputRecord struct {
	Name  string
	Email string
	Role  ParticipantRole
	Phone string
}

// Participant represents a person in the agency directory.
type Participant struct {
	ID        string
	Name      string
	Email     string
	Role      ParticipantRole
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PropertyInput captures caller provided property fields.
type PropertyInput struct {
	Name        string
	Address     string
	Coordinates Coordinates
	Price       *int64
	Type        *string
}

// Property represents a listed property that events can be attached to.
type Property struct {
	ID          string
	Name        string
	Address     string
	Coordinates Coordinates
	Price       *int64
	Type        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
