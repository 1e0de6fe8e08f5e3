// Package memory provides the in-memory persistence implementation. It is an
// explicitly constructed store instance with a defined lifecycle, not ambient
// module state: main builds one at startup and tears it down at shutdown.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/estate-events/internal/persistence"
)

// Store implements every persistence repository with mutex-guarded maps and
// slices.
type Store struct {
	mu           sync.RWMutex
	events       map[string]persistence.Event
	attendance   map[string][]persistence.AttendanceRecord
	participants map[string]persistence.Participant
	properties   map[string]persistence.Property
}

// Open returns a fresh empty store.
func Open() *Store {
	return &Store{
		events:       make(map[string]persistence.Event),
		attendance:   make(map[string][]persistence.AttendanceRecord),
		participants: make(map[string]persistence.Participant),
		properties:   make(map[string]persistence.Property),
	}
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *Store) Close() error {
	return nil
}

// Migrate initialises the store. No-op for the in-memory implementation.
func (s *Store) Migrate(context.Context) error {
	return nil
}

// --- EventRepository implementation ---

// CreateEvent stores a new event with an empty attendance ledger.
func (s *Store) CreateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}

	s.events[event.ID] = cloneEvent(event)
	s.attendance[event.ID] = nil
	return nil
}

// UpdateEvent replaces an existing event.
func (s *Store) UpdateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return persistence.ErrNotFound
	}

	s.events[event.ID] = cloneEvent(event)
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}

	return cloneEvent(event), nil
}

// ListEvents returns all events ordered by start time ascending.
func (s *Store) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectEventsLocked(func(persistence.Event) bool { return true }), nil
}

// ListEventsInRange returns events whose start falls within [start, end].
func (s *Store) ListEventsInRange(ctx context.Context, start, end time.Time) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectEventsLocked(func(event persistence.Event) bool {
		return !event.Start.Before(start) && !event.Start.After(end)
	}), nil
}

// DeleteEvent removes an event and discards its attendance ledger.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}

	delete(s.events, id)
	delete(s.attendance, id)
	return nil
}

// AddEventParticipant attaches a participant to an event's participant set.
func (s *Store) AddEventParticipant(ctx context.Context, eventID string, participant persistence.EventParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return persistence.ErrNotFound
	}

	for _, existing := range event.Participants {
		if existing.ParticipantID == participant.ParticipantID {
			return persistence.ErrDuplicate
		}
	}

	event.Participants = append(event.Participants, cloneEventParticipant(participant))
	s.events[eventID] = event
	return nil
}

// UpdateEventParticipant replaces a participant entry, including its check-in
// projection, within an event.
func (s *Store) UpdateEventParticipant(ctx context.Context, eventID string, participant persistence.EventParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return persistence.ErrNotFound
	}

	for i, existing := range event.Participants {
		if existing.ParticipantID == participant.ParticipantID {
			event.Participants[i] = cloneEventParticipant(participant)
			s.events[eventID] = event
			return nil
		}
	}

	return persistence.ErrNotFound
}

// --- AttendanceRepository implementation ---

// AppendRecord appends an attendance record to its event's ledger. The ledger
// is a history, not a set: repeat entries for the same participant are
// expected.
func (s *Store) AppendRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[record.EventID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.attendance[record.EventID] = append(s.attendance[record.EventID], cloneRecord(record))
	return nil
}

// ListRecords returns an event's ledger in insertion order.
func (s *Store) ListRecords(ctx context.Context, eventID string) ([]persistence.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.events[eventID]; !ok {
		return nil, persistence.ErrNotFound
	}

	records := s.attendance[eventID]
	out := make([]persistence.AttendanceRecord, len(records))
	for i, record := range records {
		out[i] = cloneRecord(record)
	}
	return out, nil
}

// --- ParticipantRepository implementation ---

// CreateParticipant stores a new directory participant.
func (s *Store) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[participant.ID]; ok {
		return persistence.ErrDuplicate
	}

	lower := strings.ToLower(participant.Email)
	for _, existing := range s.participants {
		if strings.ToLower(existing.Email) == lower {
			return persistence.ErrDuplicate
		}
	}

	s.participants[participant.ID] = participant
	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *Store) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participant, ok := s.participants[id]
	if !ok {
		return persistence.Participant{}, persistence.ErrNotFound
	}
	return participant, nil
}

// GetParticipantByEmail retrieves a participant by email, case-insensitively.
func (s *Store) GetParticipantByEmail(ctx context.Context, email string) (persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, participant := range s.participants {
		if strings.ToLower(participant.Email) == lower {
			return participant, nil
		}
	}
	return persistence.Participant{}, persistence.ErrNotFound
}

// ListParticipants returns all participants ordered by CreatedAt ascending.
func (s *Store) ListParticipants(ctx context.Context) ([]persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participants := make([]persistence.Participant, 0, len(s.participants))
	for _, participant := range s.participants {
		participants = append(participants, participant)
	}

	sort.Slice(participants, func(i, j int) bool {
		if participants[i].CreatedAt.Equal(participants[j].CreatedAt) {
			return participants[i].ID < participants[j].ID
		}
		return participants[i].CreatedAt.Before(participants[j].CreatedAt)
	})
	return participants, nil
}

// DeleteParticipant removes a participant from the directory. Event
// associations are unaffected: they reference the participant by value.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.participants, id)
	return nil
}

// --- PropertyRepository implementation ---

// CreateProperty stores a new property catalog entry.
func (s *Store) CreateProperty(ctx context.Context, property persistence.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[property.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.properties[property.ID] = cloneProperty(property)
	return nil
}

// GetProperty retrieves a property by ID.
func (s *Store) GetProperty(ctx context.Context, id string) (persistence.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	property, ok := s.properties[id]
	if !ok {
		return persistence.Property{}, persistence.ErrNotFound
	}
	return cloneProperty(property), nil
}

// ListProperties returns all properties ordered by CreatedAt ascending.
func (s *Store) ListProperties(ctx context.Context) ([]persistence.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	properties := make([]persistence.Property, 0, len(s.properties))
	for _, property := range s.properties {
		properties = append(properties, cloneProperty(property))
	}

	sort.Slice(properties, func(i, j int) bool {
		if properties[i].CreatedAt.Equal(properties[j].CreatedAt) {
			return properties[i].ID < properties[j].ID
		}
		return properties[i].CreatedAt.Before(properties[j].CreatedAt)
	})
	return properties, nil
}

func (s *Store) collectEventsLocked(match func(persistence.Event) bool) []persistence.Event {
	events := make([]persistence.Event, 0, len(s.events))
	for _, event := range s.events {
		if match(event) {
			events = append(events, cloneEvent(event))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

func cloneEvent(event persistence.Event) persistence.Event {
	out := event
	if event.Coordinates != nil {
		coords := *event.Coordinates
		out.Coordinates = &coords
	}
	if event.PropertyID != nil {
		propertyID := *event.PropertyID
		out.PropertyID = &propertyID
	}
	out.Participants = make([]persistence.EventParticipant, len(event.Participants))
	for i, participant := range event.Participants {
		out.Participants[i] = cloneEventParticipant(participant)
	}
	return out
}

func cloneEventParticipant(participant persistence.EventParticipant) persistence.EventParticipant {
	out := participant
	if participant.CheckInTime != nil {
		at := *participant.CheckInTime
		out.CheckInTime = &at
	}
	if participant.CheckInLocation != nil {
		loc := *participant.CheckInLocation
		out.CheckInLocation = &loc
	}
	if participant.CheckInError != nil {
		msg := *participant.CheckInError
		out.CheckInError = &msg
	}
	return out
}

func cloneRecord(record persistence.AttendanceRecord) persistence.AttendanceRecord {
	out := record
	if record.Location != nil {
		loc := *record.Location
		out.Location = &loc
	}
	if record.ErrorMessage != nil {
		msg := *record.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}

func cloneProperty(property persistence.Property) persistence.Property {
	out := property
	if property.Price != nil {
		price := *property.Price
		out.Price = &price
	}
	if property.Type != nil {
		propertyType := *property.Type
		out.Type = &propertyType
	}
	return out
}
