package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/estate-events/internal/checkin"
	"github.com/example/estate-events/internal/geo"
	"github.com/example/estate-events/internal/persistence"
)

// EventRepository captures the persistence interactions needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]Event, error)
	ListEventsInRange(ctx context.Context, start, end time.Time) ([]Event, error)
}

// AttendanceLedger exposes the append-only attendance log for an event.
// Entries are never updated or deleted once written.
type AttendanceLedger interface {
	AppendRecord(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
	ListRecords(ctx context.Context, eventID string) ([]AttendanceRecord, error)
}

// PropertyCatalog exposes property lookup operations.
type PropertyCatalog interface {
	PropertyExists(ctx context.Context, id string) (bool, error)
}

// EventService orchestrates validation and persistence for event operations.
type EventService struct {
	events        EventRepository
	ledger        AttendanceLedger
	properties    PropertyCatalog
	frontendURL   string
	filterRangeKm float64
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewEventService wires dependencies for event operations. frontendURL is the
// origin check-in URLs are issued against; filterRangeKm bounds proximity
// listings.
func NewEventService(events EventRepository, ledger AttendanceLedger, properties PropertyCatalog, frontendURL string, filterRangeKm float64, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, ledger, properties, frontendURL, filterRangeKm, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventRepository, ledger AttendanceLedger, properties PropertyCatalog, frontendURL string, filterRangeKm float64, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if filterRangeKm <= 0 {
		filterRangeKm = 0.5
	}
	return &EventService{
		events:        events,
		ledger:        ledger,
		properties:    properties,
		frontendURL:   strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		filterRangeKm: filterRangeKm,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates the request, issues the check-in URL, and persists the
// event. The check-in window and URL are derived here, never supplied by the
// caller.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "title", strings.TrimSpace(input.Title))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	vErr := &ValidationError{}
	validateEventCore(input.Title, input.Type, input.Status, input.Start, input.End, vErr)
	participants := normalizeParticipants(input.Participants, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensurePropertyExists(ctx, input.PropertyID); err != nil {
		return
	}

	id := s.idGenerator()
	qrCode, err := checkin.IssueCheckInURL(s.frontendURL, id)
	if err != nil {
		err = fmt.Errorf("issue check-in url: %w", err)
		return
	}

	createdAt := s.now()
	event = Event{
		ID:            id,
		Title:         strings.TrimSpace(input.Title),
		Type:          input.Type,
		Start:         input.Start,
		End:           input.End,
		Status:        input.Status,
		Location:      strings.TrimSpace(input.Location),
		Description:   input.Description,
		Coordinates:   cloneCoordinates(input.Coordinates),
		PropertyID:    normalizeOptionalString(input.PropertyID),
		CreatedBy:     input.CreatedBy,
		QRCode:        qrCode,
		CheckInWindow: checkin.ComputeWindow(input.Start, input.End),
		Participants:  participants,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	if s.events == nil {
		return
	}

	var persisted Event
	persisted, err = s.events.CreateEvent(ctx, event)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	event = persisted
	return
}

// UpdateEvent applies a partial update to an existing event. The check-in
// window is recomputed only when the start or end changes; the check-in URL
// never changes once issued.
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, update EventUpdate) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	var existing Event
	existing, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	updated := existing
	scheduleChanged := false

	if update.Title != nil {
		updated.Title = strings.TrimSpace(*update.Title)
	}
	if update.Type != nil {
		updated.Type = *update.Type
	}
	if update.Start != nil {
		updated.Start = *update.Start
		scheduleChanged = true
	}
	if update.End != nil {
		updated.End = *update.End
		scheduleChanged = true
	}
	if update.Status != nil {
		updated.Status = *update.Status
	}
	if update.Location != nil {
		updated.Location = strings.TrimSpace(*update.Location)
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Coordinates != nil {
		updated.Coordinates = cloneCoordinates(update.Coordinates)
	}
	if update.PropertyID != nil {
		updated.PropertyID = normalizeOptionalString(update.PropertyID)
	}

	vErr := &ValidationError{}
	validateEventCore(updated.Title, updated.Type, updated.Status, updated.Start, updated.End, vErr)
	if update.Participants != nil {
		updated.Participants = mergeParticipants(existing.Participants, normalizeParticipants(*update.Participants, vErr))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if update.PropertyID != nil {
		if err = s.ensurePropertyExists(ctx, updated.PropertyID); err != nil {
			return
		}
	}

	if scheduleChanged {
		updated.CheckInWindow = checkin.ComputeWindow(updated.Start, updated.End)
	}
	if updated.QRCode == "" {
		// Older rows predate URL issuance; backfill on first write.
		updated.QRCode, err = checkin.IssueCheckInURL(s.frontendURL, updated.ID)
		if err != nil {
			err = fmt.Errorf("issue check-in url: %w", err)
			return
		}
	}
	updated.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	return
}

// GetEvent returns a single event with its attendance log attached.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}

	if s.ledger != nil {
		records, err := s.ledger.ListRecords(ctx, eventID)
		if err != nil && !isNotFoundError(err) {
			return Event{}, err
		}
		event.AttendanceLog = records
	}

	return event, nil
}

// ListEvents enumerates all events ordered by start time.
func (s *EventService) ListEvents(ctx context.Context) (events []Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListEvents")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list events", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(events)).InfoContext(ctx, "events listed")
	}()

	var raw []Event
	raw, err = s.events.ListEvents(ctx)
	if err != nil {
		if isNotFoundError(err) {
			err = nil
			return
		}
		return
	}

	events = sortEvents(raw)
	return
}

// ListEventsInRange enumerates events overlapping the half-open [start, end)
// range, ordered by start time.
func (s *EventService) ListEventsInRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, nil
	}

	vErr := &ValidationError{}
	if start.IsZero() {
		vErr.add("start", "start is required")
	}
	if end.IsZero() {
		vErr.add("end", "end is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("range", "start must be before end")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	raw, err := s.events.ListEventsInRange(ctx, start, end)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	return sortEvents(raw), nil
}

// ListEventsNear returns events whose venue lies within the configured filter
// range of the given position. Events without recorded coordinates are
// silently excluded.
func (s *EventService) ListEventsNear(ctx context.Context, user Coordinates) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, nil
	}

	raw, err := s.events.ListEvents(ctx)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	origin := geo.Coordinates{Latitude: user.Latitude, Longitude: user.Longitude}
	nearby := make([]Event, 0, len(raw))
	for _, event := range raw {
		if event.Coordinates == nil {
			continue
		}
		venue := geo.Coordinates{Latitude: event.Coordinates.Latitude, Longitude: event.Coordinates.Longitude}
		if geo.WithinRange(origin, venue, s.filterRangeKm) {
			nearby = append(nearby, event)
		}
	}
	if len(nearby) == 0 {
		return nil, nil
	}
	return sortEvents(nearby), nil
}

// DeleteEvent removes an event. Its attendance records go with it.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEvent", "event_id", eventID)

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		err = mapEventRepoError(err)
		logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

func (s *EventService) ensurePropertyExists(ctx context.Context, propertyID *string) error {
	if propertyID == nil || strings.TrimSpace(*propertyID) == "" || s.properties == nil {
		return nil
	}
	exists, err := s.properties.PropertyExists(ctx, *propertyID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("property_id", "property does not exist")
	return vErr
}

func validateEventCore(title string, eventType EventType, status EventStatus, start, end time.Time, vErr *ValidationError) {
	if strings.TrimSpace(title) == "" {
		vErr.add("title", "title is required")
	}

	if !validEventType(eventType) {
		vErr.add("type", "unknown event type")
	}

	if !validEventStatus(status) {
		vErr.add("status", "unknown event status")
	}

	if start.IsZero() {
		vErr.add("start", "start is required")
	}
	if end.IsZero() {
		vErr.add("end", "end is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("time", "start must be before end")
	}
}

func validEventType(t EventType) bool {
	switch t {
	case EventTypePropertyViewing, EventTypeClientMeeting, EventTypeContractSigning, EventTypeInternalMeeting, EventTypeFollowUp:
		return true
	}
	return false
}

func validEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusScheduled, EventStatusPending, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

func validParticipantRole(r ParticipantRole) bool {
	switch r {
	case RoleAgent, RoleClient, RoleAdmin, RoleOther:
		return true
	}
	return false
}

func normalizeParticipants(inputs []ParticipantInput, vErr *ValidationError) []EventParticipant {
	if len(inputs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(inputs))
	participants := make([]EventParticipant, 0, len(inputs))
	for i, input := range inputs {
		id := strings.TrimSpace(input.ParticipantID)
		if id == "" {
			vErr.add("participants", fmt.Sprintf("participant %d: id is required", i))
			continue
		}
		if _, ok := seen[id]; ok {
			vErr.add("participants", fmt.Sprintf("participant %s listed more than once", id))
			continue
		}
		if !validParticipantRole(input.Role) {
			vErr.add("participants", fmt.Sprintf("participant %s: unknown role", id))
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, EventParticipant{
			ParticipantID: id,
			Name:          strings.TrimSpace(input.Name),
			Email:         strings.TrimSpace(input.Email),
			Role:          input.Role,
		})
	}
	return participants
}

// mergeParticipants replaces the assignment list while carrying forward the
// check-in projection of participants that remain on the event.
func mergeParticipants(existing, replacement []EventParticipant) []EventParticipant {
	byID := make(map[string]EventParticipant, len(existing))
	for _, p := range existing {
		byID[p.ParticipantID] = p
	}

	merged := make([]EventParticipant, 0, len(replacement))
	for _, p := range replacement {
		if prior, ok := byID[p.ParticipantID]; ok {
			p.CheckInStatus = prior.CheckInStatus
			p.CheckInTime = prior.CheckInTime
			p.CheckInLocation = prior.CheckInLocation
			p.CheckInError = prior.CheckInError
		}
		merged = append(merged, p)
	}
	return merged
}

func sortEvents(events []Event) []Event {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered
}

func cloneCoordinates(coords *Coordinates) *Coordinates {
	if coords == nil {
		return nil
	}
	clone := *coords
	return &clone
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("event_id", "related records are missing")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
