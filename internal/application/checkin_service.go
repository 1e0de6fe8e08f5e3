package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/estate-events/internal/checkin"
	"github.com/example/estate-events/internal/geo"
	"github.com/example/estate-events/internal/location"
)

// EventCheckInRepository captures the event-side persistence interactions the
// check-in protocol needs.
type EventCheckInRepository interface {
	GetEvent(ctx context.Context, id string) (Event, error)
	AddEventParticipant(ctx context.Context, eventID string, participant EventParticipant) error
	UpdateEventParticipant(ctx context.Context, eventID string, participant EventParticipant) error
}

// CheckInService runs the check-in protocol: resolve the participant, acquire
// a location, record the outcome. Location failure degrades the attempt to a
// failed record instead of aborting it; only caller cancellation or a broken
// event lookup leaves no trace.
type CheckInService struct {
	events         EventCheckInRepository
	ledger         AttendanceLedger
	locationBudget time.Duration
	warnRangeKm    float64
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewCheckInService wires dependencies for the check-in protocol. warnRangeKm
// is the advisory distance threshold; locationBudget bounds a single
// acquisition attempt (location.DefaultTimeout when zero).
func NewCheckInService(events EventCheckInRepository, ledger AttendanceLedger, locationBudget time.Duration, warnRangeKm float64, idGenerator func() string, now func() time.Time) *CheckInService {
	return NewCheckInServiceWithLogger(events, ledger, locationBudget, warnRangeKm, idGenerator, now, nil)
}

// NewCheckInServiceWithLogger constructs a check-in service with a specified logger.
func NewCheckInServiceWithLogger(events EventCheckInRepository, ledger AttendanceLedger, locationBudget time.Duration, warnRangeKm float64, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CheckInService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CheckInService{
		events:         events,
		ledger:         ledger,
		locationBudget: locationBudget,
		warnRangeKm:    warnRangeKm,
		idGenerator:    idGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *CheckInService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CheckInService", operation, attrs...)
}

// CheckIn records one attendance attempt for an event.
//
// A resolved location failure still produces a failed record with the failure
// message attached. Caller cancellation during acquisition abandons the
// attempt and leaves the ledger untouched. Warnings are advisory only and
// never change the recorded status.
func (s *CheckInService) CheckIn(ctx context.Context, params CheckInParams) (result CheckInResult, err error) {
	if s == nil {
		err = fmt.Errorf("CheckInService is nil")
		return
	}
	if s.events == nil || s.ledger == nil {
		err = fmt.Errorf("check-in repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "CheckIn",
		"event_id", params.EventID,
		"participant_id", params.ParticipantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "check-in not recorded", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"participant_id", result.Participant.ParticipantID,
			"status", string(result.Status),
			"warning_count", len(result.Warnings),
		).InfoContext(ctx, "check-in recorded")
	}()

	event, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	participant, registered, err := s.resolveParticipant(event, params)
	if err != nil {
		return
	}
	if !registered {
		if err = s.events.AddEventParticipant(ctx, event.ID, participant); err != nil {
			err = mapEventRepoError(err)
			return
		}
	}

	// StateLocating is the protocol's single suspension point. An error here
	// means the caller walked away; nothing is recorded.
	fix, failure, err := location.Acquire(ctx, params.Source, s.locationBudget)
	if err != nil {
		return CheckInResult{State: checkin.StateLocating}, err
	}

	status := checkin.StatusSuccess
	state := checkin.StateLocationAcquired
	var captured *CapturedLocation
	var errorMessage *string

	if failure != nil {
		status = checkin.StatusFailed
		state = checkin.StateLocationFailed
		message := failure.Message
		errorMessage = &message
		if failure.Partial != nil {
			captured = capturedFromFix(*failure.Partial)
		}
	} else {
		captured = capturedFromFix(fix)
	}

	recordedAt := s.now()
	warnings := s.collectWarnings(event, captured, recordedAt)

	record := AttendanceRecord{
		ID:            s.idGenerator(),
		EventID:       event.ID,
		ParticipantID: participant.ParticipantID,
		Timestamp:     recordedAt,
		Status:        status,
		Location:      captured,
		ErrorMessage:  errorMessage,
	}

	persisted, err := s.ledger.AppendRecord(ctx, record)
	if err != nil {
		err = mapEventRepoError(err)
		return CheckInResult{State: state}, err
	}

	// The projection mirrors the participant's greatest-timestamp ledger
	// entry. Racing repeat check-ins may append out of timestamp order, so an
	// existing projection with a later timestamp survives the new record.
	candidates := []AttendanceRecord{persisted}
	if participant.CheckInTime != nil {
		candidates = append([]AttendanceRecord{{
			ParticipantID: participant.ParticipantID,
			Timestamp:     *participant.CheckInTime,
			Status:        participant.CheckInStatus,
			Location:      participant.CheckInLocation,
			ErrorMessage:  participant.CheckInError,
		}}, candidates...)
	}
	latest := ProjectLatest(candidates)[participant.ParticipantID]
	latestAt := latest.Timestamp

	participant.CheckInStatus = latest.Status
	participant.CheckInTime = &latestAt
	participant.CheckInLocation = latest.Location
	participant.CheckInError = latest.ErrorMessage

	if err = s.events.UpdateEventParticipant(ctx, event.ID, participant); err != nil {
		err = mapEventRepoError(err)
		return CheckInResult{State: state}, err
	}

	return CheckInResult{
		Participant: participant,
		Status:      status,
		State:       checkin.StateCompleted,
		Warnings:    warnings,
		Record:      persisted,
	}, nil
}

// resolveParticipant matches the request against the event roster: by id
// first, then by email. An unmatched email becomes a walk-up guest; a request
// with neither a matching id nor an email cannot be resolved.
func (s *CheckInService) resolveParticipant(event Event, params CheckInParams) (EventParticipant, bool, error) {
	id := strings.TrimSpace(params.ParticipantID)
	if id != "" {
		for _, p := range event.Participants {
			if p.ParticipantID == id {
				return p, true, nil
			}
		}
	}

	email := strings.TrimSpace(params.Email)
	if email == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required for unregistered participants")
		return EventParticipant{}, false, vErr
	}

	for _, p := range event.Participants {
		if p.Email != "" && strings.EqualFold(p.Email, email) {
			return p, true, nil
		}
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = emailLocalPart(email)
	}
	guest := EventParticipant{
		ParticipantID: "temp-" + s.idGenerator(),
		Name:          name,
		Email:         email,
		Role:          RoleOther,
	}
	return guest, false, nil
}

func (s *CheckInService) collectWarnings(event Event, captured *CapturedLocation, recordedAt time.Time) []CheckInWarning {
	var warnings []CheckInWarning

	if !event.CheckInWindow.Contains(recordedAt) {
		warnings = append(warnings, CheckInWarning{
			Code:    WarningOutsideWindow,
			Message: "Check-in recorded outside the event time window.",
		})
	}

	if event.Coordinates != nil && captured != nil && s.warnRangeKm > 0 {
		distance := geo.DistanceKm(
			geo.Coordinates{Latitude: captured.Latitude, Longitude: captured.Longitude},
			geo.Coordinates{Latitude: event.Coordinates.Latitude, Longitude: event.Coordinates.Longitude},
		)
		if distance > s.warnRangeKm {
			warnings = append(warnings, CheckInWarning{
				Code:       WarningOutOfRange,
				Message:    fmt.Sprintf("Check-in recorded %.2f km from the event location.", distance),
				DistanceKm: distance,
			})
		}
	}

	return warnings
}

func capturedFromFix(fix location.Fix) *CapturedLocation {
	return &CapturedLocation{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Accuracy:  fix.Accuracy,
	}
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
