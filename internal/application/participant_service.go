package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// ParticipantRepository captures the persistence operations needed by the service.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	GetParticipant(ctx context.Context, id string) (Participant, error)
	GetParticipantByEmail(ctx context.Context, email string) (Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

// ParticipantService orchestrates validation and persistence for the agency directory.
type ParticipantService struct {
	participants ParticipantRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewParticipantService wires dependencies for directory operations.
func NewParticipantService(participants ParticipantRepository, idGenerator func() string, now func() time.Time) *ParticipantService {
	return NewParticipantServiceWithLogger(participants, idGenerator, now, nil)
}

// NewParticipantServiceWithLogger constructs a participant service with a specified logger.
func NewParticipantServiceWithLogger(participants ParticipantRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{participants: participants, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ParticipantService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ParticipantService", operation, attrs...)
}

// CreateParticipant validates input and persists a new directory entry.
func (s *ParticipantService) CreateParticipant(ctx context.Context, input ParticipantInputRecord) (participant Participant, err error) {
	if s == nil {
		err = fmt.Errorf("ParticipantService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateParticipant", "email", strings.TrimSpace(input.Email))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("participant_id", participant.ID).InfoContext(ctx, "participant created")
	}()

	vErr := validateParticipantInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	participant = Participant{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      input.Role,
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if s.participants == nil {
		return
	}

	var persisted Participant
	persisted, err = s.participants.CreateParticipant(ctx, participant)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	participant = persisted
	return
}

// GetParticipant returns a single directory entry.
func (s *ParticipantService) GetParticipant(ctx context.Context, id string) (Participant, error) {
	if s == nil {
		return Participant{}, fmt.Errorf("ParticipantService is nil")
	}
	if s.participants == nil {
		return Participant{}, fmt.Errorf("participant repository not configured")
	}

	participant, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return Participant{}, mapEventRepoError(err)
	}
	return participant, nil
}

// FindByEmail returns the directory entry for an email address. Lookup is
// case-insensitive.
func (s *ParticipantService) FindByEmail(ctx context.Context, email string) (Participant, error) {
	if s == nil {
		return Participant{}, fmt.Errorf("ParticipantService is nil")
	}
	if s.participants == nil {
		return Participant{}, fmt.Errorf("participant repository not configured")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required")
		return Participant{}, vErr
	}

	participant, err := s.participants.GetParticipantByEmail(ctx, email)
	if err != nil {
		return Participant{}, mapEventRepoError(err)
	}
	return participant, nil
}

// ListParticipants enumerates the directory ordered by name.
func (s *ParticipantService) ListParticipants(ctx context.Context) (participants []Participant, err error) {
	if s == nil {
		err = fmt.Errorf("ParticipantService is nil")
		return
	}
	if s.participants == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListParticipants")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list participants", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(participants)).InfoContext(ctx, "participants listed")
	}()

	var raw []Participant
	raw, err = s.participants.ListParticipants(ctx)
	if err != nil {
		if isNotFoundError(err) {
			err = nil
			return
		}
		return
	}

	participants = make([]Participant, len(raw))
	copy(participants, raw)
	sort.Slice(participants, func(i, j int) bool {
		if strings.EqualFold(participants[i].Name, participants[j].Name) {
			return participants[i].ID < participants[j].ID
		}
		return strings.ToLower(participants[i].Name) < strings.ToLower(participants[j].Name)
	})

	return
}

// DeleteParticipant removes a directory entry. Existing attendance records
// keep their participant id.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ParticipantService is nil")
	}
	if s.participants == nil {
		return fmt.Errorf("participant repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteParticipant", "participant_id", id)

	if err := s.participants.DeleteParticipant(ctx, id); err != nil {
		err = mapEventRepoError(err)
		logger.ErrorContext(ctx, "failed to delete participant", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "participant deleted")
	return nil
}

func validateParticipantInput(input ParticipantInputRecord) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "must be a valid email address")
	}

	if !validParticipantRole(input.Role) {
		vErr.add("role", "unknown role")
	}

	return vErr
}
