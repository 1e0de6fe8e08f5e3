package sqlite

import (
	"context"

	"github.com/example/estate-events/internal/persistence"
)

// ParticipantRepository implements persistence.ParticipantRepository using SQLite.
type ParticipantRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateParticipant inserts a new participant directory entry.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	if participant.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO participants (id, name, email, role, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		participant.ID,
		participant.Name,
		participant.Email,
		string(participant.Role),
		participant.Phone,
		formatTime(participant.CreatedAt),
		formatTime(participant.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetParticipant retrieves a participant by ID.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, email, role, phone, created_at, updated_at
		FROM participants WHERE id = ?
	`, id)
	return r.scanParticipant(row)
}

// GetParticipantByEmail retrieves a participant by email, case-insensitively.
func (r *ParticipantRepository) GetParticipantByEmail(ctx context.Context, email string) (persistence.Participant, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, email, role, phone, created_at, updated_at
		FROM participants WHERE email = ? COLLATE NOCASE
	`, email)
	return r.scanParticipant(row)
}

// ListParticipants returns all participants ordered by CreatedAt ascending.
func (r *ParticipantRepository) ListParticipants(ctx context.Context) ([]persistence.Participant, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, email, role, phone, created_at, updated_at
		FROM participants ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		participant, err := r.scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

// DeleteParticipant removes a participant from the directory.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM participants WHERE id = ?`, id)
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

func (r *ParticipantRepository) scanParticipant(row rowScanner) (persistence.Participant, error) {
	var (
		participant persistence.Participant
		role        string
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(&participant.ID, &participant.Name, &participant.Email, &role, &participant.Phone, &createdAt, &updatedAt); err != nil {
		return persistence.Participant{}, r.mapper.MapError(err)
	}
	participant.Role = persistence.ParticipantRole(role)

	var err error
	if participant.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Participant{}, err
	}
	if participant.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Participant{}, err
	}
	return participant, nil
}
