package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/estate-events/internal/application"
)

type capturingParticipantRepo struct {
	created application.Participant
}

func (c *capturingParticipantRepo) CreateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	c.created = participant
	return participant, nil
}

func (c *capturingParticipantRepo) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	return application.Participant{}, application.ErrNotFound
}

func (c *capturingParticipantRepo) GetParticipantByEmail(ctx context.Context, email string) (application.Participant, error) {
	return application.Participant{}, application.ErrNotFound
}

func (c *capturingParticipantRepo) ListParticipants(ctx context.Context) ([]application.Participant, error) {
	return nil, nil
}

func (c *capturingParticipantRepo) DeleteParticipant(ctx context.Context, id string) error {
	return nil
}

func TestServiceFactoryNewParticipantService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingParticipantRepo{}

	svc := factory.NewParticipantService(ParticipantServiceDeps{Participants: repo})
	input := application.ParticipantInputRecord{
		Name:  "Emily Johnson",
		Email: "Emily.Johnson@example.com",
		Role:  application.RoleClient,
	}

	participant, err := svc.CreateParticipant(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateParticipant returned error: %v", err)
	}

	if participant.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", participant.ID)
	}
	if participant.Email != "emily.johnson@example.com" {
		t.Fatalf("expected lowercased email, got %q", participant.Email)
	}
	if repo.created.ID != participant.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !participant.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), participant.CreatedAt)
	}
}

func TestEventFixtureWindow(t *testing.T) {
	event := NewEventFixture()

	if !event.CheckInWindow.Start.Equal(event.Start.Add(-time.Hour)) {
		t.Fatalf("expected window to open one hour before start, got %v", event.CheckInWindow.Start)
	}
	if !event.CheckInWindow.End.Equal(event.End.Add(time.Hour)) {
		t.Fatalf("expected window to close one hour after end, got %v", event.CheckInWindow.End)
	}
	if event.QRCode != "http://localhost:5173/event/"+event.ID+"/check-in" {
		t.Fatalf("unexpected check-in URL %q", event.QRCode)
	}
}
