package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/estate-events/internal/persistence"
)

func sampleEvent(id string) persistence.Event {
	start := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	return persistence.Event{
		ID:          id,
		Title:       "Open House",
		Type:        persistence.EventTypePropertyViewing,
		Start:       start,
		End:         start.Add(time.Hour),
		Status:      persistence.EventStatusScheduled,
		WindowStart: start.Add(-time.Hour),
		WindowEnd:   start.Add(2 * time.Hour),
		Participants: []persistence.EventParticipant{
			{ParticipantID: "user-1", Name: "Emily Johnson", Email: "emily@example.com", Role: persistence.RoleClient},
		},
		CreatedAt: start.Add(-48 * time.Hour),
		UpdatedAt: start.Add(-48 * time.Hour),
	}
}

func TestEventLifecycle(t *testing.T) {
	store := Open()
	ctx := context.Background()

	event := sampleEvent("event-1")
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if err := store.CreateEvent(ctx, event); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated ID, got %v", err)
	}

	stored, err := store.GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if stored.Title != "Open House" {
		t.Fatalf("unexpected title %q", stored.Title)
	}

	// Mutating the returned value must not leak into the store.
	stored.Participants[0].Name = "changed"
	again, err := store.GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if again.Participants[0].Name != "Emily Johnson" {
		t.Fatalf("stored event was mutated through a returned copy")
	}

	if err := store.DeleteEvent(ctx, "event-1"); err != nil {
		t.Fatalf("DeleteEvent returned error: %v", err)
	}
	if _, err := store.GetEvent(ctx, "event-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListEventsOrdering(t *testing.T) {
	store := Open()
	ctx := context.Background()

	later := sampleEvent("event-b")
	later.Start = later.Start.Add(3 * time.Hour)
	earlier := sampleEvent("event-a")

	if err := store.CreateEvent(ctx, later); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if err := store.CreateEvent(ctx, earlier); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 2 || events[0].ID != "event-a" || events[1].ID != "event-b" {
		t.Fatalf("expected events ordered by start, got %+v", events)
	}

	ranged, err := store.ListEventsInRange(ctx, earlier.Start, earlier.Start.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListEventsInRange returned error: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != "event-a" {
		t.Fatalf("expected range to select event-a only, got %+v", ranged)
	}
}

func TestEventParticipants(t *testing.T) {
	store := Open()
	ctx := context.Background()

	if err := store.CreateEvent(ctx, sampleEvent("event-1")); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	guest := persistence.EventParticipant{ParticipantID: "temp-1", Name: "guest", Email: "guest@example.com", Role: persistence.RoleOther}
	if err := store.AddEventParticipant(ctx, "event-1", guest); err != nil {
		t.Fatalf("AddEventParticipant returned error: %v", err)
	}
	if err := store.AddEventParticipant(ctx, "event-1", guest); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated participant, got %v", err)
	}

	checkInAt := time.Date(2024, time.June, 1, 10, 5, 0, 0, time.UTC)
	guest.CheckInStatus = "success"
	guest.CheckInTime = &checkInAt
	guest.CheckInLocation = &persistence.CapturedLocation{Latitude: 34.05, Longitude: -118.24, Accuracy: 10}
	if err := store.UpdateEventParticipant(ctx, "event-1", guest); err != nil {
		t.Fatalf("UpdateEventParticipant returned error: %v", err)
	}

	event, err := store.GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	var projection *persistence.EventParticipant
	for i := range event.Participants {
		if event.Participants[i].ParticipantID == "temp-1" {
			projection = &event.Participants[i]
		}
	}
	if projection == nil {
		t.Fatal("expected guest participant on the event")
	}
	if projection.CheckInStatus != "success" || projection.CheckInLocation == nil {
		t.Fatalf("expected check-in projection to persist, got %+v", projection)
	}

	missing := persistence.EventParticipant{ParticipantID: "nobody"}
	if err := store.UpdateEventParticipant(ctx, "event-1", missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown participant, got %v", err)
	}
}

func TestAttendanceLedgerAppendOnly(t *testing.T) {
	store := Open()
	ctx := context.Background()

	if err := store.CreateEvent(ctx, sampleEvent("event-1")); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	orphan := persistence.AttendanceRecord{ID: "rec-0", EventID: "missing", ParticipantID: "user-1"}
	if err := store.AppendRecord(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation for unknown event, got %v", err)
	}

	base := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"rec-1", "rec-2", "rec-3"} {
		record := persistence.AttendanceRecord{
			ID:            id,
			EventID:       "event-1",
			ParticipantID: "user-1",
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
			Status:        "success",
		}
		if err := store.AppendRecord(ctx, record); err != nil {
			t.Fatalf("AppendRecord returned error: %v", err)
		}
	}

	records, err := store.ListRecords(ctx, "event-1")
	if err != nil {
		t.Fatalf("ListRecords returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, id := range []string{"rec-1", "rec-2", "rec-3"} {
		if records[i].ID != id {
			t.Fatalf("expected insertion order, got %+v", records)
		}
	}

	if err := store.DeleteEvent(ctx, "event-1"); err != nil {
		t.Fatalf("DeleteEvent returned error: %v", err)
	}
	if _, err := store.ListRecords(ctx, "event-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ledger to be discarded with the event, got %v", err)
	}
}

func TestParticipantDirectory(t *testing.T) {
	store := Open()
	ctx := context.Background()

	participant := persistence.Participant{
		ID:    "user-1",
		Name:  "John Smith",
		Email: "john.smith@example.com",
		Role:  persistence.RoleAgent,
		Phone: "555-0101",
	}
	if err := store.CreateParticipant(ctx, participant); err != nil {
		t.Fatalf("CreateParticipant returned error: %v", err)
	}

	duplicate := persistence.Participant{ID: "user-2", Email: "JOHN.SMITH@example.com"}
	if err := store.CreateParticipant(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
	}

	found, err := store.GetParticipantByEmail(ctx, "John.Smith@Example.com")
	if err != nil {
		t.Fatalf("GetParticipantByEmail returned error: %v", err)
	}
	if found.ID != "user-1" {
		t.Fatalf("expected user-1, got %q", found.ID)
	}

	if err := store.DeleteParticipant(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteParticipant returned error: %v", err)
	}
	if err := store.DeleteParticipant(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestPropertyCatalog(t *testing.T) {
	store := Open()
	ctx := context.Background()

	price := int64(750000)
	condo := "condo"
	property := persistence.Property{
		ID:          "prop-1",
		Name:        "Downtown Loft",
		Address:     "123 Main St, Los Angeles, CA",
		Coordinates: persistence.Coordinates{Latitude: 34.052235, Longitude: -118.243683},
		Price:       &price,
		Type:        &condo,
	}
	if err := store.CreateProperty(ctx, property); err != nil {
		t.Fatalf("CreateProperty returned error: %v", err)
	}
	if err := store.CreateProperty(ctx, property); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated ID, got %v", err)
	}

	stored, err := store.GetProperty(ctx, "prop-1")
	if err != nil {
		t.Fatalf("GetProperty returned error: %v", err)
	}
	if stored.Name != "Downtown Loft" || stored.Price == nil || *stored.Price != 750000 {
		t.Fatalf("unexpected stored property %+v", stored)
	}

	// Pointer fields are cloned on the way out.
	*stored.Price = 1
	again, err := store.GetProperty(ctx, "prop-1")
	if err != nil {
		t.Fatalf("GetProperty returned error: %v", err)
	}
	if *again.Price != 750000 {
		t.Fatal("stored property was mutated through a returned copy")
	}
}
