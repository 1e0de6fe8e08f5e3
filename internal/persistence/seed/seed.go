// Package seed installs a deterministic demo dataset used for local
// development and manual testing.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/example/estate-events/internal/checkin"
	"github.com/example/estate-events/internal/persistence"
)

// Stores groups the repositories the seeder writes to.
type Stores struct {
	Events       persistence.EventRepository
	Participants persistence.ParticipantRepository
	Properties   persistence.PropertyRepository
}

// Apply inserts the demo dataset. Identifiers are fixed so repeated runs
// against a fresh store produce the same data; running against a store that
// already holds the dataset fails with a duplicate error.
func Apply(ctx context.Context, stores Stores, frontendBaseURL string, now time.Time) error {
	for _, property := range Properties(now) {
		if err := stores.Properties.CreateProperty(ctx, property); err != nil {
			return fmt.Errorf("seed property %s: %w", property.ID, err)
		}
	}

	for _, participant := range Participants(now) {
		if err := stores.Participants.CreateParticipant(ctx, participant); err != nil {
			return fmt.Errorf("seed participant %s: %w", participant.ID, err)
		}
	}

	event, err := SampleEvent(frontendBaseURL, now)
	if err != nil {
		return err
	}
	if err := stores.Events.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("seed event %s: %w", event.ID, err)
	}

	return nil
}

// Properties returns the demo property catalog.
func Properties(now time.Time) []persistence.Property {
	condo := "condo"
	house := "house"
	commercial := "commercial"
	land := "land"
	apartment := "apartment"
	price := func(v int64) *int64 { return &v }

	return []persistence.Property{
		{
			ID:          "prop-1",
			Name:        "Downtown Loft",
			Address:     "123 Main St, Los Angeles, CA",
			Coordinates: persistence.Coordinates{Latitude: 34.052235, Longitude: -118.243683},
			Price:       price(750000),
			Type:        &condo,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "prop-2",
			Name:        "Suburban Family Home",
			Address:     "456 Oak Ave, Pasadena, CA",
			Coordinates: persistence.Coordinates{Latitude: 34.147785, Longitude: -118.144516},
			Price:       price(1250000),
			Type:        &house,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "prop-3",
			Name:        "Harbor View Office",
			Address:     "789 Harbor Blvd, Long Beach, CA",
			Coordinates: persistence.Coordinates{Latitude: 33.770050, Longitude: -118.193741},
			Price:       price(2400000),
			Type:        &commercial,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "prop-4",
			Name:        "Hillside Lot",
			Address:     "12 Canyon Rd, Glendale, CA",
			Coordinates: persistence.Coordinates{Latitude: 34.142508, Longitude: -118.255075},
			Price:       price(420000),
			Type:        &land,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "prop-5",
			Name:        "Seaside Apartment",
			Address:     "34 Ocean Dr, Santa Monica, CA",
			Coordinates: persistence.Coordinates{Latitude: 34.019454, Longitude: -118.491191},
			Price:       price(980000),
			Type:        &apartment,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Participants returns the demo directory.
func Participants(now time.Time) []persistence.Participant {
	return []persistence.Participant{
		{ID: "user-1", Name: "John Smith", Email: "john.smith@example.com", Role: persistence.RoleAgent, Phone: "555-0101", CreatedAt: now, UpdatedAt: now},
		{ID: "user-2", Name: "Emily Johnson", Email: "emily.johnson@example.com", Role: persistence.RoleClient, Phone: "555-0102", CreatedAt: now, UpdatedAt: now},
		{ID: "user-3", Name: "Michael Brown", Email: "michael.brown@example.com", Role: persistence.RoleClient, Phone: "555-0103", CreatedAt: now, UpdatedAt: now},
		{ID: "user-4", Name: "Sarah Davis", Email: "sarah.davis@example.com", Role: persistence.RoleAgent, Phone: "555-0104", CreatedAt: now, UpdatedAt: now},
		{ID: "user-5", Name: "Robert Wilson", Email: "robert.wilson@example.com", Role: persistence.RoleAdmin, Phone: "555-0105", CreatedAt: now, UpdatedAt: now},
	}
}

// SampleEvent returns a property viewing scheduled for the day after now,
// attached to prop-1 with two registered participants.
func SampleEvent(frontendBaseURL string, now time.Time) (persistence.Event, error) {
	const eventID = "event-1"

	start := now.Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(time.Hour)
	window := checkin.ComputeWindow(start, end)

	qrCode, err := checkin.IssueCheckInURL(frontendBaseURL, eventID)
	if err != nil {
		return persistence.Event{}, fmt.Errorf("seed event %s: %w", eventID, err)
	}

	propertyID := "prop-1"
	return persistence.Event{
		ID:          eventID,
		Title:       "Downtown Loft Open House",
		Type:        persistence.EventTypePropertyViewing,
		Start:       start,
		End:         end,
		Status:      persistence.EventStatusScheduled,
		Location:    "123 Main St, Los Angeles, CA",
		Description: "Walk-through of the renovated loft with the listing agent.",
		Coordinates: &persistence.Coordinates{Latitude: 34.052235, Longitude: -118.243683},
		PropertyID:  &propertyID,
		CreatedBy:   "user-1",
		QRCode:      qrCode,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Participants: []persistence.EventParticipant{
			{ParticipantID: "user-2", Name: "Emily Johnson", Email: "emily.johnson@example.com", Role: persistence.RoleClient},
			{ParticipantID: "user-3", Name: "Michael Brown", Email: "michael.brown@example.com", Role: persistence.RoleClient},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
