package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/estate-events/internal/persistence"
)

type propertyRepoStub struct {
	createErr error
	created   Property

	getProperty Property
	getErr      error

	list    []Property
	listErr error
}

func (r *propertyRepoStub) CreateProperty(ctx context.Context, property Property) (Property, error) {
	if r.createErr != nil {
		return Property{}, r.createErr
	}
	r.created = property
	return property, nil
}

func (r *propertyRepoStub) GetProperty(ctx context.Context, id string) (Property, error) {
	if r.getErr != nil {
		return Property{}, r.getErr
	}
	return r.getProperty, nil
}

func (r *propertyRepoStub) ListProperties(ctx context.Context) ([]Property, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Property, len(r.list))
	copy(out, r.list)
	return out, nil
}

func TestPropertyService_CreateProperty(t *testing.T) {
	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewPropertyService(nil, nil, nil)

		price := int64(-1)
		_, err := svc.CreateProperty(context.Background(), PropertyInput{
			Name:        "  ",
			Address:     "",
			Coordinates: Coordinates{Latitude: 120, Longitude: -200},
			Price:       &price,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "address", "latitude", "longitude", "price"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("persists normalized catalog entries", func(t *testing.T) {
		repo := &propertyRepoStub{}
		now := time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
		propertyType := "  condo  "
		svc := NewPropertyService(repo, func() string { return "prop-1" }, func() time.Time { return now })

		created, err := svc.CreateProperty(context.Background(), PropertyInput{
			Name:        "  Downtown Loft ",
			Address:     " 123 Main St, Los Angeles, CA ",
			Coordinates: Coordinates{Latitude: 34.052235, Longitude: -118.243683},
			Type:        &propertyType,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.ID != "prop-1" {
			t.Fatalf("expected generated ID, got %q", repo.created.ID)
		}
		if repo.created.Name != "Downtown Loft" {
			t.Fatalf("expected name to be trimmed, got %q", repo.created.Name)
		}
		if repo.created.Type == nil || *repo.created.Type != "condo" {
			t.Fatalf("expected type to be trimmed, got %v", repo.created.Type)
		}
		if !repo.created.CreatedAt.Equal(now) {
			t.Fatalf("expected timestamps from injected clock, got %v", repo.created.CreatedAt)
		}
		if created.ID != "prop-1" {
			t.Fatalf("expected returned property to include ID, got %q", created.ID)
		}
	})
}

func TestPropertyService_GetProperty(t *testing.T) {
	t.Run("propagates ErrNotFound", func(t *testing.T) {
		repo := &propertyRepoStub{getErr: persistence.ErrNotFound}
		svc := NewPropertyService(repo, nil, nil)

		_, err := svc.GetProperty(context.Background(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPropertyService_ListProperties(t *testing.T) {
	t.Run("orders the catalog by name", func(t *testing.T) {
		repo := &propertyRepoStub{list: []Property{
			{ID: "prop-2", Name: "Suburban Home"},
			{ID: "prop-1", Name: "Downtown Loft"},
		}}
		svc := NewPropertyService(repo, nil, nil)

		got, err := svc.ListProperties(context.Background())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 2 || got[0].ID != "prop-1" || got[1].ID != "prop-2" {
			t.Fatalf("unexpected ordering %+v", got)
		}
	})
}
