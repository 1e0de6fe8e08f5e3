package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// PropertyRepository captures the persistence operations needed by the service.
type PropertyRepository interface {
	CreateProperty(ctx context.Context, property Property) (Property, error)
	GetProperty(ctx context.Context, id string) (Property, error)
	ListProperties(ctx context.Context) ([]Property, error)
}

// PropertyService orchestrates validation and persistence for the property catalog.
type PropertyService struct {
	properties  PropertyRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPropertyService wires dependencies for catalog operations.
func NewPropertyService(properties PropertyRepository, idGenerator func() string, now func() time.Time) *PropertyService {
	return NewPropertyServiceWithLogger(properties, idGenerator, now, nil)
}

// NewPropertyServiceWithLogger constructs a property service with a specified logger.
func NewPropertyServiceWithLogger(properties PropertyRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PropertyService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PropertyService{properties: properties, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *PropertyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PropertyService", operation, attrs...)
}

// CreateProperty validates input and persists a new catalog entry.
func (s *PropertyService) CreateProperty(ctx context.Context, input PropertyInput) (property Property, err error) {
	if s == nil {
		err = fmt.Errorf("PropertyService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateProperty", "name", strings.TrimSpace(input.Name))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create property", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("property_id", property.ID).InfoContext(ctx, "property created")
	}()

	vErr := validatePropertyInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	property = Property{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Address:     strings.TrimSpace(input.Address),
		Coordinates: input.Coordinates,
		Price:       input.Price,
		Type:        normalizeOptionalString(input.Type),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	if s.properties == nil {
		return
	}

	var persisted Property
	persisted, err = s.properties.CreateProperty(ctx, property)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	property = persisted
	return
}

// GetProperty returns a single catalog entry.
func (s *PropertyService) GetProperty(ctx context.Context, id string) (Property, error) {
	if s == nil {
		return Property{}, fmt.Errorf("PropertyService is nil")
	}
	if s.properties == nil {
		return Property{}, fmt.Errorf("property repository not configured")
	}

	property, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		return Property{}, mapEventRepoError(err)
	}
	return property, nil
}

// ListProperties enumerates the catalog ordered by name.
func (s *PropertyService) ListProperties(ctx context.Context) (properties []Property, err error) {
	if s == nil {
		err = fmt.Errorf("PropertyService is nil")
		return
	}
	if s.properties == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListProperties")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list properties", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(properties)).InfoContext(ctx, "properties listed")
	}()

	var raw []Property
	raw, err = s.properties.ListProperties(ctx)
	if err != nil {
		if isNotFoundError(err) {
			err = nil
			return
		}
		return
	}

	properties = make([]Property, len(raw))
	copy(properties, raw)
	sort.Slice(properties, func(i, j int) bool {
		if strings.EqualFold(properties[i].Name, properties[j].Name) {
			return properties[i].ID < properties[j].ID
		}
		return strings.ToLower(properties[i].Name) < strings.ToLower(properties[j].Name)
	})

	return
}

func validatePropertyInput(input PropertyInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		vErr.add("address", "address is required")
	}
	if input.Coordinates.Latitude < -90 || input.Coordinates.Latitude > 90 {
		vErr.add("latitude", "latitude must be between -90 and 90")
	}
	if input.Coordinates.Longitude < -180 || input.Coordinates.Longitude > 180 {
		vErr.add("longitude", "longitude must be between -180 and 180")
	}
	if input.Price != nil && *input.Price < 0 {
		vErr.add("price", "price must not be negative")
	}

	return vErr
}
