package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/estate-events/internal/application"
	"github.com/example/estate-events/internal/checkin"
	"github.com/example/estate-events/internal/config"
	httptransport "github.com/example/estate-events/internal/http"
	"github.com/example/estate-events/internal/persistence"
	"github.com/example/estate-events/internal/persistence/memory"
	"github.com/example/estate-events/internal/persistence/seed"
	"github.com/example/estate-events/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := openStorage(context.Background(), cfg.StorageDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if cfg.SeedDemoData {
		stores := seed.Stores{
			Events:       storage.events,
			Participants: storage.participants,
			Properties:   storage.properties,
		}
		if err := seed.Apply(context.Background(), stores, cfg.FrontendBaseURL, time.Now().UTC()); err != nil {
			logger.Warn("failed to seed demo data", "error", err)
		}
	}

	idGenerator := uuid.NewString
	now := time.Now

	eventRepo := newEventRepositoryAdapter(storage.events)
	ledger := newAttendanceLedgerAdapter(storage.attendance)
	participantRepo := newParticipantRepositoryAdapter(storage.participants)
	propertyRepo := newPropertyRepositoryAdapter(storage.properties)

	eventService := application.NewEventServiceWithLogger(eventRepo, ledger, propertyRepo, cfg.FrontendBaseURL, cfg.FilterRangeKm, idGenerator, now, logger)
	checkInService := application.NewCheckInServiceWithLogger(eventRepo, ledger, cfg.LocationTimeout, cfg.WarnRangeKm, idGenerator, now, logger)
	attendanceService := application.NewAttendanceServiceWithLogger(eventRepo, ledger, now, logger)
	participantService := application.NewParticipantServiceWithLogger(participantRepo, idGenerator, now, logger)
	propertyService := application.NewPropertyServiceWithLogger(propertyRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Events:       httptransport.NewEventHandler(eventService, logger),
		CheckIns:     httptransport.NewCheckInHandler(checkInService, logger),
		Attendance:   httptransport.NewAttendanceHandler(attendanceService, logger),
		Participants: httptransport.NewParticipantHandler(participantService, logger),
		Properties:   httptransport.NewPropertyHandler(propertyService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("event API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// storage bundles the persistence repositories behind whichever backend the
// DSN selects.
type storage struct {
	events       persistence.EventRepository
	attendance   persistence.AttendanceRepository
	participants persistence.ParticipantRepository
	properties   persistence.PropertyRepository
	close        func() error
}

func openStorage(ctx context.Context, dsn string) (storage, error) {
	if dsn == "memory" {
		store := memory.Open()
		return storage{
			events:       store,
			attendance:   store,
			participants: store,
			properties:   store,
			close:        store.Close,
		}, nil
	}

	store, err := sqlite.Open(dsn)
	if err != nil {
		return storage{}, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return storage{}, err
	}
	return storage{
		events:       store.Events,
		attendance:   store.Attendance,
		participants: store.Participants,
		properties:   store.Properties,
		close:        store.Close,
	}, nil
}

// eventRepositoryAdapter bridges the application event interfaces onto the
// persistence repository. It serves the event service, the check-in service,
// and attendance lookups.
type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationEvents(models), nil
}

func (a *eventRepositoryAdapter) ListEventsInRange(ctx context.Context, start, end time.Time) ([]application.Event, error) {
	models, err := a.repo.ListEventsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return toApplicationEvents(models), nil
}

func (a *eventRepositoryAdapter) AddEventParticipant(ctx context.Context, eventID string, participant application.EventParticipant) error {
	return a.repo.AddEventParticipant(ctx, eventID, toPersistenceEventParticipant(participant))
}

func (a *eventRepositoryAdapter) UpdateEventParticipant(ctx context.Context, eventID string, participant application.EventParticipant) error {
	return a.repo.UpdateEventParticipant(ctx, eventID, toPersistenceEventParticipant(participant))
}

type attendanceLedgerAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceLedgerAdapter(repo persistence.AttendanceRepository) *attendanceLedgerAdapter {
	return &attendanceLedgerAdapter{repo: repo}
}

func (a *attendanceLedgerAdapter) AppendRecord(ctx context.Context, record application.AttendanceRecord) (application.AttendanceRecord, error) {
	if err := a.repo.AppendRecord(ctx, toPersistenceRecord(record)); err != nil {
		return application.AttendanceRecord{}, err
	}
	return record, nil
}

func (a *attendanceLedgerAdapter) ListRecords(ctx context.Context, eventID string) ([]application.AttendanceRecord, error) {
	models, err := a.repo.ListRecords(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	records := make([]application.AttendanceRecord, 0, len(models))
	for _, model := range models {
		records = append(records, toApplicationRecord(model))
	}
	return records, nil
}

type participantRepositoryAdapter struct {
	repo persistence.ParticipantRepository
}

func newParticipantRepositoryAdapter(repo persistence.ParticipantRepository) *participantRepositoryAdapter {
	return &participantRepositoryAdapter{repo: repo}
}

func (a *participantRepositoryAdapter) CreateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	if err := a.repo.CreateParticipant(ctx, toPersistenceParticipant(participant)); err != nil {
		return application.Participant{}, err
	}
	stored, err := a.repo.GetParticipant(ctx, participant.ID)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantRepositoryAdapter) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	stored, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantRepositoryAdapter) GetParticipantByEmail(ctx context.Context, email string) (application.Participant, error) {
	stored, err := a.repo.GetParticipantByEmail(ctx, email)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantRepositoryAdapter) ListParticipants(ctx context.Context) ([]application.Participant, error) {
	models, err := a.repo.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	participants := make([]application.Participant, 0, len(models))
	for _, model := range models {
		participants = append(participants, toApplicationParticipant(model))
	}
	return participants, nil
}

func (a *participantRepositoryAdapter) DeleteParticipant(ctx context.Context, id string) error {
	return a.repo.DeleteParticipant(ctx, id)
}

// propertyRepositoryAdapter serves both the property service and the existence
// checks the event service performs before attaching a property.
type propertyRepositoryAdapter struct {
	repo persistence.PropertyRepository
}

func newPropertyRepositoryAdapter(repo persistence.PropertyRepository) *propertyRepositoryAdapter {
	return &propertyRepositoryAdapter{repo: repo}
}

func (a *propertyRepositoryAdapter) CreateProperty(ctx context.Context, property application.Property) (application.Property, error) {
	if err := a.repo.CreateProperty(ctx, toPersistenceProperty(property)); err != nil {
		return application.Property{}, err
	}
	stored, err := a.repo.GetProperty(ctx, property.ID)
	if err != nil {
		return application.Property{}, err
	}
	return toApplicationProperty(stored), nil
}

func (a *propertyRepositoryAdapter) GetProperty(ctx context.Context, id string) (application.Property, error) {
	stored, err := a.repo.GetProperty(ctx, id)
	if err != nil {
		return application.Property{}, err
	}
	return toApplicationProperty(stored), nil
}

func (a *propertyRepositoryAdapter) ListProperties(ctx context.Context) ([]application.Property, error) {
	models, err := a.repo.ListProperties(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	properties := make([]application.Property, 0, len(models))
	for _, model := range models {
		properties = append(properties, toApplicationProperty(model))
	}
	return properties, nil
}

func (a *propertyRepositoryAdapter) PropertyExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetProperty(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toApplicationEvents(models []persistence.Event) []application.Event {
	if len(models) == 0 {
		return nil
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events
}

func toApplicationEvent(model persistence.Event) application.Event {
	participants := make([]application.EventParticipant, 0, len(model.Participants))
	for _, participant := range model.Participants {
		participants = append(participants, toApplicationEventParticipant(participant))
	}
	return application.Event{
		ID:          model.ID,
		Title:       model.Title,
		Type:        application.EventType(model.Type),
		Start:       model.Start,
		End:         model.End,
		Status:      application.EventStatus(model.Status),
		Location:    model.Location,
		Description: model.Description,
		Coordinates: toApplicationCoordinates(model.Coordinates),
		PropertyID:  cloneString(model.PropertyID),
		CreatedBy:   model.CreatedBy,
		QRCode:      model.QRCode,
		CheckInWindow: checkin.Window{
			Start: model.WindowStart,
			End:   model.WindowEnd,
		},
		Participants: participants,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	participants := make([]persistence.EventParticipant, 0, len(event.Participants))
	for _, participant := range event.Participants {
		participants = append(participants, toPersistenceEventParticipant(participant))
	}
	return persistence.Event{
		ID:           event.ID,
		Title:        event.Title,
		Type:         persistence.EventType(event.Type),
		Start:        event.Start,
		End:          event.End,
		Status:       persistence.EventStatus(event.Status),
		Location:     event.Location,
		Description:  event.Description,
		Coordinates:  toPersistenceCoordinates(event.Coordinates),
		PropertyID:   cloneString(event.PropertyID),
		CreatedBy:    event.CreatedBy,
		QRCode:       event.QRCode,
		WindowStart:  event.CheckInWindow.Start,
		WindowEnd:    event.CheckInWindow.End,
		Participants: participants,
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

func toApplicationEventParticipant(model persistence.EventParticipant) application.EventParticipant {
	return application.EventParticipant{
		ParticipantID:   model.ParticipantID,
		Name:            model.Name,
		Email:           model.Email,
		Role:            application.ParticipantRole(model.Role),
		CheckInStatus:   checkin.Status(model.CheckInStatus),
		CheckInTime:     cloneTime(model.CheckInTime),
		CheckInLocation: toApplicationLocation(model.CheckInLocation),
		CheckInError:    cloneString(model.CheckInError),
	}
}

func toPersistenceEventParticipant(participant application.EventParticipant) persistence.EventParticipant {
	return persistence.EventParticipant{
		ParticipantID:   participant.ParticipantID,
		Name:            participant.Name,
		Email:           participant.Email,
		Role:            persistence.ParticipantRole(participant.Role),
		CheckInStatus:   string(participant.CheckInStatus),
		CheckInTime:     cloneTime(participant.CheckInTime),
		CheckInLocation: toPersistenceLocation(participant.CheckInLocation),
		CheckInError:    cloneString(participant.CheckInError),
	}
}

func toApplicationRecord(model persistence.AttendanceRecord) application.AttendanceRecord {
	return application.AttendanceRecord{
		ID:            model.ID,
		EventID:       model.EventID,
		ParticipantID: model.ParticipantID,
		Timestamp:     model.Timestamp,
		Status:        checkin.Status(model.Status),
		Location:      toApplicationLocation(model.Location),
		ErrorMessage:  cloneString(model.ErrorMessage),
	}
}

func toPersistenceRecord(record application.AttendanceRecord) persistence.AttendanceRecord {
	return persistence.AttendanceRecord{
		ID:            record.ID,
		EventID:       record.EventID,
		ParticipantID: record.ParticipantID,
		Timestamp:     record.Timestamp,
		Status:        string(record.Status),
		Location:      toPersistenceLocation(record.Location),
		ErrorMessage:  cloneString(record.ErrorMessage),
	}
}

func toApplicationParticipant(model persistence.Participant) application.Participant {
	return application.Participant{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      application.ParticipantRole(model.Role),
		Phone:     model.Phone,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceParticipant(participant application.Participant) persistence.Participant {
	return persistence.Participant{
		ID:        participant.ID,
		Name:      participant.Name,
		Email:     participant.Email,
		Role:      persistence.ParticipantRole(participant.Role),
		Phone:     participant.Phone,
		CreatedAt: participant.CreatedAt,
		UpdatedAt: participant.UpdatedAt,
	}
}

func toApplicationProperty(model persistence.Property) application.Property {
	return application.Property{
		ID:      model.ID,
		Name:    model.Name,
		Address: model.Address,
		Coordinates: application.Coordinates{
			Latitude:  model.Coordinates.Latitude,
			Longitude: model.Coordinates.Longitude,
		},
		Price:     cloneInt64(model.Price),
		Type:      cloneString(model.Type),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceProperty(property application.Property) persistence.Property {
	return persistence.Property{
		ID:      property.ID,
		Name:    property.Name,
		Address: property.Address,
		Coordinates: persistence.Coordinates{
			Latitude:  property.Coordinates.Latitude,
			Longitude: property.Coordinates.Longitude,
		},
		Price:     cloneInt64(property.Price),
		Type:      cloneString(property.Type),
		CreatedAt: property.CreatedAt,
		UpdatedAt: property.UpdatedAt,
	}
}

func toApplicationCoordinates(coords *persistence.Coordinates) *application.Coordinates {
	if coords == nil {
		return nil
	}
	return &application.Coordinates{Latitude: coords.Latitude, Longitude: coords.Longitude}
}

func toPersistenceCoordinates(coords *application.Coordinates) *persistence.Coordinates {
	if coords == nil {
		return nil
	}
	return &persistence.Coordinates{Latitude: coords.Latitude, Longitude: coords.Longitude}
}

func toApplicationLocation(loc *persistence.CapturedLocation) *application.CapturedLocation {
	if loc == nil {
		return nil
	}
	return &application.CapturedLocation{Latitude: loc.Latitude, Longitude: loc.Longitude, Accuracy: loc.Accuracy}
}

func toPersistenceLocation(loc *application.CapturedLocation) *persistence.CapturedLocation {
	if loc == nil {
		return nil
	}
	return &persistence.CapturedLocation{Latitude: loc.Latitude, Longitude: loc.Longitude, Accuracy: loc.Accuracy}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
