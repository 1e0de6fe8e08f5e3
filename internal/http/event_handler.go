package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/estate-events/internal/application"
)

type eventService interface {
	CreateEvent(ctx context.Context, input application.EventInput) (application.Event, error)
	UpdateEvent(ctx context.Context, eventID string, update application.EventUpdate) (application.Event, error)
	GetEvent(ctx context.Context, eventID string) (application.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context) ([]application.Event, error)
	ListEventsInRange(ctx context.Context, start, end time.Time) ([]application.Event, error)
	ListEventsNear(ctx context.Context, user application.Coordinates) ([]application.Event, error)
}

type EventHandler struct {
	service   eventService
	responder responder
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: newResponder(logger)}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), eventID, update)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	latRaw := strings.TrimSpace(r.URL.Query().Get("lat"))
	lngRaw := strings.TrimSpace(r.URL.Query().Get("lng"))
	if latRaw != "" || lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCoordinates)
			return
		}
		events, err := h.service.ListEventsNear(r.Context(), application.Coordinates{Latitude: lat, Longitude: lng})
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
		return
	}

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
}

func (h *EventHandler) ListRange(w http.ResponseWriter, r *http.Request, startRaw, endRaw string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	start := parseTimestamp(startRaw)
	end := parseTimestamp(endRaw)
	if start.IsZero() || end.IsZero() {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRange)
		return
	}

	events, err := h.service.ListEventsInRange(r.Context(), start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
}

type coordinatesDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type capturedLocationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

type eventParticipantDTO struct {
	ParticipantID   string               `json:"participantId"`
	Name            string               `json:"name"`
	Email           string               `json:"email,omitempty"`
	Role            string               `json:"role"`
	CheckInStatus   string               `json:"checkInStatus,omitempty"`
	CheckInTime     *string              `json:"checkInTime,omitempty"`
	CheckInLocation *capturedLocationDTO `json:"checkInLocation,omitempty"`
	CheckInError    *string              `json:"checkInError,omitempty"`
}

type attendanceRecordDTO struct {
	ID            string               `json:"id"`
	EventID       string               `json:"eventId"`
	ParticipantID string               `json:"participantId"`
	Timestamp     string               `json:"timestamp"`
	Status        string               `json:"status"`
	Location      *capturedLocationDTO `json:"location,omitempty"`
	ErrorMessage  *string              `json:"errorMessage,omitempty"`
}

type checkInWindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type eventParticipantRequest struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
}

type eventRequest struct {
	Title        string                    `json:"title"`
	Type         string                    `json:"type"`
	Start        string                    `json:"start"`
	End          string                    `json:"end"`
	Status       string                    `json:"status"`
	Location     string                    `json:"location"`
	Description  string                    `json:"description"`
	Coordinates  *coordinatesDTO           `json:"coordinates"`
	PropertyID   *string                   `json:"propertyId"`
	CreatedBy    string                    `json:"createdBy"`
	Participants []eventParticipantRequest `json:"participants"`
}

func (r eventRequest) toInput() application.EventInput {
	status := strings.TrimSpace(r.Status)
	if status == "" {
		status = string(application.EventStatusScheduled)
	}
	input := application.EventInput{
		Title:        strings.TrimSpace(r.Title),
		Type:         application.EventType(strings.TrimSpace(r.Type)),
		Start:        parseTimestamp(r.Start),
		End:          parseTimestamp(r.End),
		Status:       application.EventStatus(status),
		Location:     strings.TrimSpace(r.Location),
		Description:  r.Description,
		PropertyID:   r.PropertyID,
		CreatedBy:    strings.TrimSpace(r.CreatedBy),
		Participants: toParticipantInputs(r.Participants),
	}
	if r.Coordinates != nil {
		input.Coordinates = &application.Coordinates{
			Latitude:  r.Coordinates.Latitude,
			Longitude: r.Coordinates.Longitude,
		}
	}
	return input
}

type eventUpdateRequest struct {
	Title        *string                    `json:"title"`
	Type         *string                    `json:"type"`
	Start        *string                    `json:"start"`
	End          *string                    `json:"end"`
	Status       *string                    `json:"status"`
	Location     *string                    `json:"location"`
	Description  *string                    `json:"description"`
	Coordinates  *coordinatesDTO            `json:"coordinates"`
	PropertyID   *string                    `json:"propertyId"`
	Participants *[]eventParticipantRequest `json:"participants"`
}

func (r eventUpdateRequest) toUpdate() (application.EventUpdate, error) {
	update := application.EventUpdate{
		Title:       r.Title,
		Location:    r.Location,
		Description: r.Description,
		PropertyID:  r.PropertyID,
	}
	if r.Type != nil {
		eventType := application.EventType(strings.TrimSpace(*r.Type))
		update.Type = &eventType
	}
	if r.Status != nil {
		status := application.EventStatus(strings.TrimSpace(*r.Status))
		update.Status = &status
	}
	if r.Start != nil {
		start := parseTimestamp(*r.Start)
		if start.IsZero() {
			return application.EventUpdate{}, errBadRequestBody
		}
		update.Start = &start
	}
	if r.End != nil {
		end := parseTimestamp(*r.End)
		if end.IsZero() {
			return application.EventUpdate{}, errBadRequestBody
		}
		update.End = &end
	}
	if r.Coordinates != nil {
		update.Coordinates = &application.Coordinates{
			Latitude:  r.Coordinates.Latitude,
			Longitude: r.Coordinates.Longitude,
		}
	}
	if r.Participants != nil {
		participants := toParticipantInputs(*r.Participants)
		update.Participants = &participants
	}
	return update, nil
}

func toParticipantInputs(requests []eventParticipantRequest) []application.ParticipantInput {
	if len(requests) == 0 {
		return nil
	}
	out := make([]application.ParticipantInput, 0, len(requests))
	for _, req := range requests {
		out = append(out, application.ParticipantInput{
			ParticipantID: strings.TrimSpace(req.ParticipantID),
			Name:          strings.TrimSpace(req.Name),
			Email:         strings.TrimSpace(req.Email),
			Role:          application.ParticipantRole(strings.TrimSpace(req.Role)),
		})
	}
	return out
}

type eventDTO struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Type          string                `json:"type"`
	Start         string                `json:"start"`
	End           string                `json:"end"`
	Status        string                `json:"status"`
	Location      string                `json:"location,omitempty"`
	Description   string                `json:"description,omitempty"`
	Coordinates   *coordinatesDTO       `json:"coordinates,omitempty"`
	PropertyID    *string               `json:"propertyId,omitempty"`
	CreatedBy     string                `json:"createdBy,omitempty"`
	QRCode        string                `json:"qrCode,omitempty"`
	CheckInWindow *checkInWindowDTO     `json:"checkInTimeWindow,omitempty"`
	Participants  []eventParticipantDTO `json:"participants"`
	AttendanceLog []attendanceRecordDTO `json:"attendanceLog,omitempty"`
	CreatedAt     string                `json:"createdAt"`
	UpdatedAt     string                `json:"updatedAt"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:            event.ID,
		Title:         event.Title,
		Type:          string(event.Type),
		Start:         formatTimestamp(event.Start),
		End:           formatTimestamp(event.End),
		Status:        string(event.Status),
		Location:      event.Location,
		Description:   event.Description,
		PropertyID:    event.PropertyID,
		CreatedBy:     event.CreatedBy,
		QRCode:        event.QRCode,
		Participants:  toEventParticipantDTOs(event.Participants),
		AttendanceLog: toAttendanceRecordDTOs(event.AttendanceLog),
		CreatedAt:     formatTimestamp(event.CreatedAt),
		UpdatedAt:     formatTimestamp(event.UpdatedAt),
	}
	if event.Coordinates != nil {
		dto.Coordinates = &coordinatesDTO{
			Latitude:  event.Coordinates.Latitude,
			Longitude: event.Coordinates.Longitude,
		}
	}
	if !event.CheckInWindow.Start.IsZero() || !event.CheckInWindow.End.IsZero() {
		dto.CheckInWindow = &checkInWindowDTO{
			Start: formatTimestamp(event.CheckInWindow.Start),
			End:   formatTimestamp(event.CheckInWindow.End),
		}
	}
	return dto
}

func toEventDTOs(events []application.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

func toEventParticipantDTOs(participants []application.EventParticipant) []eventParticipantDTO {
	out := make([]eventParticipantDTO, 0, len(participants))
	for _, p := range participants {
		out = append(out, toEventParticipantDTO(p))
	}
	return out
}

func toEventParticipantDTO(p application.EventParticipant) eventParticipantDTO {
	dto := eventParticipantDTO{
		ParticipantID: p.ParticipantID,
		Name:          p.Name,
		Email:         p.Email,
		Role:          string(p.Role),
		CheckInStatus: string(p.CheckInStatus),
		CheckInError:  p.CheckInError,
	}
	if p.CheckInTime != nil {
		formatted := formatTimestamp(*p.CheckInTime)
		dto.CheckInTime = &formatted
	}
	if p.CheckInLocation != nil {
		dto.CheckInLocation = &capturedLocationDTO{
			Latitude:  p.CheckInLocation.Latitude,
			Longitude: p.CheckInLocation.Longitude,
			Accuracy:  p.CheckInLocation.Accuracy,
		}
	}
	return dto
}

func toAttendanceRecordDTOs(records []application.AttendanceRecord) []attendanceRecordDTO {
	if len(records) == 0 {
		return nil
	}
	out := make([]attendanceRecordDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toAttendanceRecordDTO(record))
	}
	return out
}

func toAttendanceRecordDTO(record application.AttendanceRecord) attendanceRecordDTO {
	dto := attendanceRecordDTO{
		ID:            record.ID,
		EventID:       record.EventID,
		ParticipantID: record.ParticipantID,
		Timestamp:     formatTimestamp(record.Timestamp),
		Status:        string(record.Status),
		ErrorMessage:  record.ErrorMessage,
	}
	if record.Location != nil {
		dto.Location = &capturedLocationDTO{
			Latitude:  record.Location.Latitude,
			Longitude: record.Location.Longitude,
			Accuracy:  record.Location.Accuracy,
		}
	}
	return dto
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
