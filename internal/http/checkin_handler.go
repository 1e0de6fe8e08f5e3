package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/estate-events/internal/application"
	"github.com/example/estate-events/internal/location"
)

type checkInService interface {
	CheckIn(ctx context.Context, params application.CheckInParams) (application.CheckInResult, error)
}

type CheckInHandler struct {
	service   checkInService
	responder responder
}

func NewCheckInHandler(service checkInService, logger *slog.Logger) *CheckInHandler {
	return &CheckInHandler{service: service, responder: newResponder(logger)}
}

// Create records a check-in attempt for the event in the request path. The
// body relays the browser-captured location outcome; a missing locationData
// field degrades the attempt rather than rejecting it.
func (h *CheckInHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.CheckIn(r.Context(), application.CheckInParams{
		EventID:       eventID,
		ParticipantID: strings.TrimSpace(req.ParticipantID),
		Email:         strings.TrimSpace(req.Email),
		Name:          strings.TrimSpace(req.Name),
		Source:        req.toSource(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCheckInResponse(result))
}

type checkInLocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp *string `json:"timestamp"`
}

type checkInLocationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type checkInRequest struct {
	ParticipantID string                `json:"participantId"`
	Email         string                `json:"email"`
	Name          string                `json:"name"`
	LocationData  *checkInLocationData  `json:"locationData"`
	LocationError *checkInLocationError `json:"locationError"`
}

func (r checkInRequest) toSource() location.Source {
	report := location.SubmittedReport{}
	if r.LocationData != nil {
		fix := location.Fix{
			Latitude:  r.LocationData.Latitude,
			Longitude: r.LocationData.Longitude,
			Accuracy:  r.LocationData.Accuracy,
		}
		if r.LocationData.Timestamp != nil {
			fix.Timestamp = parseTimestamp(*r.LocationData.Timestamp)
		}
		report.Fix = &fix
	}
	if r.LocationError != nil {
		report.Failure = location.NewError(
			location.ParseFailureKind(strings.TrimSpace(r.LocationError.Code)),
			strings.TrimSpace(r.LocationError.Message),
		)
	}
	return location.NewSubmittedSource(report)
}

type checkInWarningDTO struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
}

type checkInResponse struct {
	Participant eventParticipantDTO `json:"participant"`
	Status      string              `json:"status"`
	State       string              `json:"state"`
	Warnings    []checkInWarningDTO `json:"warnings,omitempty"`
	Record      attendanceRecordDTO `json:"record"`
}

func toCheckInResponse(result application.CheckInResult) checkInResponse {
	response := checkInResponse{
		Participant: toEventParticipantDTO(result.Participant),
		Status:      string(result.Status),
		State:       string(result.State),
		Record:      toAttendanceRecordDTO(result.Record),
	}
	for _, warning := range result.Warnings {
		response.Warnings = append(response.Warnings, checkInWarningDTO{
			Code:       string(warning.Code),
			Message:    warning.Message,
			DistanceKm: warning.DistanceKm,
		})
	}
	return response
}
