package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/estate-events/internal/application"
)

type participantService interface {
	CreateParticipant(ctx context.Context, input application.ParticipantInputRecord) (application.Participant, error)
	GetParticipant(ctx context.Context, id string) (application.Participant, error)
	FindByEmail(ctx context.Context, email string) (application.Participant, error)
	ListParticipants(ctx context.Context) ([]application.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

type ParticipantHandler struct {
	service   participantService
	responder responder
}

func NewParticipantHandler(service participantService, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{service: service, responder: newResponder(logger)}
}

func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	participant, err := h.service.CreateParticipant(r.Context(), application.ParticipantInputRecord{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  application.ParticipantRole(strings.TrimSpace(req.Role)),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toParticipantDTO(participant))
}

func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	participant, err := h.service.GetParticipant(r.Context(), participantID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toParticipantDTO(participant))
}

func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	if err := h.service.DeleteParticipant(r.Context(), participantID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List enumerates the directory. An email query parameter narrows the lookup
// to a single entry.
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		participant, err := h.service.FindByEmail(r.Context(), email)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, []participantDTO{toParticipantDTO(participant)})
		return
	}

	participants, err := h.service.ListParticipants(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toParticipantDTOs(participants))
}

type participantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
}

type participantDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toParticipantDTO(participant application.Participant) participantDTO {
	return participantDTO{
		ID:        participant.ID,
		Name:      participant.Name,
		Email:     participant.Email,
		Role:      string(participant.Role),
		Phone:     participant.Phone,
		CreatedAt: formatTimestamp(participant.CreatedAt),
		UpdatedAt: formatTimestamp(participant.UpdatedAt),
	}
}

func toParticipantDTOs(participants []application.Participant) []participantDTO {
	out := make([]participantDTO, 0, len(participants))
	for _, participant := range participants {
		out = append(out, toParticipantDTO(participant))
	}
	return out
}
