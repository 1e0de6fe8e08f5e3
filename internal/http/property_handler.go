package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/estate-events/internal/application"
)

type propertyService interface {
	CreateProperty(ctx context.Context, input application.PropertyInput) (application.Property, error)
	GetProperty(ctx context.Context, id string) (application.Property, error)
	ListProperties(ctx context.Context) ([]application.Property, error)
}

type PropertyHandler struct {
	service   propertyService
	responder responder
}

func NewPropertyHandler(service propertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{service: service, responder: newResponder(logger)}
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req propertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := application.PropertyInput{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Price:   req.Price,
		Type:    req.Type,
	}
	if req.Coordinates != nil {
		input.Coordinates = application.Coordinates{
			Latitude:  req.Coordinates.Latitude,
			Longitude: req.Coordinates.Longitude,
		}
	}

	property, err := h.service.CreateProperty(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPropertyDTO(property))
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	propertyID, ok := PropertyIDFromContext(r.Context())
	if !ok || strings.TrimSpace(propertyID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPropertyID)
		return
	}

	property, err := h.service.GetProperty(r.Context(), propertyID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPropertyDTO(property))
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	properties, err := h.service.ListProperties(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPropertyDTOs(properties))
}

type propertyRequest struct {
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Coordinates *coordinatesDTO `json:"coordinates"`
	Price       *int64          `json:"price"`
	Type        *string         `json:"type"`
}

type propertyDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Address     string         `json:"address"`
	Coordinates coordinatesDTO `json:"coordinates"`
	Price       *int64         `json:"price,omitempty"`
	Type        *string        `json:"type,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

func toPropertyDTO(property application.Property) propertyDTO {
	return propertyDTO{
		ID:      property.ID,
		Name:    property.Name,
		Address: property.Address,
		Coordinates: coordinatesDTO{
			Latitude:  property.Coordinates.Latitude,
			Longitude: property.Coordinates.Longitude,
		},
		Price:     property.Price,
		Type:      property.Type,
		CreatedAt: formatTimestamp(property.CreatedAt),
		UpdatedAt: formatTimestamp(property.UpdatedAt),
	}
}

func toPropertyDTOs(properties []application.Property) []propertyDTO {
	out := make([]propertyDTO, 0, len(properties))
	for _, property := range properties {
		out = append(out, toPropertyDTO(property))
	}
	return out
}
