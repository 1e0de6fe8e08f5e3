package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/estate-events/internal/application"
)

type attendanceService interface {
	Log(ctx context.Context, eventID string) ([]application.AttendanceEntry, error)
	ExportCSV(ctx context.Context, eventID string) (application.AttendanceCSV, error)
}

type AttendanceHandler struct {
	service   attendanceService
	responder responder
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{service: service, responder: newResponder(logger)}
}

func (h *AttendanceHandler) Log(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	entries, err := h.service.Log(r.Context(), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAttendanceEntryDTOs(entries))
}

func (h *AttendanceHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	export, err := h.service.ExportCSV(r.Context(), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Content); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write export", "error", err)
	}
}

type attendanceEntryDTO struct {
	Record attendanceRecordDTO `json:"record"`
	Name   string              `json:"name,omitempty"`
	Email  string              `json:"email,omitempty"`
	Role   string              `json:"role,omitempty"`
}

func toAttendanceEntryDTOs(entries []application.AttendanceEntry) []attendanceEntryDTO {
	out := make([]attendanceEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, attendanceEntryDTO{
			Record: toAttendanceRecordDTO(entry.Record),
			Name:   entry.Name,
			Email:  entry.Email,
			Role:   string(entry.Role),
		})
	}
	return out
}
