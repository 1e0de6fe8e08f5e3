package http

import (
	"context"
	"log/slog"

	"github.com/example/estate-events/internal/logging"
)

type contextKey string

const (
	eventIDContextKey       contextKey = "event_id"
	participantIDContextKey contextKey = "participant_id"
	propertyIDContextKey    contextKey = "property_id"
)

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithEventID injects the event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, eventID)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithParticipantID injects the participant identifier resolved from the request path.
func ContextWithParticipantID(ctx context.Context, participantID string) context.Context {
	return context.WithValue(ctx, participantIDContextKey, participantID)
}

// ParticipantIDFromContext extracts a participant identifier previously associated with the context.
func ParticipantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(participantIDContextKey).(string)
	return id, ok
}

// ContextWithPropertyID injects the property identifier resolved from the request path.
func ContextWithPropertyID(ctx context.Context, propertyID string) context.Context {
	return context.WithValue(ctx, propertyIDContextKey, propertyID)
}

// PropertyIDFromContext extracts a property identifier previously associated with the context.
func PropertyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(propertyIDContextKey).(string)
	return id, ok
}
