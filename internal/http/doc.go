// Package http provides HTTP handlers and middleware for the event API.
//
// The router exposes the following endpoints:
//   - GET /events, POST /events: event listing and creation exchanging the
//     `eventDTO` payload defined in event_handler.go. Listing accepts optional
//     `lat` and `lng` query parameters to filter by venue proximity.
//   - GET /events/{id}, PUT /events/{id}, DELETE /events/{id}: single-event
//     operations. GET responses include the roster with each participant's
//     latest check-in and the full attendance log.
//   - GET /events/range/{start}/{end}: events overlapping a date range. Bounds
//     accept RFC 3339 timestamps or plain dates.
//   - POST /events/{id}/check-in: records a check-in attempt. The body carries
//     the participant identity plus the browser-captured location fix or the
//     positioning failure, see checkin_handler.go. Every resolved attempt
//     answers 200, a failed location capture included.
//   - GET /events/{id}/attendance: the append-only attendance log joined with
//     participant identities.
//   - GET /events/{id}/attendance.csv: the attendance log as a CSV download,
//     one row per entry in recording order.
//   - GET /participants, POST /participants, GET /participants/{id},
//     DELETE /participants/{id}: directory endpoints exchanging the
//     `participantDTO` payload defined in participant_handler.go.
//   - GET /properties, POST /properties, GET /properties/{id}: property
//     catalog endpoints exchanging the `propertyDTO` payload defined in
//     property_handler.go.
//   - GET /health: liveness probe.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
