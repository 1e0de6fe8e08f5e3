package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EventLookup exposes the event fetch the attendance reports need.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (Event, error)
}

// AttendanceCSV is a rendered attendance export ready to be served as a file
// download.
type AttendanceCSV struct {
	Filename string
	Content  []byte
}

// AttendanceService reads the append-only ledger and derives the reporting
// views from it. It never writes.
type AttendanceService struct {
	events EventLookup
	ledger AttendanceLedger
	now    func() time.Time
	logger *slog.Logger
}

// NewAttendanceService wires dependencies for attendance reporting.
func NewAttendanceService(events EventLookup, ledger AttendanceLedger, now func() time.Time) *AttendanceService {
	return NewAttendanceServiceWithLogger(events, ledger, now, nil)
}

// NewAttendanceServiceWithLogger constructs an attendance service with a specified logger.
func NewAttendanceServiceWithLogger(events EventLookup, ledger AttendanceLedger, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{events: events, ledger: ledger, now: now, logger: defaultLogger(logger)}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// Log returns every ledger entry for the event in recording order, joined with
// the participant identity each entry belongs to.
func (s *AttendanceService) Log(ctx context.Context, eventID string) (entries []AttendanceEntry, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}
	if s.events == nil || s.ledger == nil {
		err = fmt.Errorf("attendance repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "Log", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to read attendance log", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("entry_count", len(entries)).InfoContext(ctx, "attendance log read")
	}()

	var event Event
	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	var records []AttendanceRecord
	records, err = s.ledger.ListRecords(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	roster := rosterIndex(event.Participants)
	entries = make([]AttendanceEntry, 0, len(records))
	for _, record := range records {
		entry := AttendanceEntry{Record: record}
		if p, ok := roster[record.ParticipantID]; ok {
			entry.Name = p.Name
			entry.Email = p.Email
			entry.Role = p.Role
		}
		entries = append(entries, entry)
	}

	return
}

// ExportCSV renders the attendance ledger as a CSV download: one row per
// entry in recording order, joined with the participant identity each entry
// belongs to. Repeat check-ins produce repeat rows.
func (s *AttendanceService) ExportCSV(ctx context.Context, eventID string) (export AttendanceCSV, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}
	if s.events == nil || s.ledger == nil {
		err = fmt.Errorf("attendance repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "ExportCSV", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export attendance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("filename", export.Filename).InfoContext(ctx, "attendance exported")
	}()

	var event Event
	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	var records []AttendanceRecord
	records, err = s.ledger.ListRecords(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	roster := rosterIndex(event.Participants)

	var sb strings.Builder
	writeCSVRow(&sb, "Name", "Email", "Role", "Check-In Time", "Status", "Latitude", "Longitude")
	for _, record := range records {
		name := ""
		email := ""
		role := ""
		if p, ok := roster[record.ParticipantID]; ok {
			name = p.Name
			email = p.Email
			role = string(p.Role)
		}

		latitude := ""
		longitude := ""
		if record.Location != nil {
			latitude = fmt.Sprintf("%.6f", record.Location.Latitude)
			longitude = fmt.Sprintf("%.6f", record.Location.Longitude)
		}

		writeCSVRow(&sb, name, email, role,
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Status.Label(), latitude, longitude)
	}

	export = AttendanceCSV{
		Filename: fmt.Sprintf("%s-attendance-%s.csv", event.Title, s.now().Format("2006-01-02")),
		Content:  []byte(sb.String()),
	}
	return
}

// ProjectLatest reduces a ledger to each participant's most recent record.
// Later timestamps win; among equal timestamps the entry recorded later in the
// ledger wins.
func ProjectLatest(records []AttendanceRecord) map[string]AttendanceRecord {
	latest := make(map[string]AttendanceRecord, len(records))
	for _, record := range records {
		current, ok := latest[record.ParticipantID]
		if !ok || !record.Timestamp.Before(current.Timestamp) {
			latest[record.ParticipantID] = record
		}
	}
	return latest
}

func rosterIndex(participants []EventParticipant) map[string]EventParticipant {
	index := make(map[string]EventParticipant, len(participants))
	for _, p := range participants {
		index[p.ParticipantID] = p
	}
	return index
}

// writeCSVRow renders one row with every field double-quoted, matching the
// format downstream spreadsheet imports expect.
func writeCSVRow(sb *strings.Builder, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}
