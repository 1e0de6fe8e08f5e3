package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/estate-events/internal/application"
	"github.com/example/estate-events/internal/checkin"
	"github.com/example/estate-events/internal/location"
)

type eventServiceStub struct {
	created    application.Event
	createErr  error
	gotInput   application.EventInput
	event      application.Event
	getErr     error
	updated    application.Event
	updateErr  error
	gotUpdate  application.EventUpdate
	deleteErr  error
	deletedID  string
	list       []application.Event
	listErr    error
	rangeStart time.Time
	rangeEnd   time.Time
	nearUser   *application.Coordinates
}

func (s *eventServiceStub) CreateEvent(ctx context.Context, input application.EventInput) (application.Event, error) {
	s.gotInput = input
	if s.createErr != nil {
		return application.Event{}, s.createErr
	}
	return s.created, nil
}

func (s *eventServiceStub) UpdateEvent(ctx context.Context, eventID string, update application.EventUpdate) (application.Event, error) {
	s.gotUpdate = update
	if s.updateErr != nil {
		return application.Event{}, s.updateErr
	}
	return s.updated, nil
}

func (s *eventServiceStub) GetEvent(ctx context.Context, eventID string) (application.Event, error) {
	if s.getErr != nil {
		return application.Event{}, s.getErr
	}
	return s.event, nil
}

func (s *eventServiceStub) DeleteEvent(ctx context.Context, eventID string) error {
	s.deletedID = eventID
	return s.deleteErr
}

func (s *eventServiceStub) ListEvents(ctx context.Context) ([]application.Event, error) {
	return s.list, s.listErr
}

func (s *eventServiceStub) ListEventsInRange(ctx context.Context, start, end time.Time) ([]application.Event, error) {
	s.rangeStart = start
	s.rangeEnd = end
	return s.list, s.listErr
}

func (s *eventServiceStub) ListEventsNear(ctx context.Context, user application.Coordinates) ([]application.Event, error) {
	s.nearUser = &user
	return s.list, s.listErr
}

type checkInServiceStub struct {
	result    application.CheckInResult
	err       error
	gotParams application.CheckInParams
}

func (s *checkInServiceStub) CheckIn(ctx context.Context, params application.CheckInParams) (application.CheckInResult, error) {
	s.gotParams = params
	if s.err != nil {
		return application.CheckInResult{}, s.err
	}
	return s.result, nil
}

type attendanceServiceStub struct {
	entries []application.AttendanceEntry
	logErr  error
	export  application.AttendanceCSV
	expErr  error
}

func (s *attendanceServiceStub) Log(ctx context.Context, eventID string) ([]application.AttendanceEntry, error) {
	return s.entries, s.logErr
}

func (s *attendanceServiceStub) ExportCSV(ctx context.Context, eventID string) (application.AttendanceCSV, error) {
	return s.export, s.expErr
}

type participantServiceStub struct {
	created application.Participant
	err     error
	byEmail application.Participant
	list    []application.Participant
}

func (s *participantServiceStub) CreateParticipant(ctx context.Context, input application.ParticipantInputRecord) (application.Participant, error) {
	if s.err != nil {
		return application.Participant{}, s.err
	}
	return s.created, nil
}

func (s *participantServiceStub) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	if s.err != nil {
		return application.Participant{}, s.err
	}
	return s.created, nil
}

func (s *participantServiceStub) FindByEmail(ctx context.Context, email string) (application.Participant, error) {
	if s.err != nil {
		return application.Participant{}, s.err
	}
	return s.byEmail, nil
}

func (s *participantServiceStub) ListParticipants(ctx context.Context) ([]application.Participant, error) {
	return s.list, s.err
}

func (s *participantServiceStub) DeleteParticipant(ctx context.Context, id string) error {
	return s.err
}

func newTestRouter(events *eventServiceStub, checkIns *checkInServiceStub, attendance *attendanceServiceStub, participants *participantServiceStub) http.Handler {
	cfg := RouterConfig{}
	if events != nil {
		cfg.Events = NewEventHandler(events, nil)
	}
	if checkIns != nil {
		cfg.CheckIns = NewCheckInHandler(checkIns, nil)
	}
	if attendance != nil {
		cfg.Attendance = NewAttendanceHandler(attendance, nil)
	}
	if participants != nil {
		cfg.Participants = NewParticipantHandler(participants, nil)
	}
	return NewRouter(cfg)
}

func TestEventEndpoints(t *testing.T) {
	start := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	event := application.Event{
		ID:            "event-1",
		Title:         "Open House",
		Type:          application.EventTypePropertyViewing,
		Start:         start,
		End:           end,
		Status:        application.EventStatusScheduled,
		QRCode:        "http://localhost:5173/event/event-1/check-in",
		CheckInWindow: checkin.ComputeWindow(start, end),
	}

	t.Run("POST /events returns the created event", func(t *testing.T) {
		stub := &eventServiceStub{created: event}
		router := newTestRouter(stub, nil, nil, nil)

		body := `{"title":"Open House","type":"property-viewing","start":"2024-06-01T10:00:00Z","end":"2024-06-01T11:00:00Z","participants":[{"participantId":"user-2","name":"Emily Johnson","role":"client"}]}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var dto eventDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if dto.ID != "event-1" || dto.QRCode != "http://localhost:5173/event/event-1/check-in" {
			t.Fatalf("unexpected response %+v", dto)
		}
		if dto.CheckInWindow == nil || dto.CheckInWindow.Start != "2024-06-01T09:00:00Z" {
			t.Fatalf("unexpected check-in window %+v", dto.CheckInWindow)
		}

		if stub.gotInput.Title != "Open House" || len(stub.gotInput.Participants) != 1 {
			t.Fatalf("unexpected input %+v", stub.gotInput)
		}
	})

	t.Run("POST /events rejects malformed bodies", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("not json")))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("GET /events/{id} maps ErrNotFound to 404", func(t *testing.T) {
		stub := &eventServiceStub{getErr: application.ErrNotFound}
		router := newTestRouter(stub, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("PUT /events/{id} forwards partial updates", func(t *testing.T) {
		stub := &eventServiceStub{updated: event}
		router := newTestRouter(stub, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/events/event-1", strings.NewReader(`{"title":"Renamed"}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.gotUpdate.Title == nil || *stub.gotUpdate.Title != "Renamed" {
			t.Fatalf("expected title update, got %+v", stub.gotUpdate)
		}
		if stub.gotUpdate.Start != nil || stub.gotUpdate.Status != nil {
			t.Fatalf("expected untouched fields to stay nil, got %+v", stub.gotUpdate)
		}
	})

	t.Run("PUT /events/{id} surfaces validation errors as 422", func(t *testing.T) {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"time": "start must be before end"}}
		stub := &eventServiceStub{updateErr: vErr}
		router := newTestRouter(stub, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/events/event-1", strings.NewReader(`{"title":"x"}`)))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "start must be before end") {
			t.Fatalf("expected field errors in body, got %s", rec.Body.String())
		}
	})

	t.Run("GET /events/range/{start}/{end} parses plain dates", func(t *testing.T) {
		stub := &eventServiceStub{list: []application.Event{event}}
		router := newTestRouter(stub, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/range/2024-06-01/2024-06-08", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !stub.rangeStart.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected range start %v", stub.rangeStart)
		}
		if !stub.rangeEnd.Equal(time.Date(2024, time.June, 8, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected range end %v", stub.rangeEnd)
		}
	})

	t.Run("GET /events with lat and lng filters by proximity", func(t *testing.T) {
		stub := &eventServiceStub{list: []application.Event{event}}
		router := newTestRouter(stub, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?lat=34.052235&lng=-118.243683", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.nearUser == nil || stub.nearUser.Latitude != 34.052235 || stub.nearUser.Longitude != -118.243683 {
			t.Fatalf("expected coordinates to be forwarded, got %+v", stub.nearUser)
		}
	})

	t.Run("GET /events rejects malformed coordinates", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?lat=north&lng=-118.2", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("DELETE /events/{id} returns 204", func(t *testing.T) {
		stub := &eventServiceStub{}
		router := newTestRouter(stub, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/events/event-1", nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if stub.deletedID != "event-1" {
			t.Fatalf("expected delete of event-1, got %q", stub.deletedID)
		}
	})

	t.Run("rejects unsupported methods", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, nil, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/events", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
			t.Fatalf("expected Allow header, got %q", allow)
		}
	})
}

func TestCheckInEndpoint(t *testing.T) {
	t.Run("relays the browser-captured fix and renders the result", func(t *testing.T) {
		recordedAt := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)
		stub := &checkInServiceStub{result: application.CheckInResult{
			Participant: application.EventParticipant{ParticipantID: "user-2", Name: "Emily Johnson", Role: application.RoleClient, CheckInStatus: checkin.StatusSuccess},
			Status:      checkin.StatusSuccess,
			State:       checkin.StateCompleted,
			Record: application.AttendanceRecord{
				ID:            "rec-1",
				EventID:       "event-1",
				ParticipantID: "user-2",
				Timestamp:     recordedAt,
				Status:        checkin.StatusSuccess,
				Location:      &application.CapturedLocation{Latitude: 34.052235, Longitude: -118.243683},
			},
		}}
		router := newTestRouter(&eventServiceStub{}, stub, nil, nil)

		body := `{"participantId":"user-2","locationData":{"latitude":34.052235,"longitude":-118.243683,"accuracy":5}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/event-1/check-in", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var response checkInResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Status != "success" || response.State != "completed" {
			t.Fatalf("unexpected response %+v", response)
		}

		if stub.gotParams.EventID != "event-1" || stub.gotParams.ParticipantID != "user-2" {
			t.Fatalf("unexpected params %+v", stub.gotParams)
		}
		fix, err := stub.gotParams.Source.CurrentPosition(context.Background())
		if err != nil {
			t.Fatalf("expected relayed fix, got %v", err)
		}
		if fix.Latitude != 34.052235 || fix.Accuracy != 5 {
			t.Fatalf("unexpected fix %+v", fix)
		}
	})

	t.Run("relays client positioning failures", func(t *testing.T) {
		stub := &checkInServiceStub{result: application.CheckInResult{Status: checkin.StatusFailed, State: checkin.StateCompleted}}
		router := newTestRouter(&eventServiceStub{}, stub, nil, nil)

		body := `{"participantId":"user-2","locationData":null,"locationError":{"code":"permission_denied","message":""}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/event-1/check-in", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		_, err := stub.gotParams.Source.CurrentPosition(context.Background())
		if err == nil || !strings.Contains(err.Error(), "Location access was denied") {
			t.Fatalf("expected relayed permission failure, got %v", err)
		}
	})

	t.Run("prefers an explicit failure over an accompanying fix", func(t *testing.T) {
		stub := &checkInServiceStub{result: application.CheckInResult{Status: checkin.StatusFailed, State: checkin.StateCompleted}}
		router := newTestRouter(&eventServiceStub{}, stub, nil, nil)

		body := `{"participantId":"user-2","locationData":{"latitude":34.05,"longitude":-118.24,"accuracy":120},"locationError":{"code":"position_unavailable","message":""}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/event-1/check-in", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		_, err := stub.gotParams.Source.CurrentPosition(context.Background())
		var lErr *location.Error
		if !errors.As(err, &lErr) || lErr.Kind != location.KindPositionUnavailable {
			t.Fatalf("expected a position-unavailable failure, got %v", err)
		}
		if lErr.Partial == nil || lErr.Partial.Latitude != 34.05 {
			t.Fatalf("expected the fix kept as a partial position, got %+v", lErr.Partial)
		}
	})

	t.Run("requires POST", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, &checkInServiceStub{}, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/event-1/check-in", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestAttendanceEndpoints(t *testing.T) {
	t.Run("GET attendance returns joined entries", func(t *testing.T) {
		stub := &attendanceServiceStub{entries: []application.AttendanceEntry{
			{
				Record: application.AttendanceRecord{ID: "rec-1", EventID: "event-1", ParticipantID: "user-2", Status: checkin.StatusSuccess},
				Name:   "Emily Johnson",
				Email:  "emily@example.com",
				Role:   application.RoleClient,
			},
		}}
		router := newTestRouter(&eventServiceStub{}, nil, stub, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/event-1/attendance", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var entries []attendanceEntryDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "Emily Johnson" || entries[0].Record.ID != "rec-1" {
			t.Fatalf("unexpected entries %+v", entries)
		}
	})

	t.Run("GET attendance.csv serves a download", func(t *testing.T) {
		stub := &attendanceServiceStub{export: application.AttendanceCSV{
			Filename: "Open House-attendance-2024-06-01.csv",
			Content:  []byte(`"Name","Email","Role","Check-In Time","Status","Latitude","Longitude"` + "\n"),
		}}
		router := newTestRouter(&eventServiceStub{}, nil, stub, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/event-1/attendance.csv", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
			t.Fatalf("unexpected content type %q", got)
		}
		if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Open House-attendance-2024-06-01.csv") {
			t.Fatalf("unexpected disposition %q", got)
		}
		if !strings.HasPrefix(rec.Body.String(), `"Name","Email"`) {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})
}

func TestParticipantEndpoints(t *testing.T) {
	t.Run("GET /participants filters by email", func(t *testing.T) {
		stub := &participantServiceStub{byEmail: application.Participant{ID: "user-2", Name: "Emily Johnson", Email: "emily@example.com", Role: application.RoleClient}}
		router := newTestRouter(nil, nil, nil, stub)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/participants?email=emily@example.com", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var participants []participantDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &participants); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(participants) != 1 || participants[0].ID != "user-2" {
			t.Fatalf("unexpected participants %+v", participants)
		}
	})

	t.Run("POST /participants maps ErrAlreadyExists to 409", func(t *testing.T) {
		stub := &participantServiceStub{err: application.ErrAlreadyExists}
		router := newTestRouter(nil, nil, nil, stub)

		body := `{"name":"John Smith","email":"john@example.com","role":"agent"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/participants", strings.NewReader(body)))

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
