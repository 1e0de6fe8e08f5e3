package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/estate-events/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// EventServiceDeps captures dependencies for constructing an event service.
type EventServiceDeps struct {
	Events        application.EventRepository
	Ledger        application.AttendanceLedger
	Properties    application.PropertyCatalog
	FrontendURL   string
	FilterRangeKm float64
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewEventService builds an event service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewEventService(deps EventServiceDeps) *application.EventService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	frontendURL := deps.FrontendURL
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	filterRange := deps.FilterRangeKm
	if filterRange == 0 {
		filterRange = 0.5
	}
	return application.NewEventServiceWithLogger(
		deps.Events,
		deps.Ledger,
		deps.Properties,
		frontendURL,
		filterRange,
		idGen,
		now,
		deps.Logger,
	)
}

// CheckInServiceDeps captures dependencies for constructing a check-in
// service.
type CheckInServiceDeps struct {
	Events         application.EventCheckInRepository
	Ledger         application.AttendanceLedger
	LocationBudget time.Duration
	WarnRangeKm    float64
	IDGenerator    func() string
	Now            func() time.Time
	Logger         *slog.Logger
}

// NewCheckInService builds a check-in service using the supplied dependencies.
func (f *ServiceFactory) NewCheckInService(deps CheckInServiceDeps) *application.CheckInService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	budget := deps.LocationBudget
	if budget == 0 {
		budget = 15 * time.Second
	}
	warnRange := deps.WarnRangeKm
	if warnRange == 0 {
		warnRange = 1.0
	}
	return application.NewCheckInServiceWithLogger(
		deps.Events,
		deps.Ledger,
		budget,
		warnRange,
		idGen,
		now,
		deps.Logger,
	)
}

// AttendanceServiceDeps captures dependencies for constructing an attendance
// service.
type AttendanceServiceDeps struct {
	Events application.EventLookup
	Ledger application.AttendanceLedger
	Now    func() time.Time
	Logger *slog.Logger
}

// NewAttendanceService builds an attendance service using the supplied
// dependencies.
func (f *ServiceFactory) NewAttendanceService(deps AttendanceServiceDeps) *application.AttendanceService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAttendanceServiceWithLogger(
		deps.Events,
		deps.Ledger,
		now,
		deps.Logger,
	)
}

// ParticipantServiceDeps captures dependencies for constructing a participant
// service.
type ParticipantServiceDeps struct {
	Participants application.ParticipantRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewParticipantService builds a participant service using the supplied
// dependencies.
func (f *ServiceFactory) NewParticipantService(deps ParticipantServiceDeps) *application.ParticipantService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewParticipantServiceWithLogger(
		deps.Participants,
		idGen,
		now,
		deps.Logger,
	)
}

// PropertyServiceDeps captures dependencies for constructing a property
// service.
type PropertyServiceDeps struct {
	Properties  application.PropertyRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewPropertyService builds a property service using the supplied
// dependencies.
func (f *ServiceFactory) NewPropertyService(deps PropertyServiceDeps) *application.PropertyService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewPropertyServiceWithLogger(
		deps.Properties,
		idGen,
		now,
		deps.Logger,
	)
}
