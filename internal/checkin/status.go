package checkin

// Status is the outcome of a check-in attempt. Success means a location fix
// was obtained; whether the fix is plausible for the event is advisory and
// never changes the status.
type Status string

const (
	// StatusUnset marks a participant who has not attempted check-in.
	StatusUnset Status = ""
	// StatusSuccess marks an attempt that captured a location fix.
	StatusSuccess Status = "success"
	// StatusFailed marks an attempt whose location acquisition failed.
	StatusFailed Status = "failed"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Label renders the human-facing status used in attendance exports.
func (s Status) Label() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailed:
		return "Failed"
	}
	return "Unknown"
}

// State identifies a step of the check-in protocol. The protocol always runs
// to StateCompleted regardless of the location outcome; an attempt abandoned
// mid-acquisition never leaves StateLocating.
type State string

const (
	// StateIdle is the initial protocol state.
	StateIdle State = "idle"
	// StateLocating marks an in-flight location acquisition, the protocol's
	// single suspension point.
	StateLocating State = "locating"
	// StateLocationAcquired marks a resolved acquisition with a fix.
	StateLocationAcquired State = "location_acquired"
	// StateLocationFailed marks a resolved acquisition without a fix.
	StateLocationFailed State = "location_failed"
	// StateCompleted is the terminal state of every resolved attempt.
	StateCompleted State = "completed"
)
