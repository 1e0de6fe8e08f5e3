package location

import "context"

// SubmittedReport relays a client-side acquisition outcome over the wire. In
// the browser flow the device fix is captured by the client, so the server
// side of the protocol consumes it through this source.
type SubmittedReport struct {
	Fix     *Fix
	Failure *Error
}

// SubmittedSource resolves immediately with the relayed outcome.
type SubmittedSource struct {
	report SubmittedReport
}

// NewSubmittedSource wraps a relayed acquisition outcome as a Source.
func NewSubmittedSource(report SubmittedReport) *SubmittedSource {
	return &SubmittedSource{report: report}
}

// CurrentPosition implements Source. An explicit failure is the outcome even
// when a fix rides along; the fix survives as the failure's best-effort
// partial position. A report carrying neither a fix nor a failure detail is
// treated as an undetailed denial.
func (s *SubmittedSource) CurrentPosition(ctx context.Context) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}
	if s == nil {
		return Fix{}, NewError(KindUnsupported, "")
	}
	if s.report.Failure != nil {
		failure := NewError(s.report.Failure.Kind, s.report.Failure.Message)
		switch {
		case s.report.Failure.Partial != nil:
			partial := *s.report.Failure.Partial
			failure.Partial = &partial
		case s.report.Fix != nil:
			partial := *s.report.Fix
			failure.Partial = &partial
		}
		return Fix{}, failure
	}
	if s.report.Fix != nil {
		return *s.report.Fix, nil
	}
	return Fix{}, &Error{Kind: KindUnknown, Message: "Location access denied or unavailable"}
}
