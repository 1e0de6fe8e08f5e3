// Package location wraps a device positioning capability into a single
// awaitable acquisition with a typed failure taxonomy. Every call is a fresh
// attempt: no caching, no internal retry.
package location

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single acquisition attempt when the caller does not
// supply a budget.
const DefaultTimeout = 15 * time.Second

// Fix is a captured device position.
type Fix struct {
	Latitude  float64
	Longitude float64
	// Accuracy is the estimated error radius in meters.
	Accuracy  float64
	Timestamp time.Time
}

// FailureKind classifies why an acquisition failed.
type FailureKind string

const (
	// KindPermissionDenied means the user or platform refused location access.
	KindPermissionDenied FailureKind = "permission_denied"
	// KindPositionUnavailable means the device could not produce a position.
	KindPositionUnavailable FailureKind = "position_unavailable"
	// KindTimeout means the acquisition budget expired before a fix arrived.
	KindTimeout FailureKind = "timeout"
	// KindUnsupported means no positioning capability is present.
	KindUnsupported FailureKind = "unsupported"
	// KindUnknown covers every other failure.
	KindUnknown FailureKind = "unknown"
)

// ParseFailureKind maps a wire-level failure code to a FailureKind. Anything
// unrecognized is KindUnknown.
func ParseFailureKind(code string) FailureKind {
	switch FailureKind(code) {
	case KindPermissionDenied, KindPositionUnavailable, KindTimeout, KindUnsupported:
		return FailureKind(code)
	}
	return KindUnknown
}

// DefaultMessage returns the human-readable message shown to users for the
// failure kind.
func (k FailureKind) DefaultMessage() string {
	switch k {
	case KindPermissionDenied:
		return "Location access was denied. Please enable GPS and allow access."
	case KindPositionUnavailable:
		return "Location information is unavailable."
	case KindTimeout:
		return "The request to get location timed out."
	case KindUnsupported:
		return "Geolocation is not supported by this device."
	}
	return "An unknown error occurred while getting location."
}

// Error is a resolved acquisition failure. Partial optionally carries a
// best-effort fix captured alongside the failure; a failed check-in may still
// record it.
type Error struct {
	Kind    FailureKind
	Message string
	Partial *Fix
}

// NewError builds an Error, falling back to the kind's default message when
// message is empty.
func NewError(kind FailureKind, message string) *Error {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &Error{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.DefaultMessage()
}

// Source is the device capability boundary: a single positioning attempt.
type Source interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Fix, error)

// CurrentPosition implements Source.
func (f SourceFunc) CurrentPosition(ctx context.Context) (Fix, error) {
	return f(ctx)
}

// Acquire performs one positioning attempt against src, bounded by budget
// (DefaultTimeout when budget <= 0).
//
// The three outcomes are disjoint:
//   - a fix: (fix, nil, nil)
//   - a resolved failure, including budget expiry: (zero, *Error, nil)
//   - caller cancellation while the attempt is in flight: (zero, nil, ctx.Err())
//
// Caller cancellation abandons the attempt; the eventual source resolution is
// discarded and the caller must not record any outcome for it.
func Acquire(ctx context.Context, src Source, budget time.Duration) (Fix, *Error, error) {
	if src == nil {
		return Fix{}, NewError(KindUnsupported, ""), nil
	}
	if budget <= 0 {
		budget = DefaultTimeout
	}

	acquireCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type outcome struct {
		fix Fix
		err error
	}
	results := make(chan outcome, 1)
	go func() {
		fix, err := src.CurrentPosition(acquireCtx)
		results <- outcome{fix: fix, err: err}
	}()

	select {
	case res := <-results:
		if res.err == nil {
			return res.fix, nil, nil
		}
		if ctx.Err() != nil && acquireCtx.Err() != context.DeadlineExceeded {
			return Fix{}, nil, ctx.Err()
		}
		return Fix{}, classify(res.err), nil
	case <-acquireCtx.Done():
		if ctx.Err() != nil {
			return Fix{}, nil, ctx.Err()
		}
		return Fix{}, NewError(KindTimeout, ""), nil
	}
}

func classify(err error) *Error {
	var lErr *Error
	if errors.As(err, &lErr) {
		if lErr.Message == "" {
			lErr.Message = lErr.Kind.DefaultMessage()
		}
		return lErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, "")
	}
	return &Error{Kind: KindUnknown, Message: err.Error()}
}
