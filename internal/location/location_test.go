package location

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAcquireSuccess(t *testing.T) {
	want := Fix{Latitude: 34.0522, Longitude: -118.2437, Accuracy: 12, Timestamp: time.Unix(1717236000, 0)}
	src := SourceFunc(func(ctx context.Context) (Fix, error) {
		return want, nil
	})

	fix, failure, err := Acquire(context.Background(), src, time.Second)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if failure != nil {
		t.Fatalf("Acquire returned failure: %v", failure)
	}
	if fix != want {
		t.Fatalf("fix = %+v, want %+v", fix, want)
	}
}

func TestAcquireTypedFailure(t *testing.T) {
	src := SourceFunc(func(ctx context.Context) (Fix, error) {
		return Fix{}, NewError(KindPermissionDenied, "")
	})

	_, failure, err := Acquire(context.Background(), src, time.Second)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if failure == nil || failure.Kind != KindPermissionDenied {
		t.Fatalf("failure = %+v, want permission denied", failure)
	}
	if failure.Message != "Location access was denied. Please enable GPS and allow access." {
		t.Fatalf("unexpected message: %q", failure.Message)
	}
}

func TestAcquireWrapsUnknownErrors(t *testing.T) {
	src := SourceFunc(func(ctx context.Context) (Fix, error) {
		return Fix{}, errors.New("gps chip on fire")
	})

	_, failure, err := Acquire(context.Background(), src, time.Second)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if failure == nil || failure.Kind != KindUnknown {
		t.Fatalf("failure = %+v, want unknown kind", failure)
	}
	if failure.Message != "gps chip on fire" {
		t.Fatalf("unexpected message: %q", failure.Message)
	}
}

func TestAcquireBudgetExpiryIsRecordedTimeout(t *testing.T) {
	src := SourceFunc(func(ctx context.Context) (Fix, error) {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	})

	_, failure, err := Acquire(context.Background(), src, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if failure == nil || failure.Kind != KindTimeout {
		t.Fatalf("failure = %+v, want timeout", failure)
	}
}

func TestAcquireCallerCancellationAbandonsAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := SourceFunc(func(ctx context.Context) (Fix, error) {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, failure, err := Acquire(ctx, src, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if failure != nil {
		t.Fatalf("abandoned attempt must not produce a recorded failure, got %+v", failure)
	}
}

func TestAcquireNilSourceIsUnsupported(t *testing.T) {
	_, failure, err := Acquire(context.Background(), nil, time.Second)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if failure == nil || failure.Kind != KindUnsupported {
		t.Fatalf("failure = %+v, want unsupported", failure)
	}
}

func TestSubmittedSource(t *testing.T) {
	t.Run("relayed fix", func(t *testing.T) {
		fix := Fix{Latitude: 1, Longitude: 2, Accuracy: 3, Timestamp: time.Unix(10, 0)}
		src := NewSubmittedSource(SubmittedReport{Fix: &fix})
		got, err := src.CurrentPosition(context.Background())
		if err != nil {
			t.Fatalf("CurrentPosition returned error: %v", err)
		}
		if got != fix {
			t.Fatalf("fix = %+v, want %+v", got, fix)
		}
	})

	t.Run("relayed failure", func(t *testing.T) {
		src := NewSubmittedSource(SubmittedReport{Failure: &Error{Kind: KindTimeout}})
		_, err := src.CurrentPosition(context.Background())
		var lErr *Error
		if !errors.As(err, &lErr) || lErr.Kind != KindTimeout {
			t.Fatalf("err = %v, want timeout failure", err)
		}
	})

	t.Run("failure outranks a relayed fix and keeps it as partial", func(t *testing.T) {
		fix := Fix{Latitude: 1, Longitude: 2, Accuracy: 30}
		src := NewSubmittedSource(SubmittedReport{
			Fix:     &fix,
			Failure: &Error{Kind: KindPositionUnavailable},
		})
		_, err := src.CurrentPosition(context.Background())
		var lErr *Error
		if !errors.As(err, &lErr) || lErr.Kind != KindPositionUnavailable {
			t.Fatalf("err = %v, want position-unavailable failure", err)
		}
		if lErr.Partial == nil || *lErr.Partial != fix {
			t.Fatalf("Partial = %+v, want the relayed fix", lErr.Partial)
		}
	})

	t.Run("empty report is undetailed denial", func(t *testing.T) {
		src := NewSubmittedSource(SubmittedReport{})
		_, err := src.CurrentPosition(context.Background())
		var lErr *Error
		if !errors.As(err, &lErr) || lErr.Kind != KindUnknown {
			t.Fatalf("err = %v, want unknown failure", err)
		}
		if lErr.Message != "Location access denied or unavailable" {
			t.Fatalf("unexpected message: %q", lErr.Message)
		}
	})
}

func TestParseFailureKind(t *testing.T) {
	if got := ParseFailureKind("permission_denied"); got != KindPermissionDenied {
		t.Fatalf("got %q", got)
	}
	if got := ParseFailureKind("nonsense"); got != KindUnknown {
		t.Fatalf("got %q", got)
	}
}
