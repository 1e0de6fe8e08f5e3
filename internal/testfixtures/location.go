package testfixtures

import (
	"context"

	"github.com/example/estate-events/internal/location"
)

// FixedLocation returns a source that always resolves to the given position.
func FixedLocation(lat, lng, accuracy float64) location.Source {
	return location.SourceFunc(func(context.Context) (location.Fix, error) {
		return location.Fix{Latitude: lat, Longitude: lng, Accuracy: accuracy}, nil
	})
}

// FailingLocation returns a source that always fails with the given kind and
// its default message.
func FailingLocation(kind location.FailureKind) location.Source {
	return location.SourceFunc(func(context.Context) (location.Fix, error) {
		return location.Fix{}, location.NewError(kind, kind.DefaultMessage())
	})
}

// BlockedLocation returns a source that never resolves. Acquisition ends only
// when the budget elapses or the caller abandons the attempt.
func BlockedLocation() location.Source {
	return location.SourceFunc(func(ctx context.Context) (location.Fix, error) {
		<-ctx.Done()
		return location.Fix{}, ctx.Err()
	})
}
