package source

import (
	"context"
	"errors"

	"github.com/example/transport-tracking/internal/models"
)

// ErrPermissionDenied is returned by Subscribe when the platform
// refuses location access. The condition is terminal for the
// subscribing component: there is no retry path.
var ErrPermissionDenied = errors.New("location permission denied")

// Source abstracts the device location subsystem.
type Source interface {
	// Current returns one immediate fix. Coarse accuracy is fine; the
	// point is minimizing time-to-first-fix.
	Current(ctx context.Context) (models.PositionSample, error)
	// Subscribe streams raw, unthrottled samples until ctx is canceled.
	// The returned channel is closed when the subscription ends.
	Subscribe(ctx context.Context) (<-chan models.PositionSample, error)
}
