package interfaces

import (
	"context"

	"github.com/m-mizutani/herald/pkg/domain/model"
)

// Notifier defines the relay operation: render a release event and deliver
// it to the configured webhook with at-least-once semantics.
type Notifier interface {
	// Deliver renders and posts the event. The returned error carries one
	// of the types.ErrTag* tags describing the failure class.
	Deliver(ctx context.Context, event *model.ReleaseEvent) error
}
