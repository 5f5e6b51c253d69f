package interfaces

import (
	"context"

	"github.com/m-mizutani/herald/pkg/domain/model"
)

// WebhookClient defines a single outbound post to the webhook endpoint.
type WebhookClient interface {
	// Post submits the message once. The attempt record is returned even
	// when err is non-nil so the caller can inspect status and timing.
	Post(ctx context.Context, msg *model.WebhookMessage) (*model.DeliveryAttempt, error)
}
