package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/utils/metrics"
)

type notifier struct {
	client interfaces.WebhookClient
	opts   model.MessageOptions
	policy model.RetryPolicy
}

// NewNotifier creates a Notifier that renders release events and posts them
// via the given webhook client under the given retry policy.
func NewNotifier(client interfaces.WebhookClient, opts model.MessageOptions, policy model.RetryPolicy) (interfaces.Notifier, error) {
	if client == nil {
		return nil, goerr.New("webhook client is required", goerr.T(types.ErrTagInvalidConfig))
	}
	if opts.MaxDescription <= 0 {
		opts.MaxDescription = model.DefaultMaxDescription
	}
	if policy.MaxAttempts <= 0 {
		return nil, goerr.New("retry policy needs at least one attempt",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("max_attempts", policy.MaxAttempts))
	}

	return &notifier{
		client: client,
		opts:   opts,
		policy: policy,
	}, nil
}

// Deliver renders the event and posts it with a bounded retry loop.
// Delivery is at-least-once: a retry after a timed-out attempt may duplicate
// a post that the receiver in fact accepted.
func (uc *notifier) Deliver(ctx context.Context, event *model.ReleaseEvent) error {
	logger := ctxlog.From(ctx)

	deliveryID := uuid.NewString()
	logger = logger.With(slog.String("delivery_id", deliveryID), slog.String("tag", event.Tag))

	msg := RenderMessage(event, uc.opts)

	startedAt := time.Now()
	defer func() {
		metrics.DeliveryDuration.Observe(time.Since(startedAt).Seconds())
	}()

	// The whole run, backoff waits included, stays within the budget so a
	// stuck webhook cannot hang the invoking CI job.
	ctx, cancel := context.WithTimeout(ctx, uc.policy.Budget)
	defer cancel()

	backoff := uc.policy.BackoffBase
	var lastErr error

	for seq := 1; seq <= uc.policy.MaxAttempts; seq++ {
		attemptCtx, attemptCancel := context.WithTimeout(ctx, uc.policy.AttemptTimeout)
		attempt, err := uc.client.Post(attemptCtx, msg)
		attemptCancel()

		if attempt != nil {
			attempt.Seq = seq
			logger.Info("webhook attempt",
				slog.Int("seq", attempt.Seq),
				slog.Int("status", attempt.HTTPStatus),
				slog.Duration("duration", attempt.Duration),
				slog.Bool("succeeded", attempt.Succeeded),
			)
		}

		if err == nil {
			metrics.DeliveriesTotal.WithLabelValues("delivered").Inc()
			logger.Info("release notification delivered", slog.Int("attempts", seq))
			return nil
		}
		lastErr = err

		if !goerr.HasTag(err, types.ErrTagTransient) {
			metrics.DeliveriesTotal.WithLabelValues("permanent").Inc()
			return goerr.Wrap(err, "webhook rejected the message", goerr.V("attempts", seq))
		}
		if seq == uc.policy.MaxAttempts {
			break
		}

		wait := backoff
		if attempt != nil && attempt.RetryAfter > 0 {
			wait = attempt.RetryAfter
		}
		backoff *= 2

		logger.Warn("webhook attempt failed, retrying",
			slog.Int("seq", seq),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			metrics.DeliveriesTotal.WithLabelValues("transient").Inc()
			return goerr.Wrap(lastErr, "delivery budget exhausted",
				goerr.T(types.ErrTagTransient), goerr.V("attempts", seq))
		case <-time.After(wait):
		}
	}

	metrics.DeliveriesTotal.WithLabelValues("transient").Inc()
	return goerr.Wrap(lastErr, "retry budget exhausted",
		goerr.T(types.ErrTagTransient), goerr.V("attempts", uc.policy.MaxAttempts))
}
