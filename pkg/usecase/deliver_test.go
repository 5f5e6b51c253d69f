package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/usecase"
)

// mockClient counts posts and replays scripted outcomes.
type mockClient struct {
	calls   int
	respond func(seq int) (*model.DeliveryAttempt, error)
}

func (m *mockClient) Post(ctx context.Context, msg *model.WebhookMessage) (*model.DeliveryAttempt, error) {
	m.calls++
	return m.respond(m.calls)
}

func testPolicy() model.RetryPolicy {
	return model.RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		Budget:         5 * time.Second,
		BackoffBase:    time.Millisecond,
	}
}

func testEvent() *model.ReleaseEvent {
	return &model.ReleaseEvent{
		Tag:  "v1.0.0",
		Name: "v1.0.0",
		Body: "notes",
	}
}

func TestNotifier_Deliver(t *testing.T) {
	t.Run("posts exactly once on success", func(t *testing.T) {
		client := &mockClient{
			respond: func(seq int) (*model.DeliveryAttempt, error) {
				return &model.DeliveryAttempt{HTTPStatus: 204, Succeeded: true}, nil
			},
		}

		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, testPolicy())
		gt.NoError(t, err)

		gt.NoError(t, notifier.Deliver(context.Background(), testEvent()))
		gt.Equal(t, client.calls, 1)
	})

	t.Run("retries transient failures up to the attempt budget", func(t *testing.T) {
		client := &mockClient{
			respond: func(seq int) (*model.DeliveryAttempt, error) {
				return &model.DeliveryAttempt{},
					goerr.New("connection refused", goerr.T(types.ErrTagTransient))
			},
		}

		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, testPolicy())
		gt.NoError(t, err)

		err = notifier.Deliver(context.Background(), testEvent())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagTransient))
		gt.Equal(t, client.calls, 3)
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		client := &mockClient{
			respond: func(seq int) (*model.DeliveryAttempt, error) {
				if seq < 3 {
					return &model.DeliveryAttempt{HTTPStatus: 500},
						goerr.New("server error", goerr.T(types.ErrTagTransient))
				}
				return &model.DeliveryAttempt{HTTPStatus: 204, Succeeded: true}, nil
			},
		}

		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, testPolicy())
		gt.NoError(t, err)

		gt.NoError(t, notifier.Deliver(context.Background(), testEvent()))
		gt.Equal(t, client.calls, 3)
	})

	t.Run("does not retry permanent failures", func(t *testing.T) {
		client := &mockClient{
			respond: func(seq int) (*model.DeliveryAttempt, error) {
				return &model.DeliveryAttempt{HTTPStatus: 400},
					goerr.New("bad request", goerr.T(types.ErrTagPermanent))
			},
		}

		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, testPolicy())
		gt.NoError(t, err)

		err = notifier.Deliver(context.Background(), testEvent())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagPermanent))
		gt.Equal(t, client.calls, 1)
	})

	t.Run("stops when the wall-clock budget runs out", func(t *testing.T) {
		client := &mockClient{
			respond: func(seq int) (*model.DeliveryAttempt, error) {
				// Receiver asks for a wait far beyond the budget.
				return &model.DeliveryAttempt{HTTPStatus: 429, RetryAfter: time.Hour},
					goerr.New("rate limited", goerr.T(types.ErrTagTransient))
			},
		}

		policy := testPolicy()
		policy.Budget = 50 * time.Millisecond

		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, policy)
		gt.NoError(t, err)

		err = notifier.Deliver(context.Background(), testEvent())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagTransient))
		gt.Equal(t, client.calls, 1)
	})

	t.Run("rejects a zero attempt budget", func(t *testing.T) {
		client := &mockClient{
			respond: func(seq int) (*model.DeliveryAttempt, error) {
				t.Fatal("no network call expected")
				return nil, nil
			},
		}

		policy := testPolicy()
		policy.MaxAttempts = 0

		_, err := usecase.NewNotifier(client, model.MessageOptions{}, policy)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
		gt.Equal(t, client.calls, 0)
	})
}
