package usecase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/infra/discord"
	"github.com/m-mizutani/herald/pkg/usecase"
)

// These tests run the whole relay against a fake webhook server.

func fastPolicy() model.RetryPolicy {
	return model.RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		Budget:         5 * time.Second,
		BackoffBase:    time.Millisecond,
	}
}

func TestDeliver_AgainstWebhookServer(t *testing.T) {
	t.Run("reachable webhook sees exactly one POST", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client, err := discord.NewClient(srv.URL)
		gt.NoError(t, err)
		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, fastPolicy())
		gt.NoError(t, err)

		gt.NoError(t, notifier.Deliver(context.Background(), testEvent()))
		gt.Equal(t, requests, 1)
	})

	t.Run("failing webhook sees exactly the attempt budget", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client, err := discord.NewClient(srv.URL)
		gt.NoError(t, err)
		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, fastPolicy())
		gt.NoError(t, err)

		err = notifier.Deliver(context.Background(), testEvent())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagTransient))
		gt.Equal(t, requests, 3)
	})

	t.Run("rejecting webhook sees exactly one POST", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		client, err := discord.NewClient(srv.URL)
		gt.NoError(t, err)
		notifier, err := usecase.NewNotifier(client, model.MessageOptions{}, fastPolicy())
		gt.NoError(t, err)

		err = notifier.Deliver(context.Background(), testEvent())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagPermanent))
		gt.Equal(t, requests, 1)
	})

	t.Run("missing webhook URL makes no network call", func(t *testing.T) {
		_, err := discord.NewClient("")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
	})
}
