package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/utils/metrics"
	"github.com/sony/gobreaker"
)

type client struct {
	webhookURL string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient overrides the HTTP client, mainly for testing.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a webhook client for the given endpoint. The URL is
// validated here so a misconfigured relay fails before any network call.
func NewClient(webhookURL string, opts ...Option) (interfaces.WebhookClient, error) {
	if webhookURL == "" {
		return nil, goerr.New("webhook URL is required", goerr.T(types.ErrTagInvalidConfig))
	}
	u, err := url.Parse(webhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, goerr.New("webhook URL is malformed", goerr.T(types.ErrTagInvalidConfig))
	}

	c := &client{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
		// The breaker only matters for the long-running serve mode, where a
		// dead webhook should stop burning attempts on every incoming event.
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "discord-webhook",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
			},
		}),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Post submits the message once and classifies the outcome into the error
// taxonomy. The attempt record is returned alongside any error.
func (c *client) Post(ctx context.Context, msg *model.WebhookMessage) (*model.DeliveryAttempt, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode webhook payload", goerr.T(types.ErrTagInvalidConfig))
	}

	attempt := &model.DeliveryAttempt{StartedAt: time.Now()}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, body)
	})
	attempt.Duration = time.Since(attempt.StartedAt)

	if err != nil {
		// The breaker rejecting a call is not an attempt: nothing went out.
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return attempt, goerr.Wrap(err, "webhook circuit open", goerr.T(types.ErrTagTransient))
		}
		metrics.AttemptsTotal.WithLabelValues("network").Inc()
		return attempt, err
	}

	resp := result.(*response)
	attempt.HTTPStatus = resp.status
	attempt.RetryAfter = resp.retryAfter

	switch {
	case resp.status >= 200 && resp.status < 300:
		metrics.AttemptsTotal.WithLabelValues("ok").Inc()
		attempt.Succeeded = true
		return attempt, nil
	case resp.status == http.StatusTooManyRequests:
		metrics.AttemptsTotal.WithLabelValues("rate_limited").Inc()
		return attempt, goerr.New("webhook rate limited",
			goerr.T(types.ErrTagTransient), goerr.V("status", resp.status))
	case resp.status >= 500:
		metrics.AttemptsTotal.WithLabelValues("http_5xx").Inc()
		return attempt, goerr.New("webhook server error",
			goerr.T(types.ErrTagTransient), goerr.V("status", resp.status))
	default:
		metrics.AttemptsTotal.WithLabelValues("http_4xx").Inc()
		return attempt, goerr.New("webhook rejected the request",
			goerr.T(types.ErrTagPermanent), goerr.V("status", resp.status))
	}
}

type response struct {
	status     int
	retryAfter time.Duration
}

func (c *client) post(ctx context.Context, body []byte) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create webhook request", goerr.T(types.ErrTagInvalidConfig))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers DNS failures, refused connections and context deadlines.
		return nil, goerr.Wrap(err, "webhook request failed", goerr.T(types.ErrTagTransient))
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused across retries.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return &response{
		status:     resp.StatusCode,
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}, nil
}

// parseRetryAfter reads the delay-seconds form of the Retry-After header.
// Discord also sends fractional seconds on rate limits.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}
