package model

import "time"

// DeliveryAttempt records the outcome of a single webhook POST. Attempts
// are ephemeral: they drive the retry decision and logging within one run
// and are not persisted.
type DeliveryAttempt struct {
	Seq        int           // 1-origin attempt number
	StartedAt  time.Time     // Time the POST was issued
	Duration   time.Duration // Wall-clock duration of the POST
	HTTPStatus int           // 0 when no response was received
	RetryAfter time.Duration // Receiver-requested wait, 0 if none
	Succeeded  bool
}

// RetryPolicy bounds the delivery loop of a single run.
type RetryPolicy struct {
	MaxAttempts    int           // Total attempt budget, including the first try
	AttemptTimeout time.Duration // Per-attempt deadline
	Budget         time.Duration // Overall wall-clock budget for the run
	BackoffBase    time.Duration // First backoff interval, doubled per retry
}

// DefaultRetryPolicy returns the policy used when no overrides are given.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		AttemptTimeout: 10 * time.Second,
		Budget:         30 * time.Second,
		BackoffBase:    time.Second,
	}
}
