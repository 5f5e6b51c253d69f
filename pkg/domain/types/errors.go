package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify delivery failures. The relay retries only errors
// tagged as transient; everything else fails the run immediately.
var (
	// ErrTagInvalidConfig marks caller errors such as a missing webhook URL.
	// Detected before any network call is made.
	ErrTagInvalidConfig = goerr.NewTag("invalid_config")

	// ErrTagTransient marks failures worth retrying: network errors,
	// timeouts, HTTP 5xx and HTTP 429.
	ErrTagTransient = goerr.NewTag("transient")

	// ErrTagPermanent marks failures the receiver will never accept,
	// i.e. non-429 HTTP 4xx responses.
	ErrTagPermanent = goerr.NewTag("permanent")
)
