package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/utils/async"
)

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret   string
	notifier interfaces.Notifier
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, notifier interfaces.Notifier) *WebhookHandler {
	return &WebhookHandler{
		secret:   secret,
		notifier: notifier,
	}
}

// Handle processes webhook requests. Only release events with the
// "published" action are relayed; everything else is acknowledged and
// dropped.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, r, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Hub-Signature-256")
	if !h.verifySignature(body, signature) {
		logger.Warn("Invalid webhook signature")
		writeError(w, r, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(w, r, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	deliveryID := r.Header.Get("X-GitHub-Delivery")

	releaseEvent, ok := payload.(*github.ReleaseEvent)
	if !ok {
		logger.Info("Ignoring unsupported event type",
			"event_type", eventType,
			"github_delivery", deliveryID,
		)
		writeAccepted(w, r)
		return
	}

	if releaseEvent.GetAction() != "published" {
		logger.Info("Ignoring release event with non-published action",
			"action", releaseEvent.GetAction(),
			"github_delivery", deliveryID,
		)
		writeAccepted(w, r)
		return
	}

	event, err := model.NewReleaseEvent(releaseEvent)
	if err != nil {
		logger.Error("Failed to extract release event", "error", err)
		writeError(w, r, err, http.StatusBadRequest)
		return
	}

	logger.Info("Accepted release event",
		"tag", event.Tag,
		"github_delivery", deliveryID,
	)

	// Deliver in the background so a slow webhook cannot stall the sender.
	async.Dispatch(ctx, func(ctx context.Context) error {
		return h.notifier.Deliver(ctx, event)
	})

	writeAccepted(w, r)
}

func writeAccepted(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "accepted",
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode success response", "error", err)
	}
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
