package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/Rohitkumar43/coditor/internal/service"
)

// WebhookHandler receives events from the identity provider. The provider
// delivers them through svix, so every request carries svix-id,
// svix-timestamp, and svix-signature headers that must verify against the
// endpoint secret before the payload is trusted.
type WebhookHandler struct {
	wh     *svix.Webhook
	users  *service.UserService
	logger *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. secret is the endpoint signing
// secret from the provider's dashboard (whsec_... format).
func NewWebhookHandler(secret string, users *service.UserService, logger *slog.Logger) (*WebhookHandler, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return &WebhookHandler{wh: wh, users: users, logger: logger}, nil
}

// identityEvent is the portion of the provider's event envelope we consume.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"data"`
}

// HandleIdentityEvent processes a provider webhook delivery.
//
// HTTP: POST /webhooks/identity
//
// Only user.created is consumed; other event types are acknowledged with
// 200 so the provider does not retry them. Sync is idempotent, so redelivery
// of user.created is harmless.
func (h *WebhookHandler) HandleIdentityEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("webhook: reading body failed", slog.String("error", err.Error()))
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	if err := h.wh.Verify(payload, r.Header); err != nil {
		h.logger.Warn("webhook: signature verification failed", slog.String("error", err.Error()))
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var evt identityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		h.logger.Warn("webhook: malformed payload", slog.String("error", err.Error()))
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	if evt.Type != "user.created" {
		w.WriteHeader(http.StatusOK)
		return
	}

	email := ""
	if len(evt.Data.EmailAddresses) > 0 {
		email = evt.Data.EmailAddresses[0].EmailAddress
	}
	name := strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName)

	if _, err := h.users.SyncUser(r.Context(), evt.Data.ID, email, name); err != nil {
		h.logger.Error("webhook: user sync failed",
			slog.String("subject", evt.Data.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
