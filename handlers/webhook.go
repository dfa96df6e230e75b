package handlers

import (
	"net/http"

	"enrolla/models"
	"enrolla/services/chat"
	"enrolla/services/templates"
	"enrolla/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler terminates the WhatsApp Cloud API webhook.
type WebhookHandler struct {
	ChatService chat.ChatService
	TemplateSvc templates.SyncService
	VerifyToken string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(cs chat.ChatService, ts templates.SyncService, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		ChatService: cs,
		TemplateSvc: ts,
		VerifyToken: verifyToken,
	}
}

// VerifyHandler answers the channel's GET handshake by echoing the challenge
// when the pre-shared verify token matches.
func (wh *WebhookHandler) VerifyHandler(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.String(http.StatusBadRequest, "missing parameters")
		return
	}
	if mode != "subscribe" || token != wh.VerifyToken {
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// EventHandler ingests the channel's POST deliveries. It always acknowledges
// with 200 regardless of internal outcome, because the channel treats any
// other response as a delivery failure and re-sends the whole batch.
func (wh *WebhookHandler) EventHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var envelope models.WebhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.Warn("Unparseable webhook payload", zap.Error(err))
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if templates.IsTemplateChangeField(change.Field) {
				wh.TemplateSvc.HandleTemplateChange(c.Request.Context(), entry.ID, change.Field, &value)
				continue
			}
			if len(value.Messages) > 0 {
				wh.ChatService.HandleIncomingValue(c.Request.Context(), &value)
			}
			if len(value.Statuses) > 0 {
				wh.ChatService.HandleStatusUpdates(c.Request.Context(), value.Statuses)
			}
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}
