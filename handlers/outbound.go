package handlers

import (
	"io"
	"net/http"
	"time"

	chatRepo "enrolla/database/repository/chat"
	messageRepo "enrolla/database/repository/message"
	orgRepo "enrolla/database/repository/organization"
	"enrolla/models"
	"enrolla/services/whatsapp"
	"enrolla/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OutboundHandler exposes manual send operations on the messaging gateway,
// used by back-office tooling to reach a contact outside the automated loop.
// Sends are recorded as outbound turns so the conversation history stays
// complete for later automated rounds.
type OutboundHandler struct {
	Orgs     orgRepo.OrganizationRepository
	Chats    chatRepo.ChatRepository
	Messages messageRepo.MessageRepository
	Gateway  whatsapp.GatewayClient
}

// NewOutboundHandler creates a new OutboundHandler.
func NewOutboundHandler(or orgRepo.OrganizationRepository, cr chatRepo.ChatRepository, mr messageRepo.MessageRepository, gw whatsapp.GatewayClient) *OutboundHandler {
	return &OutboundHandler{Orgs: or, Chats: cr, Messages: mr, Gateway: gw}
}

func (oh *OutboundHandler) resolveOrg(c *gin.Context, orgID string) (*models.Organization, bool) {
	org, err := oh.Orgs.GetByID(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve organization"})
		return nil, false
	}
	if org == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return nil, false
	}
	return org, true
}

// persistOutbound records a manual send as an outbound turn. Best effort: a
// persistence failure never fails the send that already happened.
func (oh *OutboundHandler) persistOutbound(c *gin.Context, org *models.Organization, to, body, msgType string, resp whatsapp.Response) {
	logger := utils.GetLogger()
	ctx := c.Request.Context()

	chat, err := oh.Chats.GetByWaID(ctx, org.ID, to)
	if err != nil || chat == nil {
		logger.Warn("No chat record for manual send recipient", zap.String("to", to), zap.Error(err))
		return
	}

	now := time.Now().UTC()
	outbound := models.Message{
		ChatID:        chat.ID,
		ChatSessionID: chat.ActiveSessionID,
		WaMessageID:   resp.MessageID,
		Body:          body,
		Type:          msgType,
		Status:        "sent",
		Direction:     models.DirectionOutbound,
		Role:          models.RoleAssistant,
		SentAt:        &now,
	}
	if resp.Error != "" {
		outbound.Status = "failed"
		outbound.SentAt = nil
		outbound.Payload = map[string]any{"error": resp.Error}
	}
	if err := oh.Messages.Insert(ctx, outbound); err != nil {
		logger.Error("Manual outbound persist failed", zap.String("chat_id", chat.ID), zap.Error(err))
	}
}

func respond(c *gin.Context, resp whatsapp.Response) {
	if resp.Error != "" {
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type sendTextRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	To             string `json:"to" binding:"required"`
	Body           string `json:"body" binding:"required"`
}

// SendTextHandler sends a plain text message.
func (oh *OutboundHandler) SendTextHandler(c *gin.Context) {
	var req sendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id, to and body are required"})
		return
	}
	org, ok := oh.resolveOrg(c, req.OrganizationID)
	if !ok {
		return
	}
	resp := oh.Gateway.SendText(c.Request.Context(), org.PhoneNumberID, req.To, req.Body)
	oh.persistOutbound(c, org, req.To, req.Body, "text", resp)
	respond(c, resp)
}

type sendMediaRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	To             string `json:"to" binding:"required"`
	MediaID        string `json:"media_id" binding:"required"`
	Caption        string `json:"caption"`
	FileName       string `json:"file_name"`
	Voice          bool   `json:"voice"`
}

// SendImageHandler sends a previously-uploaded image.
func (oh *OutboundHandler) SendImageHandler(c *gin.Context) {
	var req sendMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id, to and media_id are required"})
		return
	}
	org, ok := oh.resolveOrg(c, req.OrganizationID)
	if !ok {
		return
	}
	resp := oh.Gateway.SendImage(c.Request.Context(), org.PhoneNumberID, req.To, req.MediaID, req.Caption)
	oh.persistOutbound(c, org, req.To, req.Caption, "image", resp)
	respond(c, resp)
}

// SendAudioHandler sends a previously-uploaded audio clip or voice note.
func (oh *OutboundHandler) SendAudioHandler(c *gin.Context) {
	var req sendMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id, to and media_id are required"})
		return
	}
	org, ok := oh.resolveOrg(c, req.OrganizationID)
	if !ok {
		return
	}
	resp := oh.Gateway.SendAudio(c.Request.Context(), org.PhoneNumberID, req.To, req.MediaID, req.Voice)
	oh.persistOutbound(c, org, req.To, "Mensaje de voz", "audio", resp)
	respond(c, resp)
}

// SendDocumentHandler sends a previously-uploaded document.
func (oh *OutboundHandler) SendDocumentHandler(c *gin.Context) {
	var req sendMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id, to and media_id are required"})
		return
	}
	org, ok := oh.resolveOrg(c, req.OrganizationID)
	if !ok {
		return
	}
	resp := oh.Gateway.SendDocument(c.Request.Context(), org.PhoneNumberID, req.To, req.MediaID, req.FileName, req.Caption)
	body := req.Caption
	if body == "" {
		body = req.FileName
	}
	oh.persistOutbound(c, org, req.To, body, "document", resp)
	respond(c, resp)
}

type markReadRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	MessageID      string `json:"message_id" binding:"required"`
}

// MarkReadHandler marks an inbound message as read on the channel.
func (oh *OutboundHandler) MarkReadHandler(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id and message_id are required"})
		return
	}
	org, ok := oh.resolveOrg(c, req.OrganizationID)
	if !ok {
		return
	}
	respond(c, oh.Gateway.MarkRead(c.Request.Context(), org.PhoneNumberID, req.MessageID))
}

// UploadMediaHandler uploads raw bytes to the channel and returns the
// assigned media identifier.
func (oh *OutboundHandler) UploadMediaHandler(c *gin.Context) {
	orgID := c.PostForm("organization_id")
	if orgID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id is required"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	org, ok := oh.resolveOrg(c, orgID)
	if !ok {
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	respond(c, oh.Gateway.UploadMedia(c.Request.Context(), org.PhoneNumberID, data, mimeType, fileHeader.Filename))
}
