package handlers

import (
	"net/http"

	"enrolla/services/chat"
	"enrolla/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProcessHandler exposes the authenticated queue-processing trigger.
type ProcessHandler struct {
	ChatService chat.ChatService
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(cs chat.ChatService) *ProcessHandler {
	return &ProcessHandler{ChatService: cs}
}

type processRequest struct {
	ChatID       string `json:"chat_id" binding:"required"`
	FinalMessage string `json:"final_message"`
}

// ProcessChatHandler runs one conversational round for a chat. Not-found
// conditions map to 404; everything else that fails maps to 500. The
// structured result body is returned either way.
func (ph *ProcessHandler) ProcessChatHandler(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id is required"})
		return
	}

	result := ph.ChatService.ProcessChat(c.Request.Context(), req.ChatID, req.FinalMessage)
	switch {
	case result.Status == "error" && (result.Error == chat.ErrChatNotFound.Error() || result.Error == chat.ErrOrganizationNotFound.Error()):
		c.JSON(http.StatusNotFound, result)
	case result.Status == "error":
		utils.GetLogger().Error("Chat processing failed", zap.String("chat_id", req.ChatID), zap.String("error", result.Error))
		c.JSON(http.StatusInternalServerError, result)
	default:
		c.JSON(http.StatusOK, result)
	}
}
