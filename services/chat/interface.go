package chat

import (
	"context"
	"errors"
	"time"

	chatRepo "enrolla/database/repository/chat"
	messageRepo "enrolla/database/repository/message"
	orgRepo "enrolla/database/repository/organization"
	queueRepo "enrolla/database/repository/queue"
	sessionRepo "enrolla/database/repository/session"
	"enrolla/models"
	"enrolla/services/intelligence"
	"enrolla/services/storage"
	"enrolla/services/whatsapp"
)

// Not-found conditions the trigger endpoint maps to 4xx responses.
var (
	ErrChatNotFound         = errors.New("chat not found")
	ErrOrganizationNotFound = errors.New("organization not found")
)

// ProcessResult is the structured outcome of one processing invocation.
type ProcessResult struct {
	Status    string `json:"status"` // "sent", "error" or "skipped"
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Reason    string `json:"reason,omitempty"` // set when skipped
}

// ChatService owns the inbound pipeline: ingesting channel events,
// debouncing bursts, and producing one assistant reply per drain.
type ChatService interface {
	HandleIncomingValue(ctx context.Context, value *models.WebhookValue)
	HandleStatusUpdates(ctx context.Context, statuses []models.InboundStatus)
	ProcessChat(ctx context.Context, chatID, finalMessage string) ProcessResult
}

// DefaultChatService implements ChatService.
type DefaultChatService struct {
	Orgs     orgRepo.OrganizationRepository
	Chats    chatRepo.ChatRepository
	Sessions sessionRepo.SessionRepository
	Messages messageRepo.MessageRepository
	Queue    queueRepo.QueueRepository
	Gateway  whatsapp.GatewayClient
	Storage  storage.MediaStorage
	AI       intelligence.AIService

	// DebounceWindow is how long a chat stays quiet before its accumulated
	// text is drained into one processing invocation.
	DebounceWindow time.Duration
}
