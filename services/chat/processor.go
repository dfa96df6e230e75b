package chat

import (
	"context"
	"strings"
	"time"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// ProcessChat runs one full conversational round for a chat: ensure the
// active session, reconcile history, generate the assistant reply, send it on
// the channel and persist the outbound turn. finalMessage, when non-empty,
// overrides the pending-turn concatenation as the combined user utterance.
func (s *DefaultChatService) ProcessChat(ctx context.Context, chatID, finalMessage string) ProcessResult {
	logger := utils.GetLogger()

	chat, err := s.Chats.GetByID(ctx, chatID)
	if err != nil {
		return ProcessResult{Status: "error", Error: err.Error()}
	}
	if chat == nil {
		return ProcessResult{Status: "error", Error: ErrChatNotFound.Error()}
	}
	org, err := s.Orgs.GetByID(ctx, chat.OrganizationID)
	if err != nil {
		return ProcessResult{Status: "error", Error: err.Error()}
	}
	if org == nil {
		return ProcessResult{Status: "error", Error: ErrOrganizationNotFound.Error()}
	}

	session, err := s.ensureActiveSession(ctx, chat, org.ID)
	if err != nil {
		logger.Error("Session setup failed", zap.String("chat_id", chatID), zap.Error(err))
		return ProcessResult{Status: "error", Error: err.Error()}
	}
	if err := s.Messages.AttachOrphansToSession(ctx, chat.ID, session.ID); err != nil {
		logger.Error("Orphan backfill failed", zap.String("session_id", session.ID), zap.Error(err))
		return ProcessResult{Status: "error", Error: err.Error()}
	}

	history, err := s.Messages.ListBySession(ctx, session.ID)
	if err != nil {
		return ProcessResult{Status: "error", Error: err.Error()}
	}
	settled, pending := reconcileHistory(history)

	combined := strings.TrimSpace(finalMessage)
	if combined == "" {
		combined = strings.TrimSpace(strings.Join(pending, " "))
	}
	if combined == "" {
		return ProcessResult{Status: "skipped", Reason: "no_user_message"}
	}

	reply, err := s.AI.GenerateReply(ctx, org, chat, settled, combined)
	if err != nil {
		logger.Error("Reply generation failed", zap.String("chat_id", chatID), zap.Error(err))
		return ProcessResult{Status: "error", Error: err.Error()}
	}

	resp := s.Gateway.SendText(ctx, org.PhoneNumberID, chat.WaID, reply)

	now := time.Now().UTC()
	outbound := models.Message{
		ChatID:        chat.ID,
		ChatSessionID: session.ID,
		WaMessageID:   resp.MessageID,
		Body:          reply,
		Type:          "text",
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
	if err := s.Messages.Insert(ctx, outbound); err != nil {
		logger.Error("Outbound message persist failed", zap.String("chat_id", chatID), zap.Error(err))
	}

	if err := s.Sessions.SetLastResponseAt(ctx, session.ID, now); err != nil {
		logger.Warn("Failed to set response watermark", zap.String("session_id", session.ID), zap.Error(err))
	}

	if resp.Error != "" {
		return ProcessResult{Status: "error", Error: resp.Error}
	}
	return ProcessResult{Status: "sent", MessageID: resp.MessageID}
}
