package chat

import (
	"context"
	"fmt"

	"enrolla/models"
)

// ensureActiveSession returns the chat's active session, creating one when
// the current reference is missing, closed, or stale. The insert is followed
// by a re-query of the newest session for the chat, so two concurrent
// creators converge on the same winner.
func (s *DefaultChatService) ensureActiveSession(ctx context.Context, chat *models.Chat, orgID string) (*models.ChatSession, error) {
	if chat.ActiveSessionID != "" {
		session, err := s.Sessions.GetByID(ctx, chat.ActiveSessionID)
		if err != nil {
			return nil, fmt.Errorf("ensure active session: %w", err)
		}
		if session != nil && session.Status == models.SessionStatusActive && session.ClosedAt == nil {
			return session, nil
		}
	}

	fresh := models.ChatSession{
		OrganizationID: orgID,
		ChatID:         chat.ID,
		Status:         models.SessionStatusActive,
		AIEnabled:      true,
	}
	if err := s.Sessions.Insert(ctx, fresh); err != nil {
		return nil, fmt.Errorf("ensure active session: %w", err)
	}

	session, err := s.Sessions.GetLatestByChatID(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("ensure active session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("ensure active session: no session after insert for chat %s", chat.ID)
	}

	if err := s.Chats.SetActiveSession(ctx, chat.ID, session.ID); err != nil {
		return nil, fmt.Errorf("ensure active session: %w", err)
	}
	chat.ActiveSessionID = session.ID
	chat.LastSessionClosedAt = nil
	return session, nil
}
