package intelligence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"enrolla/models"
	"enrolla/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const fallbackReply = "Lo siento, en este momento no puedo responder. ¿Podemos intentarlo de nuevo en unos minutos?"

// GenerateReply runs one conversational round: a deterministic slot-selection
// check, at most one tool-executing completion round and at most one followup
// round. The returned text is the reply to send back on the channel.
func (s *DefaultAIService) GenerateReply(ctx context.Context, org *models.Organization, chat *models.Chat, settled []Turn, userText string) (string, error) {
	logger := utils.GetLogger()

	// Remember any preferred date mentioned in free text so a later bare
	// ordinal can be resolved even if this round books nothing.
	if date, ok := ExtractPreferredDate(userText, time.Now()); ok {
		if chatState, err := s.State.Get(ctx, chat.ID); err == nil && chatState.PreferredDate != date {
			chatState.PreferredDate = date
			if err := s.State.Set(ctx, chat.ID, chatState); err != nil {
				logger.Warn("Failed to record preferred date", zap.String("chat_id", chat.ID), zap.Error(err))
			}
		}
	}

	// Literal slot picks never reach the model: "2" or "el de las 10" is a
	// protocol move, not a conversational turn.
	if sel, ok := ParseSlotSelection(userText); ok {
		out := s.Booking.ResolveSelection(ctx, org, chat, sel.Ordinal, sel.Hour)
		return out.Reply, nil
	}

	currentLead, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
	if err != nil {
		logger.Warn("Lead lookup failed before completion round", zap.String("chat_id", chat.ID), zap.Error(err))
	}

	greeted := false
	for _, t := range settled {
		if t.Role == models.RoleAssistant {
			greeted = true
			break
		}
	}

	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemPrompt(org, currentLead, greeted),
	}}
	for _, t := range settled {
		role := openai.ChatMessageRoleUser
		if t.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText})

	req := openai.ChatCompletionRequest{
		Model:    s.modelFor(org),
		Messages: messages,
		Tools:    toolCatalog,
	}
	resp, err := s.Completer.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("completion round failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fallbackReply, nil
	}
	choice := resp.Choices[0].Message

	if len(choice.ToolCalls) == 0 {
		s.applyNoteFallback(ctx, org, chat, userText, false)
		if strings.TrimSpace(choice.Content) == "" {
			return fallbackReply, nil
		}
		return choice.Content, nil
	}

	// TOOLING: execute every requested call, collecting the result turns.
	messages = append(messages, choice)
	noteAdded := false
	for _, call := range choice.ToolCalls {
		res := s.executeTool(ctx, org, chat, call.Function.Name, call.Function.Arguments)
		noteAdded = noteAdded || res.noteAdded
		if res.booked || res.bookingViolation {
			// The booking protocol's reply stands on its own; a second
			// completion round could only paraphrase or contradict it.
			s.applyNoteFallback(ctx, org, chat, userText, noteAdded)
			return res.outcome, nil
		}
		messages = append(messages, toolTurn(call.ID, res.outcome))
	}
	s.applyNoteFallback(ctx, org, chat, userText, noteAdded)

	// Followup: one more round to phrase the outcome. Tools stay in the
	// request for schema continuity but further calls are not executed.
	req.Messages = messages
	resp, err = s.Completer.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("followup round failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return fallbackReply, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// applyNoteFallback appends keyword-classified notes when the completion
// round did not record any itself.
func (s *DefaultAIService) applyNoteFallback(ctx context.Context, org *models.Organization, chat *models.Chat, userText string, noteAdded bool) {
	if noteAdded {
		return
	}
	logger := utils.GetLogger()
	for _, note := range ClassifyNoteKeywords(userText) {
		if _, err := s.Leads.AddNote(ctx, org.ID, chat.ID, note); err != nil {
			logger.Warn("Keyword note fallback failed", zap.String("chat_id", chat.ID), zap.Error(err))
		}
	}
}
