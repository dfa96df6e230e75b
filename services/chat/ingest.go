package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// HandleIncomingValue ingests one webhook change value: it resolves the
// organization by phone number id, persists every new message exactly once,
// accumulates the text in the per-chat queue, and schedules a single debounced
// drain per distinct chat touched by the batch.
func (s *DefaultChatService) HandleIncomingValue(ctx context.Context, value *models.WebhookValue) {
	logger := utils.GetLogger()

	if len(value.Messages) == 0 {
		return
	}

	org, err := s.Orgs.GetByPhoneNumberID(ctx, value.Metadata.PhoneNumberID)
	if err != nil {
		logger.Error("Organization lookup failed", zap.String("phone_number_id", value.Metadata.PhoneNumberID), zap.Error(err))
		return
	}
	if org == nil {
		logger.Warn("No organization for phone number id", zap.String("phone_number_id", value.Metadata.PhoneNumberID))
		return
	}

	contactNames := make(map[string]string, len(value.Contacts))
	for _, c := range value.Contacts {
		contactNames[c.WaID] = c.Profile.Name
	}

	// Channel batches are not guaranteed to arrive in send order; the queue
	// concatenation has to read the way the user typed it.
	ordered := make([]models.InboundMessage, len(value.Messages))
	copy(ordered, value.Messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return unixSeconds(ordered[i].Timestamp) < unixSeconds(ordered[j].Timestamp)
	})

	touched := make(map[string]bool)
	for _, msg := range ordered {
		chatID, ok := s.ingestMessage(ctx, org, value, contactNames, msg)
		if ok {
			touched[chatID] = true
		}
	}

	for chatID := range touched {
		go s.debounceAndProcess(chatID)
	}
}

func (s *DefaultChatService) ingestMessage(ctx context.Context, org *models.Organization, value *models.WebhookValue, contactNames map[string]string, msg models.InboundMessage) (string, bool) {
	logger := utils.GetLogger()

	if err := s.Chats.Upsert(ctx, org.ID, msg.From, contactNames[msg.From], value.Metadata.DisplayPhoneNumber); err != nil {
		logger.Error("Chat upsert failed", zap.String("wa_id", msg.From), zap.Error(err))
		return "", false
	}
	chat, err := s.Chats.GetByWaID(ctx, org.ID, msg.From)
	if err != nil || chat == nil {
		logger.Error("Chat fetch after upsert failed", zap.String("wa_id", msg.From), zap.Error(err))
		return "", false
	}

	// Duplicate channel deliveries must not create duplicate turns or
	// double-trigger processing.
	exists, err := s.Messages.ExistsByWaMessageID(ctx, msg.ID)
	if err != nil {
		logger.Error("Duplicate check failed", zap.String("wa_message_id", msg.ID), zap.Error(err))
		return "", false
	}
	if exists {
		return "", false
	}

	record := models.Message{
		ChatID:      chat.ID,
		WaMessageID: msg.ID,
		Type:        msg.Type,
		Status:      "received",
		Direction:   models.DirectionInbound,
		Role:        models.RoleUser,
		SenderName:  contactNames[msg.From],
		WaTimestamp: isoTimestamp(msg.Timestamp),
		Body:        messageBody(msg),
	}

	if media := inboundMedia(msg); media != nil {
		s.intakeMedia(ctx, chat.ID, media, &record)
	}

	if err := s.Messages.Insert(ctx, record); err != nil {
		logger.Error("Message insert failed", zap.String("wa_message_id", msg.ID), zap.Error(err))
		return "", false
	}
	if err := s.Queue.Accumulate(ctx, chat.ID, record.Body); err != nil {
		logger.Error("Queue accumulate failed", zap.String("chat_id", chat.ID), zap.Error(err))
		return "", false
	}
	return chat.ID, true
}

// intakeMedia downloads the channel media and re-hosts it, so the stored
// turn keeps a stable URL after the channel's short-lived one expires.
// Failures are logged and skipped; the text turn still lands.
func (s *DefaultChatService) intakeMedia(ctx context.Context, chatID string, media *models.InboundMedia, record *models.Message) {
	logger := utils.GetLogger()

	data, mimeType, err := s.Gateway.DownloadMedia(ctx, media.ID)
	if err != nil {
		logger.Warn("Media download failed", zap.String("media_id", media.ID), zap.Error(err))
		return
	}
	fileName := media.Filename
	if fileName == "" {
		fileName = "file"
	}
	path := fmt.Sprintf("chats/%s/%s-%s", chatID, media.ID, fileName)
	url, err := s.Storage.UploadBytes(ctx, data, path)
	if err != nil {
		logger.Warn("Media upload failed", zap.String("media_id", media.ID), zap.Error(err))
		return
	}
	record.MediaID = media.ID
	record.MediaPath = path
	record.MediaURL = url
	record.MediaMimeType = mimeType
}

func inboundMedia(msg models.InboundMessage) *models.InboundMedia {
	switch {
	case msg.Image != nil:
		return msg.Image
	case msg.Document != nil:
		return msg.Document
	case msg.Audio != nil:
		return msg.Audio
	}
	return nil
}

// messageBody derives the text of a turn: literal text, then media caption,
// then document filename, then a voice-note marker, then a typed placeholder.
func messageBody(msg models.InboundMessage) string {
	if msg.Text != nil && msg.Text.Body != "" {
		return msg.Text.Body
	}
	if msg.Image != nil && msg.Image.Caption != "" {
		return msg.Image.Caption
	}
	if msg.Document != nil {
		if msg.Document.Caption != "" {
			return msg.Document.Caption
		}
		if msg.Document.Filename != "" {
			return msg.Document.Filename
		}
	}
	if msg.Audio != nil {
		return "Mensaje de voz"
	}
	return fmt.Sprintf("[Media/Other: %s]", msg.Type)
}

func unixSeconds(ts string) int64 {
	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return 0
	}
	return secs
}

// isoTimestamp converts the channel's unix-seconds string to ISO-8601 UTC.
// Unparseable values are kept verbatim for the reconciler's fallback path.
func isoTimestamp(unixSeconds string) string {
	secs, err := strconv.ParseInt(unixSeconds, 10, 64)
	if err != nil {
		return unixSeconds
	}
	return time.Unix(secs, 0).UTC().Format(time.RFC3339)
}
