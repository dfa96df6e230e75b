package chat

import (
	"context"
	"strconv"
	"time"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// HandleStatusUpdates applies delivery-status events to the matching
// outbound turns. Unknown statuses and unmatched message ids are logged and
// skipped; status traffic must never fail the webhook.
func (s *DefaultChatService) HandleStatusUpdates(ctx context.Context, statuses []models.InboundStatus) {
	logger := utils.GetLogger()

	for _, st := range statuses {
		switch st.Status {
		case "sent", "delivered", "read", "failed":
		default:
			logger.Debug("Ignoring unknown delivery status", zap.String("status", st.Status))
			continue
		}

		at := time.Now().UTC()
		if secs, err := strconv.ParseInt(st.Timestamp, 10, 64); err == nil {
			at = time.Unix(secs, 0).UTC()
		}
		if err := s.Messages.UpdateStatusByWaMessageID(ctx, st.ID, st.Status, at, map[string]any{"status_detail": st.Status}); err != nil {
			logger.Warn("Status update failed", zap.String("wa_message_id", st.ID), zap.Error(err))
		}
	}
}
