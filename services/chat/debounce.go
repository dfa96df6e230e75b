package chat

import (
	"context"
	"time"

	"enrolla/utils"

	"go.uber.org/zap"
)

// debounceAndProcess waits out the quiet window and then drains the chat's
// accumulated text into a single processing invocation. If newer messages
// arrived during the wait, this drain yields; the goroutine scheduled by the
// newest message owns the queue row. The row is deleted only after a drain
// that did not end in error, so failed text is retried by the next burst.
func (s *DefaultChatService) debounceAndProcess(chatID string) {
	logger := utils.GetLogger()
	time.Sleep(s.DebounceWindow)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entry, err := s.Queue.Get(ctx, chatID)
	if err != nil {
		logger.Error("Queue fetch failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if entry == nil {
		// Another drain already consumed the queue.
		return
	}
	if time.Since(entry.LastAddedAt) < s.DebounceWindow {
		// A newer message restarted the window; its own drain takes over.
		return
	}

	locked, err := s.Queue.TryLock(ctx, chatID)
	if err != nil {
		logger.Error("Queue lock failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if !locked {
		return
	}

	result := s.ProcessChat(ctx, chatID, entry.CombinedText)
	if result.Status == "error" {
		logger.Error("Debounced processing failed", zap.String("chat_id", chatID), zap.String("error", result.Error))
		// Release the lock so the buffered text is retried by the next burst.
		if err := s.Queue.Unlock(ctx, chatID); err != nil {
			logger.Error("Queue unlock failed", zap.String("chat_id", chatID), zap.Error(err))
		}
		return
	}
	if err := s.Queue.Delete(ctx, chatID); err != nil {
		logger.Error("Queue delete failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}
