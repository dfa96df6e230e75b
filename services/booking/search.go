package booking

import (
	"context"
	"fmt"
	"time"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// Search lists bookable slots in [startDate, endDate] (inclusive, channel-local
// days, "YYYY-MM-DD"), assigns ordinals 1..N and persists the option set.
func (s *DefaultBookingService) Search(ctx context.Context, org *models.Organization, chat *models.Chat, startDate, endDate string) Outcome {
	logger := utils.GetLogger()
	loc := channelLocation()

	from, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return Outcome{Kind: OutcomeError, Reply: "No pude entender las fechas solicitadas, ¿me las repites?"}
	}
	to := from
	if endDate != "" {
		to, err = time.ParseInLocation("2006-01-02", endDate, loc)
		if err != nil {
			return Outcome{Kind: OutcomeError, Reply: "No pude entender las fechas solicitadas, ¿me las repites?"}
		}
	}
	// The range is inclusive of the end day.
	to = to.AddDate(0, 0, 1)

	slots, err := s.Slots.ListAvailableInRange(ctx, org.ID, from, to, maxOptions)
	if err != nil {
		logger.Error("Availability search failed", zap.String("chat_id", chat.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema consultando la disponibilidad, ¿lo intentamos de nuevo en un momento?"}
	}
	if len(slots) == 0 {
		return Outcome{
			Kind:  OutcomeNoAvailability,
			Reply: fmt.Sprintf("Por el momento no tengo horarios disponibles entre el %s y el %s. ¿Te gustaría que busque en otras fechas?", from.Format("02/01"), to.AddDate(0, 0, -1).Format("02/01")),
		}
	}

	options := make([]models.SlotOption, 0, len(slots))
	for i, slot := range slots {
		options = append(options, models.SlotOption{
			Ordinal:   i + 1,
			SlotID:    slot.ID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	if err := s.storeOptions(ctx, org, chat, options); err != nil {
		logger.Error("Failed to persist slot options", zap.String("chat_id", chat.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema guardando los horarios, ¿lo intentamos de nuevo?"}
	}

	return Outcome{Kind: OutcomeOptions, Reply: formatOptionList(options)}
}
