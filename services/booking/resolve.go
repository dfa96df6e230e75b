package booking

import (
	"context"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// ResolveSelection maps a deterministic slot choice ("2", "la opción 3",
// "el de las 10") to a booking. ordinal is 1-based, 0 when the user did not
// pick by number; hour is the channel-local start hour, -1 when absent.
//
// When no option set survives but a preferred date was captured earlier, the
// search is replayed for that date before resolving, so a stale scratchpad
// does not strand the user.
func (s *DefaultBookingService) ResolveSelection(ctx context.Context, org *models.Organization, chat *models.Chat, ordinal, hour int) Outcome {
	logger := utils.GetLogger()

	options, err := s.loadOptions(ctx, org, chat)
	if err != nil {
		logger.Error("Failed to load slot options", zap.String("chat_id", chat.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
	}

	if len(options) == 0 {
		chatState, err := s.State.Get(ctx, chat.ID)
		if err != nil {
			logger.Error("Failed to load chat state", zap.String("chat_id", chat.ID), zap.Error(err))
			return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
		}
		if chatState.PreferredDate == "" {
			return Outcome{
				Kind:  OutcomeAskPreferredDate,
				Reply: "Aún no te he compartido horarios disponibles. ¿Qué días te acomodan para la visita y busco opciones?",
			}
		}
		if out := s.Search(ctx, org, chat, chatState.PreferredDate, chatState.PreferredDate); out.Kind != OutcomeOptions {
			return out
		}
		options, err = s.loadOptions(ctx, org, chat)
		if err != nil || len(options) == 0 {
			return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
		}
	}

	chosen := pickOption(options, ordinal, hour)
	if chosen == nil {
		return Outcome{
			Kind:  OutcomeInvalidOption,
			Reply: "Esa opción no está entre los horarios que te compartí. Respóndeme con el número de una de las opciones.",
		}
	}
	return s.Book(ctx, org, chat, chosen.SlotID)
}

// pickOption resolves by ordinal first, then by channel-local start hour.
func pickOption(options []models.SlotOption, ordinal, hour int) *models.SlotOption {
	if ordinal > 0 {
		for i := range options {
			if options[i].Ordinal == ordinal {
				return &options[i]
			}
		}
		return nil
	}
	if hour >= 0 {
		loc := channelLocation()
		for i := range options {
			if options[i].StartTime.In(loc).Hour() == hour {
				return &options[i]
			}
		}
	}
	return nil
}
