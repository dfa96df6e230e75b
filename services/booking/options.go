package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// maxOptions caps how many slots a single search offers.
const maxOptions = 10

var spanishWeekdays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

// channelLocation returns the timezone option lists are rendered in.
func channelLocation() *time.Location {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		return time.UTC
	}
	return loc
}

// formatWindow renders a slot window in channel-local time, e.g.
// "lunes 13/01 de 09:00 a 10:00".
func formatWindow(start, end time.Time) string {
	loc := channelLocation()
	s := start.In(loc)
	e := end.In(loc)
	return fmt.Sprintf("%s %s de %s a %s",
		spanishWeekdays[s.Weekday()], s.Format("02/01"), s.Format("15:04"), e.Format("15:04"))
}

// formatOptionList renders the numbered option list shown to the user. Raw
// slot identifiers never appear in the text.
func formatOptionList(options []models.SlotOption) string {
	var sb strings.Builder
	sb.WriteString("Estos son los horarios disponibles para la visita:\n")
	for _, opt := range options {
		sb.WriteString(fmt.Sprintf("%d. %s\n", opt.Ordinal, formatWindow(opt.StartTime, opt.EndTime)))
	}
	sb.WriteString("Respóndeme con el número de la opción que prefieras.")
	return sb.String()
}

// storeOptions persists the option set to the scratchpad and, when a lead
// exists, to the lead's metadata as the durable copy.
func (s *DefaultBookingService) storeOptions(ctx context.Context, org *models.Organization, chat *models.Chat, options []models.SlotOption) error {
	chatState, err := s.State.Get(ctx, chat.ID)
	if err != nil {
		return fmt.Errorf("store slot options: %w", err)
	}
	chatState.SlotOptions = options
	if err := s.State.Set(ctx, chat.ID, chatState); err != nil {
		return fmt.Errorf("store slot options: %w", err)
	}

	current, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
	if err != nil {
		return fmt.Errorf("store slot options: %w", err)
	}
	if current != nil {
		set := map[string]any{"metadata." + models.MetadataSlotOptionsKey: options}
		if err := s.Leads.Update(ctx, current.ID, set); err != nil {
			return fmt.Errorf("store slot options: %w", err)
		}
	}
	return nil
}

// loadOptions returns the most recent option set, preferring the scratchpad
// and falling back to the lead's metadata.
func (s *DefaultBookingService) loadOptions(ctx context.Context, org *models.Organization, chat *models.Chat) ([]models.SlotOption, error) {
	chatState, err := s.State.Get(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("load slot options: %w", err)
	}
	if len(chatState.SlotOptions) > 0 {
		return chatState.SlotOptions, nil
	}

	current, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("load slot options: %w", err)
	}
	if current == nil || current.Metadata == nil {
		return nil, nil
	}
	return decodeSlotOptions(current.Metadata[models.MetadataSlotOptionsKey]), nil
}

// clearOptions drops the option set everywhere after a successful booking.
func (s *DefaultBookingService) clearOptions(ctx context.Context, org *models.Organization, chat *models.Chat) {
	logger := utils.GetLogger()

	chatState, err := s.State.Get(ctx, chat.ID)
	if err == nil {
		chatState.SlotOptions = nil
		chatState.PreferredDate = ""
		if err := s.State.Set(ctx, chat.ID, chatState); err != nil {
			logger.Warn("Failed to clear slot options from scratchpad", zap.String("chat_id", chat.ID), zap.Error(err))
		}
	}

	current, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
	if err != nil || current == nil {
		return
	}
	set := map[string]any{"metadata." + models.MetadataSlotOptionsKey: nil}
	if err := s.Leads.Update(ctx, current.ID, set); err != nil {
		logger.Warn("Failed to clear slot options from lead metadata", zap.String("lead_id", current.ID), zap.Error(err))
	}
}

// decodeSlotOptions converts the loosely-typed metadata value back into the
// typed option set. Drivers hand the value back as generic maps.
func decodeSlotOptions(value any) []models.SlotOption {
	if value == nil {
		return nil
	}
	if typed, ok := value.([]models.SlotOption); ok {
		return typed
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var options []models.SlotOption
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil
	}
	return options
}
