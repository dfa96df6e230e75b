package booking

import (
	"context"
	"errors"
	"fmt"

	slotRepo "enrolla/database/repository/slot"
	"enrolla/models"
	"enrolla/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Book reserves the given slot for the chat's lead. The slot identifier must
// belong to the current option set; anything else is rejected so that a made-up
// or stale identifier can never create an appointment.
func (s *DefaultBookingService) Book(ctx context.Context, org *models.Organization, chat *models.Chat, slotID string) Outcome {
	logger := utils.GetLogger()

	if _, err := uuid.Parse(slotID); err != nil {
		return Outcome{Kind: OutcomeInvalidOption, Reply: "Esa opción no es válida. Respóndeme con el número de uno de los horarios que te compartí."}
	}

	options, err := s.loadOptions(ctx, org, chat)
	if err != nil {
		logger.Error("Failed to load slot options", zap.String("chat_id", chat.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
	}
	var chosen *models.SlotOption
	for i := range options {
		if options[i].SlotID == slotID {
			chosen = &options[i]
			break
		}
	}
	if chosen == nil {
		return Outcome{Kind: OutcomeInvalidOption, Reply: "Esa opción no está entre los horarios que te compartí. ¿Quieres que busque disponibilidad de nuevo?"}
	}

	lead, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
	if err != nil {
		logger.Error("Failed to load lead for booking", zap.String("chat_id", chat.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
	}
	if lead == nil {
		return Outcome{Kind: OutcomeNoLead, Reply: "Antes de agendar la visita necesito algunos datos. ¿Me compartes el nombre del aspirante y el grado que le interesa?"}
	}

	if err := s.Slots.ReserveCapacity(ctx, chosen.SlotID); err != nil {
		if errors.Is(err, slotRepo.ErrSlotFull) {
			return Outcome{Kind: OutcomeSlotFull, Reply: "Ese horario se acaba de ocupar. ¿Te comparto otras opciones disponibles?"}
		}
		logger.Error("Failed to reserve slot capacity", zap.String("slot_id", chosen.SlotID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
	}

	appointment := models.Appointment{
		OrganizationID: org.ID,
		LeadID:         lead.ID,
		SlotID:         chosen.SlotID,
		Status:         models.AppointmentStatusScheduled,
		ScheduledFor:   chosen.StartTime,
	}
	if err := s.Appointments.Insert(ctx, appointment); err != nil {
		// Undo the reservation so the slot does not leak capacity.
		if relErr := s.Slots.ReleaseCapacity(ctx, chosen.SlotID); relErr != nil {
			logger.Error("Failed to release slot after insert failure", zap.String("slot_id", chosen.SlotID), zap.Error(relErr))
		}
		logger.Error("Failed to insert appointment", zap.String("lead_id", lead.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al agendar la visita, ¿lo intentamos de nuevo?"}
	}

	if err := s.Leads.Update(ctx, lead.ID, map[string]any{"status": models.LeadStatusVisitScheduled}); err != nil {
		logger.Warn("Failed to update lead status after booking", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	s.clearOptions(ctx, org, chat)

	return Outcome{
		Kind:  OutcomeBooked,
		Reply: fmt.Sprintf("¡Listo! Tu visita quedó agendada para el %s. Te esperamos.", formatWindow(chosen.StartTime, chosen.EndTime)),
	}
}
