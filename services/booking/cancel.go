package booking

import (
	"context"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// Cancel voids the lead's scheduled appointment, if any, and frees the slot.
func (s *DefaultBookingService) Cancel(ctx context.Context, org *models.Organization, chat *models.Chat, reason string) Outcome {
	logger := utils.GetLogger()

	lead, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
	if err != nil {
		logger.Error("Failed to load lead for cancellation", zap.String("chat_id", chat.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al cancelar la visita, ¿lo intentamos de nuevo?"}
	}
	if lead == nil {
		return Outcome{Kind: OutcomeNothingToCancel, Reply: "No encontré ninguna visita agendada a tu nombre. ¿Te gustaría agendar una?"}
	}

	appointment, err := s.Appointments.GetLatestScheduledByLead(ctx, lead.ID)
	if err != nil {
		logger.Error("Failed to look up scheduled appointment", zap.String("lead_id", lead.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al cancelar la visita, ¿lo intentamos de nuevo?"}
	}
	if appointment == nil {
		return Outcome{Kind: OutcomeNothingToCancel, Reply: "No encontré ninguna visita agendada a tu nombre. ¿Te gustaría agendar una?"}
	}

	if err := s.Appointments.Cancel(ctx, appointment.ID, reason); err != nil {
		logger.Error("Failed to cancel appointment", zap.String("appointment_id", appointment.ID), zap.Error(err))
		return Outcome{Kind: OutcomeError, Reply: "Tuve un problema al cancelar la visita, ¿lo intentamos de nuevo?"}
	}
	if err := s.Slots.ReleaseCapacity(ctx, appointment.SlotID); err != nil {
		logger.Warn("Failed to release slot capacity on cancel", zap.String("slot_id", appointment.SlotID), zap.Error(err))
	}
	if err := s.Leads.Update(ctx, lead.ID, map[string]any{"status": models.LeadStatusNew}); err != nil {
		logger.Warn("Failed to revert lead status on cancel", zap.String("lead_id", lead.ID), zap.Error(err))
	}

	return Outcome{
		Kind:  OutcomeCancelled,
		Reply: "Tu visita ha sido cancelada. Cuando quieras reagendar, con gusto te comparto los horarios disponibles.",
	}
}
