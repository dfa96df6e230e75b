package booking

import (
	"context"

	appointmentRepo "enrolla/database/repository/appointment"
	leadRepo "enrolla/database/repository/lead"
	slotRepo "enrolla/database/repository/slot"
	"enrolla/models"
	"enrolla/services/state"
)

// OutcomeKind classifies the result of a booking-protocol operation.
type OutcomeKind int

const (
	OutcomeOptions          OutcomeKind = iota // a numbered option list was produced
	OutcomeNoAvailability                      // search found nothing bookable
	OutcomeBooked                              // appointment created
	OutcomeInvalidOption                       // identifier not in the current option set
	OutcomeNoLead                              // booking requires a lead first
	OutcomeSlotFull                            // capacity exhausted between search and book
	OutcomeCancelled                           // appointment cancelled
	OutcomeNothingToCancel                     // no scheduled appointment found
	OutcomeAskPreferredDate                    // no option set and no preferred date known
	OutcomeError                               // internal failure
)

// Outcome pairs the machine-readable kind with the user-facing reply text.
type Outcome struct {
	Kind  OutcomeKind
	Reply string
}

// BookingService is the appointment-slot selection protocol: it maps
// human-friendly numbered choices to opaque slot identifiers and refuses any
// identifier the system did not hand out itself.
type BookingService interface {
	Search(ctx context.Context, org *models.Organization, chat *models.Chat, startDate, endDate string) Outcome
	Book(ctx context.Context, org *models.Organization, chat *models.Chat, slotID string) Outcome
	Cancel(ctx context.Context, org *models.Organization, chat *models.Chat, reason string) Outcome
	ResolveSelection(ctx context.Context, org *models.Organization, chat *models.Chat, ordinal, hour int) Outcome
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Slots        slotRepo.SlotRepository
	Appointments appointmentRepo.AppointmentRepository
	Leads        leadRepo.LeadRepository
	State        state.Store
}
