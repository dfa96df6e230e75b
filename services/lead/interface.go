package lead

import (
	"context"

	leadRepo "enrolla/database/repository/lead"
	"enrolla/models"
	"enrolla/services/state"
)

// Input carries the structured lead fields a tool call may supply. Empty
// fields are ignored on update so existing data is never clobbered.
type Input struct {
	StudentName     string
	ContactName     string
	ContactPhone    string
	GradeOfInterest string
	SchoolYear      string
	Notes           string
}

// LeadService manages the admissions record derived from a chat.
type LeadService interface {
	GetByChat(ctx context.Context, orgID, chatID string) (*models.Lead, error)
	Create(ctx context.Context, orgID, chatID string, input Input) (*models.Lead, error)
	Update(ctx context.Context, current *models.Lead, input Input) error
	AddNote(ctx context.Context, orgID, chatID, note string) (NoteResult, error)
}

// NoteResult reports what happened to a note.
type NoteResult int

const (
	NoteAppended  NoteResult = iota // written to the lead's note log
	NoteDeferred                    // buffered in the scratchpad, no lead yet
	NoteDuplicate                   // already present, skipped
)

// DefaultLeadService implements LeadService.
type DefaultLeadService struct {
	Repo  leadRepo.LeadRepository
	State state.Store
}
