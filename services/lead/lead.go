package lead

import (
	"context"
	"fmt"
	"strings"

	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

func (s *DefaultLeadService) GetByChat(ctx context.Context, orgID, chatID string) (*models.Lead, error) {
	return s.Repo.GetByChat(ctx, orgID, chatID)
}

// Create creates the chat's lead, draining any notes buffered in the
// scratchpad into the new lead's note log. If a lead already exists the
// input is applied as a partial update instead.
func (s *DefaultLeadService) Create(ctx context.Context, orgID, chatID string, input Input) (*models.Lead, error) {
	existing, err := s.Repo.GetByChat(ctx, orgID, chatID)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	if existing != nil {
		if err := s.Update(ctx, existing, input); err != nil {
			return nil, err
		}
		return s.Repo.GetByChat(ctx, orgID, chatID)
	}

	newLead := models.Lead{
		OrganizationID:  orgID,
		ChatID:          chatID,
		StudentName:     input.StudentName,
		ContactName:     input.ContactName,
		ContactPhone:    input.ContactPhone,
		GradeOfInterest: input.GradeOfInterest,
		SchoolYear:      input.SchoolYear,
		Status:          models.LeadStatusNew,
	}
	if input.Notes != "" {
		newLead.Notes = []string{input.Notes}
	}

	// Drain notes buffered before the lead existed.
	chatState, err := s.State.Get(ctx, chatID)
	if err != nil {
		utils.GetLogger().Warn("Failed to load scratchpad while creating lead",
			zap.String("chat_id", chatID), zap.Error(err))
		chatState = &models.ChatState{}
	}
	for _, pending := range chatState.PendingNotes {
		if !containsNote(newLead.Notes, pending) {
			newLead.Notes = append(newLead.Notes, pending)
		}
	}

	if err := s.Repo.Insert(ctx, newLead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	if len(chatState.PendingNotes) > 0 {
		chatState.PendingNotes = nil
		if err := s.State.Set(ctx, chatID, chatState); err != nil {
			utils.GetLogger().Warn("Failed to clear pending note buffer",
				zap.String("chat_id", chatID), zap.Error(err))
		}
	}

	return s.Repo.GetByChat(ctx, orgID, chatID)
}

// Update applies the non-empty fields of the input to the lead. Absent
// fields never overwrite existing data.
func (s *DefaultLeadService) Update(ctx context.Context, current *models.Lead, input Input) error {
	set := map[string]any{}
	if input.StudentName != "" {
		set["student_name"] = input.StudentName
	}
	if input.ContactName != "" {
		set["contact_name"] = input.ContactName
	}
	if input.ContactPhone != "" {
		set["contact_phone"] = input.ContactPhone
	}
	if input.GradeOfInterest != "" {
		set["grade_of_interest"] = input.GradeOfInterest
	}
	if input.SchoolYear != "" {
		set["school_year"] = input.SchoolYear
	}

	if len(set) > 0 {
		if err := s.Repo.Update(ctx, current.ID, set); err != nil {
			return fmt.Errorf("update lead: %w", err)
		}
	}

	if input.Notes != "" {
		if _, err := s.AddNote(ctx, current.OrganizationID, current.ChatID, input.Notes); err != nil {
			return err
		}
	}
	return nil
}

// AddNote appends a note to the lead's log, or buffers it in the scratchpad
// when no lead exists yet. Duplicate text is skipped in both places.
func (s *DefaultLeadService) AddNote(ctx context.Context, orgID, chatID, note string) (NoteResult, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return NoteDuplicate, nil
	}

	current, err := s.Repo.GetByChat(ctx, orgID, chatID)
	if err != nil {
		return NoteDuplicate, fmt.Errorf("add note: %w", err)
	}

	if current == nil {
		chatState, err := s.State.Get(ctx, chatID)
		if err != nil {
			return NoteDuplicate, fmt.Errorf("add note: %w", err)
		}
		if containsNote(chatState.PendingNotes, note) {
			return NoteDuplicate, nil
		}
		chatState.PendingNotes = append(chatState.PendingNotes, note)
		if err := s.State.Set(ctx, chatID, chatState); err != nil {
			return NoteDuplicate, fmt.Errorf("add note: %w", err)
		}
		return NoteDeferred, nil
	}

	if containsNote(current.Notes, note) {
		return NoteDuplicate, nil
	}
	if err := s.Repo.AppendNote(ctx, current.ID, note); err != nil {
		return NoteDuplicate, fmt.Errorf("add note: %w", err)
	}
	return NoteAppended, nil
}

// containsNote reports whether the note text already appears in the log.
func containsNote(notes []string, note string) bool {
	for _, existing := range notes {
		if strings.Contains(existing, note) {
			return true
		}
	}
	return false
}
