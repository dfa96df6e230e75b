package models

import "time"

// Lead status values.
const (
	LeadStatusNew            = "nuevo"
	LeadStatusVisitScheduled = "visita agendada"
)

// Lead is the structured admissions record derived from a chat.
// At most one lead exists per (organization, chat) pair.
type Lead struct {
	ID              string         `bson:"id" json:"id"`
	OrganizationID  string         `bson:"organization_id" json:"organization_id"`
	ChatID          string         `bson:"chat_id" json:"chat_id"`
	StudentName     string         `bson:"student_name,omitempty" json:"student_name,omitempty"`
	ContactName     string         `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	ContactPhone    string         `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	GradeOfInterest string         `bson:"grade_of_interest,omitempty" json:"grade_of_interest,omitempty"`
	SchoolYear      string         `bson:"school_year,omitempty" json:"school_year,omitempty"`
	Status          string         `bson:"status" json:"status"`
	Notes           []string       `bson:"notes,omitempty" json:"notes,omitempty"`
	Metadata        map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"` // open-ended; carries the durable slot option set
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updated_at"`
}

// MetadataSlotOptionsKey is the lead metadata key holding the most recent
// slot option set as []SlotOption.
const MetadataSlotOptionsKey = "slot_options"
