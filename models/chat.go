package models

import "time"

// Chat is one WhatsApp identity's ongoing conversation with an organization.
// There is at most one chat per (wa_id, organization_id) pair.
type Chat struct {
	ID                  string         `bson:"id" json:"id"`
	WaID                string         `bson:"wa_id" json:"wa_id"` // WhatsApp address of the contact
	Name                string         `bson:"name,omitempty" json:"name,omitempty"`
	PhoneNumber         string         `bson:"phone_number,omitempty" json:"phone_number,omitempty"` // organization's display number
	OrganizationID      string         `bson:"organization_id" json:"organization_id"`
	ActiveSessionID     string         `bson:"active_session_id,omitempty" json:"active_session_id,omitempty"`
	LastSessionClosedAt *time.Time     `bson:"last_session_closed_at,omitempty" json:"last_session_closed_at,omitempty"`
	State               map[string]any `bson:"state,omitempty" json:"state,omitempty"` // scratchpad durable copy, see ChatState
	CreatedAt           time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `bson:"updated_at" json:"updated_at"`
}

// ChatState is the typed view of a chat's ephemeral scratchpad. It carries
// cross-turn bookkeeping that must not leak into permanent records.
type ChatState struct {
	PendingNotes  []string     `json:"pending_notes,omitempty"`  // notes buffered before a lead exists
	SlotOptions   []SlotOption `json:"slot_options,omitempty"`   // most recent numbered option set
	PreferredDate string       `json:"preferred_date,omitempty"` // "YYYY-MM-DD" extracted from free text
}
