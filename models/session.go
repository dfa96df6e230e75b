package models

import "time"

// Session status values.
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// ChatSession is a bounded span of a chat. Its last_response_at watermark
// partitions the message history into settled and pending turns.
type ChatSession struct {
	ID             string     `bson:"id" json:"id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	ChatID         string     `bson:"chat_id" json:"chat_id"`
	Status         string     `bson:"status" json:"status"` // "active" or "closed"
	AIEnabled      bool       `bson:"ai_enabled" json:"ai_enabled"`
	ClosedAt       *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	LastResponseAt *time.Time `bson:"last_response_at,omitempty" json:"last_response_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}
