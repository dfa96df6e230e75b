package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is a single turn in a chat, attached lazily to a session.
// Immutable once persisted except for the delivery-status fields.
type Message struct {
	ID            string         `bson:"id" json:"id"`
	ChatID        string         `bson:"chat_id" json:"chat_id"`
	ChatSessionID string         `bson:"chat_session_id,omitempty" json:"chat_session_id,omitempty"`
	WaMessageID   string         `bson:"wa_message_id,omitempty" json:"wa_message_id,omitempty"` // channel's own message identifier
	Body          string         `bson:"body" json:"body"`
	Type          string         `bson:"type" json:"type"`     // "text", "image", "audio", "document", ...
	Status        string         `bson:"status" json:"status"` // "received", "sent", "delivered", "read", "failed"
	Direction     string         `bson:"direction" json:"direction"`
	Role          string         `bson:"role" json:"role"`
	SenderName    string         `bson:"sender_name,omitempty" json:"sender_name,omitempty"`
	Payload       map[string]any `bson:"payload,omitempty" json:"payload,omitempty"`
	MediaID       string         `bson:"media_id,omitempty" json:"media_id,omitempty"`
	MediaPath     string         `bson:"media_path,omitempty" json:"media_path,omitempty"`
	MediaURL      string         `bson:"media_url,omitempty" json:"media_url,omitempty"`
	MediaMimeType string         `bson:"media_mime_type,omitempty" json:"media_mime_type,omitempty"`
	WaTimestamp   string         `bson:"wa_timestamp,omitempty" json:"wa_timestamp,omitempty"` // channel origin timestamp, ISO-8601; inbound only
	SentAt        *time.Time     `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	DeliveredAt   *time.Time     `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	ReadAt        *time.Time     `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
}
