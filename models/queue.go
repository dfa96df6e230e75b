package models

import "time"

// MessageQueue accumulates a chat's inbound text during the debounce window.
// One row per chat; deleted once the combined text has been processed.
type MessageQueue struct {
	ChatID       string    `bson:"chat_id" json:"chat_id"`
	CombinedText string    `bson:"combined_text" json:"combined_text"`
	LastAddedAt  time.Time `bson:"last_added_at" json:"last_added_at"`
	IsProcessing bool      `bson:"is_processing" json:"is_processing"`
}
