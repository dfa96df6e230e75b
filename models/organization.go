package models

import "time"

// Organization is a school (tenant) with its own WhatsApp number and bot persona.
type Organization struct {
	ID                  string    `bson:"id" json:"id"`
	Name                string    `bson:"name" json:"name"`
	PhoneNumberID       string    `bson:"phone_number_id" json:"phone_number_id"` // WhatsApp Cloud API phone number id
	PhoneNumber         string    `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	WABAID              string    `bson:"whatsapp_business_account_id,omitempty" json:"whatsapp_business_account_id,omitempty"`
	BotName             string    `bson:"bot_name,omitempty" json:"bot_name,omitempty"`
	BotInstructions     string    `bson:"bot_instructions,omitempty" json:"bot_instructions,omitempty"`
	BotTone             string    `bson:"bot_tone,omitempty" json:"bot_tone,omitempty"`
	BotLanguage         string    `bson:"bot_language,omitempty" json:"bot_language,omitempty"`
	BotModel            string    `bson:"bot_model,omitempty" json:"bot_model,omitempty"`
	RequirementsMediaID string    `bson:"requirements_media_id,omitempty" json:"requirements_media_id,omitempty"` // pre-uploaded admission requirements document
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at" json:"updated_at"`
}
