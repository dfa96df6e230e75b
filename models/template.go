package models

import "time"

// TemplateComponent is one block of a WhatsApp message template.
type TemplateComponent struct {
	Type    string           `bson:"type" json:"type"` // "HEADER", "BODY", "FOOTER", "BUTTONS"
	Format  string           `bson:"format,omitempty" json:"format,omitempty"`
	Text    string           `bson:"text,omitempty" json:"text,omitempty"`
	Buttons []TemplateButton `bson:"buttons,omitempty" json:"buttons,omitempty"`
}

type TemplateButton struct {
	Type        string `bson:"type" json:"type"` // "URL", "PHONE_NUMBER", "QUICK_REPLY"
	Text        string `bson:"text" json:"text"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	PhoneNumber string `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
}

// WhatsAppTemplate mirrors the template metadata Meta reports through the
// webhook's template-change events. Best-effort bookkeeping only.
type WhatsAppTemplate struct {
	ID             string              `bson:"id" json:"id"`
	OrganizationID string              `bson:"organization_id" json:"organization_id"`
	ExternalID     string              `bson:"external_id,omitempty" json:"external_id,omitempty"` // Meta's template id
	Name           string              `bson:"name" json:"name"`
	Language       string              `bson:"language,omitempty" json:"language,omitempty"`
	Status         string              `bson:"status,omitempty" json:"status,omitempty"`
	Category       string              `bson:"category,omitempty" json:"category,omitempty"`
	QualityScore   string              `bson:"quality_score,omitempty" json:"quality_score,omitempty"`
	Components     []TemplateComponent `bson:"components,omitempty" json:"components,omitempty"`
	LastMetaEvent  map[string]any      `bson:"last_meta_event,omitempty" json:"last_meta_event,omitempty"`
	MetaUpdatedAt  *time.Time          `bson:"meta_updated_at,omitempty" json:"meta_updated_at,omitempty"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}
