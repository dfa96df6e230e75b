package models

// WebhookEnvelope is the outermost WhatsApp Cloud API event payload.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Time    int64           `json:"time,omitempty"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue carries the messages, contacts and statuses of one change,
// or a template-change payload depending on the change field.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product,omitempty"`
	Metadata         WebhookMetadata  `json:"metadata,omitempty"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []InboundStatus  `json:"statuses,omitempty"`

	// Template-change fields.
	MessageTemplateID       any    `json:"message_template_id,omitempty"`
	MessageTemplateName     string `json:"message_template_name,omitempty"`
	MessageTemplateLanguage string `json:"message_template_language,omitempty"`
	Event                   string `json:"event,omitempty"`
	Category                string `json:"category,omitempty"`
	NewCategory             string `json:"new_category,omitempty"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// InboundMessage is a single inbound channel event.
type InboundMessage struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	Timestamp string        `json:"timestamp"` // unix seconds as a string
	Type      string        `json:"type"`
	Text      *InboundText  `json:"text,omitempty"`
	Image     *InboundMedia `json:"image,omitempty"`
	Document  *InboundMedia `json:"document,omitempty"`
	Audio     *InboundMedia `json:"audio,omitempty"`
}

type InboundText struct {
	Body string `json:"body"`
}

// InboundMedia is the media descriptor shared by image/document/audio events.
type InboundMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
}

// InboundStatus is a delivery-status update for an outbound message.
type InboundStatus struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
