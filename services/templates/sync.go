package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	orgRepo "enrolla/database/repository/organization"
	templateRepo "enrolla/database/repository/template"
	"enrolla/models"
	"enrolla/utils"

	"go.uber.org/zap"
)

// Webhook change fields that carry template metadata updates.
var templateChangeFields = map[string]bool{
	"message_template_status_update":  true,
	"message_template_quality_update": true,
	"template_category_update":        true,
}

// IsTemplateChangeField reports whether a webhook change is template traffic.
func IsTemplateChangeField(field string) bool {
	return templateChangeFields[field]
}

// SyncService keeps the locally-stored template metadata aligned with the
// events Meta pushes through the webhook. Best effort only: a miss is logged
// and dropped, never retried.
type SyncService interface {
	HandleTemplateChange(ctx context.Context, wabaID, field string, value *models.WebhookValue)
}

type DefaultSyncService struct {
	Orgs      orgRepo.OrganizationRepository
	Templates templateRepo.TemplateRepository
}

func (s *DefaultSyncService) HandleTemplateChange(ctx context.Context, wabaID, field string, value *models.WebhookValue) {
	logger := utils.GetLogger()

	org, err := s.Orgs.GetByWABAID(ctx, wabaID)
	if err != nil {
		logger.Error("Organization lookup by WABA id failed", zap.String("waba_id", wabaID), zap.Error(err))
		return
	}
	if org == nil {
		logger.Warn("Template change for unknown WABA id", zap.String("waba_id", wabaID))
		return
	}

	tpl, err := s.matchTemplate(ctx, org.ID, value)
	if err != nil {
		logger.Error("Template match failed", zap.String("waba_id", wabaID), zap.Error(err))
		return
	}
	if tpl == nil {
		logger.Warn("Template change did not match a stored template",
			zap.String("name", value.MessageTemplateName), zap.String("field", field))
		return
	}

	now := time.Now().UTC()
	set := map[string]any{
		"last_meta_event": lastEventPayload(field, value),
		"meta_updated_at": now,
	}
	if externalID := templateExternalID(value); externalID != "" && tpl.ExternalID == "" {
		set["external_id"] = externalID
	}
	switch field {
	case "message_template_status_update":
		if value.Event != "" {
			set["status"] = strings.ToUpper(value.Event)
		}
	case "message_template_quality_update":
		if value.Event != "" {
			set["quality_score"] = strings.ToUpper(value.Event)
		}
	case "template_category_update":
		if value.NewCategory != "" {
			set["category"] = strings.ToUpper(value.NewCategory)
		} else if value.Category != "" {
			set["category"] = strings.ToUpper(value.Category)
		}
	}

	if err := s.Templates.Update(ctx, org.ID, tpl.ID, set); err != nil {
		logger.Error("Template update failed", zap.String("template_id", tpl.ID), zap.Error(err))
	}
}

// matchTemplate resolves the stored template the event refers to: by Meta's
// template id first, then by name plus normalized language.
func (s *DefaultSyncService) matchTemplate(ctx context.Context, orgID string, value *models.WebhookValue) (*models.WhatsAppTemplate, error) {
	if externalID := templateExternalID(value); externalID != "" {
		tpl, err := s.Templates.GetByExternalID(ctx, orgID, externalID)
		if err != nil {
			return nil, err
		}
		if tpl != nil {
			return tpl, nil
		}
	}
	if value.MessageTemplateName == "" {
		return nil, nil
	}

	candidates, err := s.Templates.ListByName(ctx, orgID, value.MessageTemplateName)
	if err != nil {
		return nil, err
	}
	wanted := normalizeLanguage(value.MessageTemplateLanguage)
	for i := range candidates {
		if wanted == "" || normalizeLanguage(candidates[i].Language) == wanted {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// templateExternalID tolerates Meta sending the template id as either a
// JSON number or a string.
func templateExternalID(value *models.WebhookValue) string {
	switch v := value.MessageTemplateID.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}

// normalizeLanguage folds locale variants so "es_MX" and "es-mx" compare equal.
func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.ReplaceAll(lang, "-", "_"))
}

func lastEventPayload(field string, value *models.WebhookValue) map[string]any {
	return map[string]any{
		"field":        field,
		"event":        value.Event,
		"name":         value.MessageTemplateName,
		"language":     value.MessageTemplateLanguage,
		"category":     value.Category,
		"new_category": value.NewCategory,
	}
}
