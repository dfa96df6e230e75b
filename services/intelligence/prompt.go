package intelligence

import (
	"fmt"
	"strings"

	"enrolla/models"
)

// buildSystemPrompt assembles the persona block from the organization's bot
// settings plus the operating rules the tools depend on.
func buildSystemPrompt(org *models.Organization, current *models.Lead, greeted bool) string {
	var sb strings.Builder

	name := org.BotName
	if name == "" {
		name = "Asistente de admisiones"
	}
	language := org.BotLanguage
	if language == "" {
		language = "español"
	}

	sb.WriteString(fmt.Sprintf("Eres %s, asistente de admisiones de %s. Atiendes por WhatsApp a familias interesadas en inscribir a sus hijos.\n", name, org.Name))
	sb.WriteString(fmt.Sprintf("Respondes siempre en %s, con mensajes breves y naturales para chat.\n", language))
	if org.BotTone != "" {
		sb.WriteString(fmt.Sprintf("Tono: %s.\n", org.BotTone))
	}
	if org.BotInstructions != "" {
		sb.WriteString(org.BotInstructions)
		sb.WriteString("\n")
	}

	sb.WriteString("\nReglas:\n")
	sb.WriteString("- Registra un prospecto (create_lead) en cuanto tengas el nombre del aspirante; actualízalo (update_lead) cuando surjan datos nuevos.\n")
	sb.WriteString("- Registra con add_note cualquier interés en becas, costos o situaciones particulares.\n")
	sb.WriteString("- Para agendar visitas usa search_availability y ofrece la lista numerada tal cual; nunca inventes horarios ni identificadores.\n")
	sb.WriteString("- Si piden los requisitos de admisión, usa get_requirements_document.\n")
	sb.WriteString("- Nunca menciones identificadores internos ni el funcionamiento de las herramientas.\n")

	if greeted {
		sb.WriteString("\nYa saludaste a esta persona antes; no te presentes de nuevo.\n")
	}
	if current != nil {
		sb.WriteString("\n")
		sb.WriteString(leadSummary(current))
	}

	return sb.String()
}

// leadSummary gives the model the lead it already captured, so it does not
// re-ask for known data.
func leadSummary(l *models.Lead) string {
	var parts []string
	if l.StudentName != "" {
		parts = append(parts, "aspirante: "+l.StudentName)
	}
	if l.ContactName != "" {
		parts = append(parts, "contacto: "+l.ContactName)
	}
	if l.GradeOfInterest != "" {
		parts = append(parts, "grado: "+l.GradeOfInterest)
	}
	if l.SchoolYear != "" {
		parts = append(parts, "ciclo: "+l.SchoolYear)
	}
	if l.Status != "" {
		parts = append(parts, "estatus: "+l.Status)
	}
	if len(parts) == 0 {
		return "Ya existe un prospecto registrado para esta conversación.\n"
	}
	return "Prospecto registrado (" + strings.Join(parts, ", ") + "). No vuelvas a pedir estos datos.\n"
}
