package intelligence

import (
	"context"
	"encoding/json"

	"enrolla/models"
	"enrolla/services/booking"
	"enrolla/services/lead"
	"enrolla/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ToolKind enumerates the closed-world tool catalog. The completion service
// only ever sees these names, so dispatch is exhaustive.
type ToolKind int

const (
	ToolCreateLead ToolKind = iota
	ToolUpdateLead
	ToolAddNote
	ToolGetRequirementsDocument
	ToolSearchAvailability
	ToolBookAppointment
	ToolCancelAppointment
)

var toolNames = map[ToolKind]string{
	ToolCreateLead:              "create_lead",
	ToolUpdateLead:              "update_lead",
	ToolAddNote:                 "add_note",
	ToolGetRequirementsDocument: "get_requirements_document",
	ToolSearchAvailability:      "search_availability",
	ToolBookAppointment:         "book_appointment",
	ToolCancelAppointment:       "cancel_appointment",
}

var toolKindsByName = func() map[string]ToolKind {
	m := make(map[string]ToolKind, len(toolNames))
	for kind, name := range toolNames {
		m[name] = kind
	}
	return m
}()

type CreateLeadArgs struct {
	StudentName     string `json:"student_name"`
	ContactName     string `json:"contact_name,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	GradeOfInterest string `json:"grade_of_interest,omitempty"`
	SchoolYear      string `json:"school_year,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type UpdateLeadArgs struct {
	StudentName     string `json:"student_name,omitempty"`
	ContactName     string `json:"contact_name,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	GradeOfInterest string `json:"grade_of_interest,omitempty"`
	SchoolYear      string `json:"school_year,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type AddNoteArgs struct {
	Note string `json:"note"`
}

type GetRequirementsDocumentArgs struct{}

type SearchAvailabilityArgs struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

type BookAppointmentArgs struct {
	SlotID string `json:"slot_id"`
}

type CancelAppointmentArgs struct {
	Reason string `json:"reason,omitempty"`
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func toolDef(kind ToolKind, description string, properties map[string]any, required []string) openai.Tool {
	params := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		params["required"] = required
	}
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        toolNames[kind],
			Description: description,
			Parameters:  params,
		},
	}
}

// toolCatalog is the fixed set of functions offered on every round.
var toolCatalog = []openai.Tool{
	toolDef(ToolCreateLead,
		"Registra un nuevo prospecto de admisión para esta conversación. Úsala en cuanto conozcas al menos el nombre del aspirante.",
		map[string]any{
			"student_name":      stringProp("Nombre del aspirante"),
			"contact_name":      stringProp("Nombre del padre, madre o tutor"),
			"contact_phone":     stringProp("Teléfono de contacto"),
			"grade_of_interest": stringProp("Grado escolar de interés"),
			"school_year":       stringProp("Ciclo escolar, por ejemplo 2025-2026"),
			"notes":             stringProp("Nota libre inicial"),
		},
		[]string{"student_name"}),
	toolDef(ToolUpdateLead,
		"Actualiza datos del prospecto existente. Envía solo los campos que cambiaron.",
		map[string]any{
			"student_name":      stringProp("Nombre del aspirante"),
			"contact_name":      stringProp("Nombre del padre, madre o tutor"),
			"contact_phone":     stringProp("Teléfono de contacto"),
			"grade_of_interest": stringProp("Grado escolar de interés"),
			"school_year":       stringProp("Ciclo escolar"),
			"notes":             stringProp("Nota libre a registrar"),
		},
		nil),
	toolDef(ToolAddNote,
		"Registra una nota sobre la conversación, por ejemplo interés en becas o una situación particular de la familia.",
		map[string]any{
			"note": stringProp("Texto de la nota"),
		},
		[]string{"note"}),
	toolDef(ToolGetRequirementsDocument,
		"Envía al usuario el documento con los requisitos de admisión.",
		map[string]any{},
		nil),
	toolDef(ToolSearchAvailability,
		"Busca horarios disponibles para una visita escolar en un rango de fechas.",
		map[string]any{
			"start_date": stringProp("Fecha inicial en formato YYYY-MM-DD"),
			"end_date":   stringProp("Fecha final en formato YYYY-MM-DD, opcional"),
		},
		[]string{"start_date"}),
	toolDef(ToolBookAppointment,
		"Agenda la visita en uno de los horarios previamente ofrecidos. slot_id debe ser el identificador de una de las opciones mostradas.",
		map[string]any{
			"slot_id": stringProp("Identificador del horario elegido"),
		},
		[]string{"slot_id"}),
	toolDef(ToolCancelAppointment,
		"Cancela la visita agendada del prospecto.",
		map[string]any{
			"reason": stringProp("Motivo de la cancelación"),
		},
		nil),
}

// toolResult is what a single tool execution hands back to the loop.
type toolResult struct {
	outcome          string // human-readable, fed back as the tool turn
	booked           bool   // booking succeeded, short-circuit with outcome
	bookingViolation bool   // booking rejected deterministically, short-circuit
	noteAdded        bool   // suppresses the keyword-classifier fallback
}

const toolFailureReply = "Lo siento, tuve un problema al realizar esa acción. ¿Podemos intentarlo de nuevo?"

// executeTool runs one requested tool call. Handlers never panic outward:
// every failure becomes an apologetic outcome string, so a broken tool call
// informs the model instead of aborting the round.
func (s *DefaultAIService) executeTool(ctx context.Context, org *models.Organization, chat *models.Chat, name, rawArgs string) toolResult {
	logger := utils.GetLogger()

	kind, ok := toolKindsByName[name]
	if !ok {
		// Unreachable with a closed catalog, but the wire is not trusted.
		logger.Warn("Completion service requested unknown tool", zap.String("tool", name))
		return toolResult{outcome: toolFailureReply}
	}

	switch kind {
	case ToolCreateLead:
		var args CreateLeadArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return toolResult{outcome: "Los datos del prospecto no se pudieron interpretar."}
		}
		if args.StudentName == "" {
			return toolResult{outcome: "Falta el nombre del aspirante para registrar el prospecto."}
		}
		if _, err := s.Leads.Create(ctx, org.ID, chat.ID, lead.Input{
			StudentName:     args.StudentName,
			ContactName:     args.ContactName,
			ContactPhone:    args.ContactPhone,
			GradeOfInterest: args.GradeOfInterest,
			SchoolYear:      args.SchoolYear,
			Notes:           args.Notes,
		}); err != nil {
			logger.Error("create_lead failed", zap.String("chat_id", chat.ID), zap.Error(err))
			return toolResult{outcome: toolFailureReply}
		}
		return toolResult{outcome: "Prospecto registrado correctamente.", noteAdded: args.Notes != ""}

	case ToolUpdateLead:
		var args UpdateLeadArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return toolResult{outcome: "Los datos del prospecto no se pudieron interpretar."}
		}
		current, err := s.Leads.GetByChat(ctx, org.ID, chat.ID)
		if err != nil {
			logger.Error("update_lead lookup failed", zap.String("chat_id", chat.ID), zap.Error(err))
			return toolResult{outcome: toolFailureReply}
		}
		if current == nil {
			return toolResult{outcome: "Aún no hay un prospecto registrado para esta conversación; créalo primero."}
		}
		if err := s.Leads.Update(ctx, current, lead.Input{
			StudentName:     args.StudentName,
			ContactName:     args.ContactName,
			ContactPhone:    args.ContactPhone,
			GradeOfInterest: args.GradeOfInterest,
			SchoolYear:      args.SchoolYear,
			Notes:           args.Notes,
		}); err != nil {
			logger.Error("update_lead failed", zap.String("lead_id", current.ID), zap.Error(err))
			return toolResult{outcome: toolFailureReply}
		}
		return toolResult{outcome: "Prospecto actualizado correctamente.", noteAdded: args.Notes != ""}

	case ToolAddNote:
		var args AddNoteArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args.Note == "" {
			return toolResult{outcome: "La nota no se pudo interpretar."}
		}
		res, err := s.Leads.AddNote(ctx, org.ID, chat.ID, args.Note)
		if err != nil {
			logger.Error("add_note failed", zap.String("chat_id", chat.ID), zap.Error(err))
			return toolResult{outcome: toolFailureReply}
		}
		switch res {
		case lead.NoteDuplicate:
			return toolResult{outcome: "La nota ya estaba registrada.", noteAdded: true}
		case lead.NoteDeferred:
			return toolResult{outcome: "Nota guardada; se asociará al prospecto cuando se registre.", noteAdded: true}
		default:
			return toolResult{outcome: "Nota registrada.", noteAdded: true}
		}

	case ToolGetRequirementsDocument:
		if org.RequirementsMediaID == "" {
			return toolResult{outcome: "La escuela no tiene cargado el documento de requisitos por el momento."}
		}
		resp := s.Gateway.SendDocument(ctx, org.PhoneNumberID, chat.WaID, org.RequirementsMediaID, "requisitos_admision.pdf", "Requisitos de admisión")
		if resp.Error != "" {
			logger.Error("get_requirements_document send failed", zap.String("chat_id", chat.ID), zap.String("error", resp.Error))
			return toolResult{outcome: "No pude enviar el documento de requisitos en este momento."}
		}
		return toolResult{outcome: "Documento de requisitos enviado al usuario."}

	case ToolSearchAvailability:
		var args SearchAvailabilityArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args.StartDate == "" {
			return toolResult{outcome: "Las fechas de búsqueda no se pudieron interpretar."}
		}
		out := s.Booking.Search(ctx, org, chat, args.StartDate, args.EndDate)
		return toolResult{outcome: out.Reply}

	case ToolBookAppointment:
		var args BookAppointmentArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args.SlotID == "" {
			return toolResult{outcome: "El horario elegido no se pudo interpretar.", bookingViolation: true}
		}
		return s.bookingOutcome(ctx, org, chat, args.SlotID)

	case ToolCancelAppointment:
		var args CancelAppointmentArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			args = CancelAppointmentArgs{}
		}
		reason := args.Reason
		if reason == "" {
			reason = "Cancelado a petición del usuario"
		}
		out := s.Booking.Cancel(ctx, org, chat, reason)
		return toolResult{outcome: out.Reply}
	}

	return toolResult{outcome: toolFailureReply}
}

// bookingOutcome maps a Book result onto the loop's short-circuit flags.
// A success and a deterministic rejection both end the round immediately
// with the booking protocol's own reply text.
func (s *DefaultAIService) bookingOutcome(ctx context.Context, org *models.Organization, chat *models.Chat, slotID string) toolResult {
	out := s.Booking.Book(ctx, org, chat, slotID)
	switch out.Kind {
	case booking.OutcomeBooked:
		return toolResult{outcome: out.Reply, booked: true}
	case booking.OutcomeInvalidOption, booking.OutcomeSlotFull, booking.OutcomeNoLead:
		return toolResult{outcome: out.Reply, bookingViolation: true}
	default:
		return toolResult{outcome: out.Reply}
	}
}

func toolTurn(callID, outcome string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    outcome,
		ToolCallID: callID,
	}
}
