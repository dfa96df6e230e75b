package intelligence

import (
	"context"

	"enrolla/models"
	"enrolla/services/booking"
	"enrolla/services/lead"
	"enrolla/services/state"
	"enrolla/services/whatsapp"

	openai "github.com/sashabaranov/go-openai"
)

// Turn is one settled conversation turn replayed to the completion service.
type Turn struct {
	Role    string
	Content string
}

// ChatCompleter is the completion-service collaborator. *openai.Client
// satisfies it; tests substitute a scripted fake.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService produces the assistant reply for one conversational round,
// executing whatever side-effecting tools the round requires.
type AIService interface {
	GenerateReply(ctx context.Context, org *models.Organization, chat *models.Chat, settled []Turn, userText string) (string, error)
}

// DefaultAIService implements AIService with a bounded two-round
// tool-orchestration loop.
type DefaultAIService struct {
	Completer ChatCompleter
	Model     string // default model when the organization does not pin one
	Leads     lead.LeadService
	Booking   booking.BookingService
	State     state.Store
	Gateway   whatsapp.GatewayClient
}

func (s *DefaultAIService) modelFor(org *models.Organization) string {
	if org.BotModel != "" {
		return org.BotModel
	}
	return s.Model
}
