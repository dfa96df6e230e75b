package whatsapp

import "context"

// Response is the gateway's outcome envelope. Errors from the WhatsApp API
// are reported in-band so callers can persist them on the outbound turn
// instead of aborting the invocation.
type Response struct {
	MessageID string `json:"message_id,omitempty"`
	MediaID   string `json:"media_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GatewayClient is the WhatsApp Cloud API collaborator.
type GatewayClient interface {
	SendText(ctx context.Context, phoneNumberID, to, body string) Response
	SendImage(ctx context.Context, phoneNumberID, to, mediaID, caption string) Response
	SendAudio(ctx context.Context, phoneNumberID, to, mediaID string, voice bool) Response
	SendDocument(ctx context.Context, phoneNumberID, to, mediaID, fileName, caption string) Response
	MarkRead(ctx context.Context, phoneNumberID, messageID string) Response
	UploadMedia(ctx context.Context, phoneNumberID string, data []byte, mimeType, fileName string) Response
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}
