package whatsapp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const apiVersion = "v21.0"

// Client talks to the WhatsApp Cloud API (Graph API).
type Client struct {
	http        *resty.Client
	accessToken string
}

// NewClient constructs a gateway client against graph.facebook.com.
func NewClient(accessToken string) *Client {
	return NewClientWithBaseURL(accessToken, "https://graph.facebook.com/"+apiVersion)
}

// NewClientWithBaseURL constructs a gateway client against an explicit base
// URL. Used by tests to point at a local server.
func NewClientWithBaseURL(accessToken, baseURL string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	return &Client{http: http, accessToken: accessToken}
}

// normalizeRecipient rewrites Mexican mobile numbers: the Cloud API rejects
// the legacy "521" mobile prefix.
func normalizeRecipient(to string) string {
	if strings.HasPrefix(to, "521") {
		return "52" + to[3:]
	}
	return to
}

type graphError struct {
	Message string `json:"message"`
}

type graphResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	ID    string      `json:"id"` // media upload
	Error *graphError `json:"error"`
}

func (c *Client) postMessages(ctx context.Context, phoneNumberID string, payload map[string]any) Response {
	if c.accessToken == "" {
		return Response{Error: "WHATSAPP_ACCESS_TOKEN is not set"}
	}

	var result graphResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		SetBody(payload).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/%s/messages", phoneNumberID))
	if err != nil {
		return Response{Error: err.Error()}
	}
	if resp.IsError() {
		if result.Error != nil && result.Error.Message != "" {
			return Response{Error: result.Error.Message}
		}
		return Response{Error: "Unknown WhatsApp API error"}
	}

	out := Response{}
	if len(result.Messages) > 0 {
		out.MessageID = result.Messages[0].ID
	}
	return out
}

func (c *Client) SendText(ctx context.Context, phoneNumberID, to, body string) Response {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                normalizeRecipient(to),
		"type":              "text",
		"text":              map[string]any{"preview_url": false, "body": body},
	}
	return c.postMessages(ctx, phoneNumberID, payload)
}

func (c *Client) SendImage(ctx context.Context, phoneNumberID, to, mediaID, caption string) Response {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                normalizeRecipient(to),
		"type":              "image",
		"image":             map[string]any{"id": mediaID, "caption": caption},
	}
	return c.postMessages(ctx, phoneNumberID, payload)
}

func (c *Client) SendAudio(ctx context.Context, phoneNumberID, to, mediaID string, voice bool) Response {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                normalizeRecipient(to),
		"type":              "audio",
		"audio":             map[string]any{"id": mediaID, "voice": voice},
	}
	return c.postMessages(ctx, phoneNumberID, payload)
}

func (c *Client) SendDocument(ctx context.Context, phoneNumberID, to, mediaID, fileName, caption string) Response {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                normalizeRecipient(to),
		"type":              "document",
		"document":          map[string]any{"id": mediaID, "caption": caption, "filename": fileName},
	}
	return c.postMessages(ctx, phoneNumberID, payload)
}

// MarkRead marks the inbound message as read and shows the typing indicator.
func (c *Client) MarkRead(ctx context.Context, phoneNumberID, messageID string) Response {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
		"typing_indicator":  map[string]any{"type": "text"},
	}
	return c.postMessages(ctx, phoneNumberID, payload)
}

// UploadMedia uploads raw bytes and returns the assigned media identifier.
func (c *Client) UploadMedia(ctx context.Context, phoneNumberID string, data []byte, mimeType, fileName string) Response {
	if c.accessToken == "" {
		return Response{Error: "WHATSAPP_ACCESS_TOKEN is not set"}
	}
	if fileName == "" {
		fileName = fmt.Sprintf("media-%d", time.Now().Unix())
	}

	var result graphResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		SetFileReader("file", fileName, bytes.NewReader(data)).
		SetMultipartFormData(map[string]string{
			"messaging_product": "whatsapp",
			"type":              mimeType,
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/%s/media", phoneNumberID))
	if err != nil {
		return Response{Error: err.Error()}
	}
	if resp.IsError() {
		if result.Error != nil && result.Error.Message != "" {
			return Response{Error: result.Error.Message}
		}
		return Response{Error: "Unknown WhatsApp API error"}
	}
	return Response{MediaID: result.ID}
}

type mediaMetadata struct {
	URL      string      `json:"url"`
	MimeType string      `json:"mime_type"`
	Error    *graphError `json:"error"`
}

// DownloadMedia resolves the media identifier to its temporary URL and
// fetches the bytes. Returns the content and its MIME type.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	if c.accessToken == "" {
		return nil, "", fmt.Errorf("WHATSAPP_ACCESS_TOKEN is not set")
	}

	var meta mediaMetadata
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		SetResult(&meta).
		SetError(&meta).
		Get(fmt.Sprintf("/%s", mediaID))
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch media metadata: %w", err)
	}
	if resp.IsError() || meta.URL == "" {
		return nil, "", fmt.Errorf("failed to fetch media metadata for %s", mediaID)
	}

	// meta.URL is absolute, so the client's base URL is bypassed.
	fileResp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		Get(meta.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download media file: %w", err)
	}
	if fileResp.IsError() {
		return nil, "", fmt.Errorf("failed to download media file: status %d", fileResp.StatusCode())
	}
	return fileResp.Body(), meta.MimeType, nil
}
