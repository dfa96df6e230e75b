package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecipient(t *testing.T) {
	assert.Equal(t, "525512345678", normalizeRecipient("5215512345678"))
	assert.Equal(t, "525512345678", normalizeRecipient("525512345678"))
	assert.Equal(t, "14155550100", normalizeRecipient("14155550100"))
}

func TestSendText(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-token", srv.URL)
	resp := client.SendText(context.Background(), "pn-1", "5215512345678", "hola")

	assert.Empty(t, resp.Error)
	assert.Equal(t, "wamid.ABC", resp.MessageID)
	assert.Equal(t, "/pn-1/messages", gotPath)
	assert.Equal(t, "525512345678", gotPayload["to"])
	assert.Equal(t, "text", gotPayload["type"])
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Recipient phone number not in allowed list"}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-token", srv.URL)
	resp := client.SendText(context.Background(), "pn-1", "5215512345678", "hola")

	assert.Empty(t, resp.MessageID)
	assert.Equal(t, "Recipient phone number not in allowed list", resp.Error)
}

func TestSendTextMissingToken(t *testing.T) {
	client := NewClientWithBaseURL("", "http://127.0.0.1:1")
	resp := client.SendText(context.Background(), "pn-1", "5215512345678", "hola")
	assert.Equal(t, "WHATSAPP_ACCESS_TOKEN is not set", resp.Error)
}

func TestUploadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pn-1/media", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whatsapp", r.FormValue("messaging_product"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"media-123"}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-token", srv.URL)
	resp := client.UploadMedia(context.Background(), "pn-1", []byte("fake-bytes"), "application/pdf", "requisitos.pdf")

	assert.Empty(t, resp.Error)
	assert.Equal(t, "media-123", resp.MediaID)
}

func TestDownloadMedia(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media-123":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"url":"` + srv.URL + `/download/media-123","mime_type":"image/jpeg"}`))
		case "/download/media-123":
			w.Write([]byte("jpeg-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-token", srv.URL)
	data, mimeType, err := client.DownloadMedia(context.Background(), "media-123")

	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestMarkRead(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-token", srv.URL)
	resp := client.MarkRead(context.Background(), "pn-1", "wamid.XYZ")

	assert.Empty(t, resp.Error)
	assert.Equal(t, "read", gotPayload["status"])
	assert.Equal(t, "wamid.XYZ", gotPayload["message_id"])
}
