package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"enrolla/models"
	"enrolla/services/intelligence"
	"enrolla/services/whatsapp"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrgRepo struct {
	orgs map[string]*models.Organization
}

func newFakeOrgRepo(orgs ...models.Organization) *fakeOrgRepo {
	r := &fakeOrgRepo{orgs: make(map[string]*models.Organization)}
	for i := range orgs {
		o := orgs[i]
		r.orgs[o.ID] = &o
	}
	return r
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id string) (*models.Organization, error) {
	return r.orgs[id], nil
}

func (r *fakeOrgRepo) GetByPhoneNumberID(_ context.Context, phoneNumberID string) (*models.Organization, error) {
	for _, o := range r.orgs {
		if o.PhoneNumberID == phoneNumberID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrgRepo) GetByWABAID(_ context.Context, wabaID string) (*models.Organization, error) {
	for _, o := range r.orgs {
		if o.WABAID == wabaID {
			return o, nil
		}
	}
	return nil, nil
}

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[string]*models.Chat
}

func newFakeChatRepo(chats ...models.Chat) *fakeChatRepo {
	r := &fakeChatRepo{chats: make(map[string]*models.Chat)}
	for i := range chats {
		c := chats[i]
		r.chats[c.ID] = &c
	}
	return r
}

func (r *fakeChatRepo) Upsert(_ context.Context, orgID, waID, name, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.OrganizationID == orgID && c.WaID == waID {
			return nil
		}
	}
	id := uuid.New().String()
	r.chats[id] = &models.Chat{ID: id, OrganizationID: orgID, WaID: waID, Name: name, PhoneNumber: phoneNumber}
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeChatRepo) GetByWaID(_ context.Context, orgID, waID string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.OrganizationID == orgID && c.WaID == waID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) SetActiveSession(_ context.Context, chatID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.chats[chatID]
	c.ActiveSessionID = sessionID
	c.LastSessionClosedAt = nil
	return nil
}

func (r *fakeChatRepo) UpdateState(_ context.Context, chatID string, state map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[chatID]; ok {
		c.State = state
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*models.ChatSession
	clock    time.Time
}

func (r *fakeSessionRepo) Insert(_ context.Context, session models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	r.clock = r.clock.Add(time.Second)
	session.CreatedAt = r.clock
	r.sessions = append(r.sessions, &session)
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetLatestByChatID(_ context.Context, chatID string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.ChatSession
	for _, s := range r.sessions {
		if s.ChatID != chatID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeSessionRepo) SetLastResponseAt(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			s.LastResponseAt = &at
		}
	}
	return nil
}

func (r *fakeSessionRepo) Close(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			s.Status = models.SessionStatusClosed
			s.ClosedAt = &at
		}
	}
	return nil
}

func (r *fakeSessionRepo) activeCount(chatID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.ChatID == chatID && s.Status == models.SessionStatusActive && s.ClosedAt == nil {
			n++
		}
	}
	return n
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
	clock    time.Time
}

func (r *fakeMessageRepo) Insert(_ context.Context, message models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	r.clock = r.clock.Add(time.Second)
	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.clock
	}
	r.messages = append(r.messages, &message)
	return nil
}

func (r *fakeMessageRepo) ExistsByWaMessageID(_ context.Context, waMessageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.WaMessageID == waMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMessageRepo) AttachOrphansToSession(_ context.Context, chatID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ChatSessionID == "" {
			m.ChatSessionID = sessionID
		}
	}
	return nil
}

func (r *fakeMessageRepo) ListBySession(_ context.Context, sessionID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if m.ChatSessionID == sessionID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateStatusByWaMessageID(_ context.Context, waMessageID, status string, at time.Time, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.WaMessageID != waMessageID {
			continue
		}
		m.Status = status
		switch status {
		case "sent":
			m.SentAt = &at
		case "delivered":
			m.DeliveredAt = &at
		case "read":
			m.ReadAt = &at
		}
	}
	return nil
}

func (r *fakeMessageRepo) byDirection(direction string) []*models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.messages {
		if m.Direction == direction {
			out = append(out, m)
		}
	}
	return out
}

type fakeQueueRepo struct {
	mu      sync.Mutex
	entries map[string]*models.MessageQueue
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: make(map[string]*models.MessageQueue)}
}

func (r *fakeQueueRepo) Accumulate(_ context.Context, chatID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[chatID]
	if !ok {
		r.entries[chatID] = &models.MessageQueue{ChatID: chatID, CombinedText: text, LastAddedAt: time.Now()}
		return nil
	}
	if e.CombinedText != "" && text != "" {
		e.CombinedText += " " + text
	} else {
		e.CombinedText += text
	}
	e.LastAddedAt = time.Now()
	return nil
}

func (r *fakeQueueRepo) Get(_ context.Context, chatID string) (*models.MessageQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[chatID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeQueueRepo) TryLock(_ context.Context, chatID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[chatID]
	if !ok || e.IsProcessing {
		return false, nil
	}
	e.IsProcessing = true
	return true, nil
}

func (r *fakeQueueRepo) Unlock(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[chatID]; ok {
		e.IsProcessing = false
	}
	return nil
}

func (r *fakeQueueRepo) Delete(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, chatID)
	return nil
}

type fakeAIService struct {
	mu       sync.Mutex
	reply    string
	err      error
	settled  []intelligence.Turn
	userText []string
}

func (f *fakeAIService) GenerateReply(_ context.Context, _ *models.Organization, _ *models.Chat, settled []intelligence.Turn, userText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = settled
	f.userText = append(f.userText, userText)
	return f.reply, f.err
}

type fakeGateway struct {
	mu        sync.Mutex
	sendErr   string
	sentTexts []string
}

func (g *fakeGateway) SendText(_ context.Context, _, _, body string) whatsapp.Response {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != "" {
		return whatsapp.Response{Error: g.sendErr}
	}
	g.sentTexts = append(g.sentTexts, body)
	return whatsapp.Response{MessageID: "wamid.out-1"}
}
func (g *fakeGateway) SendImage(context.Context, string, string, string, string) whatsapp.Response {
	return whatsapp.Response{}
}
func (g *fakeGateway) SendAudio(context.Context, string, string, string, bool) whatsapp.Response {
	return whatsapp.Response{}
}
func (g *fakeGateway) SendDocument(context.Context, string, string, string, string, string) whatsapp.Response {
	return whatsapp.Response{}
}
func (g *fakeGateway) MarkRead(context.Context, string, string) whatsapp.Response {
	return whatsapp.Response{}
}
func (g *fakeGateway) UploadMedia(context.Context, string, []byte, string, string) whatsapp.Response {
	return whatsapp.Response{MediaID: "media-1"}
}
func (g *fakeGateway) DownloadMedia(context.Context, string) ([]byte, string, error) {
	return []byte("bytes"), "image/jpeg", nil
}

type fakeStorage struct{}

func (fakeStorage) UploadBytes(_ context.Context, _ []byte, path string) (string, error) {
	return "https://cdn.example.com/" + path, nil
}

func (fakeStorage) Delete(context.Context, string) error { return nil }

type fixture struct {
	svc      *DefaultChatService
	orgs     *fakeOrgRepo
	chats    *fakeChatRepo
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
	queue    *fakeQueueRepo
	ai       *fakeAIService
	gateway  *fakeGateway
}

func newFixture() *fixture {
	f := &fixture{
		orgs:     newFakeOrgRepo(models.Organization{ID: "org-1", Name: "Colegio Prueba", PhoneNumberID: "pn-1"}),
		chats:    newFakeChatRepo(models.Chat{ID: "chat-1", OrganizationID: "org-1", WaID: "5215512345678"}),
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{},
		queue:    newFakeQueueRepo(),
		ai:       &fakeAIService{reply: "¡Hola! ¿En qué puedo ayudarte?"},
		gateway:  &fakeGateway{},
	}
	f.svc = &DefaultChatService{
		Orgs:           f.orgs,
		Chats:          f.chats,
		Sessions:       f.sessions,
		Messages:       f.messages,
		Queue:          f.queue,
		Gateway:        f.gateway,
		Storage:        fakeStorage{},
		AI:             f.ai,
		DebounceWindow: time.Hour, // keeps background drains asleep during tests
	}
	return f
}

func TestIngestIdempotence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	value := &models.WebhookValue{
		Metadata: models.WebhookMetadata{PhoneNumberID: "pn-1", DisplayPhoneNumber: "5215599999999"},
		Messages: []models.InboundMessage{{
			ID:        "wamid.in-1",
			From:      "5215512345678",
			Timestamp: "1736503200",
			Type:      "text",
			Text:      &models.InboundText{Body: "hola"},
		}},
	}

	f.svc.HandleIncomingValue(ctx, value)
	f.svc.HandleIncomingValue(ctx, value)

	assert.Len(t, f.messages.byDirection(models.DirectionInbound), 1)

	entry, err := f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hola", entry.CombinedText)
}

func TestIngestAccumulatesBurst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	value := &models.WebhookValue{
		Metadata: models.WebhookMetadata{PhoneNumberID: "pn-1"},
		Messages: []models.InboundMessage{
			{
				ID: "wamid.in-1", From: "5215512345678", Timestamp: "1736503200", Type: "text",
				Text: &models.InboundText{Body: "hola"},
			},
			{
				ID: "wamid.in-2", From: "5215512345678", Timestamp: "1736503201", Type: "text",
				Text: &models.InboundText{Body: "quiero informes"},
			},
		},
	}

	f.svc.HandleIncomingValue(ctx, value)

	entry, err := f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hola quiero informes", entry.CombinedText)
}

func TestIngestOrdersBatchByChannelTimestamp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	value := &models.WebhookValue{
		Metadata: models.WebhookMetadata{PhoneNumberID: "pn-1"},
		Messages: []models.InboundMessage{
			{
				ID: "wamid.in-2", From: "5215512345678", Timestamp: "1736503201", Type: "text",
				Text: &models.InboundText{Body: "quiero informes"},
			},
			{
				ID: "wamid.in-1", From: "5215512345678", Timestamp: "1736503200", Type: "text",
				Text: &models.InboundText{Body: "hola"},
			},
		},
	}

	f.svc.HandleIncomingValue(ctx, value)

	entry, err := f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hola quiero informes", entry.CombinedText)
}

func TestIngestUnknownOrganization(t *testing.T) {
	f := newFixture()

	value := &models.WebhookValue{
		Metadata: models.WebhookMetadata{PhoneNumberID: "pn-unknown"},
		Messages: []models.InboundMessage{{ID: "wamid.in-1", From: "5215512345678", Type: "text"}},
	}
	f.svc.HandleIncomingValue(context.Background(), value)

	assert.Empty(t, f.messages.byDirection(models.DirectionInbound))
}

func TestProcessChatHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.messages.Insert(ctx, models.Message{
		ChatID:      "chat-1",
		Body:        "hola, quiero informes",
		Role:        models.RoleUser,
		Direction:   models.DirectionInbound,
		WaTimestamp: "2025-01-10T10:00:00Z",
	}))

	result := f.svc.ProcessChat(ctx, "chat-1", "")
	require.Equal(t, "sent", result.Status)
	assert.Equal(t, "wamid.out-1", result.MessageID)

	assert.Equal(t, []string{"hola, quiero informes"}, f.ai.userText)
	assert.Equal(t, []string{"¡Hola! ¿En qué puedo ayudarte?"}, f.gateway.sentTexts)

	outbound := f.messages.byDirection(models.DirectionOutbound)
	require.Len(t, outbound, 1)
	assert.Equal(t, "sent", outbound[0].Status)
	assert.Equal(t, models.RoleAssistant, outbound[0].Role)
	assert.NotNil(t, outbound[0].SentAt)

	session, err := f.sessions.GetLatestByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotNil(t, session.LastResponseAt)
}

func TestProcessChatFinalMessageOverride(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.messages.Insert(ctx, models.Message{
		ChatID: "chat-1", Body: "texto pendiente", Role: models.RoleUser,
		Direction: models.DirectionInbound, WaTimestamp: "2025-01-10T10:00:00Z",
	}))

	result := f.svc.ProcessChat(ctx, "chat-1", "hola quiero informes de primaria")
	require.Equal(t, "sent", result.Status)
	assert.Equal(t, []string{"hola quiero informes de primaria"}, f.ai.userText)
}

func TestProcessChatSkipsWithoutUserText(t *testing.T) {
	f := newFixture()

	result := f.svc.ProcessChat(context.Background(), "chat-1", "")
	assert.Equal(t, "skipped", result.Status)
	assert.Equal(t, "no_user_message", result.Reason)
	assert.Empty(t, f.gateway.sentTexts)
}

func TestProcessChatNotFound(t *testing.T) {
	f := newFixture()

	result := f.svc.ProcessChat(context.Background(), "chat-missing", "")
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, ErrChatNotFound.Error(), result.Error)
}

func TestProcessChatSendFailureRecordedOnTurn(t *testing.T) {
	f := newFixture()
	f.gateway.sendErr = "Recipient phone number not in allowed list"
	ctx := context.Background()

	require.NoError(t, f.messages.Insert(ctx, models.Message{
		ChatID: "chat-1", Body: "hola", Role: models.RoleUser,
		Direction: models.DirectionInbound, WaTimestamp: "2025-01-10T10:00:00Z",
	}))

	result := f.svc.ProcessChat(ctx, "chat-1", "")
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Recipient phone number not in allowed list", result.Error)

	outbound := f.messages.byDirection(models.DirectionOutbound)
	require.Len(t, outbound, 1)
	assert.Equal(t, "failed", outbound[0].Status)
	assert.Nil(t, outbound[0].SentAt)
	assert.Equal(t, "Recipient phone number not in allowed list", outbound[0].Payload["error"])
}

func TestEnsureActiveSessionSingleActive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	chat, err := f.chats.GetByID(ctx, "chat-1")
	require.NoError(t, err)

	var firstID string
	for i := 0; i < 5; i++ {
		session, err := f.svc.ensureActiveSession(ctx, chat, "org-1")
		require.NoError(t, err)
		if firstID == "" {
			firstID = session.ID
		}
		assert.Equal(t, firstID, session.ID)
	}
	assert.Equal(t, 1, f.sessions.activeCount("chat-1"))
}

func TestEnsureActiveSessionRotatesClosedSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	chat, err := f.chats.GetByID(ctx, "chat-1")
	require.NoError(t, err)

	first, err := f.svc.ensureActiveSession(ctx, chat, "org-1")
	require.NoError(t, err)
	require.NoError(t, f.sessions.Close(ctx, first.ID, time.Now()))

	second, err := f.svc.ensureActiveSession(ctx, chat, "org-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, f.sessions.activeCount("chat-1"))

	stored, err := f.chats.GetByID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.ActiveSessionID)
}

func TestHandleStatusUpdates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.messages.Insert(ctx, models.Message{
		ChatID: "chat-1", WaMessageID: "wamid.out-1", Direction: models.DirectionOutbound,
		Role: models.RoleAssistant, Status: "sent",
	}))

	f.svc.HandleStatusUpdates(ctx, []models.InboundStatus{
		{ID: "wamid.out-1", Status: "delivered", Timestamp: "1736503300"},
		{ID: "wamid.out-1", Status: "read", Timestamp: "1736503400"},
		{ID: "wamid.out-1", Status: "typing", Timestamp: "1736503500"}, // unknown, ignored
	})

	outbound := f.messages.byDirection(models.DirectionOutbound)
	require.Len(t, outbound, 1)
	assert.Equal(t, "read", outbound[0].Status)
	assert.NotNil(t, outbound[0].DeliveredAt)
	assert.NotNil(t, outbound[0].ReadAt)
}

func TestDebounceYieldsToNewerMessage(t *testing.T) {
	f := newFixture()
	f.svc.DebounceWindow = time.Millisecond
	ctx := context.Background()

	require.NoError(t, f.queue.Accumulate(ctx, "chat-1", "hola"))
	// Simulate a message arriving during the wait.
	f.queue.mu.Lock()
	f.queue.entries["chat-1"].LastAddedAt = time.Now().Add(time.Minute)
	f.queue.mu.Unlock()

	f.svc.debounceAndProcess("chat-1")

	assert.Empty(t, f.ai.userText, "a drain with newer queue content must yield")
	entry, err := f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.NotNil(t, entry, "the queue row survives for the newer drain")
}

func TestDebounceDrainsQuietQueue(t *testing.T) {
	f := newFixture()
	f.svc.DebounceWindow = time.Millisecond
	ctx := context.Background()

	require.NoError(t, f.messages.Insert(ctx, models.Message{
		ChatID: "chat-1", Body: "hola", Role: models.RoleUser,
		Direction: models.DirectionInbound, WaTimestamp: "2025-01-10T10:00:00Z",
	}))
	require.NoError(t, f.queue.Accumulate(ctx, "chat-1", "hola"))
	f.queue.mu.Lock()
	f.queue.entries["chat-1"].LastAddedAt = time.Now().Add(-time.Minute)
	f.queue.mu.Unlock()

	f.svc.debounceAndProcess("chat-1")

	assert.Equal(t, []string{"hola"}, f.ai.userText)
	entry, err := f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, entry, "the queue row is deleted after a successful drain")
}

func TestDebounceRespectsLock(t *testing.T) {
	f := newFixture()
	f.svc.DebounceWindow = time.Millisecond
	ctx := context.Background()

	require.NoError(t, f.queue.Accumulate(ctx, "chat-1", "hola"))
	f.queue.mu.Lock()
	f.queue.entries["chat-1"].LastAddedAt = time.Now().Add(-time.Minute)
	f.queue.entries["chat-1"].IsProcessing = true
	f.queue.mu.Unlock()

	f.svc.debounceAndProcess("chat-1")

	assert.Empty(t, f.ai.userText, "a locked queue row belongs to another drain")
}

func TestDebounceFailedDrainReleasesLockForRetry(t *testing.T) {
	f := newFixture()
	f.svc.DebounceWindow = time.Millisecond
	ctx := context.Background()

	require.NoError(t, f.messages.Insert(ctx, models.Message{
		ChatID: "chat-1", Body: "hola", Role: models.RoleUser,
		Direction: models.DirectionInbound, WaTimestamp: "2025-01-10T10:00:00Z",
	}))
	require.NoError(t, f.queue.Accumulate(ctx, "chat-1", "hola"))
	f.queue.mu.Lock()
	f.queue.entries["chat-1"].LastAddedAt = time.Now().Add(-time.Minute)
	f.queue.mu.Unlock()

	f.ai.err = errors.New("completion service unavailable")
	f.svc.debounceAndProcess("chat-1")

	assert.Empty(t, f.gateway.sentTexts)
	entry, err := f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, entry, "the buffered text survives a failed drain")
	assert.False(t, entry.IsProcessing, "a failed drain must not keep the lock")
	assert.Equal(t, "hola", entry.CombinedText)

	// The service recovers and a new burst arrives.
	f.ai.err = nil
	require.NoError(t, f.queue.Accumulate(ctx, "chat-1", "sigo interesado"))
	f.queue.mu.Lock()
	f.queue.entries["chat-1"].LastAddedAt = time.Now().Add(-time.Minute)
	f.queue.mu.Unlock()

	f.svc.debounceAndProcess("chat-1")

	assert.Equal(t, []string{"hola sigo interesado"}, f.ai.userText[1:])
	assert.Len(t, f.gateway.sentTexts, 1)
	entry, err = f.queue.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, entry, "the retried drain consumes the queue row")
}

func TestMessageBodyFallbackChain(t *testing.T) {
	text := models.InboundMessage{Type: "text", Text: &models.InboundText{Body: "hola"}}
	assert.Equal(t, "hola", messageBody(text))

	image := models.InboundMessage{Type: "image", Image: &models.InboundMedia{Caption: "mi credencial"}}
	assert.Equal(t, "mi credencial", messageBody(image))

	doc := models.InboundMessage{Type: "document", Document: &models.InboundMedia{Filename: "boleta.pdf"}}
	assert.Equal(t, "boleta.pdf", messageBody(doc))

	audio := models.InboundMessage{Type: "audio", Audio: &models.InboundMedia{Voice: true}}
	assert.Equal(t, "Mensaje de voz", messageBody(audio))

	sticker := models.InboundMessage{Type: "sticker"}
	assert.Equal(t, "[Media/Other: sticker]", messageBody(sticker))
}

func TestIngestMediaIsRehosted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	value := &models.WebhookValue{
		Metadata: models.WebhookMetadata{PhoneNumberID: "pn-1"},
		Messages: []models.InboundMessage{{
			ID: "wamid.in-media", From: "5215512345678", Timestamp: "1736503200", Type: "image",
			Image: &models.InboundMedia{ID: "media-77", MimeType: "image/jpeg", Caption: "la boleta"},
		}},
	}
	f.svc.HandleIncomingValue(ctx, value)

	inbound := f.messages.byDirection(models.DirectionInbound)
	require.Len(t, inbound, 1)
	assert.Equal(t, "la boleta", inbound[0].Body)
	assert.Equal(t, "media-77", inbound[0].MediaID)
	assert.Equal(t, "chats/chat-1/media-77-file", inbound[0].MediaPath)
	assert.Equal(t, "https://cdn.example.com/chats/chat-1/media-77-file", inbound[0].MediaURL)
	assert.Equal(t, "image/jpeg", inbound[0].MediaMimeType)
}
