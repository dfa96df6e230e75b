package lead

import (
	"context"
	"testing"

	"enrolla/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeadRepo struct {
	leads map[string]*models.Lead // keyed by id
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[string]*models.Lead)}
}

func (r *fakeLeadRepo) Insert(_ context.Context, lead models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	r.leads[lead.ID] = &lead
	return nil
}

func (r *fakeLeadRepo) GetByID(_ context.Context, id string) (*models.Lead, error) {
	return r.leads[id], nil
}

func (r *fakeLeadRepo) GetByChat(_ context.Context, orgID, chatID string) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.OrganizationID == orgID && l.ChatID == chatID {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) Update(_ context.Context, id string, set map[string]any) error {
	l := r.leads[id]
	if v, ok := set["student_name"].(string); ok {
		l.StudentName = v
	}
	if v, ok := set["contact_name"].(string); ok {
		l.ContactName = v
	}
	if v, ok := set["contact_phone"].(string); ok {
		l.ContactPhone = v
	}
	if v, ok := set["grade_of_interest"].(string); ok {
		l.GradeOfInterest = v
	}
	if v, ok := set["school_year"].(string); ok {
		l.SchoolYear = v
	}
	if v, ok := set["status"].(string); ok {
		l.Status = v
	}
	return nil
}

func (r *fakeLeadRepo) AppendNote(_ context.Context, id, note string) error {
	l := r.leads[id]
	l.Notes = append(l.Notes, note)
	return nil
}

type memStateStore struct {
	states map[string]*models.ChatState
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]*models.ChatState)}
}

func (s *memStateStore) Get(_ context.Context, chatID string) (*models.ChatState, error) {
	if st, ok := s.states[chatID]; ok {
		copied := *st
		return &copied, nil
	}
	return &models.ChatState{}, nil
}

func (s *memStateStore) Set(_ context.Context, chatID string, state *models.ChatState) error {
	copied := *state
	s.states[chatID] = &copied
	return nil
}

func (s *memStateStore) Clear(_ context.Context, chatID string) error {
	delete(s.states, chatID)
	return nil
}

func TestAddNoteDeduplicates(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := &DefaultLeadService{Repo: repo, State: newMemStateStore()}
	ctx := context.Background()

	created, err := svc.Create(ctx, "org-1", "chat-1", Input{StudentName: "Ana"})
	require.NoError(t, err)

	res, err := svc.AddNote(ctx, "org-1", "chat-1", "Interesada en beca")
	require.NoError(t, err)
	assert.Equal(t, NoteAppended, res)

	res, err = svc.AddNote(ctx, "org-1", "chat-1", "Interesada en beca")
	require.NoError(t, err)
	assert.Equal(t, NoteDuplicate, res)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Interesada en beca"}, stored.Notes)
}

func TestAddNoteBuffersBeforeLeadExists(t *testing.T) {
	repo := newFakeLeadRepo()
	state := newMemStateStore()
	svc := &DefaultLeadService{Repo: repo, State: state}
	ctx := context.Background()

	res, err := svc.AddNote(ctx, "org-1", "chat-1", "Pregunta por costos")
	require.NoError(t, err)
	assert.Equal(t, NoteDeferred, res)

	// Buffered duplicates are skipped too.
	res, err = svc.AddNote(ctx, "org-1", "chat-1", "Pregunta por costos")
	require.NoError(t, err)
	assert.Equal(t, NoteDuplicate, res)

	created, err := svc.Create(ctx, "org-1", "chat-1", Input{StudentName: "Luis"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pregunta por costos"}, created.Notes)

	// The buffer is drained, not copied.
	st, err := state.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Empty(t, st.PendingNotes)
}

func TestUpdateIgnoresEmptyFields(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := &DefaultLeadService{Repo: repo, State: newMemStateStore()}
	ctx := context.Background()

	created, err := svc.Create(ctx, "org-1", "chat-1", Input{
		StudentName:     "Ana",
		GradeOfInterest: "3ro de primaria",
	})
	require.NoError(t, err)

	err = svc.Update(ctx, created, Input{ContactName: "María"})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.StudentName)
	assert.Equal(t, "3ro de primaria", stored.GradeOfInterest)
	assert.Equal(t, "María", stored.ContactName)
}

func TestCreateOnExistingLeadUpdatesInstead(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := &DefaultLeadService{Repo: repo, State: newMemStateStore()}
	ctx := context.Background()

	first, err := svc.Create(ctx, "org-1", "chat-1", Input{StudentName: "Ana"})
	require.NoError(t, err)

	second, err := svc.Create(ctx, "org-1", "chat-1", Input{GradeOfInterest: "1ro de secundaria"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ana", second.StudentName)
	assert.Equal(t, "1ro de secundaria", second.GradeOfInterest)
	assert.Len(t, repo.leads, 1)
}

func TestCreateDefaultsStatus(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := &DefaultLeadService{Repo: repo, State: newMemStateStore()}

	created, err := svc.Create(context.Background(), "org-1", "chat-1", Input{StudentName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, created.Status)
}
