package console

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTicketStore struct {
	mu        sync.Mutex
	tickets   []domain.Ticket
	setErr    error
	setCalls  int
	deleted   []int64
	listCalls int
}

func (s *fakeTicketStore) ListTickets(context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return append([]domain.Ticket(nil), s.tickets...), nil
}

func (s *fakeTicketStore) SetTicketStatus(_ context.Context, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return nil, s.setErr
	}
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets[i].Status = status
			t := s.tickets[i]
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeTicketStore) DeleteTicket(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeTicketStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func seededTickets() *fakeTicketStore {
	return &fakeTicketStore{tickets: []domain.Ticket{
		{ID: 3, Category: domain.TicketCategoryBug, DiscordTag: "steve#1", Description: "Lag en el nether", Status: domain.TicketStatusOpen},
		{ID: 2, Category: domain.TicketCategoryPlayerReport, DiscordTag: "alex#2", Description: "Griefing", Status: domain.TicketStatusResolved},
		{ID: 1, Category: domain.TicketCategorySuggestion, DiscordTag: "herobrine#3", Description: "Más biomas", Status: domain.TicketStatusArchived},
	}}
}

func approveAll(domain.Ticket, domain.TicketAction) bool { return true }

func TestTicketView(t *testing.T) {
	c := NewTicketConsole(seededTickets(), nil, time.Hour, nil)
	require.NoError(t, c.Refresh(context.Background()))

	assert.Len(t, c.View(TicketFilter{}), 3)
	open := c.View(TicketFilter{Status: domain.TicketStatusOpen})
	require.Len(t, open, 1)
	assert.Equal(t, int64(3), open[0].ID)

	assert.Len(t, c.View(TicketFilter{Query: "GRIEF"}), 1)
	assert.Len(t, c.View(TicketFilter{Query: "player_report"}), 1)
	assert.Len(t, c.View(TicketFilter{Query: "herobrine"}), 1)
	assert.Empty(t, c.View(TicketFilter{Status: domain.TicketStatusOpen, Query: "griefing"}))
}

func TestApplyUpdatesLocalListAfterConfirmation(t *testing.T) {
	store := seededTickets()
	c := NewTicketConsole(store, approveAll, time.Hour, nil)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.Apply(context.Background(), 3, domain.TicketActionResolve))
	assert.Equal(t, domain.TicketStatusResolved, c.View(TicketFilter{Query: "steve"})[0].Status)

	require.NoError(t, c.Apply(context.Background(), 1, domain.TicketActionDelete))
	assert.Equal(t, []int64{1}, store.deleted)
	assert.Len(t, c.Tickets(), 2)
}

func TestApplyFailureLeavesLocalList(t *testing.T) {
	store := seededTickets()
	store.setErr = errors.New("permission denied")
	c := NewTicketConsole(store, approveAll, time.Hour, nil)
	require.NoError(t, c.Refresh(context.Background()))

	err := c.Apply(context.Background(), 3, domain.TicketActionResolve)
	require.Error(t, err)
	assert.Equal(t, domain.TicketStatusOpen, c.View(TicketFilter{Query: "steve"})[0].Status)
}

func TestApplyDeclinedConfirmation(t *testing.T) {
	store := seededTickets()
	c := NewTicketConsole(store, nil, time.Hour, nil)
	require.NoError(t, c.Refresh(context.Background()))

	assert.ErrorIs(t, c.Apply(context.Background(), 3, domain.TicketActionArchive), ErrCancelled)
	assert.ErrorIs(t, c.Apply(context.Background(), 3, domain.TicketActionDelete), ErrCancelled)
	assert.Zero(t, store.setCalls)
	assert.Empty(t, store.deleted)

	require.NoError(t, c.Apply(context.Background(), 2, domain.TicketActionReopen), "reopen needs no confirmation")
}

func TestApplyRejectsInvalidTransitionAndUnknownTicket(t *testing.T) {
	store := seededTickets()
	c := NewTicketConsole(store, approveAll, time.Hour, nil)
	require.NoError(t, c.Refresh(context.Background()))

	assert.ErrorIs(t, c.Apply(context.Background(), 1, domain.TicketActionResolve), domain.ErrInvalidTransition)
	assert.ErrorIs(t, c.Apply(context.Background(), 42, domain.TicketActionResolve), ErrUnknownTicket)
	assert.Zero(t, store.setCalls)
}

func TestTicketConsoleStartStopAndNotify(t *testing.T) {
	store := seededTickets()
	c := NewTicketConsole(store, nil, time.Hour, nil)

	c.Notify()
	assert.False(t, c.Running())

	c.Start(context.Background())
	assert.True(t, c.Running())
	assert.Eventually(t, func() bool { return store.calls() == 1 }, time.Second, 5*time.Millisecond)

	c.Notify()
	assert.Eventually(t, func() bool { return store.calls() == 2 }, time.Second, 5*time.Millisecond)
	assert.Len(t, c.Tickets(), 3)

	c.Stop()
	assert.False(t, c.Running())
	c.Stop()
}

type fakeUpdateStore struct {
	mu        sync.Mutex
	listCalls int
	posts     []domain.UpdatePost
	payloads []DraftPayload
	uploads  []string
	nextID   int64
}

func (s *fakeUpdateStore) ListUpdates(context.Context) ([]domain.UpdatePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return append([]domain.UpdatePost(nil), s.posts...), nil
}

func (s *fakeUpdateStore) publish(post domain.UpdatePost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]domain.UpdatePost{post}, s.posts...)
}

func (s *fakeUpdateStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *fakeUpdateStore) CreateUpdate(_ context.Context, p DraftPayload) (*domain.UpdatePost, error) {
	s.payloads = append(s.payloads, p)
	s.nextID++
	post := domain.UpdatePost{ID: s.nextID, Title: *p.Title, Content: *p.Content, CreatedAt: time.Now()}
	if p.Slug != nil {
		post.Slug = *p.Slug
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
	return &post, nil
}

func (s *fakeUpdateStore) EditUpdate(_ context.Context, id int64, p DraftPayload) (*domain.UpdatePost, error) {
	s.payloads = append(s.payloads, p)
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Title = *p.Title
			s.posts[i].Content = *p.Content
			if p.ImageURL != nil {
				s.posts[i].ImageURL = *p.ImageURL
			}
			post := s.posts[i]
			return &post, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeUpdateStore) DeleteUpdate(context.Context, int64) error { return nil }

func (s *fakeUpdateStore) UploadImage(_ context.Context, name string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, name+":"+string(data))
	return "https://cdn.example/" + name, nil
}

func TestDraftSlugFollowsTitleUntilEdited(t *testing.T) {
	d := NewDraft()
	d.SetTitle("Nuevo Update!! 2025")
	assert.Equal(t, "nuevo-update-2025", d.Slug)
	assert.False(t, d.SlugEdited())

	d.SetSlug("Mi Slug")
	assert.Equal(t, "mi-slug", d.Slug)
	d.SetTitle("Otro título")
	assert.Equal(t, "mi-slug", d.Slug)
	assert.True(t, d.SlugEdited())
}

func TestEditDraftKeepsStoredSlug(t *testing.T) {
	d := EditDraft(domain.UpdatePost{ID: 9, Title: "Viejo", Slug: "viejo"})
	assert.True(t, d.Editing())
	d.SetTitle("Nuevo")
	assert.Equal(t, "viejo", d.Slug)
}

func TestDraftPayloadOmitsEmptyImage(t *testing.T) {
	d := NewDraft()
	d.SetTitle("T")
	d.Content = "c"
	d.ImageURL = "   "
	p := d.Payload()
	assert.Nil(t, p.ImageURL)
	require.NotNil(t, p.Slug)
	assert.Equal(t, "t", *p.Slug)

	d.SetTitle("¡!")
	assert.Nil(t, d.Payload().Slug)
}

func TestDraftPreview(t *testing.T) {
	d := NewDraft()
	d.Content = "*hola*"
	html, err := d.Preview()
	require.NoError(t, err)
	assert.Contains(t, html, "<em>hola</em>")
}

func TestSaveCreatesWithUploadedImage(t *testing.T) {
	store := &fakeUpdateStore{}
	c := NewUpdateConsole(store, 0, nil)

	file := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(file, []byte("png"), 0o600))

	d := NewDraft()
	d.SetTitle("Temporada")
	d.Content = "cuerpo"
	d.ImageFile = file
	post, err := c.Save(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, []string{"cover.png:png"}, store.uploads)
	assert.Equal(t, "https://cdn.example/cover.png", post.ImageURL)
	assert.Empty(t, d.ImageFile)
	require.Len(t, c.Posts(), 1)
	assert.Equal(t, post.ID, c.Posts()[0].ID)
}

func TestSaveRequiresTitleAndContent(t *testing.T) {
	c := NewUpdateConsole(&fakeUpdateStore{}, 0, nil)
	_, err := c.Save(context.Background(), NewDraft())
	assert.ErrorIs(t, err, ErrDraftIncomplete)
}

func TestSaveEditMergesResult(t *testing.T) {
	store := &fakeUpdateStore{posts: []domain.UpdatePost{{ID: 4, Title: "Viejo", Slug: "viejo", Content: "a", ImageURL: "https://img/a.png"}}}
	c := NewUpdateConsole(store, 0, nil)
	require.NoError(t, c.Refresh(context.Background()))

	d := EditDraft(c.Posts()[0])
	d.Content = "b"
	d.ImageURL = ""
	post, err := c.Save(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "b", post.Content)
	assert.Equal(t, "https://img/a.png", post.ImageURL)
	assert.Nil(t, store.payloads[0].ImageURL)
	assert.Equal(t, "b", c.Posts()[0].Content)
}

func TestDeleteUpdateNeedsConfirmation(t *testing.T) {
	store := &fakeUpdateStore{posts: []domain.UpdatePost{{ID: 1}, {ID: 2}}}
	c := NewUpdateConsole(store, 0, nil)
	require.NoError(t, c.Refresh(context.Background()))

	assert.ErrorIs(t, c.Delete(context.Background(), 1, func() bool { return false }), ErrCancelled)
	assert.Len(t, c.Posts(), 2)

	require.NoError(t, c.Delete(context.Background(), 1, func() bool { return true }))
	assert.Len(t, c.Posts(), 1)
}

type latestStub struct {
	mu    sync.Mutex
	post  *domain.UpdatePost
	count int
}

func (s *latestStub) LatestUpdate(context.Context) (*domain.UpdatePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return s.post, nil
}

func (s *latestStub) set(post *domain.UpdatePost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.post = post
}

func (s *latestStub) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func TestBannerWatcher(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	source := &latestStub{}
	w := NewBannerWatcher(source, time.Hour, nil)
	w.now = func() time.Time { return now }

	require.NoError(t, w.Refresh(context.Background()))
	assert.False(t, w.State().Visible)

	source.post = &domain.UpdatePost{ID: 1, Content: "https://dl.example/x", CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, w.Refresh(context.Background()))
	state := w.State()
	assert.True(t, state.Visible)
	assert.Equal(t, "https://dl.example/x", state.DownloadURL)

	w.Dismiss()
	assert.False(t, w.State().Visible)
	assert.NotNil(t, w.State().Post)
}
