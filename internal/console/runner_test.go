package console

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// revokedTicketStore rejects every list after the session has been revoked.
type revokedTicketStore struct {
	*fakeTicketStore
	mu      sync.Mutex
	revoked bool
	lists   int
}

func (s *revokedTicketStore) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	s.lists++
	revoked := s.revoked
	s.mu.Unlock()
	if revoked {
		return nil, apperrors.NewUnauthorized("session has ended")
	}
	return s.fakeTicketStore.ListTickets(ctx)
}

func (s *revokedTicketStore) revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = true
}

func (s *revokedTicketStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

func TestTicketPollingStopsWhenSessionRevoked(t *testing.T) {
	store := &revokedTicketStore{fakeTicketStore: seededTickets()}
	c := NewTicketConsole(store, nil, 10*time.Millisecond, nil)

	c.Start(context.Background())
	defer c.Stop()
	assert.Eventually(t, func() bool { return len(c.Tickets()) == 3 }, time.Second, 5*time.Millisecond)

	store.revoke()
	select {
	case <-c.SessionEnded():
	case <-time.After(time.Second):
		t.Fatal("session end was not reported")
	}
	assert.False(t, c.Running())

	after := store.listCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, store.listCount(), "no polling after revocation")
	c.Notify()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, store.listCount(), "notifications are ignored after revocation")
	assert.Len(t, c.Tickets(), 3, "last confirmed list is kept")
}

func TestRevokedStatusWithoutCodeStopsPolling(t *testing.T) {
	store := &statusOnlyStore{}
	w := NewBannerWatcher(store, 10*time.Millisecond, nil)
	w.Start(context.Background())
	defer w.Stop()

	select {
	case <-w.SessionEnded():
	case <-time.After(time.Second):
		t.Fatal("session end was not reported")
	}
	assert.False(t, w.Running())
}

type statusOnlyStore struct{}

func (statusOnlyStore) LatestUpdate(context.Context) (*domain.UpdatePost, error) {
	return nil, &apperrors.DomainError{Code: apperrors.CodeUpstream, Message: "401 Unauthorized", HTTPStatus: 401}
}

func TestConsoleRestartsAfterRevocation(t *testing.T) {
	store := &revokedTicketStore{fakeTicketStore: seededTickets()}
	store.revoke()
	c := NewTicketConsole(store, nil, time.Hour, nil)

	c.Start(context.Background())
	<-c.SessionEnded()

	store.mu.Lock()
	store.revoked = false
	store.mu.Unlock()

	c.Start(context.Background())
	defer c.Stop()
	assert.True(t, c.Running())
	assert.Eventually(t, func() bool { return len(c.Tickets()) == 3 }, time.Second, 5*time.Millisecond)
	select {
	case <-c.SessionEnded():
		t.Fatal("new run must not report the old revocation")
	default:
	}
}

func TestRefreshDiscardsResultAfterCancel(t *testing.T) {
	c := NewTicketConsole(seededTickets(), nil, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Refresh(ctx), context.Canceled)
	assert.Empty(t, c.Tickets())

	u := NewUpdateConsole(&fakeUpdateStore{posts: []domain.UpdatePost{{ID: 1}}}, 0, nil)
	assert.ErrorIs(t, u.Refresh(ctx), context.Canceled)
	assert.Empty(t, u.Posts())

	w := NewBannerWatcher(&latestStub{post: &domain.UpdatePost{ID: 1}}, time.Hour, nil)
	assert.ErrorIs(t, w.Refresh(ctx), context.Canceled)
	assert.Nil(t, w.State().Post)
}

func TestUpdateConsoleRefreshesOnNotify(t *testing.T) {
	store := &fakeUpdateStore{posts: []domain.UpdatePost{{ID: 1, Title: "Viejo"}}}
	c := NewUpdateConsole(store, 0, nil)

	c.Start(context.Background())
	defer c.Stop()
	assert.True(t, c.Running())
	assert.Eventually(t, func() bool { return len(c.Posts()) == 1 }, time.Second, 5*time.Millisecond)

	store.publish(domain.UpdatePost{ID: 2, Title: "Nuevo"})
	c.Notify()
	assert.Eventually(t, func() bool { return len(c.Posts()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), c.Posts()[0].ID)
}

func TestUpdateConsoleRefreshesOnInterval(t *testing.T) {
	store := &fakeUpdateStore{}
	c := NewUpdateConsole(store, 10*time.Millisecond, nil)

	c.Start(context.Background())
	defer c.Stop()
	store.publish(domain.UpdatePost{ID: 5})
	assert.Eventually(t, func() bool { return len(c.Posts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, store.calls(), 2)
}

func TestBannerWatcherRefreshesOnIntervalAndNotify(t *testing.T) {
	now := time.Now()
	source := &latestStub{}
	w := NewBannerWatcher(source, 10*time.Millisecond, nil)

	w.Start(context.Background())
	assert.True(t, w.Running())
	source.set(&domain.UpdatePost{ID: 1, CreatedAt: now.Add(-time.Hour)})
	assert.Eventually(t, func() bool { return w.State().Visible }, time.Second, 5*time.Millisecond)
	w.Stop()

	slow := &latestStub{}
	w = NewBannerWatcher(slow, time.Hour, nil)
	w.Start(context.Background())
	defer w.Stop()
	assert.Eventually(t, func() bool { return slow.calls() == 1 }, time.Second, 5*time.Millisecond)

	slow.set(&domain.UpdatePost{ID: 2, CreatedAt: now})
	w.Notify()
	assert.Eventually(t, func() bool {
		state := w.State()
		return state.Post != nil && state.Post.ID == 2
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 2, slow.calls())
}
