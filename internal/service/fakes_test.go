package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gitanomongolomon/gmm-site/internal/blob"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
)

type fakeTicketRepo struct {
	tickets   map[int64]*domain.Ticket
	nextID    int64
	createErr error
}

func newFakeTicketRepo(seed ...domain.Ticket) *fakeTicketRepo {
	r := &fakeTicketRepo{tickets: map[int64]*domain.Ticket{}}
	for i := range seed {
		t := seed[i]
		r.tickets[t.ID] = &t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	stored := *t
	r.tickets[t.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *t
	return &found, nil
}

func (r *fakeTicketRepo) List(context.Context) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	for _, t := range r.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) error {
	t, ok := r.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

type fakeUpdateRepo struct {
	posts  []domain.UpdatePost
	nextID int64
	err    error
}

func (r *fakeUpdateRepo) Create(_ context.Context, p *domain.UpdatePost) error {
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.posts {
		if p.Slug != "" && existing.Slug == p.Slug {
			return uniqueViolation()
		}
	}
	r.nextID++
	p.ID = r.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.posts = append([]domain.UpdatePost{*p}, r.posts...)
	return nil
}

func (r *fakeUpdateRepo) Update(_ context.Context, id int64, patch repository.UpdatePatch) error {
	if r.err != nil {
		return r.err
	}
	for i := range r.posts {
		if r.posts[i].ID != id {
			continue
		}
		if patch.Title != nil {
			r.posts[i].Title = *patch.Title
		}
		if patch.Slug != nil {
			r.posts[i].Slug = *patch.Slug
		}
		if patch.Content != nil {
			r.posts[i].Content = *patch.Content
		}
		if patch.ImageURL != nil {
			r.posts[i].ImageURL = *patch.ImageURL
		}
		return nil
	}
	return repository.ErrNotFound
}

func (r *fakeUpdateRepo) Delete(_ context.Context, id int64) error {
	for i := range r.posts {
		if r.posts[i].ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeUpdateRepo) GetByID(_ context.Context, id int64) (*domain.UpdatePost, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.posts {
		if r.posts[i].ID == id {
			p := r.posts[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUpdateRepo) GetBySlug(_ context.Context, slug string) (*domain.UpdatePost, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.posts {
		if r.posts[i].Slug == slug {
			p := r.posts[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUpdateRepo) List(_ context.Context, limit int) ([]domain.UpdatePost, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := append([]domain.UpdatePost{}, r.posts...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// uniqueViolation produces the classified error the Postgres repository returns for a duplicate key.
func uniqueViolation() error {
	return &repository.StoreError{
		Kind:       repository.KindUniqueViolation,
		Constraint: "updates_slug_key",
		Err:        &pgconn.PgError{Code: "23505", ConstraintName: "updates_slug_key"},
	}
}

type failingBlobs struct{}

func (failingBlobs) Upload(context.Context, string, string, io.Reader, string) (blob.Object, error) {
	return blob.Object{}, errors.New("bucket policy denies insert")
}

func (failingBlobs) PublicURL(string, string) string { return "" }

func (failingBlobs) SignedURL(context.Context, string, string, time.Duration) (string, error) {
	return "", errors.New("unreachable")
}
