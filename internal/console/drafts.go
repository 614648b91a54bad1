package console

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/markdown"
)

// ErrDraftIncomplete is returned when a new post lacks its title or body.
var ErrDraftIncomplete = errors.New("title and content are required")

// Draft is the post being edited. Its slug follows the title until the slug is edited by hand.
type Draft struct {
	Title     string
	Slug      string
	Content   string
	ImageURL  string
	ImageFile string
	EditingID int64

	slugEdited bool
}

// NewDraft starts an empty post with slug derivation enabled.
func NewDraft() *Draft {
	return &Draft{}
}

// EditDraft loads an existing post. Its stored slug is treated as chosen by hand.
func EditDraft(post domain.UpdatePost) *Draft {
	return &Draft{
		Title:      post.Title,
		Slug:       post.Slug,
		Content:    post.Content,
		ImageURL:   post.ImageURL,
		EditingID:  post.ID,
		slugEdited: true,
	}
}

// Editing reports whether the draft targets an existing post.
func (d *Draft) Editing() bool {
	return d.EditingID != 0
}

// SetTitle updates the title and, while the slug is untouched, the slug.
func (d *Draft) SetTitle(title string) {
	d.Title = title
	if !d.slugEdited {
		d.Slug = domain.Slugify(title)
	}
}

// SetSlug records a manual slug. Later title edits no longer change it.
func (d *Draft) SetSlug(slug string) {
	d.Slug = domain.Slugify(slug)
	d.slugEdited = true
}

// SlugEdited reports whether the slug was set by hand.
func (d *Draft) SlugEdited() bool {
	return d.slugEdited
}

// Preview renders the body.
func (d *Draft) Preview() (string, error) {
	return markdown.ToHTML(d.Content)
}

// DraftPayload is what a save sends. Nil fields are omitted.
type DraftPayload struct {
	Title    *string
	Slug     *string
	Content  *string
	ImageURL *string
}

// Payload builds the save payload. An empty image is left out so a stored image is never cleared.
func (d *Draft) Payload() DraftPayload {
	p := DraftPayload{Title: strPtr(d.Title), Content: strPtr(d.Content)}
	if d.Slug != "" {
		p.Slug = strPtr(d.Slug)
	}
	if url := strings.TrimSpace(d.ImageURL); url != "" {
		p.ImageURL = strPtr(url)
	}
	return p
}

func strPtr(s string) *string {
	return &s
}

// UpdateStore is the remote side of the authoring console.
type UpdateStore interface {
	ListUpdates(ctx context.Context) ([]domain.UpdatePost, error)
	CreateUpdate(ctx context.Context, payload DraftPayload) (*domain.UpdatePost, error)
	EditUpdate(ctx context.Context, id int64, payload DraftPayload) (*domain.UpdatePost, error)
	DeleteUpdate(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, name string, body io.Reader) (string, error)
}

// UpdateConsole lists posts and saves drafts.
type UpdateConsole struct {
	store  UpdateStore
	runner *runner

	mu    sync.RWMutex
	posts []domain.UpdatePost
}

// NewUpdateConsole builds the console. Posts refresh on Notify; interval adds a periodic
// refresh when positive.
func NewUpdateConsole(store UpdateStore, interval time.Duration, logger *zap.Logger) *UpdateConsole {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &UpdateConsole{store: store}
	c.runner = &runner{name: "updates", refresh: c.Refresh, interval: interval, logger: logger}
	return c
}

// Refresh reloads the post list.
func (c *UpdateConsole) Refresh(ctx context.Context) error {
	posts, err := c.store.ListUpdates(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.posts = append([]domain.UpdatePost(nil), posts...)
	c.mu.Unlock()
	return nil
}

// Start loads the list and keeps it current until Stop.
func (c *UpdateConsole) Start(ctx context.Context) { c.runner.start(ctx) }

// Stop halts background refreshes.
func (c *UpdateConsole) Stop() { c.runner.stop() }

// Notify reloads the list after a change notification.
func (c *UpdateConsole) Notify() { c.runner.trigger() }

// Running reports whether background refreshes are active.
func (c *UpdateConsole) Running() bool { return c.runner.running() }

// SessionEnded is closed when refreshing stopped because the store rejected the session.
func (c *UpdateConsole) SessionEnded() <-chan struct{} { return c.runner.sessionEnded() }

// Posts returns a copy of the local list.
func (c *UpdateConsole) Posts() []domain.UpdatePost {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.UpdatePost(nil), c.posts...)
}

// Save uploads the draft image, if any, then inserts or updates the post.
func (c *UpdateConsole) Save(ctx context.Context, d *Draft) (*domain.UpdatePost, error) {
	if !d.Editing() && (strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Content) == "") {
		return nil, ErrDraftIncomplete
	}
	if d.ImageFile != "" {
		url, err := c.uploadFile(ctx, d.ImageFile)
		if err != nil {
			return nil, err
		}
		d.ImageURL = url
		d.ImageFile = ""
	}

	var (
		post *domain.UpdatePost
		err  error
	)
	if d.Editing() {
		post, err = c.store.EditUpdate(ctx, d.EditingID, d.Payload())
	} else {
		post, err = c.store.CreateUpdate(ctx, d.Payload())
	}
	if err != nil {
		return nil, err
	}
	c.merge(*post)
	return post, nil
}

// Delete removes post id once confirm approves it.
func (c *UpdateConsole) Delete(ctx context.Context, id int64, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrCancelled
	}
	if err := c.store.DeleteUpdate(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.posts {
		if c.posts[i].ID == id {
			c.posts = append(c.posts[:i:i], c.posts[i+1:]...)
			break
		}
	}
	return nil
}

func (c *UpdateConsole) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return c.store.UploadImage(ctx, filepath.Base(path), f)
}

func (c *UpdateConsole) merge(post domain.UpdatePost) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.posts {
		if c.posts[i].ID == post.ID {
			c.posts[i] = post
			return
		}
	}
	c.posts = append([]domain.UpdatePost{post}, c.posts...)
}
