package dto

import (
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/feed"
)

// UpdateRequest is the create/edit payload. Omitted fields are left unchanged on edit.
type UpdateRequest struct {
	Title    *string `json:"title,omitempty" form:"title"`
	Slug     *string `json:"slug,omitempty" form:"slug"`
	Content  *string `json:"content,omitempty" form:"content"`
	ImageURL *string `json:"image_url,omitempty" form:"image_url"`
}

// UpdateResponse is the wire form of a post.
type UpdateResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug,omitempty"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateDetailResponse adds the rendered body.
type UpdateDetailResponse struct {
	UpdateResponse
	HTML string `json:"html"`
}

// BannerResponse describes the "new update" announcement.
type BannerResponse struct {
	Visible     bool            `json:"visible"`
	Latest      *UpdateResponse `json:"latest"`
	DownloadURL string          `json:"download_url,omitempty"`
}

// UploadResponse returns the URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}

// NewUpdateResponse converts a domain post.
func NewUpdateResponse(p *domain.UpdatePost) UpdateResponse {
	return UpdateResponse{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
}

// NewUpdateList converts a slice of posts.
func NewUpdateList(posts []domain.UpdatePost) []UpdateResponse {
	out := make([]UpdateResponse, 0, len(posts))
	for i := range posts {
		out = append(out, NewUpdateResponse(&posts[i]))
	}
	return out
}

// NewBannerResponse converts a banner evaluation.
func NewBannerResponse(b feed.Banner) BannerResponse {
	resp := BannerResponse{Visible: b.Visible, DownloadURL: b.DownloadURL}
	if b.Post != nil {
		latest := NewUpdateResponse(b.Post)
		resp.Latest = &latest
	}
	return resp
}

// Domain converts the wire form back to a domain post.
func (r UpdateResponse) Domain() domain.UpdatePost {
	return domain.UpdatePost{
		ID:        r.ID,
		Title:     r.Title,
		Slug:      r.Slug,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		CreatedAt: r.CreatedAt,
	}
}
