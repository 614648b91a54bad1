package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

// UpdatePatch lists the fields to change on an update post. Nil fields are left untouched.
type UpdatePatch struct {
	Title    *string
	Slug     *string
	Content  *string
	ImageURL *string
}

// Empty reports whether the patch changes nothing.
func (p UpdatePatch) Empty() bool {
	return p.Title == nil && p.Slug == nil && p.Content == nil && p.ImageURL == nil
}

// UpdateRepository encapsulates update post persistence.
type UpdateRepository interface {
	Create(ctx context.Context, post *domain.UpdatePost) error
	Update(ctx context.Context, id int64, patch UpdatePatch) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.UpdatePost, error)
	GetBySlug(ctx context.Context, slug string) (*domain.UpdatePost, error)
	// List returns posts newest first. A non-positive limit returns all posts.
	List(ctx context.Context, limit int) ([]domain.UpdatePost, error)
}

type updateRepository struct {
	pool *pgxpool.Pool
}

// NewUpdateRepository instantiates repository.
func NewUpdateRepository(pool *pgxpool.Pool) UpdateRepository {
	return &updateRepository{pool: pool}
}

const updateColumns = `id, title, COALESCE(slug, ''), content, COALESCE(image_url, ''), created_at`

func (r *updateRepository) Create(ctx context.Context, post *domain.UpdatePost) error {
	columns := []string{"title", "content"}
	args := []any{post.Title, post.Content}
	if post.Slug != "" {
		columns = append(columns, "slug")
		args = append(args, post.Slug)
	}
	// image_url is only sent when set so a schema without the column still accepts plain posts.
	if post.ImageURL != "" {
		columns = append(columns, "image_url")
		args = append(args, post.ImageURL)
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO updates (%s) VALUES (%s) RETURNING id, created_at`,
		strings.Join(columns, ", "), strings.Join(placeholders, ","))
	return classify(r.pool.QueryRow(ctx, query, args...).Scan(&post.ID, &post.CreatedAt))
}

func (r *updateRepository) Update(ctx context.Context, id int64, patch UpdatePatch) error {
	if patch.Empty() {
		return nil
	}
	sets := []string{}
	args := []any{}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	add("title", patch.Title)
	add("slug", patch.Slug)
	add("content", patch.Content)
	add("image_url", patch.ImageURL)
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE updates SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *updateRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM updates WHERE id=$1`, id)
	if err != nil {
		return classify(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *updateRepository) GetByID(ctx context.Context, id int64) (*domain.UpdatePost, error) {
	query := `SELECT ` + updateColumns + ` FROM updates WHERE id=$1`
	post, err := scanUpdate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}
	return post, nil
}

func (r *updateRepository) GetBySlug(ctx context.Context, slug string) (*domain.UpdatePost, error) {
	query := `SELECT ` + updateColumns + ` FROM updates WHERE slug=$1 LIMIT 1`
	post, err := scanUpdate(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, classify(err)
	}
	return post, nil
}

func (r *updateRepository) List(ctx context.Context, limit int) ([]domain.UpdatePost, error) {
	query := `SELECT ` + updateColumns + ` FROM updates ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	result := []domain.UpdatePost{}
	for rows.Next() {
		post, err := scanUpdate(rows)
		if err != nil {
			return nil, classify(err)
		}
		result = append(result, *post)
	}
	return result, classify(rows.Err())
}

func scanUpdate(row pgx.Row) (*domain.UpdatePost, error) {
	var post domain.UpdatePost
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.ImageURL,
		&post.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}
