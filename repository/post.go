package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"quill/domain"
)

// Invalidator receives cache invalidation signals for rendered pages
// whose content a mutation made stale.
type Invalidator interface {
	Invalidate(paths ...string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(...string) {}

// DefaultPageSize is used when a caller asks for a non-positive limit.
const DefaultPageSize = 10

type PostCreate struct {
	Title     string
	Content   string
	Published bool
	AuthorID  string
}

// PostUpdate is a partial update; nil fields are left unchanged.
type PostUpdate struct {
	ID        string
	Title     *string
	Content   *string
	Published *bool
}

type PostRepository interface {
	ListPublished(ctx context.Context, page, limit int) domain.PostPage
	ListByAuthor(ctx context.Context, authorID string, page, limit int) domain.PostPage
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, in PostCreate) (*domain.Post, error)
	Update(ctx context.Context, in PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db          *sql.DB
	invalidator Invalidator
}

func NewPostRepository(db *sql.DB, inv Invalidator) PostRepository {
	if inv == nil {
		inv = noopInvalidator{}
	}
	return &postRepository{db: db, invalidator: inv}
}

const postColumns = `p.id, p.title, p.content, p.published, p.author_id, p.created_at, p.updated_at,
	u.id, u.name, u.image`

// ListPublished returns one page of published posts, newest first. Store
// errors degrade to an empty page so public listings keep rendering
// through transient outages; the failure is only logged.
func (r *postRepository) ListPublished(ctx context.Context, page, limit int) domain.PostPage {
	return r.list(ctx, page, limit, "p.published = true", nil)
}

// ListByAuthor returns one page of the author's posts regardless of
// published state, newest first. Same degrade-to-empty policy as
// ListPublished.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, page, limit int) domain.PostPage {
	return r.list(ctx, page, limit, "p.author_id = $1", []any{authorID})
}

func (r *postRepository) list(ctx context.Context, page, limit int, where string, args []any) domain.PostPage {
	// Non-positive paging inputs are clamped rather than rejected.
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	empty := domain.PostPage{Posts: []domain.Post{}, TotalPages: 0, CurrentPage: page}

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts p WHERE "+where, args...).Scan(&total)
	if err != nil {
		log.Warnf("post listing degraded to empty page: %v", err)
		return empty
	}

	query := fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.author_id
		WHERE %s ORDER BY p.created_at DESC LIMIT %d OFFSET %d`,
		postColumns, where, limit, (page-1)*limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Warnf("post listing degraded to empty page: %v", err)
		return empty
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			log.Warnf("post listing degraded to empty page: %v", err)
			return empty
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		log.Warnf("post listing degraded to empty page: %v", err)
		return empty
	}

	return domain.PostPage{
		Posts:       posts,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}
}

// GetByID returns the post with its author's id, name and image.
// A missing row is ErrNotFound; a store failure is returned as-is so
// callers can tell the two apart.
func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1`, postColumns), id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", id, err)
	}
	return &p, nil
}

// Create inserts a post after verifying the author exists, both inside
// one transaction so the author cannot disappear between the check and
// the insert.
func (r *postRepository) Create(ctx context.Context, in PostCreate) (*domain.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	author := domain.Author{}
	err = tx.QueryRowContext(ctx, `SELECT id, name, image FROM users WHERE id = $1`, in.AuthorID).
		Scan(&author.ID, &author.Name, &author.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving author %s: %w", in.AuthorID, err)
	}

	now := time.Now().UTC()
	p := &domain.Post{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Published: in.Published,
		AuthorID:  in.AuthorID,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, published, author_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Title, p.Content, p.Published, p.AuthorID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing post: %w", err)
	}

	paths := []string{"/dashboard", "/posts"}
	if p.Published {
		paths = append(paths, "/")
	}
	r.invalidator.Invalidate(paths...)

	return p, nil
}

// Update applies a partial update; nil fields keep their current value.
func (r *postRepository) Update(ctx context.Context, in PostUpdate) (*domain.Post, error) {
	p, err := r.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`UPDATE posts SET title = $1, content = $2, published = $3, updated_at = $4 WHERE id = $5`,
		p.Title, p.Content, p.Published, p.UpdatedAt, p.ID)
	if err != nil {
		return nil, fmt.Errorf("updating post %s: %w", p.ID, err)
	}

	r.invalidator.Invalidate("/dashboard", "/dashboard/posts/"+p.ID, "/posts", "/")

	return p, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	r.invalidator.Invalidate("/dashboard", "/posts", "/")

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	p := domain.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.ID, &p.Author.Name, &p.Author.Image)
	return p, err
}
