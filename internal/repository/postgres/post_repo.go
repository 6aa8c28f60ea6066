package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"xvent/internal/domain"
)

type postRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) domain.PostRepository {
	return &postRepository{DB: db}
}

// Post author fields are always resolved live from the users table.
const postColumns = `p.id, p.caption, p.image, p.author_id, u.username, COALESCE(u.profile_picture, ''),
		COALESCE((SELECT array_agg(l.user_id::text ORDER BY l.created_at) FROM post_likes l WHERE l.post_id = p.id), '{}'),
		p.created_at, p.updated_at`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id`

const postSelect = `
	SELECT ` + postColumns + postFrom

func scanPost(row interface{ Scan(...any) error }, extra ...any) (*domain.Post, error) {
	p := &domain.Post{}
	var likes pq.StringArray
	dest := []any{&p.ID, &p.Caption, &p.Image, &p.AuthorID, &p.AuthorUsername,
		&p.AuthorProfilePicture, &likes, &p.CreatedAt, &p.UpdatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Likes = []string(likes)
	return p, nil
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (caption, image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, post.Caption, post.Image, post.AuthorID,
		post.CreatedAt, post.UpdatedAt).Scan(&post.ID)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := postSelect + ` WHERE p.id = $1`
	p, err := scanPost(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Post, int, error) {
	query := `
	SELECT ` + postColumns + `, count(*) OVER () AS total` + postFrom + `
	ORDER BY p.created_at DESC
	LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []*domain.Post{}
	total := 0
	for rows.Next() {
		p, err := scanPost(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListByAuthorID(ctx context.Context, authorID string) ([]*domain.Post, error) {
	query := postSelect + ` WHERE p.author_id = $1 ORDER BY p.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	query := `
		UPDATE posts
		SET caption = $1, image = $2, updated_at = $3
		WHERE id = $4
	`
	res, err := r.DB.ExecContext(ctx, query, post.Caption, post.Image, post.UpdatedAt, post.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID string) error {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, postID, userID)
	return err
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	_, err := r.DB.ExecContext(ctx, query, postID, userID)
	return err
}

func (r *postRepository) ListLikers(ctx context.Context, postID string) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.salt, u.profile_picture,
			u.bio, u.gender, u.verified, u.created_at, u.updated_at
		FROM post_likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.post_id = $1
		ORDER BY l.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
