package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"xvent/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

const commentSelect = `
	SELECT c.id, COALESCE(c.event_id::text, ''), COALESCE(c.post_id::text, ''),
		COALESCE(c.parent_id::text, ''), c.author_id, u.username,
		COALESCE(u.profile_picture, ''), c.text, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func scanComment(row interface{ Scan(...any) error }) (*domain.Comment, error) {
	c := &domain.Comment{}
	err := row.Scan(&c.ID, &c.EventID, &c.PostID, &c.ParentID, &c.AuthorID,
		&c.AuthorUsername, &c.AuthorProfilePicture, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...any) ([]*domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (event_id, post_id, parent_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		nullIfEmpty(comment.EventID), nullIfEmpty(comment.PostID), nullIfEmpty(comment.ParentID),
		comment.AuthorID, comment.Text, comment.CreatedAt).Scan(&comment.ID)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := commentSelect + ` WHERE c.id = $1`
	c, err := scanComment(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	query := commentSelect + ` WHERE c.event_id = $1 ORDER BY c.created_at`
	return r.queryComments(ctx, query, eventID)
}

func (r *commentRepository) ListByEventIDs(ctx context.Context, eventIDs []string) (map[string][]*domain.Comment, error) {
	if len(eventIDs) == 0 {
		return map[string][]*domain.Comment{}, nil
	}
	query := commentSelect + ` WHERE c.event_id = ANY($1::uuid[]) ORDER BY c.created_at`
	comments, err := r.queryComments(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	grouped := map[string][]*domain.Comment{}
	for _, c := range comments {
		grouped[c.EventID] = append(grouped[c.EventID], c)
	}
	return grouped, nil
}

func (r *commentRepository) ListByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	query := commentSelect + ` WHERE c.post_id = $1 ORDER BY c.created_at`
	return r.queryComments(ctx, query, postID)
}

func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	if len(postIDs) == 0 {
		return map[string][]*domain.Comment{}, nil
	}
	query := commentSelect + ` WHERE c.post_id = ANY($1::uuid[]) ORDER BY c.created_at`
	comments, err := r.queryComments(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, err
	}
	grouped := map[string][]*domain.Comment{}
	for _, c := range comments {
		grouped[c.PostID] = append(grouped[c.PostID], c)
	}
	return grouped, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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
