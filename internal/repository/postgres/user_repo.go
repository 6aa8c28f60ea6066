package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"xvent/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, salt, profile_picture, bio, gender, verified, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt,
		&u.ProfilePicture, &u.Bio, &u.Gender, &u.Verified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// mapUniqueViolation translates Postgres unique violations on the users
// table into the domain duplicate errors.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return domain.ErrDuplicateUsername
		case "users_email_key":
			return domain.ErrDuplicateEmail
		}
	}
	return err
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Salt,
		u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `, verification_expires
		FROM users
		WHERE verification_token = $1
	`
	u := &domain.User{}
	var expires sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, token).Scan(&u.ID, &u.Username, &u.Email,
		&u.PasswordHash, &u.Salt, &u.ProfilePicture, &u.Bio, &u.Gender, &u.Verified,
		&u.CreatedAt, &u.UpdatedAt, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if expires.Valid && expires.Time.Before(time.Now()) {
		return u, domain.ErrTokenExpired
	}
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET bio = $1, gender = $2, profile_picture = $3, updated_at = $4
		WHERE id = $5
	`
	res, err := r.DB.ExecContext(ctx, query, u.Bio, u.Gender, u.ProfilePicture, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetVerified(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET verified = TRUE, verification_token = NULL, verification_expires = NULL, updated_at = now()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetVerificationToken(ctx context.Context, userID, token string, expires time.Time) error {
	query := `
		UPDATE users
		SET verification_token = $1, verification_expires = $2, updated_at = now()
		WHERE id = $3
	`
	res, err := r.DB.ExecContext(ctx, query, token, expires, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	query := `
		SELECT ` + userColumns + `, count(*) OVER () AS total
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []*domain.User{}
	total := 0
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt,
			&u.ProfilePicture, &u.Bio, &u.Gender, &u.Verified, &u.CreatedAt, &u.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) ListSuggested(ctx context.Context, excludeUserID string) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, excludeUserID)
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

func (r *userRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, followerID, followeeID)
	return err
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	_, err := r.DB.ExecContext(ctx, query, followerID, followeeID)
	return err
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var following bool
	if err := r.DB.QueryRowContext(ctx, query, followerID, followeeID).Scan(&following); err != nil {
		return false, err
	}
	return following, nil
}

func (r *userRepository) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at`
	return r.listIDs(ctx, query, userID)
}

func (r *userRepository) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at`
	return r.listIDs(ctx, query, userID)
}

func (r *userRepository) listIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return ids, nil
}
