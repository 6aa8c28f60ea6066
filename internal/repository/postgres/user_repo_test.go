package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"xvent/internal/domain"
)

func userRows(u *domain.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "salt", "profile_picture",
		"bio", "gender", "verified", "created_at", "updated_at",
	}).AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.Salt, u.ProfilePicture,
		u.Bio, u.Gender, u.Verified, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			user: &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h", Salt: "s"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "alice@example.com", "h", "s", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-uuid-1"))
			},
		},
		{
			name: "duplicate username",
			user: &domain.User{Username: "alice", Email: "other@example.com"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateUsername,
		},
		{
			name: "duplicate email",
			user: &domain.User{Username: "bob", Email: "alice@example.com"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "db error",
			user: &domain.User{Username: "bob", Email: "b@example.com"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			err = repo.Create(ctx, tt.user)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, "user-uuid-1", tt.user.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	want := &domain.User{
		ID: "user-uuid-1", Username: "alice", Email: "alice@example.com",
		PasswordHash: "h", Salt: "s", Verified: true, CreatedAt: now, UpdatedAt: now,
	}

	tests := []struct {
		name    string
		email   string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:  "success",
			email: "alice@example.com",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
					WithArgs("alice@example.com").
					WillReturnRows(userRows(want))
			},
		},
		{
			name:  "not found",
			email: "nobody@example.com",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
					WithArgs("nobody@example.com").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			got, err := repo.GetByEmail(ctx, tt.email)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				require.Equal(t, want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByVerificationToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rowsWithExpiry := func(expires time.Time) *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "salt", "profile_picture",
			"bio", "gender", "verified", "created_at", "updated_at", "verification_expires",
		}).AddRow("user-uuid-1", "alice", "alice@example.com", "h", "s", "",
			"", "", false, now, now, expires)
	}

	t.Run("valid token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("tok-1").
			WillReturnRows(rowsWithExpiry(time.Now().Add(time.Hour)))

		repo := NewUserRepository(db)
		u, err := repo.GetByVerificationToken(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", u.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("tok-1").
			WillReturnRows(rowsWithExpiry(time.Now().Add(-time.Hour)))

		repo := NewUserRepository(db)
		u, err := repo.GetByVerificationToken(ctx, "tok-1")
		require.ErrorIs(t, err, domain.ErrTokenExpired)
		require.NotNil(t, u)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByVerificationToken(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_FollowEdges(t *testing.T) {
	ctx := context.Background()

	t.Run("follow is idempotent insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO follows`).
			WithArgs("user-1", "user-2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		require.NoError(t, repo.Follow(ctx, "user-1", "user-2"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("is following", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("user-1", "user-2").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		repo := NewUserRepository(db)
		following, err := repo.IsFollowing(ctx, "user-1", "user-2")
		require.NoError(t, err)
		require.True(t, following)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list following ids", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT followee_id FROM follows`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"followee_id"}).
				AddRow("user-2").AddRow("user-3"))

		repo := NewUserRepository(db)
		ids, err := repo.ListFollowingIDs(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, []string{"user-2", "user-3"}, ids)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "salt", "profile_picture",
		"bio", "gender", "verified", "created_at", "updated_at", "total",
	}).
		AddRow("user-2", "bob", "bob@example.com", "h", "s", "", "", "", true, now, now, 2).
		AddRow("user-1", "alice", "alice@example.com", "h", "s", "", "", "", true, now, now, 2)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	repo := NewUserRepository(db)
	users, total, err := repo.List(ctx, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, users, 2)
	require.Equal(t, "bob", users[0].Username)
	require.NoError(t, mock.ExpectationsWereMet())
}
