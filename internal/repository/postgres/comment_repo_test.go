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

var commentTestColumns = []string{
	"id", "event_id", "post_id", "parent_id", "author_id",
	"username", "profile_picture", "text", "created_at",
}

func TestCommentRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("top-level event comment stores null parent and post", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO comments`).
			WithArgs("event-uuid-1", nil, nil, "user-1", "great lineup", now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("comment-uuid-1"))

		repo := NewCommentRepository(db)
		c := &domain.Comment{EventID: "event-uuid-1", AuthorID: "user-1", Text: "great lineup", CreatedAt: now}
		require.NoError(t, repo.Create(ctx, c))
		require.Equal(t, "comment-uuid-1", c.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reply carries parent id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO comments`).
			WithArgs("event-uuid-1", nil, "comment-uuid-1", "user-2", "agreed", now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("comment-uuid-2"))

		repo := NewCommentRepository(db)
		c := &domain.Comment{EventID: "event-uuid-1", ParentID: "comment-uuid-1", AuthorID: "user-2", Text: "agreed", CreatedAt: now}
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(commentTestColumns).
		AddRow("comment-uuid-1", "event-uuid-1", "", "", "user-1", "alice", "", "great lineup", now).
		AddRow("comment-uuid-2", "event-uuid-1", "", "comment-uuid-1", "user-2", "bob", "", "agreed", now.Add(time.Minute))

	mock.ExpectQuery(`SELECT (.+) FROM comments c\s+JOIN users u`).
		WithArgs("event-uuid-1").
		WillReturnRows(rows)

	repo := NewCommentRepository(db)
	comments, err := repo.ListByEventID(ctx, "event-uuid-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "alice", comments[0].AuthorUsername)
	require.Equal(t, "comment-uuid-1", comments[1].ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByEventIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("groups by event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows(commentTestColumns).
			AddRow("comment-uuid-1", "event-uuid-1", "", "", "user-1", "alice", "", "one", now).
			AddRow("comment-uuid-2", "event-uuid-2", "", "", "user-2", "bob", "", "two", now).
			AddRow("comment-uuid-3", "event-uuid-1", "", "", "user-2", "bob", "", "three", now)

		mock.ExpectQuery(`SELECT (.+) FROM comments c`).
			WithArgs(pq.Array([]string{"event-uuid-1", "event-uuid-2"})).
			WillReturnRows(rows)

		repo := NewCommentRepository(db)
		grouped, err := repo.ListByEventIDs(ctx, []string{"event-uuid-1", "event-uuid-2"})
		require.NoError(t, err)
		require.Len(t, grouped["event-uuid-1"], 2)
		require.Len(t, grouped["event-uuid-2"], 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input skips query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewCommentRepository(db)
		grouped, err := repo.ListByEventIDs(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, grouped)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM comments`).
			WithArgs("comment-uuid-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewCommentRepository(db)
		require.NoError(t, repo.Delete(ctx, "comment-uuid-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM comments`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewCommentRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM comments`).
			WillReturnError(sql.ErrConnDone)

		repo := NewCommentRepository(db)
		require.Error(t, repo.Delete(ctx, "comment-uuid-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
