package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"xvent/internal/domain"
)

type eventRepository struct {
	DB *sql.DB

	// refreshAuthor switches reads from the stored author snapshot to a
	// live join against the users table.
	refreshAuthor bool
}

func NewEventRepository(db *sql.DB, refreshAuthor bool) domain.EventRepository {
	return &eventRepository{DB: db, refreshAuthor: refreshAuthor}
}

// eventSelect returns the SELECT ... FROM clause shared by all event reads.
// The likes column is the ordered set of user ids that liked the event.
func (r *eventRepository) eventSelect() string {
	author := `e.author_username, e.author_profile_picture`
	from := `FROM events e`
	if r.refreshAuthor {
		author = `u.username, COALESCE(u.profile_picture, '')`
		from = `FROM events e JOIN users u ON u.id = e.author_id`
	}
	return `
		SELECT e.id, e.title, e.description, e.date, e.time, e.venue, e.organizer,
			e.category, e.type, e.tags, e.registration_link, e.image,
			e.author_id, ` + author + `,
			COALESCE((SELECT array_agg(l.user_id::text ORDER BY l.created_at) FROM event_likes l WHERE l.event_id = e.id), '{}'),
			e.created_at, e.updated_at
		` + from
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var tags, likes pq.StringArray
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Venue,
		&e.Organizer, &e.Category, &e.Type, &tags, &e.RegistrationLink, &e.Image,
		&e.AuthorID, &e.AuthorUsername, &e.AuthorProfilePicture, &likes,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Tags = []string(tags)
	e.Likes = []string(likes)
	return e, nil
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, time, venue, organizer, category, type,
			tags, registration_link, image, author_id, author_username, author_profile_picture,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Date, event.Time, event.Venue,
		event.Organizer, event.Category, event.Type, pq.Array(event.Tags),
		event.RegistrationLink, event.Image, event.AuthorID,
		event.AuthorUsername, event.AuthorProfilePicture,
		event.CreatedAt, event.UpdatedAt).Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := r.eventSelect() + ` WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := r.eventSelect() + ` ORDER BY e.created_at DESC`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListByAuthorID(ctx context.Context, authorID string) ([]*domain.Event, error) {
	query := r.eventSelect() + ` WHERE e.author_id = $1 ORDER BY e.created_at DESC`
	return r.queryEvents(ctx, query, authorID)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, time = $4, venue = $5,
			organizer = $6, category = $7, type = $8, tags = $9,
			registration_link = $10, image = $11, updated_at = $12
		WHERE id = $13
	`
	res, err := r.DB.ExecContext(ctx, query,
		event.Title, event.Description, event.Date, event.Time, event.Venue,
		event.Organizer, event.Category, event.Type, pq.Array(event.Tags),
		event.RegistrationLink, event.Image, event.UpdatedAt, event.ID)
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

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
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

func (r *eventRepository) AddLike(ctx context.Context, eventID, userID string) error {
	query := `
		INSERT INTO event_likes (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	return err
}

func (r *eventRepository) RemoveLike(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	return err
}

func (r *eventRepository) AddBookmark(ctx context.Context, userID, eventID string) error {
	query := `
		INSERT INTO bookmarks (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

func (r *eventRepository) RemoveBookmark(ctx context.Context, userID, eventID string) error {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND event_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

func (r *eventRepository) IsBookmarked(ctx context.Context, userID, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND event_id = $2)`
	var bookmarked bool
	if err := r.DB.QueryRowContext(ctx, query, userID, eventID).Scan(&bookmarked); err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (r *eventRepository) ListBookmarkIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT event_id::text FROM bookmarks WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, userID)
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
	return ids, rows.Err()
}

func (r *eventRepository) ListBookmarked(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := r.eventSelect() + `
		JOIN bookmarks b ON b.event_id = e.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`
	return r.queryEvents(ctx, query, userID)
}

func (r *eventRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	query := r.eventSelect() + `
		WHERE e.date >= $1
		ORDER BY e.created_at DESC
		LIMIT $2`
	return r.queryEvents(ctx, query, now, limit)
}

// likeEscaper neutralizes ILIKE metacharacters in interest tokens so a tag
// like "100%" matches literally instead of everything.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *eventRepository) ListUpcomingMatching(ctx context.Context, tokens []string, now time.Time, limit int) ([]*domain.Event, error) {
	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped[i] = likeEscaper.Replace(tok)
	}
	query := r.eventSelect() + `
		WHERE e.date >= $1
		AND EXISTS (
			SELECT 1 FROM unnest($2::text[]) AS tok
			WHERE e.title ILIKE '%' || tok || '%'
				OR e.description ILIKE '%' || tok || '%'
				OR e.category ILIKE '%' || tok || '%'
				OR EXISTS (SELECT 1 FROM unnest(e.tags) AS tag WHERE tag ILIKE '%' || tok || '%')
		)
		ORDER BY e.date ASC, e.created_at DESC
		LIMIT $3`
	return r.queryEvents(ctx, query, now, pq.Array(escaped), limit)
}

func (r *eventRepository) ListUpcomingPopular(ctx context.Context, excludeIDs []string, now time.Time, limit int) ([]*domain.Event, error) {
	query := r.eventSelect() + `
		WHERE e.date >= $1
		AND NOT (e.id = ANY($2::uuid[]))
		ORDER BY (SELECT count(*) FROM event_likes l WHERE l.event_id = e.id) DESC, e.created_at DESC
		LIMIT $3`
	return r.queryEvents(ctx, query, now, pq.Array(excludeIDs), limit)
}

func (r *eventRepository) LikedSignals(ctx context.Context, userID string) ([]domain.InterestSignal, error) {
	query := `
		SELECT e.tags, e.category
		FROM event_likes l
		JOIN events e ON e.id = l.event_id
		WHERE l.user_id = $1
	`
	return r.querySignals(ctx, query, userID)
}

func (r *eventRepository) CommentedSignals(ctx context.Context, userID string) ([]domain.InterestSignal, error) {
	query := `
		SELECT e.tags, e.category
		FROM events e
		WHERE EXISTS (
			SELECT 1 FROM comments c
			WHERE c.event_id = e.id AND c.author_id = $1 AND c.parent_id IS NULL
		)
	`
	return r.querySignals(ctx, query, userID)
}

func (r *eventRepository) BookmarkedSignals(ctx context.Context, userID string) ([]domain.InterestSignal, error) {
	query := `
		SELECT e.tags, e.category
		FROM bookmarks b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
	`
	return r.querySignals(ctx, query, userID)
}

func (r *eventRepository) querySignals(ctx context.Context, query, userID string) ([]domain.InterestSignal, error) {
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signals := []domain.InterestSignal{}
	for rows.Next() {
		var s domain.InterestSignal
		var tags pq.StringArray
		if err := rows.Scan(&tags, &s.Category); err != nil {
			return nil, err
		}
		s.Tags = []string(tags)
		signals = append(signals, s)
	}
	return signals, rows.Err()
}
