package domain

import (
	"context"
	"time"
)

// EventType is the attendance mode of an event.
type EventType string

// Supported event types.
const (
	EventInPerson EventType = "In-Person"
	EventOnline   EventType = "Online"
	EventHybrid   EventType = "Hybrid"
)

// Valid reports whether t is one of the supported event types.
func (t EventType) Valid() bool {
	switch t {
	case EventInPerson, EventOnline, EventHybrid:
		return true
	}
	return false
}

// Event represents a user-created event listing with its social metadata.
// AuthorUsername and AuthorProfilePicture are a point-in-time snapshot taken
// at creation and may drift from the live user record; reads can optionally
// resolve them live (refresh-on-read).
// swagger:model Event
type Event struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Date                 time.Time  `json:"date"`
	Time                 string     `json:"time"`
	Venue                string     `json:"venue"`
	Organizer            string     `json:"organizer"`
	Category             string     `json:"category"`
	Type                 EventType  `json:"type"`
	Tags                 []string   `json:"tags"`
	RegistrationLink     string     `json:"registration_link,omitempty"`
	Image                string     `json:"image"`
	AuthorID             string     `json:"author_id"`
	AuthorUsername       string     `json:"author_username"`
	AuthorProfilePicture string     `json:"author_profile_picture"`
	Likes                []string   `json:"likes"`
	Comments             []*Comment `json:"comments,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// EventUpdate holds the optional fields of an event update. Nil fields are
// left unchanged.
type EventUpdate struct {
	Title            *string
	Description      *string
	Date             *time.Time
	Time             *string
	Venue            *string
	Organizer        *string
	Category         *string
	Type             *EventType
	Tags             []string
	RegistrationLink *string
	Image            *string
}

// InterestSignal is the {tags, category} projection of an event a user has
// interacted with. It is the only input the feed engine reads per interaction.
type InterestSignal struct {
	Tags     []string
	Category string
}

// EventRepository defines the interface for event storage, like edges,
// bookmarks, and the feed retrieval queries.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListAll(ctx context.Context) ([]*Event, error)
	ListByAuthorID(ctx context.Context, authorID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error

	AddLike(ctx context.Context, eventID, userID string) error
	RemoveLike(ctx context.Context, eventID, userID string) error

	AddBookmark(ctx context.Context, userID, eventID string) error
	RemoveBookmark(ctx context.Context, userID, eventID string) error
	IsBookmarked(ctx context.Context, userID, eventID string) (bool, error)
	ListBookmarkIDs(ctx context.Context, userID string) ([]string, error)
	ListBookmarked(ctx context.Context, userID string) ([]*Event, error)

	// Feed retrieval. "Upcoming" always means date >= now.
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*Event, error)
	ListUpcomingMatching(ctx context.Context, tokens []string, now time.Time, limit int) ([]*Event, error)
	ListUpcomingPopular(ctx context.Context, excludeIDs []string, now time.Time, limit int) ([]*Event, error)

	// Interaction projections for interest extraction.
	LikedSignals(ctx context.Context, userID string) ([]InterestSignal, error)
	CommentedSignals(ctx context.Context, userID string) ([]InterestSignal, error)
	BookmarkedSignals(ctx context.Context, userID string) ([]InterestSignal, error)
}

// EventService defines the business logic for event CRUD and interactions.
type EventService interface {
	Create(ctx context.Context, authorID string, event *Event, image []byte) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	ListAll(ctx context.Context, callerID string) (events []*Event, bookmarkIDs []string, err error)
	ListPublic(ctx context.Context) ([]*Event, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Event, error)
	Update(ctx context.Context, eventID, actorID string, update EventUpdate, image []byte) (*Event, error)
	Delete(ctx context.Context, eventID, actorID string) error
	Like(ctx context.Context, eventID, userID string) error
	Dislike(ctx context.Context, eventID, userID string) error
	ToggleBookmark(ctx context.Context, userID, eventID string) (bookmarked bool, err error)
	ListBookmarked(ctx context.Context, userID string) ([]*Event, error)
}
