package domain

import (
	"context"
	"time"
)

// Post represents a user-created image-plus-caption social item, separate
// from events. Author fields are resolved live at read time.
// swagger:model Post
type Post struct {
	ID                   string     `json:"id"`
	Caption              string     `json:"caption"`
	Image                string     `json:"image"`
	AuthorID             string     `json:"author_id"`
	AuthorUsername       string     `json:"author_username"`
	AuthorProfilePicture string     `json:"author_profile_picture"`
	Likes                []string   `json:"likes"`
	Comments             []*Comment `json:"comments,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// PostRepository defines the interface for post storage and like edges.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, params PaginationParams) ([]*Post, int, error)
	ListByAuthorID(ctx context.Context, authorID string) ([]*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error

	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	ListLikers(ctx context.Context, postID string) ([]*User, error)
}

// PostLikes describes who liked a post and whether the caller is among them.
// swagger:model PostLikes
type PostLikes struct {
	LikesCount           int      `json:"likes_count"`
	IsLikedByCurrentUser bool     `json:"is_liked_by_current_user"`
	LikedUsers           []*User  `json:"liked_users"`
}

// PostService defines the business logic for post CRUD and interactions.
type PostService interface {
	Create(ctx context.Context, authorID, caption string, image []byte) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, params PaginationParams) ([]*Post, int, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Post, error)
	Update(ctx context.Context, postID, actorID string, caption *string, image []byte) (*Post, error)
	Delete(ctx context.Context, postID, actorID string) error
	Like(ctx context.Context, postID, userID string) error
	Dislike(ctx context.Context, postID, userID string) error
	Likes(ctx context.Context, postID, callerID string) (*PostLikes, error)
}
