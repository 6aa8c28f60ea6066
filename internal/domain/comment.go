package domain

import (
	"context"
	"time"
)

// MaxCommentDepth is the maximum nesting allowed by the unified comment
// model: a top-level comment and one level of replies. Enforced at write
// time for both events and posts.
const MaxCommentDepth = 2

// Comment is a flat comment row. Exactly one of EventID and PostID is set.
// A non-empty ParentID makes it a reply to a top-level comment of the same
// subject. Author fields are resolved live at read time.
// swagger:model Comment
type Comment struct {
	ID                   string     `json:"id"`
	EventID              string     `json:"event_id,omitempty"`
	PostID               string     `json:"post_id,omitempty"`
	ParentID             string     `json:"parent_id,omitempty"`
	AuthorID             string     `json:"author_id"`
	AuthorUsername       string     `json:"author_username"`
	AuthorProfilePicture string     `json:"author_profile_picture"`
	Text                 string     `json:"text"`
	CreatedAt            time.Time  `json:"created_at"`
	Replies              []*Comment `json:"replies"`
}

// BuildCommentTree assembles a two-level tree from a flat, creation-ordered
// comment list: children are indexed by parent id, then attached in input
// order. A reply whose parent is missing from the input is promoted to the
// top level rather than dropped. The input slice is not modified; Replies
// of returned top-level comments are always non-nil.
func BuildCommentTree(flat []*Comment) []*Comment {
	byID := make(map[string]*Comment, len(flat))
	nodes := make([]*Comment, 0, len(flat))
	for _, c := range flat {
		n := *c
		n.Replies = []*Comment{}
		byID[n.ID] = &n
		nodes = append(nodes, &n)
	}

	roots := make([]*Comment, 0, len(nodes))
	for _, n := range nodes {
		if n.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}
	return roots
}

// CommentRepository defines the interface for unified comment storage.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Comment, error)
	ListByEventIDs(ctx context.Context, eventIDs []string) (map[string][]*Comment, error)
	ListByPostID(ctx context.Context, postID string) ([]*Comment, error)
	ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]*Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentService defines the business logic for comments and replies on both
// content types.
type CommentService interface {
	AddEventComment(ctx context.Context, eventID, authorID, text string) (*Comment, error)
	AddEventReply(ctx context.Context, eventID, commentID, authorID, text string) (*Comment, error)
	ListEventComments(ctx context.Context, eventID string) ([]*Comment, error)
	ListReplies(ctx context.Context, eventID, commentID string) ([]*Comment, error)
	DeleteReply(ctx context.Context, eventID, commentID, replyID, actorID string) error

	AddPostComment(ctx context.Context, postID, authorID, parentID, text string) (*Comment, error)
	ListPostComments(ctx context.Context, postID string) ([]*Comment, error)
}
