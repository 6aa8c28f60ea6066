package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"xvent/internal/domain"
)

type commentService struct {
	commentRepo domain.CommentRepository
	eventRepo   domain.EventRepository
	postRepo    domain.PostRepository
}

// NewCommentService creates a CommentService over the unified comment store.
func NewCommentService(
	commentRepo domain.CommentRepository,
	eventRepo domain.EventRepository,
	postRepo domain.PostRepository,
) domain.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		postRepo:    postRepo,
	}
}

func (s *commentService) AddEventComment(ctx context.Context, eventID, authorID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrInvalidInput)
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		EventID:   eventID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
		Replies:   []*domain.Comment{},
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) AddEventReply(ctx context.Context, eventID, commentID, authorID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: reply text is required", domain.ErrInvalidInput)
	}
	parent, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if parent.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	// Replies attach to top-level comments only.
	if parent.ParentID != "" {
		return nil, domain.ErrMaxDepth
	}
	reply := &domain.Comment{
		EventID:   eventID,
		ParentID:  commentID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
		Replies:   []*domain.Comment{},
	}
	if err := s.commentRepo.Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return s.commentRepo.GetByID(ctx, reply.ID)
}

func (s *commentService) ListEventComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	flat, err := s.commentRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCommentTree(flat), nil
}

func (s *commentService) ListReplies(ctx context.Context, eventID, commentID string) ([]*domain.Comment, error) {
	parent, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if parent.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	flat, err := s.commentRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	replies := []*domain.Comment{}
	for _, c := range flat {
		if c.ParentID == commentID {
			replies = append(replies, c)
		}
	}
	return replies, nil
}

func (s *commentService) DeleteReply(ctx context.Context, eventID, commentID, replyID, actorID string) error {
	reply, err := s.commentRepo.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.EventID != eventID || reply.ParentID != commentID {
		return domain.ErrNotFound
	}
	if reply.AuthorID != actorID {
		return domain.ErrForbidden
	}
	return s.commentRepo.Delete(ctx, replyID)
}

func (s *commentService) AddPostComment(ctx context.Context, postID, authorID, parentID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrInvalidInput)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if parentID != "" {
		parent, err := s.commentRepo.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, domain.ErrNotFound
		}
		if parent.ParentID != "" {
			return nil, domain.ErrMaxDepth
		}
	}
	comment := &domain.Comment{
		PostID:    postID,
		ParentID:  parentID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
		Replies:   []*domain.Comment{},
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *commentService) ListPostComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	flat, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCommentTree(flat), nil
}
