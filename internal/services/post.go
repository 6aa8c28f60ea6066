package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"xvent/internal/domain"
)

type postService struct {
	postRepo   domain.PostRepository
	userRepo   domain.UserRepository
	images     domain.ImageProcessor
	imageStore domain.ImageStore
}

// NewPostService creates a PostService with the given repositories and image
// pipeline.
func NewPostService(
	postRepo domain.PostRepository,
	userRepo domain.UserRepository,
	images domain.ImageProcessor,
	imageStore domain.ImageStore,
) domain.PostService {
	return &postService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		images:     images,
		imageStore: imageStore,
	}
}

func (s *postService) Create(ctx context.Context, authorID, caption string, image []byte) (*domain.Post, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil, fmt.Errorf("%w: caption is required", domain.ErrInvalidInput)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: post image is required", domain.ErrInvalidInput)
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	normalized, err := s.images.Normalize(image, domain.SquareImageSpec)
	if err != nil {
		return nil, err
	}
	url, err := s.imageStore.Upload(ctx, normalized, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	now := time.Now()
	post := &domain.Post{
		Caption:              caption,
		Image:                url,
		AuthorID:             author.ID,
		AuthorUsername:       author.Username,
		AuthorProfilePicture: author.ProfilePicture,
		Likes:                []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *postService) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *postService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Post, int, error) {
	return s.postRepo.List(ctx, params)
}

func (s *postService) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	return s.postRepo.ListByAuthorID(ctx, authorID)
}

func (s *postService) Update(ctx context.Context, postID, actorID string, caption *string, image []byte) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}

	if caption != nil {
		trimmed := strings.TrimSpace(*caption)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: caption must not be empty", domain.ErrInvalidInput)
		}
		post.Caption = trimmed
	}
	if len(image) > 0 {
		normalized, err := s.images.Normalize(image, domain.SquareImageSpec)
		if err != nil {
			return nil, err
		}
		url, err := s.imageStore.Upload(ctx, normalized, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		post.Image = url
	}

	post.UpdatedAt = time.Now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, postID, actorID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return domain.ErrForbidden
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *postService) Like(ctx context.Context, postID, userID string) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.AddLike(ctx, postID, userID)
}

func (s *postService) Dislike(ctx context.Context, postID, userID string) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.RemoveLike(ctx, postID, userID)
}

func (s *postService) Likes(ctx context.Context, postID, callerID string) (*domain.PostLikes, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	likers, err := s.postRepo.ListLikers(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list likers: %w", err)
	}
	return &domain.PostLikes{
		LikesCount:           len(likers),
		IsLikedByCurrentUser: slices.Contains(post.Likes, callerID),
		LikedUsers:           likers,
	}, nil
}
