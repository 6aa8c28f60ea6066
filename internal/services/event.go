package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"xvent/internal/domain"
)

type eventService struct {
	eventRepo   domain.EventRepository
	userRepo    domain.UserRepository
	commentRepo domain.CommentRepository
	images      domain.ImageProcessor
	imageStore  domain.ImageStore
}

// NewEventService creates an EventService with the given repositories and
// image pipeline.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	commentRepo domain.CommentRepository,
	images domain.ImageProcessor,
	imageStore domain.ImageStore,
) domain.EventService {
	return &eventService{
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		images:      images,
		imageStore:  imageStore,
	}
}

func (s *eventService) Create(ctx context.Context, authorID string, event *domain.Event, image []byte) (*domain.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	event.Description = strings.TrimSpace(event.Description)
	if event.Title == "" || event.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}
	if event.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if !event.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidInput, event.Type)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: event banner image is required", domain.ErrInvalidInput)
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	normalized, err := s.images.Normalize(image, domain.BannerImageSpec)
	if err != nil {
		return nil, err
	}
	url, err := s.imageStore.Upload(ctx, normalized, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("upload banner: %w", err)
	}

	now := time.Now()
	event.Image = url
	event.AuthorID = author.ID
	event.AuthorUsername = author.Username
	event.AuthorProfilePicture = author.ProfilePicture
	event.Likes = []string{}
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Tags == nil {
		event.Tags = []string{}
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	flat, err := s.commentRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	event.Comments = domain.BuildCommentTree(flat)
	return event, nil
}

func (s *eventService) ListAll(ctx context.Context, callerID string) ([]*domain.Event, []string, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := s.attachComments(ctx, events); err != nil {
		return nil, nil, err
	}
	bookmarks, err := s.eventRepo.ListBookmarkIDs(ctx, callerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return events, bookmarks, nil
}

func (s *eventService) ListPublic(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventService) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByAuthorID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachComments loads the comments of all events in one query and attaches
// them as trees.
func (s *eventService) attachComments(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	grouped, err := s.commentRepo.ListByEventIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	for _, e := range events {
		e.Comments = domain.BuildCommentTree(grouped[e.ID])
	}
	return nil
}

func (s *eventService) Update(ctx context.Context, eventID, actorID string, update domain.EventUpdate, image []byte) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}

	if update.Title != nil {
		event.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		event.Description = strings.TrimSpace(*update.Description)
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.Time != nil {
		event.Time = *update.Time
	}
	if update.Venue != nil {
		event.Venue = *update.Venue
	}
	if update.Organizer != nil {
		event.Organizer = *update.Organizer
	}
	if update.Category != nil {
		event.Category = *update.Category
	}
	if update.Type != nil {
		if !update.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidInput, *update.Type)
		}
		event.Type = *update.Type
	}
	if update.Tags != nil {
		event.Tags = update.Tags
	}
	if update.RegistrationLink != nil {
		event.RegistrationLink = *update.RegistrationLink
	}
	if len(image) > 0 {
		normalized, err := s.images.Normalize(image, domain.BannerImageSpec)
		if err != nil {
			return nil, err
		}
		url, err := s.imageStore.Upload(ctx, normalized, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("upload banner: %w", err)
		}
		event.Image = url
	} else if update.Image != nil {
		event.Image = *update.Image
	}

	if event.Title == "" || event.Description == "" {
		return nil, fmt.Errorf("%w: title and description must not be empty", domain.ErrInvalidInput)
	}

	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, eventID, actorID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.AuthorID != actorID {
		return domain.ErrForbidden
	}
	return s.eventRepo.Delete(ctx, eventID)
}

func (s *eventService) Like(ctx context.Context, eventID, userID string) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}
	return s.eventRepo.AddLike(ctx, eventID, userID)
}

func (s *eventService) Dislike(ctx context.Context, eventID, userID string) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}
	return s.eventRepo.RemoveLike(ctx, eventID, userID)
}

func (s *eventService) ToggleBookmark(ctx context.Context, userID, eventID string) (bool, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return false, err
	}
	bookmarked, err := s.eventRepo.IsBookmarked(ctx, userID, eventID)
	if err != nil {
		return false, err
	}
	if bookmarked {
		if err := s.eventRepo.RemoveBookmark(ctx, userID, eventID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.eventRepo.AddBookmark(ctx, userID, eventID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *eventService) ListBookmarked(ctx context.Context, userID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListBookmarked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}
