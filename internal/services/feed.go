package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"xvent/internal/domain"
)

const (
	// Below this many interactions the feed falls back to recent upcoming
	// events instead of personalizing.
	coldStartThreshold = 4

	topInterestCount = 5
	feedLimit        = 50

	// A personalized feed shorter than this is topped up with popular
	// upcoming events.
	fallbackFloor = 10
)

type feedService struct {
	eventRepo   domain.EventRepository
	commentRepo domain.CommentRepository
	now         func() time.Time
}

// NewFeedService creates the recommendation engine over event interaction
// history.
func NewFeedService(eventRepo domain.EventRepository, commentRepo domain.CommentRepository) domain.FeedService {
	return &feedService{
		eventRepo:   eventRepo,
		commentRepo: commentRepo,
		now:         time.Now,
	}
}

func (s *feedService) RecommendedEvents(ctx context.Context, userID string) (*domain.Feed, error) {
	liked, err := s.eventRepo.LikedSignals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("liked signals: %w", err)
	}
	commented, err := s.eventRepo.CommentedSignals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("commented signals: %w", err)
	}
	bookmarked, err := s.eventRepo.BookmarkedSignals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("bookmarked signals: %w", err)
	}

	bookmarks, err := s.eventRepo.ListBookmarkIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	now := s.now()

	// An event interacted with through several channels counts once per
	// channel, weighting its tags accordingly.
	total := len(liked) + len(commented) + len(bookmarked)
	if total < coldStartThreshold {
		events, err := s.eventRepo.ListUpcoming(ctx, now, feedLimit)
		if err != nil {
			return nil, err
		}
		if err := s.attachComments(ctx, events); err != nil {
			return nil, err
		}
		return &domain.Feed{Events: events, Interests: []string{}, Bookmarks: bookmarks}, nil
	}

	interests := topInterests(concat(liked, commented, bookmarked), topInterestCount)

	events, err := s.eventRepo.ListUpcomingMatching(ctx, interests, now, feedLimit)
	if err != nil {
		return nil, err
	}
	if len(events) < fallbackFloor {
		exclude := make([]string, 0, len(events))
		for _, e := range events {
			exclude = append(exclude, e.ID)
		}
		popular, err := s.eventRepo.ListUpcomingPopular(ctx, exclude, now, fallbackFloor-len(events))
		if err != nil {
			return nil, err
		}
		events = append(events, popular...)
	}
	if err := s.attachComments(ctx, events); err != nil {
		return nil, err
	}
	return &domain.Feed{Events: events, Interests: interests, Bookmarks: bookmarks}, nil
}

func concat(groups ...[]domain.InterestSignal) []domain.InterestSignal {
	all := []domain.InterestSignal{}
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// topInterests counts normalized tag and category tokens across all signals
// and returns the n most frequent. Ties keep the order tokens were first
// seen in.
func topInterests(signals []domain.InterestSignal, n int) []string {
	counts := map[string]int{}
	order := []string{}
	add := func(token string) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			return
		}
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}
	for _, sig := range signals {
		for _, tag := range sig.Tags {
			add(tag)
		}
		add(sig.Category)
	}

	firstSeen := make(map[string]int, len(order))
	for i, token := range order {
		firstSeen[token] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func (s *feedService) attachComments(ctx context.Context, events []*domain.Event) error {
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
