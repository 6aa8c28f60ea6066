package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"xvent/internal/domain"
)

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	users      map[string]*domain.User
	tokens     map[string]string // verification token -> user id
	expires    map[string]time.Time
	follows    map[string]map[string]bool // follower -> followee
	nextID     int
	createErr  error
	getErr     error
	setTokens  int
	verifiedID string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   map[string]*domain.User{},
		tokens:  map[string]string{},
		expires: map[string]time.Time{},
		follows: map[string]map[string]bool{},
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := f.users[id]
	if exp, ok := f.expires[token]; ok && exp.Before(time.Now()) {
		return u, domain.ErrTokenExpired
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, userID string) error {
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = true
	f.verifiedID = userID
	return nil
}

func (f *fakeUserRepo) SetVerificationToken(ctx context.Context, userID, token string, expires time.Time) error {
	if _, ok := f.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	f.tokens[token] = userID
	f.expires[token] = expires
	f.setTokens++
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	users := []*domain.User{}
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, len(users), nil
}

func (f *fakeUserRepo) ListSuggested(ctx context.Context, excludeUserID string) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, u := range f.users {
		if u.ID != excludeUserID {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) Follow(ctx context.Context, followerID, followeeID string) error {
	if f.follows[followerID] == nil {
		f.follows[followerID] = map[string]bool{}
	}
	f.follows[followerID][followeeID] = true
	return nil
}

func (f *fakeUserRepo) Unfollow(ctx context.Context, followerID, followeeID string) error {
	delete(f.follows[followerID], followeeID)
	return nil
}

func (f *fakeUserRepo) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return f.follows[followerID][followeeID], nil
}

func (f *fakeUserRepo) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	for id := range f.follows[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeUserRepo) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	for follower, set := range f.follows {
		if set[userID] {
			ids = append(ids, follower)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// fakeEventRepo implements domain.EventRepository for tests. Feed queries
// replicate the storage ordering semantics so ranking tests run against
// realistic data.
type fakeEventRepo struct {
	events    map[string]*domain.Event
	order     []string // creation order
	bookmarks map[string][]string
	liked     map[string][]domain.InterestSignal
	commented map[string][]domain.InterestSignal
	bookSigs  map[string][]domain.InterestSignal
	nextID    int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:    map[string]*domain.Event{},
		bookmarks: map[string][]string{},
		liked:     map[string][]domain.InterestSignal{},
		commented: map[string][]domain.InterestSignal{},
		bookSigs:  map[string][]domain.InterestSignal{},
	}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.Likes == nil {
		e.Likes = []string{}
	}
	f.events[e.ID] = e
	f.order = append(f.order, e.ID)
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.nextID++
	e.ID = fmt.Sprintf("event-%d", f.nextID)
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) all() []*domain.Event {
	events := make([]*domain.Event, 0, len(f.events))
	for _, id := range f.order {
		events = append(events, f.events[id])
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*domain.Event, error) {
	return f.all(), nil
}

func (f *fakeEventRepo) ListByAuthorID(ctx context.Context, authorID string) ([]*domain.Event, error) {
	events := []*domain.Event{}
	for _, e := range f.all() {
		if e.AuthorID == authorID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) AddLike(ctx context.Context, eventID, userID string) error {
	e := f.events[eventID]
	for _, id := range e.Likes {
		if id == userID {
			return nil
		}
	}
	e.Likes = append(e.Likes, userID)
	return nil
}

func (f *fakeEventRepo) RemoveLike(ctx context.Context, eventID, userID string) error {
	e := f.events[eventID]
	likes := e.Likes[:0]
	for _, id := range e.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	e.Likes = likes
	return nil
}

func (f *fakeEventRepo) AddBookmark(ctx context.Context, userID, eventID string) error {
	for _, id := range f.bookmarks[userID] {
		if id == eventID {
			return nil
		}
	}
	f.bookmarks[userID] = append(f.bookmarks[userID], eventID)
	return nil
}

func (f *fakeEventRepo) RemoveBookmark(ctx context.Context, userID, eventID string) error {
	ids := f.bookmarks[userID][:0]
	for _, id := range f.bookmarks[userID] {
		if id != eventID {
			ids = append(ids, id)
		}
	}
	f.bookmarks[userID] = ids
	return nil
}

func (f *fakeEventRepo) IsBookmarked(ctx context.Context, userID, eventID string) (bool, error) {
	for _, id := range f.bookmarks[userID] {
		if id == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) ListBookmarkIDs(ctx context.Context, userID string) ([]string, error) {
	ids := f.bookmarks[userID]
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (f *fakeEventRepo) ListBookmarked(ctx context.Context, userID string) ([]*domain.Event, error) {
	events := []*domain.Event{}
	for _, id := range f.bookmarks[userID] {
		if e, ok := f.events[id]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func (f *fakeEventRepo) upcoming(now time.Time) []*domain.Event {
	events := []*domain.Event{}
	for _, e := range f.all() {
		if !e.Date.Before(now) {
			events = append(events, e)
		}
	}
	return events
}

func (f *fakeEventRepo) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	events := f.upcoming(now)
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func matchesToken(e *domain.Event, token string) bool {
	if strings.Contains(strings.ToLower(e.Title), token) ||
		strings.Contains(strings.ToLower(e.Description), token) ||
		strings.Contains(strings.ToLower(e.Category), token) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), token) {
			return true
		}
	}
	return false
}

func (f *fakeEventRepo) ListUpcomingMatching(ctx context.Context, tokens []string, now time.Time, limit int) ([]*domain.Event, error) {
	events := []*domain.Event{}
	for _, e := range f.upcoming(now) {
		for _, token := range tokens {
			if matchesToken(e, token) {
				events = append(events, e)
				break
			}
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeEventRepo) ListUpcomingPopular(ctx context.Context, excludeIDs []string, now time.Time, limit int) ([]*domain.Event, error) {
	excluded := map[string]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	events := []*domain.Event{}
	for _, e := range f.upcoming(now) {
		if !excluded[e.ID] {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if len(events[i].Likes) != len(events[j].Likes) {
			return len(events[i].Likes) > len(events[j].Likes)
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeEventRepo) LikedSignals(ctx context.Context, userID string) ([]domain.InterestSignal, error) {
	return f.liked[userID], nil
}

func (f *fakeEventRepo) CommentedSignals(ctx context.Context, userID string) ([]domain.InterestSignal, error) {
	return f.commented[userID], nil
}

func (f *fakeEventRepo) BookmarkedSignals(ctx context.Context, userID string) ([]domain.InterestSignal, error) {
	return f.bookSigs[userID], nil
}

// fakeCommentRepo implements domain.CommentRepository for tests.
type fakeCommentRepo struct {
	comments []*domain.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	f.nextID++
	c.ID = fmt.Sprintf("comment-%d", f.nextID)
	cp := *c
	f.comments = append(f.comments, &cp)
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCommentRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range f.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) ListByEventIDs(ctx context.Context, eventIDs []string) (map[string][]*domain.Comment, error) {
	grouped := map[string][]*domain.Comment{}
	for _, id := range eventIDs {
		list, _ := f.ListByEventID(ctx, id)
		if len(list) > 0 {
			grouped[id] = list
		}
	}
	return grouped, nil
}

func (f *fakeCommentRepo) ListByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	grouped := map[string][]*domain.Comment{}
	for _, id := range postIDs {
		list, _ := f.ListByPostID(ctx, id)
		if len(list) > 0 {
			grouped[id] = list
		}
	}
	return grouped, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	for i, c := range f.comments {
		if c.ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakePostRepo implements domain.PostRepository for tests.
type fakePostRepo struct {
	posts  map[string]*domain.Post
	likers map[string][]*domain.User
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*domain.Post{}, likers: map[string][]*domain.User{}}
}

func (f *fakePostRepo) add(p *domain.Post) *domain.Post {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	f.posts[p.ID] = p
	return p
}

func (f *fakePostRepo) Create(ctx context.Context, p *domain.Post) error {
	f.nextID++
	p.ID = fmt.Sprintf("post-%d", f.nextID)
	f.add(p)
	return nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	if p, ok := f.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Post, int, error) {
	posts := []*domain.Post{}
	for _, p := range f.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, len(posts), nil
}

func (f *fakePostRepo) ListByAuthorID(ctx context.Context, authorID string) ([]*domain.Post, error) {
	posts := []*domain.Post{}
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (f *fakePostRepo) Update(ctx context.Context, p *domain.Post) error {
	if _, ok := f.posts[p.ID]; !ok {
		return domain.ErrNotFound
	}
	f.posts[p.ID] = p
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) AddLike(ctx context.Context, postID, userID string) error {
	p := f.posts[postID]
	for _, id := range p.Likes {
		if id == userID {
			return nil
		}
	}
	p.Likes = append(p.Likes, userID)
	return nil
}

func (f *fakePostRepo) RemoveLike(ctx context.Context, postID, userID string) error {
	p := f.posts[postID]
	likes := p.Likes[:0]
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p.Likes = likes
	return nil
}

func (f *fakePostRepo) ListLikers(ctx context.Context, postID string) ([]*domain.User, error) {
	return f.likers[postID], nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	compareErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if f.compareErr != nil {
		return f.compareErr
	}
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, username string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeEmailService records sent verification emails.
type fakeEmailService struct {
	sent []*domain.VerificationEmailData
	err  error
}

func (f *fakeEmailService) SendVerificationEmail(ctx context.Context, data *domain.VerificationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakeImageProcessor passes data through with a marker prefix.
type fakeImageProcessor struct {
	err error
}

func (f *fakeImageProcessor) Normalize(data []byte, spec domain.ImageSpec) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("normalized:"), data...), nil
}

// fakeImageStore returns deterministic URLs.
type fakeImageStore struct {
	uploads int
	err     error
}

func (f *fakeImageStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads++
	return fmt.Sprintf("https://cdn.test/img-%d.jpg", f.uploads), nil
}
