package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"xvent/internal/domain"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
	minPasswordLen = 8

	verificationTokenBytes = 32
	verificationExpiryMins = 60
)

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[a-z0-9._]+$`)
)

type userService struct {
	userRepo     domain.UserRepository
	postRepo     domain.PostRepository
	eventRepo    domain.EventRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	tokenExpiry  time.Duration
	emailService domain.EmailService
	images       domain.ImageProcessor
	imageStore   domain.ImageStore
	clientURL    string
	logger       *slog.Logger
}

// NewUserService creates a UserService with the given repositories and ports.
// emailService may be nil, in which case no verification emails are sent.
func NewUserService(
	userRepo domain.UserRepository,
	postRepo domain.PostRepository,
	eventRepo domain.EventRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	images domain.ImageProcessor,
	imageStore domain.ImageStore,
	clientURL string,
	logger *slog.Logger,
) domain.UserService {
	return &userService{
		userRepo:     userRepo,
		postRepo:     postRepo,
		eventRepo:    eventRepo,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		tokenExpiry:  tokenExpiry,
		emailService: emailService,
		images:       images,
		imageStore:   imageStore,
		clientURL:    clientURL,
		logger:       logger,
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < minUsernameLen || len(username) > maxUsernameLen || !usernameRegexp.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be %d-%d characters (lowercase letters, digits, dots, underscores)",
			domain.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(username, email, hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueVerification(ctx, user); err != nil {
		// The account exists either way; the user can request a resend.
		s.logger.WarnContext(ctx, "verification email not sent", "email", user.Email, "err", err)
	}
	return user, nil
}

// issueVerification stores a fresh verification token and emails it.
func (s *userService) issueVerification(ctx context.Context, user *domain.User) error {
	token, err := generateToken(verificationTokenBytes)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	expires := time.Now().Add(verificationExpiryMins * time.Minute)
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}
	if s.emailService == nil {
		return nil
	}
	data := &domain.VerificationEmailData{
		Email:            user.Email,
		Username:         user.Username,
		VerifyURL:        strings.TrimRight(s.clientURL, "/") + "/verify-email/" + token,
		ExpiresInMinutes: verificationExpiryMins,
	}
	if err := s.emailService.SendVerificationEmail(ctx, data); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain upper and lower case letters and a digit", domain.ErrInvalidInput)
	}
	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing verification token", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return user.Email, domain.ErrTokenExpired
		}
		return "", err
	}
	if err := s.userRepo.SetVerified(ctx, user.ID); err != nil {
		return "", fmt.Errorf("mark verified: %w", err)
	}
	return user.Email, nil
}

func (s *userService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return fmt.Errorf("%w: account already verified", domain.ErrInvalidInput)
	}
	return s.issueVerification(ctx, user)
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Username, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	profile, err := s.buildProfile(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, user)
}

func (s *userService) buildProfile(ctx context.Context, user *domain.User) (*domain.Profile, error) {
	if err := s.attachGraph(ctx, user); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByAuthorID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	events, err := s.eventRepo.ListByAuthorID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return &domain.Profile{User: user, Posts: posts, Events: events}, nil
}

// attachGraph fills the Followers and Following id lists on a user.
func (s *userService) attachGraph(ctx context.Context, user *domain.User) error {
	followers, err := s.userRepo.ListFollowerIDs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list followers: %w", err)
	}
	following, err := s.userRepo.ListFollowingIDs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list following: %w", err)
	}
	user.Followers = followers
	user.Following = following
	return nil
}

func (s *userService) EditProfile(ctx context.Context, userID string, bio, gender *string, avatar []byte) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bio != nil {
		user.Bio = strings.TrimSpace(*bio)
	}
	if gender != nil {
		user.Gender = strings.TrimSpace(*gender)
	}
	if len(avatar) > 0 {
		normalized, err := s.images.Normalize(avatar, domain.SquareImageSpec)
		if err != nil {
			return nil, err
		}
		url, err := s.imageStore.Upload(ctx, normalized, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		user.ProfilePicture = url
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	if err := s.attachGraph(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	return s.userRepo.List(ctx, params)
}

func (s *userService) ListSuggested(ctx context.Context, callerID string) ([]*domain.User, error) {
	return s.userRepo.ListSuggested(ctx, callerID)
}

func (s *userService) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, fmt.Errorf("%w: cannot follow yourself", domain.ErrInvalidInput)
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	following, err := s.userRepo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if following {
		if err := s.userRepo.Unfollow(ctx, actorID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.userRepo.Follow(ctx, actorID, targetID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListFollowingIDs(ctx, userID)
}
