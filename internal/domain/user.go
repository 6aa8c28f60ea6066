package domain

import (
	"context"
	"time"
)

// User represents a registered user.
// swagger:model User
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Salt           string    `json:"-"`
	ProfilePicture string    `json:"profile_picture"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender"`
	Verified       bool      `json:"verified"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(username, email, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Profile is a user together with their owned content, as returned by the
// profile endpoints.
// swagger:model Profile
type Profile struct {
	*User
	Posts  []*Post  `json:"posts"`
	Events []*Event `json:"events"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, username string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage, including follow
// edges and email verification state.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	SetVerified(ctx context.Context, userID string) error
	SetVerificationToken(ctx context.Context, userID, token string, expires time.Time) error
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	ListSuggested(ctx context.Context, excludeUserID string) ([]*User, error)

	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// UserService defines the business logic for registration, authentication,
// email verification, profiles, and the social graph.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*User, error)
	VerifyEmail(ctx context.Context, token string) (email string, err error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (token string, profile *Profile, err error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	EditProfile(ctx context.Context, userID string, bio, gender *string, avatar []byte) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	ListSuggested(ctx context.Context, callerID string) ([]*User, error)
	ToggleFollow(ctx context.Context, actorID, targetID string) (following bool, err error)
	ListFollowing(ctx context.Context, userID string) ([]string, error)
}
