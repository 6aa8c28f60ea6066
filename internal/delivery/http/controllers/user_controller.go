package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"xvent/internal/delivery/http/helpers"
	"xvent/internal/delivery/http/middleware"
	"xvent/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest is the request body for POST /user/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (r RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, "username is required")
	}
	email := strings.TrimSpace(strings.ToLower(r.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /user/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// ResendVerificationRequest is the request body for POST /user/resend-verification
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (r ResendVerificationRequest) Validate() []string {
	if strings.TrimSpace(r.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// RegisterResponse is the response body for POST /user/register
type RegisterResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

// FollowResponse is the response body for POST /user/{id}/follow
type FollowResponse struct {
	Following bool `json:"following"`
}

// UserListResponse is the paginated response body for GET /user/all
type UserListResponse struct {
	Users []*domain.User         `json:"users"`
	Meta  helpers.PaginationMeta `json:"meta"`
}

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

// UserController handles registration, auth, verification, profiles, and the
// follow graph.
type UserController struct {
	Logger         *slog.Logger
	Service        domain.UserService
	Cookies        CookieConfig
	MaxUploadBytes int64
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService, cookies CookieConfig, maxUploadBytes int64) *UserController {
	return &UserController{
		Logger:         logger,
		Service:        svc,
		Cookies:        cookies,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (c *UserController) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	sameSite := http.SameSiteLaxMode
	if c.Cookies.Secure {
		// Cross-site SPA origins need SameSite=None, which requires Secure.
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Cookies.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Cookies.Secure,
		SameSite: sameSite,
	})
}

// Register godoc
// @Summary Register a new user
// @Description Create an account with username, email, and password, and send a verification email. Username is lowercased; email must be unique.
// @Tags user
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} helpers.APIResponse "data contains the created user and a message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /user/register [post]
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RegisterResponse{
		User:    user,
		Message: "verification email sent",
	})
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Description Consume a verification token from the verification email and mark the account verified.
// @Tags user
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} helpers.APIResponse "data contains the verified email"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (token expired)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /user/verify-email/{token} [get]
func (c *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	email, err := c.Service.VerifyEmail(r.Context(), r.PathValue("token"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"email": email, "message": "email verified"})
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Tags user
// @Accept json
// @Produce json
// @Param body body ResendVerificationRequest true "Account email"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already verified)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /user/resend-verification [post]
func (c *UserController) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.ResendVerification(r.Context(), req.Email); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "verification email sent"})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Sets an HTTP-only session cookie and returns the caller's profile.
// @Tags user
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains the profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /user/login [post]
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, profile, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	c.setSessionCookie(w, token, c.Cookies.TTL)
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie.
// @Tags user
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /user/logout [get]
func (c *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	c.setSessionCookie(w, "", -time.Second)
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags user
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the profile with posts and events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /user/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile, err := c.Service.GetProfile(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// GetProfile godoc
// @Summary Get a user's profile
// @Tags user
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the profile with posts and events"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /user/{id}/profile [get]
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := c.Service.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// EditProfile godoc
// @Summary Edit the authenticated user's profile
// @Description Multipart form with optional bio, gender, and profilePicture file. The avatar is re-encoded to a bounded JPEG before upload.
// @Tags user
// @Accept mpfd
// @Produce json
// @Param bio formData string false "Bio"
// @Param gender formData string false "Gender"
// @Param profilePicture formData file false "Avatar image"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /user/profile/edit [post]
func (c *UserController) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	avatar, err := readFormImage(r, "profilePicture", c.MaxUploadBytes)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	user, err := c.Service.EditProfile(r.Context(), userID, formValue(r, "bio"), formValue(r, "gender"), avatar)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// List godoc
// @Summary List users
// @Tags user
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains users and pagination meta"
// @Router /user/all [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	users, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UserListResponse{
		Users: users,
		Meta:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Suggested godoc
// @Summary List suggested users to follow
// @Description Returns users other than the caller.
// @Tags user
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains users"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /user/suggested [get]
func (c *UserController) Suggested(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	users, err := c.Service.ListSuggested(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// ToggleFollow godoc
// @Summary Follow or unfollow a user
// @Description Toggles the follow edge from the caller to the target user.
// @Tags user
// @Produce json
// @Param id path string true "Target user ID"
// @Success 200 {object} helpers.APIResponse "data contains the new following state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (self follow)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /user/{id}/follow [post]
func (c *UserController) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	following, err := c.Service.ToggleFollow(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FollowResponse{Following: following})
}

// ListFollowing godoc
// @Summary List the IDs a user follows
// @Tags user
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains user IDs"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /user/{id}/following [get]
func (c *UserController) ListFollowing(w http.ResponseWriter, r *http.Request) {
	ids, err := c.Service.ListFollowing(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ids)
}
