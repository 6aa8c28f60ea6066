package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"xvent/internal/delivery/http/helpers"
	"xvent/internal/delivery/http/middleware"
	"xvent/internal/domain"
)

// PostCommentRequest is the request body for POST /post/{id}/comment.
// ParentID makes the comment a reply to a top-level comment of the post.
type PostCommentRequest struct {
	Text     string `json:"text"`
	ParentID string `json:"parent_id"`
}

// Validate implements Validator.
func (c PostCommentRequest) Validate() []string {
	if strings.TrimSpace(c.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

// PostListResponse is the paginated response body for GET /post/all
type PostListResponse struct {
	Posts []*domain.Post         `json:"posts"`
	Meta  helpers.PaginationMeta `json:"meta"`
}

// PostController handles post CRUD, likes, and comments.
type PostController struct {
	Logger         *slog.Logger
	Service        domain.PostService
	Comments       domain.CommentService
	MaxUploadBytes int64
}

// NewPostController creates a PostController with the given logger and services.
func NewPostController(logger *slog.Logger, svc domain.PostService, comments domain.CommentService, maxUploadBytes int64) *PostController {
	return &PostController{
		Logger:         logger,
		Service:        svc,
		Comments:       comments,
		MaxUploadBytes: maxUploadBytes,
	}
}

// Add godoc
// @Summary Create a post
// @Description Multipart form with a caption and a required image. The image is re-encoded to fit 800x800.
// @Tags post
// @Accept mpfd
// @Produce json
// @Param caption formData string true "Caption"
// @Param image formData file true "Post image"
// @Success 201 {object} helpers.APIResponse "data contains the created post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /post/add [post]
func (c *PostController) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	image, err := readFormImage(r, "image", c.MaxUploadBytes)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	post, err := c.Service.Create(r.Context(), userID, r.FormValue("caption"), image)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// Get godoc
// @Summary Get a post
// @Tags post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} helpers.APIResponse "data contains the post"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/{id} [get]
func (c *PostController) Get(w http.ResponseWriter, r *http.Request) {
	post, err := c.Service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// List godoc
// @Summary List posts
// @Tags post
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains posts and pagination meta"
// @Router /post/all [get]
func (c *PostController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	posts, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PostListResponse{
		Posts: posts,
		Meta:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListMine godoc
// @Summary List the caller's posts
// @Tags post
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains posts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /post/userpost/all [get]
func (c *PostController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	posts, err := c.Service.ListByAuthor(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, posts)
}

// Update godoc
// @Summary Update a post
// @Description Multipart form; author only. A new image file replaces the old one.
// @Tags post
// @Accept mpfd
// @Produce json
// @Param id path string true "Post ID"
// @Param caption formData string false "Caption"
// @Param image formData file false "Replacement image"
// @Success 200 {object} helpers.APIResponse "data contains the updated post"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/update/{id} [put]
func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	image, err := readFormImage(r, "image", c.MaxUploadBytes)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	post, err := c.Service.Update(r.Context(), r.PathValue("id"), userID, formValue(r, "caption"), image)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Description Author only. Likes and comments are removed with it.
// @Tags post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/delete/{id} [delete]
func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// Like godoc
// @Summary Like a post
// @Description Idempotent: liking twice leaves a single like.
// @Tags post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/{id}/like [put]
func (c *PostController) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Like(r.Context(), r.PathValue("id"), userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "post liked"})
}

// Dislike godoc
// @Summary Remove a like from a post
// @Tags post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/{id}/dislike [put]
func (c *PostController) Dislike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Dislike(r.Context(), r.PathValue("id"), userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "like removed"})
}

// Likes godoc
// @Summary Get who liked a post
// @Description Returns the like count, whether the caller liked it, and the liking users.
// @Tags post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} helpers.APIResponse "data contains the like summary"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/{id}/likes [get]
func (c *PostController) Likes(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	likes, err := c.Service.Likes(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, likes)
}

// AddComment godoc
// @Summary Comment on a post
// @Description With parent_id set the comment is a reply to a top-level comment; deeper nesting is rejected.
// @Tags post
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param body body PostCommentRequest true "Comment text and optional parent"
// @Success 201 {object} helpers.APIResponse "data contains the created comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (depth limit)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/{id}/comment [post]
func (c *PostController) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req PostCommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Comments.AddPostComment(r.Context(), r.PathValue("id"), userID, req.ParentID, req.Text)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary List a post's comment tree
// @Tags post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} helpers.APIResponse "data contains top-level comments with replies"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /post/{id}/comment/all [get]
func (c *PostController) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := c.Comments.ListPostComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}
