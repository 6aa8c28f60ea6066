package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"xvent/internal/delivery/http/helpers"
	"xvent/internal/delivery/http/middleware"
	"xvent/internal/domain"
)

// EventListResponse is the response body for GET /event/all: the event list
// plus the caller's bookmarked event IDs.
type EventListResponse struct {
	Events    []*domain.Event `json:"events"`
	Bookmarks []string        `json:"bookmarks"`
}

// BookmarkResponse is the response body for POST /event/{id}/bookmark
type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// CommentRequest is the request body for comment and reply endpoints.
type CommentRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (c CommentRequest) Validate() []string {
	if strings.TrimSpace(c.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

// EventController handles event CRUD, likes, bookmarks, and comments.
type EventController struct {
	Logger         *slog.Logger
	Service        domain.EventService
	Comments       domain.CommentService
	MaxUploadBytes int64
}

// NewEventController creates an EventController with the given logger and services.
func NewEventController(logger *slog.Logger, svc domain.EventService, comments domain.CommentService, maxUploadBytes int64) *EventController {
	return &EventController{
		Logger:         logger,
		Service:        svc,
		Comments:       comments,
		MaxUploadBytes: maxUploadBytes,
	}
}

// parseEventDate accepts RFC 3339 or a bare date.
func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: date must be RFC 3339 or YYYY-MM-DD", domain.ErrInvalidInput)
}

// parseTags splits a comma-separated tag list, dropping empties.
func parseTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Add godoc
// @Summary Create an event
// @Description Multipart form with event fields and a required banner image. Tags are comma-separated. The banner is re-encoded to a 1200x800 JPEG.
// @Tags event
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param date formData string true "Date (RFC 3339 or YYYY-MM-DD)"
// @Param time formData string false "Start time, free-form"
// @Param venue formData string false "Venue"
// @Param organizer formData string false "Organizer"
// @Param category formData string false "Category"
// @Param type formData string true "In-Person, Online, or Hybrid"
// @Param tags formData string false "Comma-separated tags"
// @Param registration_link formData string false "External registration URL"
// @Param image formData file true "Banner image"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /event/add [post]
func (c *EventController) Add(w http.ResponseWriter, r *http.Request) {
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

	event := &domain.Event{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		Time:             r.FormValue("time"),
		Venue:            r.FormValue("venue"),
		Organizer:        r.FormValue("organizer"),
		Category:         r.FormValue("category"),
		Type:             domain.EventType(r.FormValue("type")),
		Tags:             parseTags(r.FormValue("tags")),
		RegistrationLink: r.FormValue("registration_link"),
	}
	if dateStr := r.FormValue("date"); dateStr != "" {
		date, err := parseEventDate(dateStr)
		if err != nil {
			writeDomainError(c.Logger, w, r, err)
			return
		}
		event.Date = date
	}

	created, err := c.Service.Create(r.Context(), userID, event, image)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// Get godoc
// @Summary Get an event with its comment tree
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListAll godoc
// @Summary List all events
// @Description Returns every event, newest first, plus the caller's bookmarked event IDs.
// @Tags event
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains events and bookmarks"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /event/all [get]
func (c *EventController) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, bookmarks, err := c.Service.ListAll(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{Events: events, Bookmarks: bookmarks})
}

// ListPublic godoc
// @Summary List all events without authentication
// @Tags event
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains events"
// @Router /event/public [get]
func (c *EventController) ListPublic(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListPublic(r.Context())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListMine godoc
// @Summary List the caller's events
// @Tags event
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /event/userevent/all [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListByAuthor(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Update godoc
// @Summary Update an event
// @Description Multipart form; only provided fields change. Author only. A new image file replaces the banner.
// @Tags event
// @Accept mpfd
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/update [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
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

	update := domain.EventUpdate{
		Title:            formValue(r, "title"),
		Description:      formValue(r, "description"),
		Time:             formValue(r, "time"),
		Venue:            formValue(r, "venue"),
		Organizer:        formValue(r, "organizer"),
		Category:         formValue(r, "category"),
		RegistrationLink: formValue(r, "registration_link"),
	}
	if v := formValue(r, "type"); v != nil {
		eventType := domain.EventType(*v)
		update.Type = &eventType
	}
	if v := formValue(r, "tags"); v != nil {
		update.Tags = parseTags(*v)
	}
	if v := formValue(r, "date"); v != nil {
		date, err := parseEventDate(*v)
		if err != nil {
			writeDomainError(c.Logger, w, r, err)
			return
		}
		update.Date = &date
	}

	event, err := c.Service.Update(r.Context(), r.PathValue("id"), userID, update, image)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Author only. Likes, bookmarks, and comments are removed with it.
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/delete [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// Like godoc
// @Summary Like an event
// @Description Idempotent: liking twice leaves a single like.
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/like [post]
func (c *EventController) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Like(r.Context(), r.PathValue("id"), userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event liked"})
}

// Dislike godoc
// @Summary Remove a like from an event
// @Description Idempotent: removing an absent like is a no-op.
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/dislike [post]
func (c *EventController) Dislike(w http.ResponseWriter, r *http.Request) {
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

// ToggleBookmark godoc
// @Summary Bookmark or unbookmark an event
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the new bookmarked state"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/bookmark [post]
func (c *EventController) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bookmarked, err := c.Service.ToggleBookmark(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BookmarkResponse{Bookmarked: bookmarked})
}

// ListBookmarked godoc
// @Summary List the caller's bookmarked events
// @Tags event
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /user/bookmarks [get]
func (c *EventController) ListBookmarked(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListBookmarked(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// AddComment godoc
// @Summary Comment on an event
// @Tags event
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param body body CommentRequest true "Comment text"
// @Success 201 {object} helpers.APIResponse "data contains the created comment"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/comment [post]
func (c *EventController) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Comments.AddEventComment(r.Context(), r.PathValue("id"), userID, req.Text)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary List an event's comment tree
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains top-level comments with replies"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/comment/all [get]
func (c *EventController) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := c.Comments.ListEventComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}

// AddReply godoc
// @Summary Reply to an event comment
// @Description Replies attach to top-level comments only; deeper nesting is rejected.
// @Tags event
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param commentId path string true "Parent comment ID"
// @Param body body CommentRequest true "Reply text"
// @Success 201 {object} helpers.APIResponse "data contains the created reply"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (depth limit)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/comment/{commentId}/reply [post]
func (c *EventController) AddReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reply, err := c.Comments.AddEventReply(r.Context(), r.PathValue("id"), r.PathValue("commentId"), userID, req.Text)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reply)
}

// ListReplies godoc
// @Summary List the replies of an event comment
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains replies"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/comment/{commentId}/reply/all [get]
func (c *EventController) ListReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := c.Comments.ListReplies(r.Context(), r.PathValue("id"), r.PathValue("commentId"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, replies)
}

// DeleteReply godoc
// @Summary Delete a reply
// @Description Reply author only.
// @Tags event
// @Produce json
// @Param id path string true "Event ID"
// @Param commentId path string true "Parent comment ID"
// @Param replyId path string true "Reply ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /event/{id}/comment/{commentId}/reply/{replyId} [delete]
func (c *EventController) DeleteReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	err := c.Comments.DeleteReply(r.Context(), r.PathValue("id"), r.PathValue("commentId"), r.PathValue("replyId"), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "reply deleted"})
}
