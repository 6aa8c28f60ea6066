package controllers

import (
	"log/slog"
	"net/http"

	"xvent/internal/delivery/http/helpers"
	"xvent/internal/delivery/http/middleware"
	"xvent/internal/domain"
)

// FeedController serves the personalized event feed.
type FeedController struct {
	Logger  *slog.Logger
	Service domain.FeedService
}

// NewFeedController creates a FeedController with the given logger and service.
func NewFeedController(logger *slog.Logger, svc domain.FeedService) *FeedController {
	return &FeedController{Logger: logger, Service: svc}
}

// Recommended godoc
// @Summary Get the caller's recommended events
// @Description Ranks upcoming events against the caller's interaction history (likes, comments, bookmarks). With thin history the feed falls back to recent upcoming events, and short personalized feeds are topped up with popular ones.
// @Tags event
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains events, interests, and bookmarks"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /event/recommended [get]
func (c *FeedController) Recommended(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	feed, err := c.Service.RecommendedEvents(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, feed)
}
