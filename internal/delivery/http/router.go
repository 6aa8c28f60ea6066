package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"xvent/internal/delivery/http/controllers"
	"xvent/internal/delivery/http/middleware"
	"xvent/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes under
// /api/v1. Routes that read or write on behalf of a user require the session
// cookie (or a Bearer token).
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	postController *controllers.PostController,
	feedController *controllers.FeedController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// User
	mux.HandleFunc("POST /api/v1/user/register", userController.Register)
	mux.HandleFunc("POST /api/v1/user/login", userController.Login)
	mux.HandleFunc("GET /api/v1/user/logout", userController.Logout)
	mux.HandleFunc("GET /api/v1/user/verify-email/{token}", userController.VerifyEmail)
	mux.HandleFunc("POST /api/v1/user/resend-verification", userController.ResendVerification)
	mux.HandleFunc("GET /api/v1/user/me", auth(userController.GetMe))
	mux.HandleFunc("GET /api/v1/user/all", auth(userController.List))
	mux.HandleFunc("GET /api/v1/user/suggested", auth(userController.Suggested))
	mux.HandleFunc("GET /api/v1/user/bookmarks", auth(eventController.ListBookmarked))
	mux.HandleFunc("POST /api/v1/user/bookmark/{id}", auth(eventController.ToggleBookmark))
	mux.HandleFunc("POST /api/v1/user/profile/edit", auth(userController.EditProfile))
	mux.HandleFunc("GET /api/v1/user/{id}/profile", userController.GetProfile)
	mux.HandleFunc("POST /api/v1/user/{id}/follow", auth(userController.ToggleFollow))
	mux.HandleFunc("GET /api/v1/user/{id}/following", auth(userController.ListFollowing))

	// Event
	mux.HandleFunc("POST /api/v1/event/add", auth(eventController.Add))
	mux.HandleFunc("GET /api/v1/event/all", auth(eventController.ListAll))
	mux.HandleFunc("GET /api/v1/event/public", eventController.ListPublic)
	mux.HandleFunc("GET /api/v1/event/userevent/all", auth(eventController.ListMine))
	mux.HandleFunc("GET /api/v1/event/recommended", auth(feedController.Recommended))
	mux.HandleFunc("GET /api/v1/event/{id}", eventController.Get)
	mux.HandleFunc("PUT /api/v1/event/{id}/update", auth(eventController.Update))
	mux.HandleFunc("DELETE /api/v1/event/{id}/delete", auth(eventController.Delete))
	mux.HandleFunc("POST /api/v1/event/{id}/like", auth(eventController.Like))
	mux.HandleFunc("POST /api/v1/event/{id}/dislike", auth(eventController.Dislike))
	mux.HandleFunc("POST /api/v1/event/{id}/bookmark", auth(eventController.ToggleBookmark))
	mux.HandleFunc("POST /api/v1/event/{id}/comment", auth(eventController.AddComment))
	mux.HandleFunc("GET /api/v1/event/{id}/comment/all", eventController.ListComments)
	mux.HandleFunc("POST /api/v1/event/{id}/comment/{commentId}/reply", auth(eventController.AddReply))
	mux.HandleFunc("GET /api/v1/event/{id}/comment/{commentId}/reply/all", eventController.ListReplies)
	mux.HandleFunc("DELETE /api/v1/event/{id}/comment/{commentId}/reply/{replyId}", auth(eventController.DeleteReply))

	// Post
	mux.HandleFunc("POST /api/v1/post/add", auth(postController.Add))
	mux.HandleFunc("GET /api/v1/post/all", auth(postController.List))
	mux.HandleFunc("GET /api/v1/post/userpost/all", auth(postController.ListMine))
	mux.HandleFunc("PUT /api/v1/post/update/{id}", auth(postController.Update))
	mux.HandleFunc("DELETE /api/v1/post/delete/{id}", auth(postController.Delete))
	mux.HandleFunc("GET /api/v1/post/{id}", postController.Get)
	mux.HandleFunc("PUT /api/v1/post/{id}/like", auth(postController.Like))
	mux.HandleFunc("PUT /api/v1/post/{id}/dislike", auth(postController.Dislike))
	mux.HandleFunc("GET /api/v1/post/{id}/likes", auth(postController.Likes))
	mux.HandleFunc("POST /api/v1/post/{id}/comment", auth(postController.AddComment))
	mux.HandleFunc("GET /api/v1/post/{id}/comment/all", postController.ListComments)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
