package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"xvent/config"
	"xvent/internal/adapters/auth"
	"xvent/internal/adapters/email"
	"xvent/internal/adapters/images"
	"xvent/internal/adapters/storage"
	delivery "xvent/internal/delivery/http"
	"xvent/internal/delivery/http/controllers"
	"xvent/internal/delivery/http/middleware"
	"xvent/internal/repository/postgres"
	"xvent/internal/services"
)

// @title Xvent API
// @version 1.0
// @description Social events platform: accounts, events, posts, comments and a recommendation feed.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	logger.Info("database connected")

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db, cfg.RefreshAuthorSnapshot)
	postRepo := postgres.NewPostRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	hasher := auth.NewBcryptHasher(0)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	processor := images.NewProcessor()
	imageStore := storage.NewS3Store(storage.S3Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		KeyPrefix:       cfg.S3KeyPrefix,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})

	userService := services.NewUserService(
		userRepo, postRepo, eventRepo,
		hasher, tokenIssuer, cfg.TokenExpiry,
		emailService, processor, imageStore,
		cfg.ClientURL, logger,
	)
	eventService := services.NewEventService(eventRepo, userRepo, commentRepo, processor, imageStore)
	postService := services.NewPostService(postRepo, userRepo, processor, imageStore)
	commentService := services.NewCommentService(commentRepo, eventRepo, postRepo)
	feedService := services.NewFeedService(eventRepo, commentRepo)

	cookies := controllers.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.Environment == "production",
		TTL:    cfg.TokenExpiry,
	}
	userController := controllers.NewUserController(logger, userService, cookies, cfg.MaxUploadBytes)
	eventController := controllers.NewEventController(logger, eventService, commentService, cfg.MaxUploadBytes)
	postController := controllers.NewPostController(logger, postService, commentService, cfg.MaxUploadBytes)
	feedController := controllers.NewFeedController(logger, feedService)

	mux := delivery.NewRouter(logger, tokenVerifier, userController, eventController, postController, feedController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
