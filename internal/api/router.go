package api

import (
	"net/http"
	"time"

	"forum_board/internal/api/handler"
	"forum_board/internal/api/middleware"
	"forum_board/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	categoryService *service.CategoryService,
	topicService *service.TopicService,
	replyService *service.ReplyService,
	voteService *service.VoteService,
	messageService *service.MessageService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	requireAuth := middleware.Authenticator(authService)
	optionalAuth := middleware.OptionalAuthenticator(authService)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterPublicRoutes(auth)
			auth.Group(func(protected chi.Router) {
				protected.Use(requireAuth)
				authHandler.RegisterProtectedRoutes(protected)
			})
		})

		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", func(users chi.Router) {
			users.Use(requireAuth)
			userHandler.RegisterRoutes(users)
		})

		categoryHandler := handler.NewCategoryHandler(categoryService)
		v1.Route("/categories", func(categories chi.Router) {
			categories.Group(func(read chi.Router) {
				read.Use(optionalAuth)
				categoryHandler.RegisterReadRoutes(read)
			})
			categories.Group(func(admin chi.Router) {
				admin.Use(requireAuth, middleware.AdminOnly)
				categoryHandler.RegisterAdminRoutes(admin)
			})
		})

		topicHandler := handler.NewTopicHandler(topicService)
		v1.Route("/topics", func(topics chi.Router) {
			topics.Group(func(read chi.Router) {
				read.Use(optionalAuth)
				topicHandler.RegisterReadRoutes(read)
			})
			topics.Group(func(protected chi.Router) {
				protected.Use(requireAuth)
				topicHandler.RegisterProtectedRoutes(protected)
			})
		})

		replyHandler := handler.NewReplyHandler(replyService, voteService)
		v1.Route("/replies", func(replies chi.Router) {
			replies.Use(requireAuth)
			replyHandler.RegisterRoutes(replies)
		})

		messageHandler := handler.NewMessageHandler(messageService)
		v1.Route("/messages", func(messages chi.Router) {
			messages.Use(requireAuth)
			messageHandler.RegisterRoutes(messages)
		})
	})

	return r
}
