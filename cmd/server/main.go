package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum_board/internal/api"
	"forum_board/internal/app/service"
	"forum_board/internal/common/security"
	"forum_board/internal/domain/repository"
	"forum_board/internal/platform/cache"
	"forum_board/internal/platform/config"
	"forum_board/internal/platform/database"
	"forum_board/internal/platform/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Configuration
	config.Load()
	logger.Init(config.AppConfig.LogLevel)
	log.Info().Msg("Configuration loaded")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()

	// 3. Token revocation store. With the in-memory backend, tokens
	// revoked before a restart become valid again; run the redis
	// backend when that matters or when running more than one instance.
	var revocationStore security.RevocationStore
	if config.AppConfig.RevocationBackend == "redis" {
		cache.ConnectRedis()
		defer cache.CloseRedis()
		revocationStore = security.NewRedisRevocationStore(cache.RDB)
	} else {
		revocationStore = security.NewMemoryRevocationStore()
	}

	tokenService := security.NewTokenService(
		config.AppConfig.JWTAlgorithm,
		config.AppConfig.JWTSecret,
		config.AppConfig.AccessTokenTTL,
		revocationStore,
	)

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	categoryRepo := repository.NewPgCategoryRepository(database.DB)
	permissionRepo := repository.NewPgPermissionRepository(database.DB)
	topicRepo := repository.NewPgTopicRepository(database.DB)
	replyRepo := repository.NewPgReplyRepository(database.DB)
	voteRepo := repository.NewPgVoteRepository(database.DB)
	messageRepo := repository.NewPgMessageRepository(database.DB)

	// 5. Initialize Services
	accessService := service.NewAccessService(categoryRepo, permissionRepo)
	authService := service.NewAuthService(userRepo, tokenService)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo, permissionRepo, topicRepo, replyRepo, userRepo, accessService, database.DB)
	topicService := service.NewTopicService(topicRepo, replyRepo, accessService)
	replyService := service.NewReplyService(replyRepo, topicRepo, accessService, database.DB)
	voteService := service.NewVoteService(voteRepo, replyRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(authService, userService, categoryService, topicService, replyService, voteService, messageService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", config.AppConfig.APIPort).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Could not start server")
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server stopped gracefully")
}
