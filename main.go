package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"editorial-cms/cache"
	"editorial-cms/config"
	"editorial-cms/events"
	"editorial-cms/handlers"
	"editorial-cms/helper"
	"editorial-cms/logger"
	"editorial-cms/repositories"
	"editorial-cms/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	db, err := config.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if cfg.Database.Migrate {
		if err := config.RunMigrations(db, cfg.Database.MigrationsPath, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	viewCache := newCache(cfg.Cache, log)
	publisher := newPublisher(cfg.AMQP, log)
	defer publisher.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	articleVersionRepo := repositories.NewArticleVersionRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT)
	articleService := services.NewArticleService(articleRepo, articleVersionRepo, tagRepo, categoryRepo, publisher, log)
	readService := services.NewReadService(articleService, viewCache, cfg.Cache.TTL, log)
	draftService := services.NewDraftSessionService(articleService, cfg.Session.IdleTTL, cfg.Session.CleanupInterval, log)
	tagService := services.NewTagService(tagRepo)
	categoryService := services.NewCategoryService(categoryRepo)

	// Initialize handlers
	var limiter *rate.Limiter
	if cfg.Server.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}

	h := helper.NewHTTPHelper()
	router := handlers.NewRouter(handlers.Router{
		Auth:     handlers.NewAuthHandler(authService, h),
		Article:  handlers.NewArticleHandler(articleService, readService, h),
		Draft:    handlers.NewDraftHandler(draftService, h),
		Document: handlers.NewDocumentHandler(readService, h),
		Tag:      handlers.NewTagHandler(tagService, h),
		Category: handlers.NewCategoryHandler(categoryService, h),
		Limiter:  limiter,
	}, h, cfg.JWT.Secret, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func newCache(cfg config.CacheConfig, log zerolog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.TTL, 2*cfg.TTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, using in-process cache")
		return cache.NewMemory(cfg.TTL, 2*cfg.TTL)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis cache")
	return cache.NewRedis(client, "editorial-cms")
}

func newPublisher(cfg config.AMQPConfig, log zerolog.Logger) events.Publisher {
	if cfg.URL == "" {
		return events.Nop{}
	}

	p, err := events.NewRabbitMQ(events.Config{
		URL:        cfg.URL,
		Exchange:   cfg.Exchange,
		RoutingKey: cfg.RoutingKey,
		QueueName:  cfg.QueueName,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, article events disabled")
		return events.Nop{}
	}
	return p
}
