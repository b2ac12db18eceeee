package router

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/iblue/backend/internal/handlers"
	"github.com/anonto42/iblue/backend/internal/middleware"
	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/anonto42/iblue/backend/internal/validators"
	"github.com/anonto42/iblue/backend/pkg/config"
	"github.com/anonto42/iblue/backend/pkg/firebase"
	"github.com/anonto42/iblue/backend/pkg/llm"
	"github.com/anonto42/iblue/backend/pkg/mailer"
	iredis "github.com/anonto42/iblue/backend/pkg/redis"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external clients the routes are built on.
type Deps struct {
	Config    *config.Config
	Postgres  *gorm.DB
	Mongo     *mongo.Client
	Auth      *auth.Client
	Messaging *messaging.Client
	Mailer    *mailer.SMTPMailer
	LLM       *llm.Client
	Deduper   *iredis.Deduper
	Logger    *zap.Logger
}

// Workers are the background loops main starts next to the HTTP server.
// Dispatcher is nil unless outbox delivery is configured and AutoPoster is
// nil unless auto-posting is enabled.
type Workers struct {
	Dispatcher *services.EmailDispatcher
	AutoPoster *services.AutoPoster
	// Detached are the fan-outs requests hand off after responding. Wait on
	// them once the HTTP server has stopped accepting requests.
	Detached []interface{ Wait() }
}

// SetupRoutes migrates the schema, wires repositories and services, and
// registers every route.
func SetupRoutes(ctx context.Context, e *echo.Echo, d Deps) (*Workers, error) {
	cfg, logger := d.Config, d.Logger

	err := d.Postgres.AutoMigrate(
		&models.Profile{},
		&models.Comment{},
		&models.Like{},
		&models.PostReaction{},
		&models.SavedPost{},
		&models.Notification{},
		&models.NotificationLog{},
		&models.UserSession{},
		&models.PushToken{},
		&models.EmailJob{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("PostgreSQL auto-migrations completed")

	e.Validator = validators.NewValidator()

	// --- Repositories ---
	profileRepo := repositories.NewPostgresProfileRepository(d.Postgres)
	postRepo := repositories.NewMongoPostRepository(d.Mongo.Database(cfg.MongoDatabase))
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure post indexes: %w", err)
	}
	commentRepo := repositories.NewPostgresCommentRepository(d.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(d.Postgres)
	reactionRepo := repositories.NewPostgresReactionRepository(d.Postgres)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(d.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(d.Postgres)
	logRepo := repositories.NewPostgresNotificationLogRepository(d.Postgres)
	sessionRepo := repositories.NewPostgresSessionRepository(d.Postgres)
	pushTokenRepo := repositories.NewPostgresPushTokenRepository(d.Postgres)
	emailJobRepo := repositories.NewPostgresEmailJobRepository(d.Postgres)

	// --- Services ---
	emails := firebase.NewEmailResolver(d.Auth)
	presence := services.NewPresenceService(sessionRepo, cfg.PresenceWindow)
	notifications := services.NewNotificationService(notificationRepo, pushTokenRepo, d.Messaging, cfg.AppBaseURL, logger.Named("notifications"))
	emailNotifier := services.NewEmailNotifier(profileRepo, logRepo, presence, emails, d.Mailer, d.Deduper, logger.Named("email"))

	workers := &Workers{}
	var deliverer services.Deliverer
	switch cfg.EmailDelivery {
	case "outbox":
		deliverer = services.NewOutboxDeliverer(emailJobRepo)
		workers.Dispatcher = services.NewEmailDispatcher(emailJobRepo, emailNotifier, logger.Named("outbox")).
			WithInterval(cfg.Outbox.Interval).
			WithMaxRetries(cfg.Outbox.MaxRetries).
			WithBatchSize(cfg.Outbox.BatchSize)
	case "direct", "":
		deliverer = services.NewDirectDeliverer(emailNotifier)
	default:
		return nil, fmt.Errorf("unknown EMAIL_DELIVERY %q", cfg.EmailDelivery)
	}

	languageNotifier := services.NewLanguageNotifier(postRepo, profileRepo, logRepo, presence, emails, notifications, deliverer, cfg.AppBaseURL, logger.Named("language"))
	commentNotifier := services.NewCommentNotifier(postRepo, commentRepo, profileRepo, notifications, emailNotifier, cfg.AppBaseURL, logger.Named("comments"))
	workers.Detached = append(workers.Detached, languageNotifier, commentNotifier)
	generator := services.NewGenerator(d.LLM, postRepo, profileRepo, commentRepo, languageNotifier, commentNotifier, logger.Named("generator"))

	if cfg.AutoPost.Enabled {
		workers.AutoPoster = services.NewAutoPoster(generator, cfg.AutoPost.MinInterval, cfg.AutoPost.MaxInterval, cfg.AutoPost.CheckInterval, logger.Named("autopost"))
	}

	// --- Public routes ---
	e.Pre(middleware.CanonicalURL(cfg.URLCacheSize, cfg.URLCacheTTL))

	health := handlers.NewHealthHandler(map[string]handlers.Check{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := d.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"mongo": func(ctx context.Context) error { return d.Mongo.Ping(ctx, nil) },
	})
	e.GET("/health", health.HealthCheck)
	e.GET("/offline", handlers.Offline)

	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(profileRepo, d.Auth).RegisterAuthRoutes(authGroup)

	// --- User routes (Firebase ID token) ---
	api := e.Group("/api/v1", middleware.FirebaseAuthMiddleware(d.Auth))

	handlers.NewProfileHandler(profileRepo).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postRepo, profileRepo, languageNotifier).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postRepo, profileRepo, likeRepo, savedPostRepo).RegisterFeedRoutes(api)
	handlers.NewCommentHandler(commentRepo, postRepo, commentNotifier, logger).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(likeRepo, postRepo, profileRepo, notifications, logger).RegisterLikeRoutes(api)
	handlers.NewReactionHandler(reactionRepo, postRepo, profileRepo, notifications, logger).RegisterReactionRoutes(api)
	handlers.NewSavedPostHandler(savedPostRepo, postRepo, profileRepo, notifications, logger).RegisterSavedPostRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, profileRepo).RegisterNotificationRoutes(api)
	handlers.NewPresenceHandler(presence, pushTokenRepo).RegisterPresenceRoutes(api)

	// --- Function routes (service role JWT) ---
	fn := e.Group("/functions/v1", middleware.ServiceRoleMiddleware(cfg.ServiceRoleSecret))
	handlers.NewFunctionsHandler(generator, emailNotifier, commentNotifier, languageNotifier, logger.Named("functions")).RegisterFunctionRoutes(fn)

	logger.Info("All routes configured",
		zap.String("email_delivery", cfg.EmailDelivery),
		zap.Bool("autopost", cfg.AutoPost.Enabled))
	return workers, nil
}
