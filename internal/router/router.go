package router

import (
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/mehrab10/loopgram/backend/internal/handlers"
	"github.com/mehrab10/loopgram/backend/internal/middleware"
	"github.com/mehrab10/loopgram/backend/internal/models"
	"github.com/mehrab10/loopgram/backend/internal/repositories"
	"github.com/mehrab10/loopgram/backend/internal/storage"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
	"github.com/mehrab10/loopgram/backend/validators"
)

// Deps carries everything the HTTP layer needs wired in.
type Deps struct {
	DB           *gorm.DB
	Store        storage.Adapter
	FirebaseAuth *auth.Client
	JWTSecret    string
	Log          *logger.Logger
}

// New builds the Echo instance with all routes registered. The returned
// clip repository is shared with the background sweeper.
func New(deps Deps) (*echo.Echo, repositories.ClipRepository, error) {
	if err := deps.DB.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Clip{},
		&models.Notification{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		return nil, nil, err
	}

	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)
	clipRepo := repositories.NewPostgresClipRepository(deps.DB, deps.Store, deps.Log)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)
	chatRepo := repositories.NewPostgresChatRepository(deps.DB)

	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, deps.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo, deps.Store, deps.Log)
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationRepo, deps.Log)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo, commentRepo, deps.Store, deps.Log)
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, userRepo, notificationRepo, deps.Log)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, notificationRepo, deps.Log)
	clipHandler := handlers.NewClipHandler(clipRepo, deps.Store, deps.Log)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	chatHandler := handlers.NewChatHandler(chatRepo, userRepo, notificationRepo, deps.Log)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = errorHandler(deps.Log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())

	healthHandler.RegisterHealthRoutes(e)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	// Maintenance endpoint stays outside the JWT group: the scheduler and
	// operators call it without a user token.
	clipHandler.RegisterCleanupRoute(api)

	protected := api.Group("", middleware.JWTAuthMiddleware(deps.JWTSecret))
	authHandler.RegisterMeRoute(protected)
	userHandler.RegisterUserRoutes(protected)
	followHandler.RegisterFollowRoutes(protected)
	postHandler.RegisterPostRoutes(protected)
	likeHandler.RegisterLikeRoutes(protected)
	commentHandler.RegisterCommentRoutes(protected)
	clipHandler.RegisterClipRoutes(protected)
	notificationHandler.RegisterNotificationRoutes(protected)
	chatHandler.RegisterChatRoutes(protected)

	return e, clipRepo, nil
}

// errorHandler renders every error as {"error": reason} with the mapped
// status, logging server-side failures.
func errorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		reason := http.StatusText(code)
		if httpErr, ok := err.(*echo.HTTPError); ok {
			code = httpErr.Code
			reason = fmt.Sprintf("%v", httpErr.Message)
		}

		if code >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Request().URL.Path).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, echo.Map{"error": reason})
	}
}
