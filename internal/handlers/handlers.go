package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MatthewBerasa/PEISS-APIs/internal/config"
	"github.com/MatthewBerasa/PEISS-APIs/internal/middleware"
	"github.com/MatthewBerasa/PEISS-APIs/internal/repository"
	"github.com/MatthewBerasa/PEISS-APIs/internal/security"
	"github.com/MatthewBerasa/PEISS-APIs/internal/service"
	"github.com/MatthewBerasa/PEISS-APIs/internal/storage"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	issuer   *security.TokenIssuer
	sessions *service.SessionService
	devices  *service.DeviceService
	activity *service.ActivityService
	db       *pgxpool.Pool
	cache    *redis.Client
	store    *storage.ObjectStore
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	mailer service.Mailer,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	issuer := security.NewTokenIssuer(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.JWTAccessTTL,
		cfg.Security.JWTRefreshTTL,
	)

	sessions := service.NewSessionService(userRepo, deviceRepo, issuer, mailer, cache, cfg, log)
	devices := service.NewDeviceService(deviceRepo, cfg, log)
	activity := service.NewActivityService(deviceRepo, activityRepo, store, cfg, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		issuer:   issuer,
		sessions: sessions,
		devices:  devices,
		activity: activity,
		db:       db,
		cache:    cache,
		store:    store,
	}
}

func (h HandlerSet) Mount(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/verification", h.RequestVerification)
	router.POST("/refresh_token", h.RefreshToken)

	settings := router.Group("")
	settings.Use(middleware.Auth(h.issuer))
	settings.GET("/provideSettings", h.ProvideSettings)
	settings.POST("/updateSettings", h.UpdateSettings)

	router.GET("/getLogs", h.GetLogs)
	router.POST("/addActivityLog", h.AddActivityLog)

	router.GET("/connectSystem", h.ConnectSystem)
	router.GET("/disconnectSystem", h.DisconnectSystem)
	router.POST("/checkConnection", h.CheckConnection)

	router.GET("/getAlarmState", h.GetAlarmState)
	router.POST("/updateAlarmState", h.UpdateAlarmState)
}

// writeServiceError maps the service error taxonomy onto the wire contract.
// Anything unmapped is logged and collapsed to a generic 500; internal detail
// never reaches the caller.
func (h HandlerSet) writeServiceError(c *gin.Context, err error) {
	var partial *service.PartialApplyError

	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email or Password is Incorrect!"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "System not found"})
	case errors.Is(err, service.ErrAlreadyConnected):
		c.JSON(http.StatusConflict, gin.H{"error": "User is already connected to this System"})
	case errors.Is(err, service.ErrNotConnected):
		c.JSON(http.StatusNotFound, gin.H{"error": "User is not connected to this System"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many verification requests, try again later"})
	case errors.Is(err, service.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only jpeg and png images are accepted"})
	case errors.Is(err, security.ErrTokenExpired), errors.Is(err, security.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
	case errors.As(err, &partial):
		h.log.Error().Err(err).Msg("two-step update partially applied")
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Connection update partially applied: %s step failed", partial.Step)})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred."})
	}
}
