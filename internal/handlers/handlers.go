package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gardenbook/api/internal/cache"
	"gardenbook/api/internal/config"
	"gardenbook/api/internal/middleware"
	"gardenbook/api/internal/models"
	"gardenbook/api/internal/repository"
	"gardenbook/api/internal/service"
	"gardenbook/api/internal/storage"
)

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	auth      *service.AuthService
	photos    *service.PhotoService
	users     service.UserStore
	plants    service.PlantStore
	userCache *cache.UserCache
	db        *pgxpool.Pool
	rdb       *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	userCache := cache.NewUserCache(rdb, cfg.Cache.UserTTL)

	auth := service.NewAuthService(userRepo, tokenRepo, userCache, service.NewLogResetSender(log), cfg, log)
	photos := service.NewPhotoService(plantRepo, store, cfg, log)

	return HandlerSet{
		log:       log,
		cfg:       cfg,
		auth:      auth,
		photos:    photos,
		users:     userRepo,
		plants:    plantRepo,
		userCache: userCache,
		db:        db,
		rdb:       rdb,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/reset-password", h.RequestPasswordReset)
		auth.POST("/set-new-password", h.SetNewPassword)
		auth.GET("/session", middleware.OptionalAuth(h.cfg, h.users, h.userCache), h.Session)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg, h.users, h.userCache))
		protected.GET("/me", h.Me)
	}

	users := v1.Group("/users/:userId")
	users.Use(
		middleware.Auth(h.cfg, h.users, h.userCache),
		middleware.RequireOwner("userId"),
	)
	users.PUT("", h.UpdateProfile)
	users.GET("/plants", h.ListPlants)
	users.POST("/plants", h.CreatePlant)
	users.GET("/plants/:plantId", h.GetPlant)
	users.PUT("/plants/:plantId", h.UpdatePlant)
	users.DELETE("/plants/:plantId", h.DeletePlant)
	users.POST("/plants/:plantId/photo", h.UploadPlantPhoto)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg, h.users, h.userCache),
		middleware.RequireRoles(models.UserRoleAdmin),
	)
	admin.GET("/users", h.AdminListUsers)
}
