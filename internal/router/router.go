package router

import (
	"net/http"

	_ "github.com/cloudyhq/cloudy-server/docs"
	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/handlers"
	"github.com/cloudyhq/cloudy-server/internal/middlewares"
	"github.com/cloudyhq/cloudy-server/internal/pkg/cache"
	"github.com/cloudyhq/cloudy-server/internal/pkg/search"
	"github.com/cloudyhq/cloudy-server/internal/pkg/storage"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"github.com/cloudyhq/cloudy-server/internal/services/admin"
	"github.com/cloudyhq/cloudy-server/internal/services/files"
	"github.com/cloudyhq/cloudy-server/internal/services/folders"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// RouterConfig carries every dependency the HTTP layer needs.
type RouterConfig struct {
	db             *gorm.DB
	redisClient    *redis.Client
	storageService storage.StorageService
	indexer        search.FileIndexer
	cfg            *config.Config
}

func NewRouterConfig(
	db *gorm.DB,
	redisClient *redis.Client,
	storageService storage.StorageService,
	indexer search.FileIndexer,
	cfg *config.Config,
) *RouterConfig {
	return &RouterConfig{
		db:             db,
		redisClient:    redisClient,
		storageService: storageService,
		indexer:        indexer,
		cfg:            cfg,
	}
}

func InitRouter(rc *RouterConfig) *gin.Engine {
	if rc.cfg.Server.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Wiring: repositories -> services -> handlers.
	cacheService := cache.NewRedisCache(rc.redisClient)
	fileRepo := repositories.NewFileRepository(rc.db, cacheService)
	folderRepo := repositories.NewFolderRepository(rc.db)
	userRepo := repositories.NewUserRepository(rc.db)
	quotaRepo := repositories.NewQuotaPolicyRepository(rc.db)
	tm := repositories.NewTransactionManager(rc.db)

	authService := admin.NewAuthService(userRepo, &rc.cfg.JWT)
	userService := admin.NewUserService(userRepo)
	fileService := files.NewFileService(fileRepo, quotaRepo, rc.storageService, rc.indexer, rc.cfg)
	folderService := folders.NewFolderService(folderRepo, tm)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	fileHandler := handlers.NewFileHandler(fileService)
	folderHandler := handlers.NewFolderHandler(folderService)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		authenticated := v1.Group("/")
		authenticated.Use(middlewares.AuthMiddleware(rc.cfg))

		userGroup := authenticated.Group("/users")
		{
			userGroup.GET("/me", userHandler.GetMe)
		}

		fileGroup := authenticated.Group("/files")
		{
			fileGroup.POST("/intent", fileHandler.CreateUploadIntent)
			fileGroup.POST("/finalize", fileHandler.FinalizeUpload)

			fileGroup.GET("", fileHandler.ListFiles)
			fileGroup.GET("/trash", fileHandler.ListTrash)
			fileGroup.GET("/search", fileHandler.SearchFiles)
			fileGroup.GET("/storage-usage", fileHandler.GetStorageUsage)

			fileGroup.GET("/:id", fileHandler.GetFile)
			fileGroup.GET("/:id/download-url", fileHandler.GetDownloadURL)
			fileGroup.PATCH("/:id/rename", fileHandler.RenameFile)
			fileGroup.PUT("/:id/trash", fileHandler.MarkPendingDeletion)
			fileGroup.PUT("/:id/restore", fileHandler.RestorePendingDeletion)
			fileGroup.DELETE("/:id", fileHandler.DeleteFile)
		}

		folderGroup := authenticated.Group("/folders")
		{
			folderGroup.POST("", folderHandler.CreateFolder)
			folderGroup.GET("", folderHandler.ListFolders)
			folderGroup.GET("/:id", folderHandler.GetFolder)
			folderGroup.PATCH("/:id/rename", folderHandler.RenameFolder)
			folderGroup.DELETE("/:id", folderHandler.DeleteFolder)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.CodeNotFound, "Route not found")
	})

	return router
}
