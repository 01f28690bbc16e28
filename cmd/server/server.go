package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/cache"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/mq"
	"github.com/cloudyhq/cloudy-server/internal/pkg/mq/worker"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"github.com/cloudyhq/cloudy-server/internal/router"
	"github.com/cloudyhq/cloudy-server/internal/setup"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine         *gin.Engine
	httpServer     *http.Server
	db             *gorm.DB
	redisClient    *redis.Client
	rabbitMQClient *mq.RabbitMQClient

	cancelWorkers context.CancelFunc
}

// NewServer wires every dependency: stores, blob backend, search index,
// message queue, background workers and the HTTP router.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := setup.InitMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("initialize MySQL: %w", err)
	}

	redisClient, err := setup.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("initialize Redis: %w", err)
	}

	storageService, err := setup.InitStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	indexer := setup.InitFileIndexer(&cfg.Elasticsearch)

	rabbitMQClient, err := mq.NewRabbitMQClient(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("initialize RabbitMQ: %w", err)
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	fileRepo := repositories.NewFileRepository(db, cache.NewRedisCache(redisClient))
	if err := worker.StartAllWorkers(workerCtx, cfg, rabbitMQClient, fileRepo, storageService); err != nil {
		cancelWorkers()
		return nil, fmt.Errorf("start workers: %w", err)
	}

	engine := router.InitRouter(router.NewRouterConfig(db, redisClient, storageService, indexer, cfg))

	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	return &Server{
		engine:         engine,
		httpServer:     httpServer,
		db:             db,
		redisClient:    redisClient,
		rabbitMQClient: rabbitMQClient,
		cancelWorkers:  cancelWorkers,
	}, nil
}

// Run serves HTTP until a stop signal arrives, then shuts down gracefully.
func (s *Server) Run(stopChan chan os.Signal) {
	defer s.rabbitMQClient.Close()
	defer s.redisClient.Close()
	defer s.cancelWorkers()

	go func() {
		logger.Info("Server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-stopChan
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}
