package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"go.uber.org/zap"
)

// @title Cloudy Server API
// @version 1.0
// @description Personal cloud storage service with presigned-URL uploads.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		log.Fatalf("Failed to create logs directory: %v", err)
	}
	logger.InitLogger(cfg.Log.OutputPath, cfg.Log.ErrorPath, cfg.Log.Level)
	defer logger.Sync()

	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to build server", zap.Error(err))
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	srv.Run(stopChan)
}
