package worker

import (
	"context"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/mq"
	"github.com/cloudyhq/cloudy-server/internal/pkg/storage"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"go.uber.org/zap"
)

// StartAllWorkers starts every background worker. The returned error covers
// consumer registration only; the reconcile scheduler keeps running until ctx
// is cancelled.
func StartAllWorkers(
	ctx context.Context,
	cfg *config.Config,
	mqClient *mq.RabbitMQClient,
	fileRepo repositories.FileRepository,
	storageService storage.StorageService,
) error {
	purgeWorker := NewPurgeWorker(mqClient, fileRepo, storageService)
	if err := purgeWorker.Start(); err != nil {
		logger.Error("Failed to start purge worker", zap.Error(err))
		return err
	}

	scheduler := NewReconcileScheduler(fileRepo, mqClient, cfg.Storage.SweepInterval)
	go scheduler.Run(ctx)

	logger.Info("All background workers started")
	return nil
}
