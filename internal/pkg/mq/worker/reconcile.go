package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/mq"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"go.uber.org/zap"
)

const sweepBatchSize = 200

// ReconcileScheduler periodically scans for reservations whose deadline
// passed without a finalize and publishes one purge task per row. The purge
// worker does the actual cleanup, so a crashed sweep is retried on the next
// tick without losing work.
type ReconcileScheduler struct {
	fileRepo  repositories.FileRepository
	publisher mq.Publisher
	interval  time.Duration

	now func() time.Time
}

func NewReconcileScheduler(fileRepo repositories.FileRepository, publisher mq.Publisher, interval time.Duration) *ReconcileScheduler {
	return &ReconcileScheduler{
		fileRepo:  fileRepo,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (s *ReconcileScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("Reconcile scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Reconcile scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReconcileScheduler) sweep(ctx context.Context) {
	expired, err := s.fileRepo.FindExpiredReservations(ctx, s.now().UTC(), sweepBatchSize)
	if err != nil {
		logger.Error("Reservation sweep query failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	published := 0
	for i := range expired {
		task := models.PurgeFileTask{
			FileID:    expired[i].ID,
			Bucket:    expired[i].Bucket,
			ObjectKey: expired[i].ObjectKey,
		}
		body, err := json.Marshal(task)
		if err != nil {
			logger.Error("Failed to marshal purge task", zap.Uint64("fileID", task.FileID), zap.Error(err))
			continue
		}
		if err := s.publisher.Publish(PurgeQueueName, body); err != nil {
			logger.Error("Failed to publish purge task", zap.Uint64("fileID", task.FileID), zap.Error(err))
			continue
		}
		published++
	}

	logger.Info("Reservation sweep finished",
		zap.Int("expired", len(expired)),
		zap.Int("published", published))
}
