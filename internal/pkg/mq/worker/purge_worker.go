package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/mq"
	"github.com/cloudyhq/cloudy-server/internal/pkg/storage"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PurgeQueueName carries PurgeFileTask messages for expired reservations.
const PurgeQueueName = "file_purge_queue"

// PurgeWorker consumes purge tasks: it tombstones the expired reservation so
// the reserved size stops counting against the owner's quota, then removes
// any bytes the client may have uploaded against it. Rows finalized between
// the scan and the consume are left untouched.
type PurgeWorker struct {
	mqClient       *mq.RabbitMQClient
	fileRepo       repositories.FileRepository
	storageService storage.StorageService
}

func NewPurgeWorker(
	mqClient *mq.RabbitMQClient,
	fileRepo repositories.FileRepository,
	storageService storage.StorageService,
) *PurgeWorker {
	return &PurgeWorker{
		mqClient:       mqClient,
		fileRepo:       fileRepo,
		storageService: storageService,
	}
}

func (w *PurgeWorker) Start() error {
	if _, err := w.mqClient.DeclareQueue(PurgeQueueName); err != nil {
		return err
	}
	if err := w.mqClient.Consume(PurgeQueueName, w.handlePurgeTask); err != nil {
		return err
	}
	logger.Info("Purge worker started", zap.String("queue", PurgeQueueName))
	return nil
}

func (w *PurgeWorker) handlePurgeTask(msg amqp.Delivery) {
	var task models.PurgeFileTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		logger.Error("Failed to unmarshal purge task", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	ctx := context.Background()

	file, err := w.fileRepo.FindByID(ctx, task.FileID)
	if err != nil {
		if errors.Is(err, xerr.ErrFileNotFound) {
			// Row physically gone; nothing left to purge.
			_ = msg.Ack(false)
			return
		}
		logger.Error("Failed to load file row for purge task",
			zap.Uint64("fileID", task.FileID), zap.Error(err))
		_ = msg.Nack(false, true)
		return
	}

	switch file.Status {
	case models.FileStatusReserved:
		// Tombstone before touching the blob: once the row is Deleted a late
		// finalize cannot find it, so the bytes below are provably orphaned.
		if err := file.Expire(); err != nil {
			_ = msg.Nack(false, true)
			return
		}
		if err := w.fileRepo.Update(ctx, file); err != nil {
			logger.Error("Failed to expire reservation row",
				zap.Uint64("fileID", task.FileID), zap.Error(err))
			_ = msg.Nack(false, true)
			return
		}
	case models.FileStatusDeleted:
		// Redelivery of a task whose tombstone committed but whose blob
		// removal failed; finish the removal.
	default:
		// Finalized since the task was published; the bytes are live.
		_ = msg.Ack(false)
		return
	}

	// The client may or may not have PUT the bytes before the reservation
	// expired; removal of a missing object is a no-op on both backends.
	if err := w.storageService.RemoveObject(ctx, task.Bucket, task.ObjectKey); err != nil {
		logger.Error("Failed to remove expired reservation blob",
			zap.Uint64("fileID", task.FileID),
			zap.String("objectKey", task.ObjectKey),
			zap.Error(err))
		_ = msg.Nack(false, true)
		return
	}

	logger.Info("Expired reservation purged",
		zap.Uint64("fileID", task.FileID),
		zap.String("objectKey", task.ObjectKey))
	_ = msg.Ack(false)
}
