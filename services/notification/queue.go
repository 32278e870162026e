package notification

import (
	"context"
	"fmt"
	"time"

	"carebook/models"
	"carebook/services/tasks"
	"carebook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DefaultDedupeWindow suppresses repeat pushes for one booking.
const DefaultDedupeWindow = 5 * time.Second

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AlertQueue hands geofence alerts to the worker, at most one per booking
// per window.
type AlertQueue struct {
	queue  Enqueuer
	redis  *redis.Client
	window time.Duration
	logger *zap.Logger
}

func NewAlertQueue(queue Enqueuer, redisClient *redis.Client, window time.Duration, logger *zap.Logger) *AlertQueue {
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &AlertQueue{queue: queue, redis: redisClient, window: window, logger: logger}
}

// PublishAlert enqueues a push unless one for the same booking was queued
// within the window.
func (q *AlertQueue) PublishAlert(ctx context.Context, alert models.GeofenceAlert, recipientID string) error {
	key := utils.AlertDedupePrefix + alert.BookingID
	fresh, err := q.redis.SetNX(ctx, key, alert.ID, q.window).Result()
	if err != nil {
		return fmt.Errorf("alert dedupe failed: %w", err)
	}
	if !fresh {
		q.logger.Debug("Geofence push suppressed", zap.String("bookingID", alert.BookingID))
		return nil
	}

	task, opts, err := tasks.NewGeofencePushTask(models.GeofencePushPayload{RecipientID: recipientID, Alert: alert})
	if err != nil {
		return fmt.Errorf("failed to build push task: %w", err)
	}
	if _, err := q.queue.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue push task: %w", err)
	}
	return nil
}
