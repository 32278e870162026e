package cron

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"carebook/config"
	"carebook/models"
	"carebook/services/notification"
	"carebook/services/tasks"
	"carebook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// MaterializeSpec runs the recurring expansion shortly after midnight.
const MaterializeSpec = "5 0 * * *"

// Worker owns the task server and the periodic scheduler.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewClient returns the producer side of the task queue.
func NewClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// NewMux registers every task handler.
func NewMux(notifSvc notification.NotificationService, mat *Materializer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeGeofencePush, handleGeofencePush(notifSvc))
	mux.HandleFunc(tasks.TypeRecurringMaterialize, handleMaterialize(mat))
	return mux
}

// InitWorker runs the async worker and the materialize schedule in background.
func InitWorker(ctx context.Context, notifSvc notification.NotificationService, mat *Materializer) *Worker {
	logger := utils.GetLogger()
	opts := redisOpts()

	w := &Worker{
		server: asynq.NewServer(opts, asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		}),
		scheduler: asynq.NewScheduler(opts, &asynq.SchedulerOpts{Location: mat.Location}),
		logger:    logger,
	}

	task, taskOpts, err := tasks.NewMaterializeTask("")
	if err != nil {
		logger.Fatal("failed to build materialize task", zap.Error(err))
	}
	if _, err := w.scheduler.Register(MaterializeSpec, task, taskOpts...); err != nil {
		logger.Fatal("failed to register materialize schedule", zap.Error(err))
	}

	mux := NewMux(notifSvc, mat)

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("Starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Start(mux)
			if err == nil {
				break
			}
			logger.Error("Failed to start worker",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Fatal("Max retry attempts reached")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()

	if err := w.scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", zap.Error(err))
	}

	return w
}

// Shutdown drains in-flight tasks and stops the scheduler.
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("Async worker stopped")
}

func handleGeofencePush(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.GeofencePushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid geofence payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}

		err := notifSvc.NotifyGeofence(ctx, p.RecipientID, p.Alert)
		if errors.Is(err, notification.ErrNoPushTarget) {
			logger.Debug("Recipient has no push target", zap.String("recipientID", p.RecipientID))
			return nil
		}
		if err != nil {
			logger.Error("Failed to push geofence alert",
				zap.String("bookingID", p.Alert.BookingID),
				zap.String("recipientID", p.RecipientID),
				zap.Error(err),
			)
		}
		return err
	}
}

func handleMaterialize(mat *Materializer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.MaterializePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			mat.Logger.Error("Invalid materialize payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}
		date := p.Date
		if date == "" {
			date = mat.Today()
		}
		_, err := mat.Run(ctx, date)
		return err
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
