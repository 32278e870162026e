package tasks

import (
	"carebook/models"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeGeofencePush         = "geofence:push"
	TypeRecurringMaterialize = "recurring:materialize"
)

func NewGeofencePushTask(payload models.GeofencePushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeGeofencePush, b)
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

// NewMaterializeTask is unique per date so overlapping schedules enqueue it once.
func NewMaterializeTask(date string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.MaterializePayload{Date: date})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRecurringMaterialize, b)
	opts := []asynq.Option{asynq.Unique(time.Hour), asynq.MaxRetry(5)}

	return task, opts, nil
}
