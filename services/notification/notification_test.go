package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carebook/models"
	"carebook/services/tasks"

	"firebase.google.com/go/v4/messaging"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUsers map[string]*models.User

func (m mockUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

type mockSender struct {
	sent []*messaging.Message
}

func (m *mockSender) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	m.sent = append(m.sent, msg)
	return "projects/test/messages/1", nil
}

type mockEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestNotifyGeofence(t *testing.T) {
	sender := &mockSender{}
	users := mockUsers{
		"parent-1": {ID: "parent-1", Role: models.RoleParent, FCMToken: "tok"},
		"parent-2": {ID: "parent-2"},
	}
	svc, err := NewDefaultNotificationService(users, sender, zap.NewNop())
	require.NoError(t, err)

	alert := models.GeofenceAlert{ID: "a1", BookingID: "b1", Kind: "left_area", Message: "Caregiver is 800 m away"}
	require.NoError(t, svc.NotifyGeofence(context.Background(), "parent-1", alert))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "tok", msg.Token)
	assert.Equal(t, "Caregiver left the area", msg.Notification.Title)
	assert.Equal(t, "b1", msg.Data["bookingId"])
	assert.Equal(t, models.RoleParent, msg.Data["role"])

	err = svc.NotifyGeofence(context.Background(), "parent-2", alert)
	assert.ErrorIs(t, err, ErrNoPushTarget)
}

func TestNotify_DisabledSender(t *testing.T) {
	svc, err := NewDefaultNotificationService(mockUsers{"u": {ID: "u", FCMToken: "tok"}}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, svc.SendUserPushNotification(context.Background(), "u", "t", "b", nil))
}

func TestAlertQueue_Dedupe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	enq := &mockEnqueuer{}
	q := NewAlertQueue(enq, client, 5*time.Second, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, q.PublishAlert(ctx, models.GeofenceAlert{ID: "a1", BookingID: "b1"}, "parent-1"))
	require.NoError(t, q.PublishAlert(ctx, models.GeofenceAlert{ID: "a2", BookingID: "b1"}, "parent-1"))
	require.NoError(t, q.PublishAlert(ctx, models.GeofenceAlert{ID: "a3", BookingID: "b2"}, "parent-1"))
	assert.Len(t, enq.tasks, 2)

	mr.FastForward(6 * time.Second)
	require.NoError(t, q.PublishAlert(ctx, models.GeofenceAlert{ID: "a4", BookingID: "b1"}, "parent-1"))
	require.Len(t, enq.tasks, 3)
	assert.Equal(t, tasks.TypeGeofencePush, enq.tasks[2].Type())
}
