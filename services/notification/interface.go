package notification

import (
	"context"
	"errors"
	"fmt"

	"carebook/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoPushTarget is returned when the user has no registered device.
var ErrNoPushTarget = errors.New("user has no FCM token")

// NotificationService sends FCM pushes.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	NotifyGeofence(ctx context.Context, recipientID string, alert models.GeofenceAlert) error
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// UserLookup resolves the FCM token of a user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	users  UserLookup
	sender Sender
	logger *zap.Logger
}

// NewDefaultNotificationService returns a service. A nil sender disables
// delivery; pushes are logged and dropped.
func NewDefaultNotificationService(users UserLookup, sender Sender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if users == nil {
		return nil, fmt.Errorf("notification service initialization error: user lookup is nil")
	}
	return &DefaultNotificationService{users: users, sender: sender, logger: logger}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s: %w", userID, ErrNoPushTarget)
	}
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = u.Role
	}

	if s.sender == nil {
		s.logger.Info("Push delivery disabled, dropping message", zap.String("userID", userID), zap.String("title", title))
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	response, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	s.logger.Debug("Push sent", zap.String("userID", userID), zap.String("messageID", response))
	return nil
}

// NotifyGeofence pushes a geofence alert to the parent of the booking.
func (s *DefaultNotificationService) NotifyGeofence(ctx context.Context, recipientID string, alert models.GeofenceAlert) error {
	title := "Caregiver left the area"
	if alert.Kind == models.AlertEnteredArea {
		title = "Caregiver arrived"
	}
	data := map[string]string{
		"type":      models.EventGeofenceAlert,
		"bookingId": alert.BookingID,
		"alertId":   alert.ID,
		"kind":      alert.Kind,
	}
	return s.SendUserPushNotification(ctx, recipientID, title, alert.Message, data)
}
