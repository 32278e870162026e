// utils/firebase.go
package utils

import (
	"carebook/config"
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client.
// Push stays disabled when no credentials are configured.
func FirebaseInit() {
	logger := GetLogger()
	if config.AppConfig.FirebaseCredentials == "" {
		logger.Warn("firebase: no credentials configured, push notifications disabled")
		return
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentials)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		logger.Fatal("firebase: error initializing app", zap.Error(err))
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Fatal("firebase: error getting Messaging client", zap.Error(err))
	}

	FCMClient = client
}
