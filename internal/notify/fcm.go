package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMGateway delivers pushes through Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway initializes a Firebase app. With an empty credentialsFile the
// application default credentials are used.
func NewFCMGateway(ctx context.Context, credentialsFile string) (*FCMGateway, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &FCMGateway{client: client}, nil
}

// Send implements Gateway.
func (g *FCMGateway) Send(ctx context.Context, push Push) (string, error) {
	id, err := g.client.Send(ctx, &messaging.Message{
		Token: push.Token,
		Data:  push.Data,
	})
	if err != nil {
		return "", fmt.Errorf("fcm send: %w", err)
	}
	return id, nil
}
