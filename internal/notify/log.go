package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogGateway only logs pushes. It stands in for a real provider in local
// development.
type LogGateway struct{}

// Send implements Gateway.
func (LogGateway) Send(ctx context.Context, push Push) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	slog.InfoContext(ctx, "push (log gateway)", "message_id", id, "type", push.Data["type"])
	return id, nil
}
