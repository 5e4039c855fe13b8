package ports

import (
	"context"

	"hexbot/internal/domain"
)

//go:generate go tool mockgen -destination=./mocks/sender_mock.go -package=mocks . Sender

// Sender delivers agent requests to the game server.
type Sender interface {
	// Send transmits req. It must not block on the agent's own inbox.
	Send(ctx context.Context, req domain.Request) error
}
