package bot

import (
	"context"
	"errors"

	"hexbot/internal/domain"
)

// ErrInboxFull is returned by Offer when the inbox has no room.
var ErrInboxFull = errors.New("inbox full")

// DefaultInboxSize is used when the configured size is not positive.
const DefaultInboxSize = 1000

// Inbox is the bounded queue between the transport and the agent loop. It is
// the only point where goroutines meet.
type Inbox struct {
	ch chan domain.Message
}

// NewInbox creates an inbox holding up to size messages.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{ch: make(chan domain.Message, size)}
}

// Put enqueues msg, blocking while the inbox is full.
func (in *Inbox) Put(ctx context.Context, msg domain.Message) error {
	select {
	case in.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offer enqueues msg without blocking.
func (in *Inbox) Offer(msg domain.Message) error {
	select {
	case in.ch <- msg:
		return nil
	default:
		return ErrInboxFull
	}
}

// Get blocks until a message is available.
func (in *Inbox) Get(ctx context.Context) (domain.Message, error) {
	select {
	case msg := <-in.ch:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports how many messages are queued.
func (in *Inbox) Len() int { return len(in.ch) }
