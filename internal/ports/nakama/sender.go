package nakama

import (
	"context"
	"errors"

	"hexbot/internal/codec"
	"hexbot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

var ErrNoEngine = errors.New("game engine is not connected")

// link is the route to the game engine. The match refreshes it every loop.
type link struct {
	dispatcher runtime.MatchDispatcher
	engine     runtime.Presence
}

// DispatcherSender delivers one seat's requests to the engine presence.
type DispatcherSender struct {
	link *link
	seat int
}

func (s *DispatcherSender) Send(ctx context.Context, req domain.Request) error {
	if s.link.dispatcher == nil || s.link.engine == nil {
		return ErrNoEngine
	}
	op, data, err := codec.EncodeRequest(s.seat, req)
	if err != nil {
		return err
	}
	return s.link.dispatcher.BroadcastMessage(op, data, []runtime.Presence{s.link.engine}, nil, true)
}
