package nakama

import (
	"context"
	"fmt"
	"sort"

	"hexbot/internal/bot"
	"hexbot/internal/codec"
	"hexbot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotHost steps agents inside the match loop. Nothing here blocks: agents use
// NoPause and their inbox is bypassed through Agent.Step.
type BotHost struct {
	logger runtime.Logger
	link   *link
	agents map[int]*bot.Agent
}

// NewBotHost creates one agent per bot seat.
func NewBotHost(gameID string, seats []int, players int, tuning bot.Tuning, logger runtime.Logger) (*BotHost, error) {
	h := &BotHost{logger: logger, link: &link{}, agents: make(map[int]*bot.Agent, len(seats))}
	for _, seat := range seats {
		if _, dup := h.agents[seat]; dup {
			return nil, fmt.Errorf("duplicate bot seat %d", seat)
		}
		profile := bot.ProfileFor(seat)
		agent, err := bot.NewAgent(bot.Options{
			ID:      fmt.Sprintf("%s/%s", gameID, profile.Name),
			Seat:    seat,
			Players: players,
			Tuning:  profile.Apply(tuning),
			Sender:  &DispatcherSender{link: h.link, seat: seat},
			Pacer:   bot.NoPause{},
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bot for seat %d: %w", seat, err)
		}
		h.agents[seat] = agent
	}
	return h, nil
}

// Attach points the agents at the engine through the current dispatcher.
func (h *BotHost) Attach(dispatcher runtime.MatchDispatcher, engine runtime.Presence) {
	h.link.dispatcher = dispatcher
	h.link.engine = engine
}

// Seats lists the seats still played, sorted.
func (h *BotHost) Seats() []int {
	seats := make([]int, 0, len(h.agents))
	for s := range h.agents {
		seats = append(seats, s)
	}
	sort.Ints(seats)
	return seats
}

// Agent returns the agent of seat.
func (h *BotHost) Agent(seat int) (*bot.Agent, bool) {
	a, ok := h.agents[seat]
	return a, ok
}

// Done reports whether every agent has stopped.
func (h *BotHost) Done() bool { return len(h.agents) == 0 }

// Feed decodes one engine message and hands it to its addressee, or to every
// agent when it is a broadcast.
func (h *BotHost) Feed(ctx context.Context, op int64, data []byte) error {
	to, msg, err := codec.DecodeMessage(op, data)
	if err != nil {
		return err
	}
	if to != domain.NoSeat {
		if _, ok := h.agents[to]; !ok {
			return nil
		}
		h.step(ctx, to, msg)
		return nil
	}
	h.Broadcast(ctx, msg)
	return nil
}

// Broadcast hands msg to every agent in seat order.
func (h *BotHost) Broadcast(ctx context.Context, msg domain.Message) {
	for _, seat := range h.Seats() {
		h.step(ctx, seat, msg)
	}
}

// Tick feeds one liveness ping to every agent.
func (h *BotHost) Tick(ctx context.Context) {
	h.Broadcast(ctx, domain.Ping{})
}

func (h *BotHost) step(ctx context.Context, seat int, msg domain.Message) {
	agent := h.agents[seat]
	stop, err := agent.Step(ctx, msg)
	if err != nil {
		h.logger.Error("BotHost.step: %s failed on %s: %v", agent.ID, msg.Name(), err)
	}
	if stop || err != nil {
		h.logger.Info("BotHost.step: %s left seat %d", agent.ID, seat)
		delete(h.agents, seat)
	}
}

// Shutdown stops every agent.
func (h *BotHost) Shutdown() {
	for seat, agent := range h.agents {
		agent.Kill()
		delete(h.agents, seat)
	}
}
