package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"hexbot/internal/bot/brain"
	"hexbot/internal/domain"
	"hexbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	// ErrAgentFault is returned when the loop recovered from an internal fault.
	ErrAgentFault = errors.New("agent loop fault")
	// ErrStalled is returned after the watchdog gave up on the game.
	ErrStalled = errors.New("agent stalled and left the game")
)

// Agent plays one seat. All of its state is owned by the goroutine running
// Run (or by the host calling Step); only Kill may be called concurrently.
type Agent struct {
	ID   string
	Seat int

	logger     runtime.Logger
	tuning     Tuning
	sender     ports.Sender
	planner    Planner
	negotiator Negotiator
	pacer      Pacer
	inbox      *Inbox
	rng        *rand.Rand

	mirror   *brain.Mirror
	trackers *brain.Trackers
	plan     brain.BuildingPlan

	exp   expectation
	trade tradeState
	gate  debounce
	dog   watchdog

	tick        int
	lastRequest domain.Request
	lastID      string
	stopErr     error
	events      *EventLog

	alive atomic.Bool
}

// Inbox returns the queue the transport should feed.
func (a *Agent) Inbox() *Inbox { return a.inbox }

// Mirror exposes the mirrored game. It is nil once the loop has exited.
func (a *Agent) Mirror() *brain.Mirror { return a.mirror }

// Events returns the retained decision log.
func (a *Agent) Events() *EventLog { return a.events }

// Alive reports whether the agent still accepts messages.
func (a *Agent) Alive() bool { return a.alive.Load() }

// Kill stops the agent. The poison pill wakes a loop blocked on the inbox.
func (a *Agent) Kill() {
	if !a.alive.CompareAndSwap(true, false) {
		return
	}
	if err := a.inbox.Offer(domain.Dismiss{Reason: "killed"}); err != nil {
		a.logger.Warn("Agent.Kill: could not enqueue dismissal for %s: %v", a.ID, err)
	}
}

// Run consumes the inbox until the game ends, the agent is killed, ctx is
// cancelled or the watchdog forfeits.
func (a *Agent) Run(ctx context.Context) error {
	defer a.release()
	for a.alive.Load() {
		msg, err := a.inbox.Get(ctx)
		if err != nil {
			a.logger.Debug("Agent.Run: %s stopping: %v", a.ID, err)
			return nil
		}
		stop, err := a.Step(ctx, msg)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return a.stopErr
}

// Step processes one message synchronously and reports whether the agent is
// done. Hosts that own their own loop call it directly. A stopped agent has
// already dropped its game state.
func (a *Agent) Step(ctx context.Context, msg domain.Message) (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Agent.Step: %s recovered from fault on %s: %v", a.ID, msg.Name(), r)
			a.events.Record(a.tick, EventFault, "", "%s: %v", msg.Name(), r)
			a.release()
			stop, err = true, fmt.Errorf("%w: %v", ErrAgentFault, r)
		}
	}()
	if a.mirror == nil {
		return true, nil
	}
	stop = a.handle(ctx, msg)
	if stop {
		a.release()
	}
	return stop, nil
}

// handle applies msg to the mirror and lets the controller react.
func (a *Agent) handle(ctx context.Context, msg domain.Message) bool {
	a.tick++
	a.dog.tick()

	if a.exp.pending() && a.exp.matches(msg, a.Seat) {
		a.completed(msg)
		a.dog.progress()
	}

	for _, e := range a.mirror.Apply(msg) {
		switch e.Kind {
		case brain.EffectPhaseChanged:
			a.logger.Debug("Agent.handle: %s phase %s -> %s", a.ID, domain.Phase(e.Value), e.Phase)
			a.dog.progress()
		case brain.EffectTurnChanged:
			a.newTurn(e.Seat)
			a.dog.progress()
		case brain.EffectPiecePlaced, brain.EffectBoard:
			a.trackers.Recompute(a.mirror)
		case brain.EffectDesync:
			a.logger.Warn("Agent.handle: %s resource count of seat %d disagrees, reset to %d unknown", a.ID, e.Seat, e.Value)
			a.events.Record(a.tick, EventDesync, "", "seat %d count %d", e.Seat, e.Value)
		case brain.EffectOfferMade:
			a.offerMade(ctx, e.Msg.(domain.OfferMade).Offer)
		case brain.EffectOfferRejected:
			a.offerRejected(ctx, e.Seat)
		case brain.EffectOfferAccepted:
			a.offerAccepted(e.Value)
		case brain.EffectOfferCleared:
			a.offerCleared(e.Seat)
		case brain.EffectBankTrade:
			a.bankTradeDone(ctx, e.Msg.(domain.BankTradeDone))
		case brain.EffectDiscardRequested:
			a.discard(ctx, e.Value)
		case brain.EffectVictimRequested:
			a.chooseVictim(ctx, e.Msg.(domain.ChooseVictimRequest).Candidates)
		case brain.EffectDismissed:
			a.logger.Info("Agent.handle: %s dismissed: %s", a.ID, e.Msg.(domain.Dismiss).Reason)
			a.events.Record(a.tick, EventStopped, "", "dismissed")
			return true
		case brain.EffectIgnored:
			a.logger.Debug("Agent.handle: %s ignoring %s", a.ID, msg.Name())
		}
	}

	if a.watch(ctx) {
		return true
	}
	a.tradeTimeouts(ctx)

	if a.mirror.Phase == domain.PhaseGameOver {
		a.logger.Info("Agent.handle: %s game over with %d points", a.ID, a.mirror.Points(a.Seat))
		a.events.Record(a.tick, EventStopped, "", "game over")
		return true
	}
	a.decide(ctx)
	return !a.alive.Load()
}

// completed folds a matching confirmation into the plan.
func (a *Agent) completed(msg domain.Message) {
	switch v := msg.(type) {
	case domain.PiecePlaced:
		if top, ok := a.plan.Peek(); ok && top.Piece == v.Piece && top.Coord == v.Coord {
			a.plan.Pop()
		}
		a.trade.offered, a.trade.banked = false, false
	case domain.DevCardAction:
		if top, ok := a.plan.Peek(); ok && v.Verb == domain.CardDraw && top.Piece == domain.PieceCard {
			a.plan.Pop()
		}
		a.trade.offered, a.trade.banked = false, false
	}
	a.exp.clear()
	if a.mirror.Phase == domain.PhaseAction {
		a.gate.rearm()
	}
}

// newTurn drops every expectation tied to the previous turn.
func (a *Agent) newTurn(seat int) {
	a.exp.clear()
	a.plan.Clear()
	a.trade.resetTurn()
	a.logger.Debug("Agent.newTurn: %s sees seat %d to move", a.ID, seat)
}

// send transmits req and remembers it for the watchdog.
func (a *Agent) send(ctx context.Context, req domain.Request) {
	a.lastRequest = req
	a.lastID = a.events.Record(a.tick, EventRequest, "", "%s %+v", req.Name(), req)
	if err := a.sender.Send(ctx, req); err != nil {
		a.logger.Warn("Agent.send: %s failed to send %s: %v", a.ID, req.Name(), err)
	}
}

// ask sends a request that expects a completion and gates the phase action.
func (a *Agent) ask(ctx context.Context, req domain.Request, exp expectation) {
	exp.since = a.tick
	a.exp = exp
	a.gate.mark(a.tick)
	a.send(ctx, req)
	a.pause(ctx, a.tuning.ActionDelay)
}

func (a *Agent) pause(ctx context.Context, d time.Duration) {
	if err := a.pacer.Pause(ctx, d); err != nil {
		a.logger.Debug("Agent.pause: %s interrupted: %v", a.ID, err)
	}
}

// release drops the game state once the loop is over.
func (a *Agent) release() {
	a.alive.Store(false)
	a.plan.Clear()
	a.mirror = nil
	a.trackers = nil
}
