package bot

import (
	"context"

	"hexbot/internal/domain"
)

// watchdog counts consumed messages since the last meaningful change.
type watchdog struct {
	idle      int
	reissued  bool
	forfeited bool
}

func (w *watchdog) tick() { w.idle++ }

// progress is called on phase or turn changes and matching completions.
func (w *watchdog) progress() {
	w.idle = 0
	w.reissued = false
}

// watch re-sends the pending request once after ReissueAfter idle ticks and
// leaves the game after ForfeitAfter. It reports whether the agent must stop.
func (a *Agent) watch(ctx context.Context) bool {
	if a.dog.forfeited {
		return true
	}
	if a.dog.idle > a.tuning.ForfeitAfter {
		a.dog.forfeited = true
		a.logger.Warn("Agent.watch: %s idle for %d ticks, leaving the game", a.ID, a.dog.idle)
		a.events.Record(a.tick, EventForfeit, a.lastID, "idle %d", a.dog.idle)
		a.send(ctx, domain.LeaveGame{Reason: "stalled"})
		a.stopErr = ErrStalled
		return true
	}
	if a.dog.idle > a.tuning.ReissueAfter && !a.dog.reissued && a.lastRequest != nil && a.waiting() {
		a.dog.reissued = true
		a.logger.Info("Agent.watch: %s idle for %d ticks, re-sending %s", a.ID, a.dog.idle, a.lastRequest.Name())
		a.events.Record(a.tick, EventReissue, a.lastID, "%s", a.lastRequest.Name())
		if err := a.sender.Send(ctx, a.lastRequest); err != nil {
			a.logger.Warn("Agent.watch: %s failed to re-send %s: %v", a.ID, a.lastRequest.Name(), err)
		}
	}
	return false
}

// waiting reports whether we have a request without its answer.
func (a *Agent) waiting() bool {
	return a.exp.pending() || a.trade.await != TradeIdle
}
