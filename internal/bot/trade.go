package bot

import (
	"context"

	"hexbot/internal/bot/internal"
	"hexbot/internal/domain"
)

// proposeOffer asks the negotiator for a peer offer toward cost. It is tried
// once per build target.
func (a *Agent) proposeOffer(ctx context.Context, cost domain.Bundle) bool {
	a.trade.offered = true
	offer, ok := a.negotiator.Propose(a.mirror, cost, a.trade.refused)
	if !ok || len(offer.Recipients()) == 0 {
		return false
	}
	offer.From = a.Seat
	a.trade.idle()
	a.trade.await = TradeOffer
	a.trade.since = a.tick
	a.trade.offer = offer
	a.gate.mark(a.tick)
	a.logger.Debug("Agent.proposeOffer: %s offers %s for %s to %v", a.ID, offer.Give, offer.Get, offer.Recipients())
	a.send(ctx, domain.MakeOffer{Offer: offer})
	a.pause(ctx, a.tuning.ActionDelay)
	return true
}

// bankTrade runs the market search and starts replaying its path.
func (a *Agent) bankTrade(ctx context.Context, cost, hand domain.Bundle) bool {
	a.trade.banked = true
	plan := internal.NewBankSearch(a.mirror.Ratios(a.Seat), cost).Run(hand)
	if len(plan.Steps) == 0 {
		return false
	}
	a.logger.Debug("Agent.bankTrade: %s trades %d times toward %s", a.ID, len(plan.Steps), plan.Result)
	a.trade.idle()
	a.trade.await = TradeBank
	a.trade.steps = plan.Steps[1:]
	a.gate.mark(a.tick)
	a.sendBankStep(ctx, plan.Steps[0])
	return true
}

func (a *Agent) sendBankStep(ctx context.Context, step internal.TradeStep) {
	a.trade.inFlight = step
	a.trade.since = a.tick
	a.send(ctx, domain.BankTrade{Give: step.Give, Get: step.Get})
}

// bankTradeDone advances the replay when the market confirms our step.
func (a *Agent) bankTradeDone(ctx context.Context, v domain.BankTradeDone) {
	if a.trade.await != TradeBank || v.Seat != a.Seat {
		return
	}
	if v.Give != a.trade.inFlight.Give || v.Get != a.trade.inFlight.Get {
		a.logger.Warn("Agent.bankTradeDone: %s confirmation %s for %s does not match the request", a.ID, v.Give, v.Get)
		return
	}
	a.dog.progress()
	if len(a.trade.steps) > 0 {
		next := a.trade.steps[0]
		a.trade.steps = a.trade.steps[1:]
		a.pause(ctx, a.tuning.TradeDelay)
		a.sendBankStep(ctx, next)
		return
	}
	a.trade.idle()
	a.gate.rearm()
}

// offerMade answers peer offers aimed at us.
func (a *Agent) offerMade(ctx context.Context, offer domain.Offer) {
	if offer.From == a.Seat || !offer.Targets(a.Seat) {
		return
	}
	t, ok := a.currentTarget()
	if !ok {
		a.send(ctx, domain.RejectOffer{})
		return
	}
	switch a.negotiator.Consider(a.mirror, offer, t.Cost()) {
	case VerdictAccept:
		a.logger.Debug("Agent.offerMade: %s accepts offer from seat %d", a.ID, offer.From)
		a.send(ctx, domain.AcceptOffer{From: offer.From})
	case VerdictReject:
		a.send(ctx, domain.RejectOffer{})
	}
}

func (a *Agent) offerRejected(ctx context.Context, seat int) {
	if a.trade.await != TradeOffer || !a.trade.offer.Targets(seat) {
		return
	}
	a.trade.answered[seat] = true
	a.trade.refused[seat] = true
	if a.trade.allAnswered() {
		a.withdrawOffer(ctx)
	}
}

func (a *Agent) offerAccepted(offering int) {
	if a.trade.await != TradeOffer || offering != a.Seat {
		return
	}
	a.dog.progress()
	a.trade.idle()
	a.gate.rearm()
}

func (a *Agent) offerCleared(seat int) {
	if a.trade.await != TradeOffer || (seat != a.Seat && seat != domain.NoSeat) {
		return
	}
	a.trade.idle()
	a.gate.rearm()
}

// withdrawOffer clears our offer and lets the action phase continue with
// the market.
func (a *Agent) withdrawOffer(ctx context.Context) {
	a.trade.idle()
	a.gate.rearm()
	a.send(ctx, domain.ClearOffer{})
}

// tradeTimeouts expires our own trades. Silent recipients count as refusals.
func (a *Agent) tradeTimeouts(ctx context.Context) {
	switch a.trade.await {
	case TradeBank:
		if a.tick-a.trade.since <= a.tuning.BankTradeTimeout {
			return
		}
		a.logger.Warn("Agent.tradeTimeouts: %s bank trade unconfirmed after %d ticks", a.ID, a.tick-a.trade.since)
		a.events.Record(a.tick, EventTradeStale, a.lastID, "bank")
		a.trade.idle()
		a.gate.rearm()
	case TradeOffer:
		if a.tick-a.trade.since <= a.tuning.OfferTimeout {
			return
		}
		for _, s := range a.trade.offer.Recipients() {
			if s < len(a.trade.answered) && !a.trade.answered[s] {
				a.trade.refused[s] = true
			}
		}
		a.events.Record(a.tick, EventTradeStale, a.lastID, "offer")
		a.withdrawOffer(ctx)
	}
}
