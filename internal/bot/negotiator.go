package bot

import (
	"hexbot/internal/bot/brain"
	"hexbot/internal/domain"
)

// SurplusNegotiator trades only what the current target does not need.
type SurplusNegotiator struct{}

// Consider accepts an offer when we can pay it from surplus and what we get
// brings the target closer.
func (SurplusNegotiator) Consider(m *brain.Mirror, offer domain.Offer, target domain.Bundle) Verdict {
	hand := m.KnownHand(m.Seat)
	if !hand.Contains(offer.Get) {
		return VerdictReject
	}
	for _, r := range domain.KnownResources {
		if offer.Get[r] > 0 && hand[r]-offer.Get[r] < target[r] {
			return VerdictReject
		}
	}
	after := hand
	after.Subtract(offer.Get)
	after.Add(offer.Give)
	if after.Missing(target).Total() >= hand.Missing(target).Total() {
		return VerdictReject
	}
	return VerdictAccept
}

// Propose offers one unit of our largest surplus for one unit of the needed
// type we produce worst.
func (SurplusNegotiator) Propose(m *brain.Mirror, target domain.Bundle, refused []bool) (domain.Offer, bool) {
	hand := m.KnownHand(m.Seat)
	missing := hand.Missing(target)
	if missing.IsEmpty() {
		return domain.Offer{}, false
	}
	rolls := m.Production(m.Seat).RollsPerResource

	give, want := domain.Unknown, domain.Unknown
	for _, r := range domain.KnownResources {
		if surplus := hand[r] - target[r]; surplus > 0 && (give == domain.Unknown || surplus > hand[give]-target[give]) {
			give = r
		}
		if missing[r] > 0 && (want == domain.Unknown || rolls[r] > rolls[want]) {
			want = r
		}
	}
	if give == domain.Unknown || want == domain.Unknown {
		return domain.Offer{}, false
	}

	to := make([]bool, len(m.Players))
	anyone := false
	for s := range m.Players {
		if s == m.Seat || (s < len(refused) && refused[s]) {
			continue
		}
		to[s] = true
		anyone = true
	}
	if !anyone {
		return domain.Offer{}, false
	}
	var offer domain.Offer
	offer.From = m.Seat
	offer.To = to
	offer.Give[give] = 1
	offer.Get[want] = 1
	return offer, true
}
