package bot

import (
	"hexbot/internal/bot/brain"
	"hexbot/internal/domain"
)

// Planner decides what we build next. Plan returns targets bottom first, so
// the last element is built first.
type Planner interface {
	Plan(m *brain.Mirror, trackers *brain.Trackers) []brain.BuildTarget
}

// Verdict is a Negotiator's answer to a peer offer.
type Verdict int

const (
	VerdictIgnore Verdict = iota
	VerdictReject
	VerdictAccept
)

// Negotiator scores peer offers and proposes our own.
type Negotiator interface {
	// Consider judges an offer aimed at us against what we are saving for.
	Consider(m *brain.Mirror, offer domain.Offer, target domain.Bundle) Verdict
	// Propose returns an offer toward target. Seats marked in refused already
	// turned us down this turn and should not be asked again.
	Propose(m *brain.Mirror, target domain.Bundle, refused []bool) (domain.Offer, bool)
}
