package internal

import (
	"math/rand"

	"hexbot/internal/domain"
)

// SeatView is what the heuristics know about one seat.
type SeatView struct {
	Seat        int
	Settlements []int
	Cities      []int
	Hand        domain.Bundle
	Ratios      TradeRatios
	WinETA      int
}

// RobberContext holds the inputs of the robber heuristic.
type RobberContext struct {
	Board    domain.Board
	Robber   int
	OurNodes []int
	Cutoff   int
	Rng      *rand.Rand
}

// PickVictim returns the seat with the lowest win ETA. Ties keep the lower seat.
func PickVictim(views []SeatView, self int, allowed func(seat int) bool) int {
	victim := domain.NoSeat
	bestETA := 0
	for _, v := range views {
		if v.Seat == self || (allowed != nil && !allowed(v.Seat)) {
			continue
		}
		if victim == domain.NoSeat || v.WinETA < bestETA {
			victim, bestETA = v.Seat, v.WinETA
		}
	}
	return victim
}

// legalHexes lists land hexes other than the robber's current one.
func (rc RobberContext) legalHexes() []int {
	var out []int
	for _, h := range rc.Board.Hexes() {
		if h.ID != rc.Robber {
			out = append(out, h.ID)
		}
	}
	return out
}

func (rc RobberContext) ours(hex int) bool {
	for _, n := range rc.OurNodes {
		for _, h := range rc.Board.HexesAtNode(n) {
			if h == hex {
				return true
			}
		}
	}
	return false
}

// ChooseHex picks the hex that slows victim the most, measured as the total
// building-speed estimate with that hex blocked. When nothing separates the
// candidates a random legal hex is returned.
func (rc RobberContext) ChooseHex(victim SeatView) int {
	cutoff := rc.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	best, bestTotal := domain.NoCoord, 0
	distinct := false
	first := true
	for _, hex := range rc.legalHexes() {
		if rc.ours(hex) {
			continue
		}
		prod := WithBlockedHex(rc.Board, victim.Settlements, victim.Cities, hex)
		total := NewSpeedEstimator(prod, victim.Ratios).EstimatesFast(victim.Hand, cutoff).Total()
		if first {
			best, bestTotal, first = hex, total, false
			continue
		}
		if total != bestTotal {
			distinct = true
		}
		if total > bestTotal {
			best, bestTotal = hex, total
		}
	}
	if best != domain.NoCoord && distinct {
		return best
	}
	return rc.randomHex()
}

func (rc RobberContext) randomHex() int {
	legal := rc.legalHexes()
	if len(legal) == 0 {
		return rc.Robber
	}
	var notOurs []int
	for _, h := range legal {
		if !rc.ours(h) {
			notOurs = append(notOurs, h)
		}
	}
	if len(notOurs) > 0 {
		legal = notOurs
	}
	if rc.Rng == nil {
		return legal[0]
	}
	return legal[rc.Rng.Intn(len(legal))]
}
