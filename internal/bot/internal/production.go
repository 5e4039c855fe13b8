package internal

import (
	"math"

	"hexbot/internal/domain"
)

// DiceWays[n] is the number of two-dice outcomes (out of 36) summing to n.
var DiceWays = [13]int{0, 0, 1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}

// MaxRolls stands in for "never" when nothing produces a resource.
const MaxRolls = 9999

// DiceProbability returns the chance of rolling n.
func DiceProbability(n int) float64 {
	if n < 2 || n > 12 {
		return 0
	}
	return float64(DiceWays[n]) / 36.0
}

// Production summarises what a set of buildings yields per roll.
type Production struct {
	// RollsPerResource is round(1/p) for each known type, MaxRolls when p is zero.
	RollsPerResource [domain.NumKnown]int
	// ResourcesForRoll[n] is what a roll of n pays out.
	ResourcesForRoll [13]domain.Bundle
	// Weight is the summed dice ways of every producing hex touched, per building.
	Weight int
}

// NewProduction builds the tables for settlements and cities. Cities count twice.
// blockedHex (domain.NoCoord for none) is skipped, as if the robber sat there.
func NewProduction(board domain.Board, settlements, cities []int, blockedHex int) Production {
	var p Production
	add := func(node, mult int) {
		for _, hid := range board.HexesAtNode(node) {
			if hid == blockedHex {
				continue
			}
			h, ok := board.Hex(hid)
			if !ok || !h.Produces() {
				continue
			}
			p.ResourcesForRoll[h.Number].AddOne(h.Resource, mult)
			p.Weight += DiceWays[h.Number] * mult
		}
	}
	for _, n := range settlements {
		add(n, 1)
	}
	for _, n := range cities {
		add(n, 2)
	}
	p.fillRolls()
	return p
}

func (p *Production) fillRolls() {
	var ways [domain.NumKnown]int
	for n := 2; n <= 12; n++ {
		for _, r := range domain.KnownResources {
			ways[r] += DiceWays[n] * p.ResourcesForRoll[n][r]
		}
	}
	for _, r := range domain.KnownResources {
		if ways[r] == 0 {
			p.RollsPerResource[r] = MaxRolls
			continue
		}
		p.RollsPerResource[r] = int(math.Round(36.0 / float64(ways[r])))
		if p.RollsPerResource[r] < 1 {
			p.RollsPerResource[r] = 1
		}
	}
}

// WithBlockedHex recomputes the tables as if the robber stood on hex.
func WithBlockedHex(board domain.Board, settlements, cities []int, hex int) Production {
	return NewProduction(board, settlements, cities, hex)
}

// TradeRatios is the market price of each known type.
type TradeRatios [domain.NumKnown]int

// DefaultRatios is the portless 4:1 market.
func DefaultRatios() TradeRatios {
	return TradeRatios{4, 4, 4, 4, 4}
}

// RatiosFor derives ratios from the ports touched by nodes: 2 for a matching
// port, else 3 for a generic one, else 4.
func RatiosFor(board domain.Board, nodes []int) TradeRatios {
	r := DefaultRatios()
	generic := false
	var specific [domain.NumKnown]bool
	for _, n := range nodes {
		for _, port := range board.PortsAtNode(n) {
			if port.IsKnown() {
				specific[port] = true
			} else {
				generic = true
			}
		}
	}
	for _, res := range domain.KnownResources {
		switch {
		case specific[res]:
			r[res] = 2
		case generic:
			r[res] = 3
		}
	}
	return r
}
