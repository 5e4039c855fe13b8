package internal

import (
	"errors"

	"hexbot/internal/domain"
)

// ErrCutoffExceeded is returned when a simulation runs past its turn budget.
var ErrCutoffExceeded = errors.New("building speed cutoff exceeded")

// DefaultCutoff bounds simulations when the caller has no better figure.
const DefaultCutoff = 300

// reachedThreshold is the cumulative probability at which the accurate mode stops.
const reachedThreshold = 0.5

// SpeedEstimator predicts how many turns a player needs to collect a bundle.
type SpeedEstimator struct {
	Production Production
	Ratios     TradeRatios
}

// NewSpeedEstimator pairs production tables with market ratios.
func NewSpeedEstimator(p Production, ratios TradeRatios) SpeedEstimator {
	return SpeedEstimator{Production: p, Ratios: ratios}
}

// hardestNeeded returns the still-missing type with the largest rolls-per-resource.
// Ties keep the earlier type.
func (e SpeedEstimator) hardestNeeded(have, target domain.Bundle) (domain.Resource, bool) {
	best := domain.Unknown
	bestRolls := -1
	for _, r := range domain.KnownResources {
		if have[r] >= target[r] {
			continue
		}
		if rolls := e.Production.RollsPerResource[r]; rolls > bestRolls {
			best, bestRolls = r, rolls
		}
	}
	return best, bestRolls >= 0
}

// tradeSurplus converts every surplus above target, in whole ratio lots, into
// the hardest still-needed type.
func (e SpeedEstimator) tradeSurplus(have *domain.Bundle, target domain.Bundle) {
	for _, give := range domain.KnownResources {
		ratio := e.Ratios[give]
		for have[give]-target[give] >= ratio {
			get, ok := e.hardestNeeded(*have, target)
			if !ok {
				return
			}
			have[give] -= ratio
			have[get]++
		}
	}
}

// Fast is the deterministic greedy estimate: each turn every type r arrives
// once per RollsPerResource[r] turns.
func (e SpeedEstimator) Fast(start, target domain.Bundle, cutoff int) (int, error) {
	have := start
	turns := 0
	for {
		e.tradeSurplus(&have, target)
		if have.Contains(target) {
			return turns, nil
		}
		if turns >= cutoff {
			return cutoff, ErrCutoffExceeded
		}
		turns++
		for _, r := range domain.KnownResources {
			if rolls := e.Production.RollsPerResource[r]; turns%rolls == 0 {
				have[r]++
			}
		}
	}
}

// FastOrCutoff returns Fast's turn count, capped at cutoff.
func (e SpeedEstimator) FastOrCutoff(start, target domain.Bundle, cutoff int) int {
	turns, err := e.Fast(start, target, cutoff)
	if err != nil {
		return cutoff
	}
	return turns
}

// Accurate returns the median number of turns to reach target, branching on
// every dice outcome.
func (e SpeedEstimator) Accurate(start, target domain.Bundle, cutoff int) (int, error) {
	have := start
	e.tradeSurplus(&have, target)
	if have.Contains(target) {
		return 0, nil
	}
	dist := map[domain.Bundle]float64{have: 1.0}
	reached := 0.0
	for turns := 1; turns <= cutoff; turns++ {
		next, got := e.Step(dist, target)
		reached += got
		if reached >= reachedThreshold {
			return turns, nil
		}
		if len(next) == 0 {
			break
		}
		dist = next
	}
	return cutoff, ErrCutoffExceeded
}

// AccurateOrCutoff returns Accurate's turn count, capped at cutoff.
func (e SpeedEstimator) AccurateOrCutoff(start, target domain.Bundle, cutoff int) int {
	turns, err := e.Accurate(start, target, cutoff)
	if err != nil {
		return cutoff
	}
	return turns
}

// Step advances a bundle distribution by one roll. It does not modify dist.
// Mass of bundles that reach target is returned separately and not carried on.
func (e SpeedEstimator) Step(dist map[domain.Bundle]float64, target domain.Bundle) (map[domain.Bundle]float64, float64) {
	next := make(map[domain.Bundle]float64, len(dist))
	reached := 0.0
	for have, mass := range dist {
		for roll := 2; roll <= 12; roll++ {
			p := mass * DiceProbability(roll)
			b := have
			b.Add(e.Production.ResourcesForRoll[roll])
			e.tradeSurplus(&b, target)
			if b.Contains(target) {
				reached += p
				continue
			}
			next[b] += p
		}
	}
	return next, reached
}

// SpeedEstimate holds turn estimates for each buildable target.
type SpeedEstimate struct {
	Road       int
	Settlement int
	City       int
	Card       int
	// AllTheWay is false when any target hit the cutoff.
	AllTheWay bool
}

// Total sums the four estimates.
func (s SpeedEstimate) Total() int {
	return s.Road + s.Settlement + s.City + s.Card
}

// For returns the estimate of one piece.
func (s SpeedEstimate) For(p domain.PieceType) int {
	switch p {
	case domain.PieceRoad:
		return s.Road
	case domain.PieceSettlement:
		return s.Settlement
	case domain.PieceCity:
		return s.City
	default:
		return s.Card
	}
}

// EstimatesFast runs Fast for road, settlement, city and card from start.
func (e SpeedEstimator) EstimatesFast(start domain.Bundle, cutoff int) SpeedEstimate {
	est := SpeedEstimate{AllTheWay: true}
	run := func(target domain.Bundle) int {
		turns, err := e.Fast(start, target, cutoff)
		if err != nil {
			est.AllTheWay = false
		}
		return turns
	}
	est.Road = run(domain.RoadCost)
	est.Settlement = run(domain.SettlementCost)
	est.City = run(domain.CityCost)
	est.Card = run(domain.CardCost)
	return est
}

// EstimatesFromNothingFast is EstimatesFast from an empty hand.
func (e SpeedEstimator) EstimatesFromNothingFast(cutoff int) SpeedEstimate {
	return e.EstimatesFast(domain.Bundle{}, cutoff)
}
