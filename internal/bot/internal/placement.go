package internal

import (
	"errors"
	"sort"

	"hexbot/internal/domain"
)

// ErrNoLegalNode is returned when no node satisfies the placement rules.
var ErrNoLegalNode = errors.New("no legal node")

// ErrNoLegalEdge is returned when no road can be placed.
var ErrNoLegalEdge = errors.New("no legal edge")

// PlacementContext is what the setup heuristics read.
type PlacementContext struct {
	Board  domain.Board
	Occ    domain.Occupancy
	Seat   int
	Cutoff int
}

func (pc PlacementContext) cutoff() int {
	if pc.Cutoff <= 0 {
		return DefaultCutoff
	}
	return pc.Cutoff
}

// SiteScore rates a set of settlement nodes built from nothing.
type SiteScore struct {
	Total     int
	Weight    int
	AllTheWay bool
}

// ScoreSites estimates all four targets from an empty hand with settlements on nodes.
func (pc PlacementContext) ScoreSites(nodes ...int) SiteScore {
	prod := NewProduction(pc.Board, nodes, nil, domain.NoCoord)
	est := NewSpeedEstimator(prod, RatiosFor(pc.Board, nodes)).EstimatesFromNothingFast(pc.cutoff())
	return SiteScore{Total: est.Total(), Weight: prod.Weight, AllTheWay: est.AllTheWay}
}

// beats decides whether cand replaces best. A tie on speed only goes to the
// higher probability weight when the incumbent ran all the way to the cutoff.
func (s SiteScore) beats(best SiteScore) bool {
	if s.Total != best.Total {
		return s.Total < best.Total
	}
	return best.AllTheWay && s.Weight > best.Weight
}

// FreeNodes lists nodes where a settlement may stand, sorted.
func (pc PlacementContext) FreeNodes() []int {
	var out []int
	for _, n := range pc.Board.Nodes() {
		if pc.Occ.NodeFree(pc.Board, n) {
			out = append(out, n)
		}
	}
	return out
}

func (pc PlacementContext) adjacent(a, b int) bool {
	for _, n := range pc.Board.AdjacentNodes(a) {
		if n == b {
			return true
		}
	}
	return false
}

// InitialPair picks the two setup settlements. first is the one to place now.
func (pc PlacementContext) InitialPair() (first, second int, err error) {
	nodes := pc.FreeNodes()
	bestA, bestB := domain.NoCoord, domain.NoCoord
	var best SiteScore
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if pc.adjacent(a, b) {
				continue
			}
			sc := pc.ScoreSites(a, b)
			if bestA == domain.NoCoord || sc.beats(best) {
				bestA, bestB, best = a, b, sc
			}
		}
	}
	if bestA == domain.NoCoord {
		if len(nodes) == 0 {
			return domain.NoCoord, domain.NoCoord, ErrNoLegalNode
		}
		return nodes[0], domain.NoCoord, nil
	}
	sa, sb := pc.ScoreSites(bestA), pc.ScoreSites(bestB)
	if sb.Total < sa.Total || (sb.Total == sa.Total && sb.Weight > sa.Weight) {
		bestA, bestB = bestB, bestA
	}
	return bestA, bestB, nil
}

// SecondSettlement picks the best free node to pair with our first settlement.
func (pc PlacementContext) SecondSettlement(first int) (int, error) {
	best := domain.NoCoord
	var bestScore SiteScore
	for _, n := range pc.FreeNodes() {
		sc := pc.ScoreSites(first, n)
		if best == domain.NoCoord || sc.beats(bestScore) {
			best, bestScore = n, sc
		}
	}
	if best == domain.NoCoord {
		return domain.NoCoord, ErrNoLegalNode
	}
	return best, nil
}

// RoadToward picks the edge leaving settlement toward the best free node two
// steps away. Nodes in claimed are treated as taken.
func (pc PlacementContext) RoadToward(settlement int, claimed map[int]bool) (int, error) {
	bestEdge, fallback := domain.NoCoord, domain.NoCoord
	var bestScore SiteScore
	for _, mid := range pc.Board.AdjacentNodes(settlement) {
		edge, ok := pc.Board.EdgeBetween(settlement, mid)
		if !ok || !pc.Occ.CanRoad(pc.Board, pc.Seat, edge) {
			continue
		}
		if fallback == domain.NoCoord {
			fallback = edge
		}
		for _, far := range pc.Board.AdjacentNodes(mid) {
			if far == settlement || claimed[far] || !pc.Occ.NodeFree(pc.Board, far) {
				continue
			}
			sc := pc.ScoreSites(far)
			if bestEdge == domain.NoCoord || sc.Total < bestScore.Total ||
				(sc.Total == bestScore.Total && sc.Weight > bestScore.Weight) {
				bestEdge, bestScore = edge, sc
			}
		}
	}
	if bestEdge != domain.NoCoord {
		return bestEdge, nil
	}
	if fallback != domain.NoCoord {
		return fallback, nil
	}
	return domain.NoCoord, ErrNoLegalEdge
}

// OpponentPlacementsBefore counts the setup settlements opponents place after
// our second one and before we act again: every seat ahead of us in turn order.
func OpponentPlacementsBefore(firstSeat, ourSeat, players int) int {
	if players <= 0 {
		return 0
	}
	return ((ourSeat-firstSeat)%players + players) % players
}

// SecondRoad is RoadToward after assuming opponents grab their n most
// attractive free nodes first.
func (pc PlacementContext) SecondRoad(settlement, n int) (int, error) {
	claimed := make(map[int]bool)
	if n > 0 {
		owned := make(map[domain.Resource]bool)
		sett, cities := pc.Occ.NodesOf(pc.Seat)
		for _, node := range append(sett, cities...) {
			for _, p := range pc.Board.PortsAtNode(node) {
				owned[p] = true
			}
		}
		type ranked struct{ node, score int }
		var all []ranked
		for _, node := range pc.FreeNodes() {
			prod := NewProduction(pc.Board, []int{node}, nil, domain.NoCoord)
			score := prod.Weight
			for _, p := range pc.Board.PortsAtNode(node) {
				if owned[p] {
					continue
				}
				if p.IsKnown() {
					score += 3
				} else {
					score += 2
				}
			}
			all = append(all, ranked{node, score})
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
		for i := 0; i < n && i < len(all); i++ {
			claimed[all[i].node] = true
		}
	}
	return pc.RoadToward(settlement, claimed)
}
