package bot

import (
	"hexbot/internal/bot/brain"
	"hexbot/internal/bot/internal"
	"hexbot/internal/domain"
)

// GreedyPlanner picks the quickest victory point it can see: a city or a
// settlement, a road or two toward a settlement spot, or a card.
type GreedyPlanner struct {
	Cutoff int
}

// settleCandidate is a settlement spot with the roads leading to it, nearest
// road last.
type settleCandidate struct {
	node   int
	roads  []int
	weight int
}

func (p GreedyPlanner) cutoff() int {
	if p.Cutoff <= 0 {
		return internal.DefaultCutoff
	}
	return p.Cutoff
}

func (p GreedyPlanner) Plan(m *brain.Mirror, _ *brain.Trackers) []brain.BuildTarget {
	if m.Board == nil {
		return nil
	}
	seat := m.Seat
	us := m.Players[seat]
	est := m.Estimator(seat).EstimatesFast(m.KnownHand(seat), p.cutoff())

	settle, haveSettle := p.bestSpot(m)
	city, cityErr := bestNode(m, func(n int) bool { return m.Occ.CanCity(seat, n) })
	haveCity := cityErr == nil && us.CitiesLeft > 0
	haveSettle = haveSettle && us.SettlementsLeft > 0

	// Roads toward a spot count toward its cost.
	settleTurns := est.Settlement + len(settle.roads)*est.Road

	switch {
	case haveCity && (!haveSettle || est.City <= settleTurns):
		return []brain.BuildTarget{{Piece: domain.PieceCity, Coord: city}}
	case haveSettle && len(settle.roads) <= us.RoadsLeft:
		out := []brain.BuildTarget{{Piece: domain.PieceSettlement, Coord: settle.node}}
		for _, e := range settle.roads {
			out = append(out, brain.BuildTarget{Piece: domain.PieceRoad, Coord: e})
		}
		return out
	case m.DeckLeft > 0:
		return []brain.BuildTarget{{Piece: domain.PieceCard, Coord: domain.NoCoord}}
	}
	if us.RoadsLeft > 0 {
		if edges := legalRoads(m, seat); len(edges) > 0 {
			return []brain.BuildTarget{{Piece: domain.PieceRoad, Coord: edges[0]}}
		}
	}
	return nil
}

// bestSpot finds the most productive settlement spot reachable with at most
// two new roads. Fewer roads win ties.
func (p GreedyPlanner) bestSpot(m *brain.Mirror) (settleCandidate, bool) {
	seat := m.Seat
	var best settleCandidate
	found := false
	consider := func(node int, roads []int) {
		if node == domain.NoCoord || !m.Occ.NodeFree(m.Board, node) {
			return
		}
		w := internal.NewProduction(m.Board, []int{node}, nil, m.Robber).Weight
		if !found || w > best.weight || (w == best.weight && len(roads) < len(best.roads)) {
			best = settleCandidate{node: node, roads: append([]int(nil), roads...), weight: w}
			found = true
		}
	}

	for _, n := range m.Board.Nodes() {
		if m.Occ.CanSettle(m.Board, seat, n, false) {
			consider(n, nil)
		}
	}
	// One or two roads out from our network; roads are listed farthest first.
	for _, e1 := range legalRoads(m, seat) {
		occ := m.Occ.Clone()
		occ.Edges[e1] = seat
		a, b := m.Board.EdgeNodes(e1)
		for _, n := range [2]int{a, b} {
			consider(n, []int{e1})
		}
		for _, n := range [2]int{a, b} {
			if _, built := m.Occ.Nodes[n]; built {
				continue
			}
			for _, e2 := range m.Board.EdgesAtNode(n) {
				if !occ.CanRoad(m.Board, seat, e2) {
					continue
				}
				c, d := m.Board.EdgeNodes(e2)
				for _, far := range [2]int{c, d} {
					consider(far, []int{e2, e1})
				}
			}
		}
	}
	return best, found
}
