package internal

import (
	"errors"
	"testing"

	"hexbot/internal/domain"
)

func beginnerContext(t *testing.T) PlacementContext {
	t.Helper()
	board, err := domain.NewStandardTopology(domain.BeginnerLayout())
	if err != nil {
		t.Fatal(err)
	}
	return PlacementContext{Board: board, Occ: domain.NewOccupancy(), Seat: 0, Cutoff: 100}
}

func TestInitialPairIsLegal(t *testing.T) {
	pc := beginnerContext(t)
	first, second, err := pc.InitialPair()
	if err != nil {
		t.Fatalf("InitialPair: %v", err)
	}
	if first == second || pc.adjacent(first, second) {
		t.Fatalf("pair %d/%d breaks the distance rule", first, second)
	}
	a, b := pc.ScoreSites(first), pc.ScoreSites(second)
	if a.Total > b.Total {
		t.Fatalf("first site (%d turns) should be the faster one (%d)", a.Total, b.Total)
	}
	if a.Weight == 0 {
		t.Fatal("first site should touch producing hexes")
	}
}

func TestSecondSettlementRespectsOccupancy(t *testing.T) {
	pc := beginnerContext(t)
	first, _, err := pc.InitialPair()
	if err != nil {
		t.Fatal(err)
	}
	pc.Occ.Nodes[first] = domain.NodePiece{Seat: 0}
	second, err := pc.SecondSettlement(first)
	if err != nil {
		t.Fatalf("SecondSettlement: %v", err)
	}
	if !pc.Occ.NodeFree(pc.Board, second) {
		t.Fatalf("node %d is not free", second)
	}
}

func TestRoadTowardLeavesSettlement(t *testing.T) {
	pc := beginnerContext(t)
	node := pc.Board.Nodes()[12]
	pc.Occ.Nodes[node] = domain.NodePiece{Seat: 0}

	edge, err := pc.RoadToward(node, nil)
	if err != nil {
		t.Fatalf("RoadToward: %v", err)
	}
	a, b := pc.Board.EdgeNodes(edge)
	if a != node && b != node {
		t.Fatalf("edge %d (%d-%d) does not touch %d", edge, a, b, node)
	}

	// Claiming every node leaves only the fallback edge.
	claimed := make(map[int]bool)
	for _, n := range pc.Board.Nodes() {
		claimed[n] = true
	}
	if _, err := pc.RoadToward(node, claimed); err != nil {
		t.Fatalf("fallback edge expected, got %v", err)
	}

	for _, e := range pc.Board.EdgesAtNode(node) {
		pc.Occ.Edges[e] = 1
	}
	if _, err := pc.RoadToward(node, nil); !errors.Is(err, ErrNoLegalEdge) {
		t.Fatalf("blocked settlement: %v", err)
	}
}

func TestSecondRoadAvoidsContestedNodes(t *testing.T) {
	pc := beginnerContext(t)
	node := pc.Board.Nodes()[30]
	pc.Occ.Nodes[node] = domain.NodePiece{Seat: 0}

	if _, err := pc.SecondRoad(node, 0); err != nil {
		t.Fatalf("SecondRoad without opponents: %v", err)
	}
	if _, err := pc.SecondRoad(node, 3); err != nil {
		t.Fatalf("SecondRoad with opponents: %v", err)
	}
}

func TestOpponentPlacementsBefore(t *testing.T) {
	tests := []struct{ first, ours, players, want int }{
		{0, 0, 4, 0},
		{0, 2, 4, 2},
		{3, 1, 4, 2},
		{1, 0, 3, 2},
		{0, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := OpponentPlacementsBefore(tt.first, tt.ours, tt.players); got != tt.want {
			t.Fatalf("OpponentPlacementsBefore(%d, %d, %d) = %d, want %d", tt.first, tt.ours, tt.players, got, tt.want)
		}
	}
}

func TestNoFreeNode(t *testing.T) {
	pc := beginnerContext(t)
	for _, n := range pc.Board.Nodes() {
		pc.Occ.Nodes[n] = domain.NodePiece{Seat: 1}
	}
	if _, _, err := pc.InitialPair(); !errors.Is(err, ErrNoLegalNode) {
		t.Fatalf("InitialPair = %v", err)
	}
	if _, err := pc.SecondSettlement(0); !errors.Is(err, ErrNoLegalNode) {
		t.Fatalf("SecondSettlement = %v", err)
	}
}
