package domain

import (
	"errors"
	"testing"
)

func beginnerBoard(t *testing.T) *Topology {
	t.Helper()
	b, err := NewStandardTopology(BeginnerLayout())
	if err != nil {
		t.Fatalf("NewStandardTopology: %v", err)
	}
	return b
}

func TestStandardTopologyShape(t *testing.T) {
	b := beginnerBoard(t)
	if got := len(b.Hexes()); got != LayoutHexCount {
		t.Fatalf("hexes = %d, want %d", got, LayoutHexCount)
	}
	if got := len(b.Nodes()); got != 54 {
		t.Fatalf("nodes = %d, want 54", got)
	}
	if got := len(b.edges); got != 72 {
		t.Fatalf("edges = %d, want 72", got)
	}
	for _, n := range b.Nodes() {
		deg := len(b.AdjacentNodes(n))
		if deg < 2 || deg > 3 {
			t.Fatalf("node %d has %d neighbours", n, deg)
		}
		if len(b.EdgesAtNode(n)) != deg {
			t.Fatalf("node %d: edges and neighbours disagree", n)
		}
		if h := len(b.HexesAtNode(n)); h < 1 || h > 3 {
			t.Fatalf("node %d touches %d hexes", n, h)
		}
	}
	desert, ok := b.Hex(9)
	if !ok || desert.Produces() {
		t.Fatalf("hex 9 should be the barren desert, got %+v", desert)
	}
	for _, h := range b.Hexes() {
		if len(h.Nodes) != 6 {
			t.Fatalf("hex %d has %d corners", h.ID, len(h.Nodes))
		}
	}
}

func TestEdgeLookupIsSymmetric(t *testing.T) {
	b := beginnerBoard(t)
	for e := range b.edges {
		x, y := b.EdgeNodes(e)
		if got, ok := b.EdgeBetween(y, x); !ok || got != e {
			t.Fatalf("EdgeBetween(%d, %d) = %d %v, want %d", y, x, got, ok, e)
		}
	}
	if a, _ := b.EdgeNodes(999); a != NoCoord {
		t.Fatal("out of range edge should report NoCoord")
	}
}

func TestNewTopologyRejectsBadInput(t *testing.T) {
	hexes := []HexSpec{{ID: 0, Resource: Ore, Number: 6, Nodes: []int{0, 1, 2, 3, 4, 5}}}
	if _, err := NewTopology(append(hexes, hexes[0]), nil, nil); !errors.Is(err, ErrBadLayout) {
		t.Fatalf("duplicate hex: %v", err)
	}
	if _, err := NewTopology(hexes, [][2]int{{0, 7}}, nil); !errors.Is(err, ErrBadLayout) {
		t.Fatalf("dangling edge: %v", err)
	}
	if _, err := NewTopology(hexes, nil, []Port{{Resource: Wood, Nodes: [2]int{0, 9}}}); !errors.Is(err, ErrBadLayout) {
		t.Fatalf("dangling port: %v", err)
	}
}

func TestOccupancyRules(t *testing.T) {
	b := beginnerBoard(t)
	occ := NewOccupancy()
	node := b.Nodes()[10]
	adj := b.AdjacentNodes(node)[0]

	if !occ.CanSettle(b, 0, node, true) {
		t.Fatal("empty board should accept an initial settlement")
	}
	if occ.CanSettle(b, 0, node, false) {
		t.Fatal("a regular settlement needs a road")
	}
	occ.Nodes[node] = NodePiece{Seat: 0}
	if occ.NodeFree(b, adj) {
		t.Fatal("distance rule should block the neighbour")
	}
	if !occ.CanCity(0, node) || occ.CanCity(1, node) {
		t.Fatal("only the owner may upgrade")
	}

	edge, _ := b.EdgeBetween(node, adj)
	if !occ.CanRoad(b, 0, edge) {
		t.Fatal("road next to our settlement should be legal")
	}
	if occ.CanRoad(b, 1, edge) {
		t.Fatal("opponent has nothing connecting to this edge")
	}

	// A road leading out of adj is reachable through our road, unless an
	// opponent settles on adj.
	occ.Edges[edge] = 0
	var next int
	for _, e := range b.EdgesAtNode(adj) {
		if e != edge {
			next = e
			break
		}
	}
	if !occ.CanRoad(b, 0, next) {
		t.Fatal("road chain should extend")
	}
	occ.Nodes[adj] = NodePiece{Seat: 2}
	if occ.CanRoad(b, 0, next) {
		t.Fatal("opponent building should cut the chain")
	}

	clone := occ.Clone()
	delete(clone.Nodes, adj)
	if _, ok := occ.Nodes[adj]; !ok {
		t.Fatal("Clone must not share maps")
	}

	settlements, cities := occ.NodesOf(0)
	if len(settlements) != 1 || settlements[0] != node || len(cities) != 0 {
		t.Fatalf("NodesOf = %v %v", settlements, cities)
	}
}
