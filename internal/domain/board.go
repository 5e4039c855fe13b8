package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrBadLayout   = errors.New("malformed board layout")
	ErrUnknownHex  = errors.New("unknown hex")
	ErrUnknownNode = errors.New("unknown node")
)

// Hex is one tile of the board. Desert and water carry Number 0.
type Hex struct {
	ID       int
	Resource Resource // Unknown for desert
	Number   int
	Nodes    []int
}

// Produces reports whether the hex yields anything on a roll.
func (h Hex) Produces() bool {
	return h.Resource.IsKnown() && h.Number >= 2 && h.Number <= 12 && h.Number != 7
}

// Port grants a cheaper market ratio to the two nodes it touches.
// Resource Unknown marks a generic 3:1 port.
type Port struct {
	Resource Resource
	Nodes    [2]int
}

// Board is the read-only topology supplied by the rules engine.
type Board interface {
	Hexes() []Hex
	Hex(id int) (Hex, bool)
	Nodes() []int
	HexesAtNode(node int) []int
	AdjacentNodes(node int) []int
	EdgesAtNode(node int) []int
	EdgeNodes(edge int) (int, int)
	EdgeBetween(a, b int) (int, bool)
	PortsAtNode(node int) []Resource
}

// HexSpec describes a hex for NewTopology.
type HexSpec struct {
	ID       int
	Resource Resource
	Number   int
	Nodes    []int
}

// Topology is an adjacency-list Board.
type Topology struct {
	hexes      []Hex
	hexIndex   map[int]int
	nodes      []int
	nodeHexes  map[int][]int
	nodeAdj    map[int][]int
	nodeEdges  map[int][]int
	edges      [][2]int
	nodePorts  map[int][]Resource
	edgeLookup map[[2]int]int
}

var _ Board = (*Topology)(nil)

// NewTopology builds a Topology from hexes, edges (pairs of node ids) and ports.
func NewTopology(hexes []HexSpec, edges [][2]int, ports []Port) (*Topology, error) {
	t := &Topology{
		hexIndex:   make(map[int]int, len(hexes)),
		nodeHexes:  make(map[int][]int),
		nodeAdj:    make(map[int][]int),
		nodeEdges:  make(map[int][]int),
		nodePorts:  make(map[int][]Resource),
		edgeLookup: make(map[[2]int]int, len(edges)),
	}
	seen := make(map[int]bool)
	for _, hs := range hexes {
		if _, dup := t.hexIndex[hs.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate hex %d", ErrBadLayout, hs.ID)
		}
		t.hexIndex[hs.ID] = len(t.hexes)
		t.hexes = append(t.hexes, Hex{ID: hs.ID, Resource: hs.Resource, Number: hs.Number, Nodes: append([]int(nil), hs.Nodes...)})
		for _, n := range hs.Nodes {
			t.nodeHexes[n] = append(t.nodeHexes[n], hs.ID)
			if !seen[n] {
				seen[n] = true
				t.nodes = append(t.nodes, n)
			}
		}
	}
	for i, e := range edges {
		if !seen[e[0]] || !seen[e[1]] {
			return nil, fmt.Errorf("%w: edge %d references unknown node", ErrBadLayout, i)
		}
		t.edges = append(t.edges, e)
		t.nodeAdj[e[0]] = append(t.nodeAdj[e[0]], e[1])
		t.nodeAdj[e[1]] = append(t.nodeAdj[e[1]], e[0])
		t.nodeEdges[e[0]] = append(t.nodeEdges[e[0]], i)
		t.nodeEdges[e[1]] = append(t.nodeEdges[e[1]], i)
		t.edgeLookup[edgeKey(e[0], e[1])] = i
	}
	for _, p := range ports {
		for _, n := range p.Nodes {
			if !seen[n] {
				return nil, fmt.Errorf("%w: port on unknown node %d", ErrBadLayout, n)
			}
			t.nodePorts[n] = append(t.nodePorts[n], p.Resource)
		}
	}
	sort.Ints(t.nodes)
	return t, nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (t *Topology) Hexes() []Hex { return t.hexes }

func (t *Topology) Hex(id int) (Hex, bool) {
	i, ok := t.hexIndex[id]
	if !ok {
		return Hex{}, false
	}
	return t.hexes[i], true
}

func (t *Topology) Nodes() []int                    { return t.nodes }
func (t *Topology) HexesAtNode(node int) []int      { return t.nodeHexes[node] }
func (t *Topology) AdjacentNodes(node int) []int    { return t.nodeAdj[node] }
func (t *Topology) EdgesAtNode(node int) []int      { return t.nodeEdges[node] }
func (t *Topology) PortsAtNode(node int) []Resource { return t.nodePorts[node] }

func (t *Topology) EdgeNodes(edge int) (int, int) {
	if edge < 0 || edge >= len(t.edges) {
		return NoCoord, NoCoord
	}
	e := t.edges[edge]
	return e[0], e[1]
}

func (t *Topology) EdgeBetween(a, b int) (int, bool) {
	e, ok := t.edgeLookup[edgeKey(a, b)]
	return e, ok
}

// LayoutHexCount is the number of land hexes on the standard board.
const LayoutHexCount = 19

// StandardLayout is what the server announces for a standard board, hexes in
// row-major axial order (top row first, west to east).
type StandardLayout struct {
	Resources [LayoutHexCount]Resource
	Numbers   [LayoutHexCount]int
	Ports     []Port
}

// BeginnerLayout is the suggested first-game board of the base rules, without
// ports.
func BeginnerLayout() StandardLayout {
	return StandardLayout{
		Resources: [LayoutHexCount]Resource{
			Ore, Sheep, Wood,
			Wheat, Clay, Sheep, Clay,
			Wheat, Wood, Unknown, Wood, Ore,
			Wood, Ore, Wheat, Sheep,
			Clay, Wheat, Sheep,
		},
		Numbers: [LayoutHexCount]int{
			10, 2, 9,
			12, 6, 4, 10,
			9, 11, 0, 3, 8,
			8, 3, 4, 5,
			5, 6, 11,
		},
	}
}

// NewStandardTopology lays out the 19 land hexes of the base board. Node ids are
// assigned in order of first appearance walking hexes row-major and corners
// clockwise from the top.
func NewStandardTopology(layout StandardLayout) (*Topology, error) {
	// Pointy-top corners in (sqrt3/2, 1/2) units around a centre at (2q+r, 3r).
	corners := [6][2]int{{0, -2}, {1, -1}, {1, 1}, {0, 2}, {-1, 1}, {-1, -1}}
	nodeIDs := make(map[[2]int]int)
	var specs []HexSpec
	edgeSeen := make(map[[2]int]bool)
	var edges [][2]int

	id := 0
	for r := -2; r <= 2; r++ {
		for q := max(-2, -r-2); q <= min(2, -r+2); q++ {
			cx, cy := 2*q+r, 3*r
			ring := make([]int, 6)
			for i, c := range corners {
				key := [2]int{cx + c[0], cy + c[1]}
				n, ok := nodeIDs[key]
				if !ok {
					n = len(nodeIDs)
					nodeIDs[key] = n
				}
				ring[i] = n
			}
			for i := range ring {
				k := edgeKey(ring[i], ring[(i+1)%6])
				if !edgeSeen[k] {
					edgeSeen[k] = true
					edges = append(edges, k)
				}
			}
			specs = append(specs, HexSpec{
				ID:       id,
				Resource: layout.Resources[id],
				Number:   layout.Numbers[id],
				Nodes:    ring,
			})
			id++
		}
	}
	return NewTopology(specs, edges, layout.Ports)
}

// NodePiece is a settlement or city on a node.
type NodePiece struct {
	Seat int
	City bool
}

// Occupancy records what has been built where.
type Occupancy struct {
	Nodes map[int]NodePiece
	Edges map[int]int // edge -> seat
}

// NewOccupancy returns an empty Occupancy.
func NewOccupancy() Occupancy {
	return Occupancy{Nodes: make(map[int]NodePiece), Edges: make(map[int]int)}
}

// Clone deep-copies the occupancy maps.
func (o Occupancy) Clone() Occupancy {
	c := Occupancy{Nodes: make(map[int]NodePiece, len(o.Nodes)), Edges: make(map[int]int, len(o.Edges))}
	for k, v := range o.Nodes {
		c.Nodes[k] = v
	}
	for k, v := range o.Edges {
		c.Edges[k] = v
	}
	return c
}

// NodeFree reports whether a settlement could stand on node under the distance rule.
func (o Occupancy) NodeFree(b Board, node int) bool {
	if len(b.HexesAtNode(node)) == 0 {
		return false
	}
	if _, taken := o.Nodes[node]; taken {
		return false
	}
	for _, adj := range b.AdjacentNodes(node) {
		if _, taken := o.Nodes[adj]; taken {
			return false
		}
	}
	return true
}

// CanSettle reports whether seat may put a settlement on node. During the
// initial placement no road connection is required.
func (o Occupancy) CanSettle(b Board, seat, node int, initial bool) bool {
	if !o.NodeFree(b, node) {
		return false
	}
	if initial {
		return true
	}
	for _, e := range b.EdgesAtNode(node) {
		if owner, ok := o.Edges[e]; ok && owner == seat {
			return true
		}
	}
	return false
}

// CanCity reports whether seat owns a plain settlement on node.
func (o Occupancy) CanCity(seat, node int) bool {
	p, ok := o.Nodes[node]
	return ok && p.Seat == seat && !p.City
}

// CanRoad reports whether seat may build on edge: it must be free and touch
// one of seat's buildings, or one of seat's roads through a node not blocked
// by an opponent.
func (o Occupancy) CanRoad(b Board, seat, edge int) bool {
	if _, taken := o.Edges[edge]; taken {
		return false
	}
	a, c := b.EdgeNodes(edge)
	if a == NoCoord {
		return false
	}
	for _, n := range [2]int{a, c} {
		if p, ok := o.Nodes[n]; ok {
			if p.Seat == seat {
				return true
			}
			continue
		}
		for _, e := range b.EdgesAtNode(n) {
			if e == edge {
				continue
			}
			if owner, ok := o.Edges[e]; ok && owner == seat {
				return true
			}
		}
	}
	return false
}

// NodesOf lists the nodes where seat has a building, sorted.
func (o Occupancy) NodesOf(seat int) (settlements, cities []int) {
	for n, p := range o.Nodes {
		if p.Seat != seat {
			continue
		}
		if p.City {
			cities = append(cities, n)
		} else {
			settlements = append(settlements, n)
		}
	}
	sort.Ints(settlements)
	sort.Ints(cities)
	return settlements, cities
}
