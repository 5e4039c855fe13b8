package domain

import (
	"fmt"
	"strings"
)

// Resource identifies one slot of a Bundle.
type Resource int

const (
	Clay Resource = iota
	Ore
	Sheep
	Wheat
	Wood
	// Unknown holds cards whose type the mirror could not observe (stolen, discarded by opponents).
	Unknown
)

// NumKnown is the number of producible resource types.
const NumKnown = 5

// KnownResources lists the producible resource types in their canonical order.
var KnownResources = [NumKnown]Resource{Clay, Ore, Sheep, Wheat, Wood}

var resourceNames = [...]string{"clay", "ore", "sheep", "wheat", "wood", "unknown"}

func (r Resource) String() string {
	if r < 0 || int(r) >= len(resourceNames) {
		return fmt.Sprintf("resource(%d)", int(r))
	}
	return resourceNames[r]
}

// IsKnown reports whether r is one of the five producible types.
func (r Resource) IsKnown() bool {
	return r >= Clay && r <= Wood
}

// ParseResource maps a lower-case name back to its Resource.
func ParseResource(name string) (Resource, bool) {
	for i, n := range resourceNames {
		if n == name {
			return Resource(i), true
		}
	}
	return Unknown, false
}

// Bundle is a count per resource type plus the unknown bucket.
// It is a value type: assignment copies it, and it can be used as a map key.
type Bundle [NumKnown + 1]int

// NewBundle builds a bundle of known resources in canonical order.
func NewBundle(clay, ore, sheep, wheat, wood int) Bundle {
	return Bundle{clay, ore, sheep, wheat, wood, 0}
}

// Piece costs of the base game.
var (
	RoadCost       = NewBundle(1, 0, 0, 0, 1)
	SettlementCost = NewBundle(1, 0, 1, 1, 1)
	CityCost       = NewBundle(0, 3, 0, 2, 0)
	CardCost       = NewBundle(0, 1, 1, 1, 0)
)

// Get returns the count of r.
func (b Bundle) Get(r Resource) int {
	return b[r]
}

// Add adds every component of o to b.
func (b *Bundle) Add(o Bundle) {
	for i := range b {
		b[i] += o[i]
	}
}

// AddOne adds n units of r. Negative n is treated as a subtraction.
func (b *Bundle) AddOne(r Resource, n int) {
	if n < 0 {
		b.SubtractOne(r, -n)
		return
	}
	b[r] += n
}

// Subtract removes o from b in place. A known type that runs short is zeroed
// and the shortfall is taken from Unknown, which never drops below zero.
func (b *Bundle) Subtract(o Bundle) {
	for i := range b {
		b.SubtractOne(Resource(i), o[i])
	}
}

// SubtractOne removes n units of r with the same unknown fallback as Subtract.
func (b *Bundle) SubtractOne(r Resource, n int) {
	if n <= 0 {
		return
	}
	if b[r] >= n {
		b[r] -= n
		return
	}
	short := n - b[r]
	b[r] = 0
	if r == Unknown {
		return
	}
	b[Unknown] -= short
	if b[Unknown] < 0 {
		b[Unknown] = 0
	}
}

// Contains reports whether b holds at least o in every component.
func (b Bundle) Contains(o Bundle) bool {
	for i := range b {
		if b[i] < o[i] {
			return false
		}
	}
	return true
}

// DominatedBy reports whether every component of b is <= the matching component of o.
func (b Bundle) DominatedBy(o Bundle) bool {
	return o.Contains(b)
}

// Total counts every card including unknown ones.
func (b Bundle) Total() int {
	n := 0
	for _, v := range b {
		n += v
	}
	return n
}

// KnownTotal counts only the five known types.
func (b Bundle) KnownTotal() int {
	return b.Total() - b[Unknown]
}

// IsEmpty reports whether b holds nothing.
func (b Bundle) IsEmpty() bool {
	return b.Total() == 0
}

// Missing returns what b lacks to contain target, ignoring the unknown slot.
func (b Bundle) Missing(target Bundle) Bundle {
	var out Bundle
	for _, r := range KnownResources {
		if d := target[r] - b[r]; d > 0 {
			out[r] = d
		}
	}
	return out
}

func (b Bundle) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i, v := range b {
		if v == 0 {
			continue
		}
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&sb, "%s:%d", Resource(i), v)
	}
	sb.WriteByte('}')
	return sb.String()
}
