package brain

import "hexbot/internal/domain"

// BuildTarget is one step of a building plan. Coord is NoCoord for cards.
type BuildTarget struct {
	Piece domain.PieceType
	Coord int
}

// Cost returns the resources the target needs.
func (t BuildTarget) Cost() domain.Bundle {
	return domain.CostOf(t.Piece)
}

// BuildingPlan is a LIFO stack of targets; the top is built first.
type BuildingPlan struct {
	items []BuildTarget
}

// Push adds t on top.
func (p *BuildingPlan) Push(t BuildTarget) {
	p.items = append(p.items, t)
}

// Peek returns the top target without removing it.
func (p *BuildingPlan) Peek() (BuildTarget, bool) {
	if len(p.items) == 0 {
		return BuildTarget{}, false
	}
	return p.items[len(p.items)-1], true
}

// Pop removes and returns the top target.
func (p *BuildingPlan) Pop() (BuildTarget, bool) {
	t, ok := p.Peek()
	if ok {
		p.items = p.items[:len(p.items)-1]
	}
	return t, ok
}

func (p *BuildingPlan) Len() int { return len(p.items) }

// Clear drops every target.
func (p *BuildingPlan) Clear() {
	p.items = p.items[:0]
}

// Items returns the targets bottom first.
func (p *BuildingPlan) Items() []BuildTarget {
	return append([]BuildTarget(nil), p.items...)
}

// Invalidate clears the whole plan if any target is no longer possible.
// Later targets usually depend on earlier ones, so partial plans are not kept.
func (p *BuildingPlan) Invalidate(possible func(BuildTarget) bool) bool {
	for _, t := range p.items {
		if !possible(t) {
			p.Clear()
			return true
		}
	}
	return false
}
