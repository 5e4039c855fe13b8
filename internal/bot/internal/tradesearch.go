package internal

import "hexbot/internal/domain"

const (
	// targetBonus dwarfs the piece-set score so reaching the plan target always wins.
	targetBonus = 100
	// maxSearchNodes caps the arena on pathological hands.
	maxSearchNodes = 20000
)

// TradeStep is one market exchange.
type TradeStep struct {
	Give domain.Bundle
	Get  domain.Bundle
}

// TradePlan is the outcome of a bank search.
type TradePlan struct {
	Result domain.Bundle
	Score  int
	Steps  []TradeStep
}

type searchNode struct {
	bundle domain.Bundle
	parent int
	give   domain.Resource
	get    domain.Resource
	depth  int
}

// BankSearch explores bundles reachable through market trades only.
type BankSearch struct {
	Ratios TradeRatios
	Target domain.Bundle

	nodes []searchNode
}

// NewBankSearch prepares a search for target under ratios.
func NewBankSearch(ratios TradeRatios, target domain.Bundle) *BankSearch {
	return &BankSearch{Ratios: ratios, Target: target}
}

// Run searches from start and returns the best bundle with the trades leading to it.
func (s *BankSearch) Run(start domain.Bundle) TradePlan {
	s.nodes = s.nodes[:0]
	s.nodes = append(s.nodes, searchNode{bundle: start, parent: -1})
	frontier := []int{0}

	for len(frontier) > 0 && len(s.nodes) < maxSearchNodes {
		idx := frontier[0]
		frontier = frontier[1:]
		cur := s.nodes[idx]
		for _, give := range domain.KnownResources {
			ratio := s.Ratios[give]
			if cur.bundle[give] < ratio {
				continue
			}
			for _, get := range domain.KnownResources {
				if get == give {
					continue
				}
				child := cur.bundle
				child[give] -= ratio
				child[get]++
				pruned := s.dominated(child)
				s.nodes = append(s.nodes, searchNode{
					bundle: child,
					parent: idx,
					give:   give,
					get:    get,
					depth:  cur.depth + 1,
				})
				if !pruned {
					frontier = append(frontier, len(s.nodes)-1)
				}
			}
		}
	}

	best := 0
	bestScore := ScoreBundle(start, s.Target)
	for i := 1; i < len(s.nodes); i++ {
		sc := ScoreBundle(s.nodes[i].bundle, s.Target)
		if s.better(i, sc, best, bestScore) {
			best, bestScore = i, sc
		}
	}
	return TradePlan{
		Result: s.nodes[best].bundle,
		Score:  bestScore,
		Steps:  s.path(best),
	}
}

// Candidates returns every discovered bundle with its trade depth.
func (s *BankSearch) Candidates() ([]domain.Bundle, []int) {
	bundles := make([]domain.Bundle, len(s.nodes))
	depths := make([]int, len(s.nodes))
	for i, n := range s.nodes {
		bundles[i] = n.bundle
		depths[i] = n.depth
	}
	return bundles, depths
}

func (s *BankSearch) dominated(b domain.Bundle) bool {
	for _, n := range s.nodes {
		if b.DominatedBy(n.bundle) {
			return true
		}
	}
	return false
}

// better orders by score, then fewer trades, then more cards kept.
func (s *BankSearch) better(i, score, j, bestScore int) bool {
	if score != bestScore {
		return score > bestScore
	}
	a, b := s.nodes[i], s.nodes[j]
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.bundle.Total() > b.bundle.Total()
}

func (s *BankSearch) path(idx int) []TradeStep {
	var steps []TradeStep
	for idx > 0 {
		n := s.nodes[idx]
		var step TradeStep
		step.Give[n.give] = s.Ratios[n.give]
		step.Get[n.get] = 1
		steps = append(steps, step)
		idx = n.parent
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

// ScoreBundle rates a hand: a large bonus when it covers target, plus one point
// per road set and two per settlement or city set it holds.
func ScoreBundle(b, target domain.Bundle) int {
	score := 0
	if !target.IsEmpty() && b.Contains(target) {
		score += targetBonus
	}
	score += countSets(b, domain.RoadCost)
	score += 2 * countSets(b, domain.SettlementCost)
	score += 2 * countSets(b, domain.CityCost)
	return score
}

func countSets(b, cost domain.Bundle) int {
	n := 0
	for b.Contains(cost) {
		b.Subtract(cost)
		n++
	}
	return n
}
