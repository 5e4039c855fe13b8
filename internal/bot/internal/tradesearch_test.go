package internal

import (
	"testing"

	"hexbot/internal/domain"

	"pgregory.net/rapid"
)

func TestBankSearchSingleTrade(t *testing.T) {
	target := domain.NewBundle(0, 0, 1, 0, 0)
	plan := NewBankSearch(DefaultRatios(), target).Run(domain.NewBundle(0, 4, 0, 0, 0))

	if plan.Result != target {
		t.Fatalf("result = %v, want %v", plan.Result, target)
	}
	if plan.Score != targetBonus {
		t.Fatalf("score = %d, want %d", plan.Score, targetBonus)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("steps = %+v, want one trade", plan.Steps)
	}
	step := plan.Steps[0]
	if step.Give != domain.NewBundle(0, 4, 0, 0, 0) || step.Get != target {
		t.Fatalf("step = %+v", step)
	}
}

func TestBankSearchKeepsHandWhenNothingHelps(t *testing.T) {
	start := domain.NewBundle(1, 1, 0, 0, 1)
	plan := NewBankSearch(DefaultRatios(), domain.CityCost).Run(start)
	if plan.Result != start || len(plan.Steps) != 0 {
		t.Fatalf("plan = %+v, want the untouched hand", plan)
	}
	if plan.Score != 1 {
		t.Fatalf("score = %d, want one road set", plan.Score)
	}
}

func TestBankSearchPrunesDominatedBundles(t *testing.T) {
	s := NewBankSearch(DefaultRatios(), domain.RoadCost)
	s.Run(domain.NewBundle(0, 8, 0, 0, 0))
	bundles, depths := s.Candidates()
	if len(bundles) != len(depths) || len(bundles) < 2 {
		t.Fatalf("candidates = %d/%d", len(bundles), len(depths))
	}
	for i, b := range bundles {
		if b.Total()+3*depths[i] != 8 {
			t.Fatalf("bundle %v at depth %d lost cards outside trades", b, depths[i])
		}
		if depths[i] > 2 {
			t.Fatalf("eight ore allow two trades, found depth %d", depths[i])
		}
	}
}

func TestBankSearchResultIsNotDominated(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var ratios TradeRatios
		var start, target domain.Bundle
		for i, r := range domain.KnownResources {
			ratios[i] = rapid.IntRange(2, 4).Draw(t, "ratio")
			start[r] = rapid.IntRange(0, 5).Draw(t, "start")
			target[r] = rapid.IntRange(0, 2).Draw(t, "target")
		}
		s := NewBankSearch(ratios, target)
		plan := s.Run(start)

		bundles, depths := s.Candidates()
		for i, b := range bundles {
			if depths[i] > len(plan.Steps) || b == plan.Result {
				continue
			}
			if b.Contains(plan.Result) {
				t.Fatalf("result %v after %d trades is dominated by %v after %d", plan.Result, len(plan.Steps), b, depths[i])
			}
		}
	})
}

func TestBankSearchPlanReplays(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var start, target domain.Bundle
		for _, r := range domain.KnownResources {
			target[r] = rapid.IntRange(0, 2).Draw(t, "target")
			start[r] = rapid.IntRange(0, 1).Draw(t, "start")
		}
		start[domain.Ore] = rapid.IntRange(0, 6).Draw(t, "ore")
		start[domain.Wood] = rapid.IntRange(0, 6).Draw(t, "wood")
		plan := NewBankSearch(DefaultRatios(), target).Run(start)

		b := start
		for _, step := range plan.Steps {
			if !b.Contains(step.Give) {
				t.Fatalf("step %+v not affordable from %v", step, b)
			}
			b.Subtract(step.Give)
			b.Add(step.Get)
		}
		if b != plan.Result {
			t.Fatalf("replayed %v, plan says %v", b, plan.Result)
		}
		if plan.Score < ScoreBundle(start, target) {
			t.Fatalf("plan score %d below the untouched hand", plan.Score)
		}
	})
}

func TestScoreBundle(t *testing.T) {
	hand := domain.NewBundle(2, 3, 1, 3, 2)
	// Two road sets, one settlement set and one city set, counted independently.
	if got := ScoreBundle(hand, domain.Bundle{}); got != 2+2+2 {
		t.Fatalf("score = %d", got)
	}
	if got := ScoreBundle(hand, domain.CityCost); got != targetBonus+6 {
		t.Fatalf("score with target = %d", got)
	}
}
