package internal

import (
	"math/rand"
	"sort"

	"hexbot/internal/domain"
)

// ChooseDiscard selects count cards to shed. With a target, surplus beyond it
// goes first, then needed cards, each easiest-to-reacquire first. Without a
// target the cards are drawn at random without replacement.
func ChooseDiscard(hand domain.Bundle, count int, target *domain.Bundle, rolls [domain.NumKnown]int, rng *rand.Rand) domain.Bundle {
	var out domain.Bundle
	if count <= 0 {
		return out
	}
	if count > hand.KnownTotal() {
		count = hand.KnownTotal()
	}
	if target == nil {
		return randomDiscard(hand, count, rng)
	}

	order := make([]domain.Resource, 0, domain.NumKnown)
	order = append(order, domain.KnownResources[:]...)
	sort.SliceStable(order, func(i, j int) bool { return rolls[order[i]] < rolls[order[j]] })

	var surplus, needed domain.Bundle
	for _, r := range domain.KnownResources {
		keep := min(hand[r], target[r])
		needed[r] = keep
		surplus[r] = hand[r] - keep
	}
	for _, pool := range []domain.Bundle{surplus, needed} {
		for _, r := range order {
			if count == 0 {
				return out
			}
			n := min(pool[r], count)
			out[r] += n
			count -= n
		}
	}
	return out
}

func randomDiscard(hand domain.Bundle, count int, rng *rand.Rand) domain.Bundle {
	var out domain.Bundle
	cards := make([]domain.Resource, 0, hand.KnownTotal())
	for _, r := range domain.KnownResources {
		for i := 0; i < hand[r]; i++ {
			cards = append(cards, r)
		}
	}
	if rng != nil {
		rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	}
	for _, r := range cards[:count] {
		out[r]++
	}
	return out
}
