package brain

import (
	"hexbot/internal/bot/internal"
	"hexbot/internal/domain"
)

// PlayerTracker holds what we estimate about one seat's race to victory.
type PlayerTracker struct {
	Seat int
	// WinETA is the estimated number of turns seat needs to win.
	WinETA int
	// Estimate is the seat's current building-speed estimate from its known hand.
	Estimate internal.SpeedEstimate
}

// Trackers holds one tracker per seat.
type Trackers struct {
	Cutoff int
	seats  []PlayerTracker
}

// NewTrackers creates trackers for players seats.
func NewTrackers(players, cutoff int) *Trackers {
	if cutoff <= 0 {
		cutoff = internal.DefaultCutoff
	}
	t := &Trackers{Cutoff: cutoff, seats: make([]PlayerTracker, players)}
	for i := range t.seats {
		t.seats[i] = PlayerTracker{Seat: i, WinETA: cutoff * domain.WinningPoints}
	}
	return t
}

// Get returns the tracker of seat.
func (t *Trackers) Get(seat int) PlayerTracker {
	if seat < 0 || seat >= len(t.seats) {
		return PlayerTracker{Seat: seat, WinETA: t.Cutoff * domain.WinningPoints}
	}
	return t.seats[seat]
}

// All returns a copy of every tracker in seat order.
func (t *Trackers) All() []PlayerTracker {
	return append([]PlayerTracker(nil), t.seats...)
}

// Recompute refreshes every tracker from the mirror.
func (t *Trackers) Recompute(m *Mirror) {
	if m.Board == nil {
		return
	}
	for i := range t.seats {
		t.seats[i] = t.track(m, i)
	}
}

func (t *Trackers) track(m *Mirror, seat int) PlayerTracker {
	est := m.Estimator(seat)
	hand := m.KnownHand(seat)
	pt := PlayerTracker{Seat: seat, Estimate: est.EstimatesFast(hand, t.Cutoff)}
	pt.WinETA = winETA(m, seat, est, hand, t.Cutoff)
	return pt
}

// winETA sums, over the points still missing, the cheaper of the next
// settlement (while a legal spot and stock remain) or the next city upgrade.
// The first step starts from the known hand, later ones from nothing.
func winETA(m *Mirror, seat int, est internal.SpeedEstimator, hand domain.Bundle, cutoff int) int {
	need := domain.WinningPoints - m.Points(seat)
	if need <= 0 {
		return 0
	}
	p := m.Players[seat]
	settlements, _ := m.Buildings(seat)
	onBoard := len(settlements)
	settleLeft, cityLeft := p.SettlementsLeft, p.CitiesLeft
	spots := legalSpots(m, seat)

	settleCost := est.FastOrCutoff(hand, domain.SettlementCost, cutoff)
	cityCost := est.FastOrCutoff(hand, domain.CityCost, cutoff)
	laterSettle := est.FastOrCutoff(domain.Bundle{}, domain.SettlementCost, cutoff)
	laterCity := est.FastOrCutoff(domain.Bundle{}, domain.CityCost, cutoff)

	total := 0
	for i := 0; i < need; i++ {
		canSettle := settleLeft > 0 && spots > 0
		canCity := cityLeft > 0 && onBoard > 0
		switch {
		case canSettle && (!canCity || settleCost <= cityCost):
			total += settleCost
			settleLeft--
			spots--
			onBoard++
		case canCity:
			total += cityCost
			cityLeft--
			onBoard--
			settleLeft++
		default:
			total += cutoff
		}
		settleCost, cityCost = laterSettle, laterCity
	}
	return total
}

// legalSpots counts the free nodes seat could reach: those touching its road
// network, or any free node when it has no roads yet.
func legalSpots(m *Mirror, seat int) int {
	hasRoad := false
	for _, owner := range m.Occ.Edges {
		if owner == seat {
			hasRoad = true
			break
		}
	}
	n := 0
	for _, node := range m.Board.Nodes() {
		if hasRoad {
			if m.Occ.CanSettle(m.Board, seat, node, false) {
				n++
			}
			continue
		}
		if m.Occ.NodeFree(m.Board, node) {
			n++
		}
	}
	if n == 0 && hasRoad {
		// A road or two usually opens another spot.
		for _, node := range m.Board.Nodes() {
			if m.Occ.NodeFree(m.Board, node) {
				return 1
			}
		}
	}
	return n
}

// SeatViews packs what the robber and victim heuristics need about every seat.
func (t *Trackers) SeatViews(m *Mirror) []internal.SeatView {
	views := make([]internal.SeatView, len(m.Players))
	for i := range m.Players {
		s, c := m.Buildings(i)
		views[i] = internal.SeatView{
			Seat:        i,
			Settlements: s,
			Cities:      c,
			Hand:        m.KnownHand(i),
			Ratios:      m.Ratios(i),
			WinETA:      t.Get(i).WinETA,
		}
	}
	return views
}
