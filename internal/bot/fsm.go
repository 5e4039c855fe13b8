package bot

import (
	"context"
	"sort"

	"hexbot/internal/bot/brain"
	"hexbot/internal/bot/internal"
	"hexbot/internal/domain"
)

// decide fires the first-time action of the current phase when it is ours
// to act and nothing is outstanding.
func (a *Agent) decide(ctx context.Context) {
	m := a.mirror
	a.gate.enter(m.Phase, m.CurrentSeat)

	if a.exp.pending() {
		if a.tick-a.exp.since <= a.tuning.MaxAskWait {
			return
		}
		a.logger.Info("Agent.decide: %s gave up waiting for %s after %d ticks", a.ID, a.exp.await, a.tick-a.exp.since)
		a.events.Record(a.tick, EventRetry, a.lastID, "%s", a.exp.await)
		a.exp.clear()
	}
	if a.trade.await != TradeIdle || !m.OurTurn() || m.Board == nil {
		return
	}
	if !a.gate.ready(a.tick, a.tuning.MaxAskWait) {
		return
	}

	switch m.Phase {
	case domain.PhasePlaceFirstSettlement, domain.PhasePlaceSecondSettlement:
		a.placeSetupSettlement(ctx)
	case domain.PhasePlaceFirstRoad, domain.PhasePlaceSecondRoad:
		a.placeSetupRoad(ctx)
	case domain.PhaseRoll:
		a.rollPhase(ctx)
	case domain.PhaseAction:
		a.actionPhase(ctx)
	case domain.PhasePlacingRoad, domain.PhasePlacingSettlement, domain.PhasePlacingCity:
		a.placePlanned(ctx)
	case domain.PhasePlacingFreeRoad1, domain.PhasePlacingFreeRoad2:
		a.placeFreeRoad(ctx)
	case domain.PhasePlacingRobber:
		a.moveRobber(ctx)
	case domain.PhaseAwaitResourcePick:
		a.pickDiscovery(ctx)
	case domain.PhaseAwaitMonopolyPick:
		a.pickMonopoly(ctx)
	}
}

func (a *Agent) placementContext() internal.PlacementContext {
	return internal.PlacementContext{Board: a.mirror.Board, Occ: a.mirror.Occ, Seat: a.Seat, Cutoff: a.tuning.Cutoff}
}

func (a *Agent) putPiece(ctx context.Context, piece domain.PieceType, coord int) {
	a.ask(ctx, domain.PutPiece{Piece: piece, Coord: coord}, expectation{await: AwaitPlacement, piece: piece, coord: coord})
}

func (a *Agent) placeSetupSettlement(ctx context.Context) {
	pc := a.placementContext()
	var node int
	var err error
	settlements, _ := a.mirror.Buildings(a.Seat)
	if a.mirror.Phase == domain.PhasePlaceFirstSettlement || len(settlements) == 0 {
		node, _, err = pc.InitialPair()
	} else {
		node, err = pc.SecondSettlement(settlements[0])
	}
	if err != nil {
		a.logger.Error("Agent.placeSetupSettlement: %s found no node: %v", a.ID, err)
		return
	}
	a.putPiece(ctx, domain.PieceSettlement, node)
}

// roadlessSettlement returns our settlement that no road of ours touches yet.
func (a *Agent) roadlessSettlement() int {
	settlements, _ := a.mirror.Buildings(a.Seat)
	for _, n := range settlements {
		connected := false
		for _, e := range a.mirror.Board.EdgesAtNode(n) {
			if owner, ok := a.mirror.Occ.Edges[e]; ok && owner == a.Seat {
				connected = true
				break
			}
		}
		if !connected {
			return n
		}
	}
	if len(settlements) > 0 {
		return settlements[len(settlements)-1]
	}
	return domain.NoCoord
}

func (a *Agent) placeSetupRoad(ctx context.Context) {
	node := a.roadlessSettlement()
	if node == domain.NoCoord {
		a.logger.Warn("Agent.placeSetupRoad: %s has no settlement to extend", a.ID)
		return
	}
	pc := a.placementContext()
	var edge int
	var err error
	if a.mirror.Phase == domain.PhasePlaceSecondRoad {
		n := internal.OpponentPlacementsBefore(a.mirror.FirstSeat, a.Seat, len(a.mirror.Players))
		edge, err = pc.SecondRoad(node, n)
	} else {
		edge, err = pc.RoadToward(node, nil)
	}
	if err != nil {
		a.logger.Error("Agent.placeSetupRoad: %s found no edge: %v", a.ID, err)
		return
	}
	a.putPiece(ctx, domain.PieceRoad, edge)
}

// robberBlocksUs reports whether the robber sits on a producing hex we touch.
func (a *Agent) robberBlocksUs() bool {
	m := a.mirror
	hex, ok := m.Board.Hex(m.Robber)
	if !ok || !hex.Produces() {
		return false
	}
	s, c := m.Buildings(a.Seat)
	for _, n := range append(s, c...) {
		for _, h := range m.Board.HexesAtNode(n) {
			if h == m.Robber {
				return true
			}
		}
	}
	return false
}

func (a *Agent) canPlay(card domain.DevCard) bool {
	return !a.mirror.PlayedCardThisTurn && a.mirror.Us().Cards[card] > 0
}

func (a *Agent) playCard(ctx context.Context, card domain.DevCard) {
	a.ask(ctx, domain.PlayDevCard{Card: card}, expectation{await: AwaitPhase, phase: a.mirror.Phase, card: card})
}

func (a *Agent) rollPhase(ctx context.Context) {
	if a.canPlay(domain.CardKnight) && a.robberBlocksUs() {
		a.playCard(ctx, domain.CardKnight)
		return
	}
	a.ask(ctx, domain.RollDice{}, expectation{await: AwaitDice})
}

// ensurePlan refreshes the plan and returns its top. Targets that cannot be
// placed right now are dropped.
func (a *Agent) ensurePlan() (brain.BuildTarget, bool) {
	if a.plan.Invalidate(a.mirror.TargetPossible) {
		a.logger.Debug("Agent.ensurePlan: %s plan invalidated", a.ID)
	}
	if a.plan.Len() == 0 {
		for _, t := range a.planner.Plan(a.mirror, a.trackers) {
			a.plan.Push(t)
		}
		if top, ok := a.plan.Peek(); ok {
			a.events.Record(a.tick, EventPlan, "", "%d targets, next %s at %d", a.plan.Len(), top.Piece, top.Coord)
		}
	}
	for {
		top, ok := a.plan.Peek()
		if !ok {
			return brain.BuildTarget{}, false
		}
		if a.mirror.LegalNow(top) {
			return top, true
		}
		a.plan.Pop()
	}
}

// currentTarget is the plan top, or what the planner would pick now.
func (a *Agent) currentTarget() (brain.BuildTarget, bool) {
	if top, ok := a.plan.Peek(); ok {
		return top, true
	}
	if a.mirror.Board == nil {
		return brain.BuildTarget{}, false
	}
	items := a.planner.Plan(a.mirror, a.trackers)
	if len(items) == 0 {
		return brain.BuildTarget{}, false
	}
	return items[len(items)-1], true
}

func (a *Agent) actionPhase(ctx context.Context) {
	target, ok := a.ensurePlan()
	if !ok {
		a.endTurn(ctx)
		return
	}
	hand := a.mirror.KnownHand(a.Seat)
	cost := target.Cost()
	if hand.Contains(cost) {
		a.build(ctx, target)
		return
	}
	if a.playDevCard(ctx, target, hand) {
		return
	}
	if !a.trade.offered && a.proposeOffer(ctx, cost) {
		return
	}
	if !a.trade.banked && a.bankTrade(ctx, cost, hand) {
		return
	}
	a.endTurn(ctx)
}

func (a *Agent) build(ctx context.Context, t brain.BuildTarget) {
	if t.Piece == domain.PieceCard {
		a.ask(ctx, domain.BuyDevCard{}, expectation{await: AwaitDevCard, verb: domain.CardDraw})
		return
	}
	a.ask(ctx, domain.BuildRequest{Piece: t.Piece}, expectation{await: AwaitPhase, phase: domain.PhaseAction})
}

func (a *Agent) endTurn(ctx context.Context) {
	a.ask(ctx, domain.EndTurn{}, expectation{await: AwaitTurn})
}

// playDevCard plays the card that helps the plan top most, if any.
func (a *Agent) playDevCard(ctx context.Context, t brain.BuildTarget, hand domain.Bundle) bool {
	missing := hand.Missing(t.Cost()).KnownTotal()
	switch {
	case t.Piece == domain.PieceRoad && a.canPlay(domain.CardRoadBuilding) && a.mirror.Us().RoadsLeft >= 2:
		a.playCard(ctx, domain.CardRoadBuilding)
	case a.canPlay(domain.CardDiscovery) && missing > 0 && missing <= 2:
		a.playCard(ctx, domain.CardDiscovery)
	case a.canPlay(domain.CardMonopoly) && missing > 0:
		a.playCard(ctx, domain.CardMonopoly)
	case a.canPlay(domain.CardKnight) && a.robberBlocksUs():
		a.playCard(ctx, domain.CardKnight)
	default:
		return false
	}
	return true
}

func placingPiece(p domain.Phase) domain.PieceType {
	switch p {
	case domain.PhasePlacingSettlement:
		return domain.PieceSettlement
	case domain.PhasePlacingCity:
		return domain.PieceCity
	default:
		return domain.PieceRoad
	}
}

// placePlanned puts the piece we asked to build on the plan's coordinate.
func (a *Agent) placePlanned(ctx context.Context) {
	piece := placingPiece(a.mirror.Phase)
	if top, ok := a.plan.Peek(); ok && top.Piece == piece && a.mirror.LegalNow(top) {
		a.putPiece(ctx, piece, top.Coord)
		return
	}
	coord, err := a.fallbackCoord(piece)
	if err != nil {
		a.logger.Warn("Agent.placePlanned: %s cannot place %s: %v", a.ID, piece, err)
		return
	}
	a.putPiece(ctx, piece, coord)
}

func (a *Agent) placeFreeRoad(ctx context.Context) {
	if top, ok := a.plan.Peek(); ok && top.Piece == domain.PieceRoad && a.mirror.LegalNow(top) {
		a.putPiece(ctx, domain.PieceRoad, top.Coord)
		return
	}
	edge, err := a.fallbackCoord(domain.PieceRoad)
	if err != nil {
		a.logger.Warn("Agent.placeFreeRoad: %s has no legal road: %v", a.ID, err)
		return
	}
	a.putPiece(ctx, domain.PieceRoad, edge)
}

// fallbackCoord picks a legal coordinate when the plan has none.
func (a *Agent) fallbackCoord(piece domain.PieceType) (int, error) {
	m := a.mirror
	switch piece {
	case domain.PieceRoad:
		pc := a.placementContext()
		s, c := m.Buildings(a.Seat)
		for _, n := range append(s, c...) {
			if edge, err := pc.RoadToward(n, nil); err == nil {
				return edge, nil
			}
		}
		if edges := legalRoads(m, a.Seat); len(edges) > 0 {
			return edges[0], nil
		}
		return domain.NoCoord, internal.ErrNoLegalEdge
	case domain.PieceSettlement:
		return bestNode(m, func(n int) bool { return m.Occ.CanSettle(m.Board, a.Seat, n, false) })
	default:
		return bestNode(m, func(n int) bool { return m.Occ.CanCity(a.Seat, n) })
	}
}

// legalRoads lists every edge we may build on, sorted.
func legalRoads(m *brain.Mirror, seat int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, n := range m.Board.Nodes() {
		for _, e := range m.Board.EdgesAtNode(n) {
			if seen[e] {
				continue
			}
			seen[e] = true
			if m.Occ.CanRoad(m.Board, seat, e) {
				out = append(out, e)
			}
		}
	}
	sort.Ints(out)
	return out
}

// bestNode returns the node accepted by ok with the highest production weight.
func bestNode(m *brain.Mirror, ok func(int) bool) (int, error) {
	best, bestWeight := domain.NoCoord, -1
	for _, n := range m.Board.Nodes() {
		if !ok(n) {
			continue
		}
		w := internal.NewProduction(m.Board, []int{n}, nil, m.Robber).Weight
		if w > bestWeight {
			best, bestWeight = n, w
		}
	}
	if best == domain.NoCoord {
		return best, internal.ErrNoLegalNode
	}
	return best, nil
}

func (a *Agent) moveRobber(ctx context.Context) {
	m := a.mirror
	a.trackers.Recompute(m)
	views := a.trackers.SeatViews(m)
	s, c := m.Buildings(a.Seat)
	rc := internal.RobberContext{
		Board:    m.Board,
		Robber:   m.Robber,
		OurNodes: append(s, c...),
		Cutoff:   a.tuning.Cutoff,
		Rng:      a.rng,
	}
	victim := internal.PickVictim(views, a.Seat, nil)
	var hex int
	if victim == domain.NoSeat {
		hex = rc.ChooseHex(internal.SeatView{Seat: domain.NoSeat})
	} else {
		hex = rc.ChooseHex(views[victim])
	}
	a.logger.Debug("Agent.moveRobber: %s targets seat %d on hex %d", a.ID, victim, hex)
	a.ask(ctx, domain.MoveRobber{Hex: hex}, expectation{await: AwaitRobber, coord: hex})
}

// chooseVictim answers the server's steal prompt with the leading candidate.
func (a *Agent) chooseVictim(ctx context.Context, candidates []bool) {
	m := a.mirror
	a.trackers.Recompute(m)
	allowed := func(seat int) bool { return seat < len(candidates) && candidates[seat] }
	victim := internal.PickVictim(a.trackers.SeatViews(m), a.Seat, allowed)
	if victim == domain.NoSeat {
		for s, ok := range candidates {
			if ok && s != a.Seat {
				victim = s
				break
			}
		}
	}
	if victim == domain.NoSeat {
		a.logger.Warn("Agent.chooseVictim: %s got no candidate", a.ID)
		return
	}
	a.send(ctx, domain.ChooseVictim{Seat: victim})
}

// discard sheds count cards, guided by what we are saving for.
func (a *Agent) discard(ctx context.Context, count int) {
	m := a.mirror
	// Only a plan in progress guides the discard; otherwise it is random.
	var target *domain.Bundle
	if t, ok := a.plan.Peek(); ok {
		cost := t.Cost()
		target = &cost
	}
	rolls := m.Production(a.Seat).RollsPerResource
	out := internal.ChooseDiscard(m.KnownHand(a.Seat), count, target, rolls, a.rng)
	if out.Total() < count {
		a.logger.Warn("Agent.discard: %s can only name %d of %d cards", a.ID, out.Total(), count)
	}
	if !a.exp.pending() {
		a.exp = expectation{await: AwaitDiscard, coord: domain.NoCoord, since: a.tick}
	}
	a.send(ctx, domain.Discard{Resources: out})
}

// hardestFirst orders the known types by rolls-per-resource, worst first.
func (a *Agent) hardestFirst() []domain.Resource {
	rolls := a.mirror.Production(a.Seat).RollsPerResource
	order := append([]domain.Resource(nil), domain.KnownResources[:]...)
	sort.SliceStable(order, func(i, j int) bool { return rolls[order[i]] > rolls[order[j]] })
	return order
}

func (a *Agent) pickDiscovery(ctx context.Context) {
	var missing domain.Bundle
	if t, ok := a.currentTarget(); ok {
		missing = a.mirror.KnownHand(a.Seat).Missing(t.Cost())
	}
	var pick domain.Bundle
	order := a.hardestFirst()
	for _, r := range order {
		for missing[r] > 0 && pick.Total() < 2 {
			pick[r]++
			missing[r]--
		}
	}
	for pick.Total() < 2 {
		pick[order[0]]++
	}
	a.ask(ctx, domain.DiscoveryPick{Resources: pick}, expectation{await: AwaitPick, phase: domain.PhaseAwaitResourcePick})
}

func (a *Agent) pickMonopoly(ctx context.Context) {
	var missing domain.Bundle
	if t, ok := a.currentTarget(); ok {
		missing = a.mirror.KnownHand(a.Seat).Missing(t.Cost())
	}
	var held domain.Bundle
	for s := range a.mirror.Players {
		if s != a.Seat {
			held.Add(a.mirror.KnownHand(s))
		}
	}
	best := domain.Unknown
	for _, r := range a.hardestFirst() {
		if best == domain.Unknown ||
			missing[r] > missing[best] ||
			(missing[r] == missing[best] && held[r] > held[best]) {
			best = r
		}
	}
	a.ask(ctx, domain.MonopolyPick{Resource: best}, expectation{await: AwaitPick, phase: domain.PhaseAwaitMonopolyPick})
}
