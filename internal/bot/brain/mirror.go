package brain

import (
	"hexbot/internal/bot/internal"
	"hexbot/internal/domain"
)

// PlayerState is the mirrored view of one seat.
type PlayerState struct {
	Seat            int
	Resources       domain.Bundle
	RoadsLeft       int
	SettlementsLeft int
	CitiesLeft      int
	Knights         int
	// BonusPoints are points not coming from buildings (awards, revealed cards).
	BonusPoints int
	OldCards    int
	NewCards    int
	// Cards and FreshCards are only known for our own seat, by type.
	Cards      [domain.NumDevCards]int
	FreshCards [domain.NumDevCards]int
}

func newPlayerState(seat int) PlayerState {
	return PlayerState{
		Seat:            seat,
		RoadsLeft:       domain.MaxRoads,
		SettlementsLeft: domain.MaxSettlements,
		CitiesLeft:      domain.MaxCities,
	}
}

// EffectKind classifies what applying a message changed.
type EffectKind int

const (
	EffectIgnored EffectKind = iota
	EffectPhaseChanged
	EffectTurnChanged
	EffectResources
	EffectDesync
	EffectDice
	EffectPiecePlaced
	EffectRobberMoved
	EffectOfferMade
	EffectOfferCleared
	EffectOfferAccepted
	EffectOfferRejected
	EffectBankTrade
	EffectDevCard
	EffectDiscardRequested
	EffectVictimRequested
	EffectBoard
	EffectPing
	EffectDismissed
)

// Effect is a derived follow-up of Apply. Msg is the message that caused it.
type Effect struct {
	Kind  EffectKind
	Seat  int
	Piece domain.PieceType
	Coord int
	Value int
	Phase domain.Phase
	Msg   domain.Message
}

// Mirror is the agent's local copy of the game. It is never authoritative and
// is changed only through Apply.
type Mirror struct {
	Seat        int
	Players     []PlayerState
	Phase       domain.Phase
	CurrentSeat int
	FirstSeat   int
	Dice        int
	Robber      int
	Board       domain.Board
	Occ         domain.Occupancy
	Offers      []*domain.Offer
	DeckLeft    int
	// PlayedCardThisTurn is set once the seat in turn plays a development card.
	PlayedCardThisTurn bool
}

// NewMirror creates an empty mirror for players seats, seen from seat.
func NewMirror(seat, players int, board domain.Board) *Mirror {
	m := &Mirror{
		Seat:        seat,
		Players:     make([]PlayerState, players),
		CurrentSeat: domain.NoSeat,
		FirstSeat:   domain.NoSeat,
		Robber:      domain.NoCoord,
		Board:       board,
		Occ:         domain.NewOccupancy(),
		Offers:      make([]*domain.Offer, players),
		DeckLeft:    domain.DeckSize,
	}
	for i := range m.Players {
		m.Players[i] = newPlayerState(i)
	}
	if board != nil {
		m.Robber = desertHex(board)
	}
	return m
}

func desertHex(b domain.Board) int {
	for _, h := range b.Hexes() {
		if !h.Resource.IsKnown() {
			return h.ID
		}
	}
	return domain.NoCoord
}

func (m *Mirror) validSeat(seat int) bool {
	return seat >= 0 && seat < len(m.Players)
}

// Us returns our own player state.
func (m *Mirror) Us() *PlayerState {
	return &m.Players[m.Seat]
}

// OurTurn reports whether the current seat is ours.
func (m *Mirror) OurTurn() bool {
	return m.CurrentSeat == m.Seat
}

// Apply folds msg into the mirror and reports what changed.
func (m *Mirror) Apply(msg domain.Message) []Effect {
	switch v := msg.(type) {
	case domain.GameState:
		if v.Phase == m.Phase {
			return nil
		}
		old := m.Phase
		m.Phase = v.Phase
		return []Effect{{Kind: EffectPhaseChanged, Phase: v.Phase, Value: int(old), Msg: msg}}

	case domain.Turn:
		if !m.validSeat(v.Seat) {
			return nil
		}
		// A repeated announcement of the seat in turn is not a new turn.
		if v.Seat == m.CurrentSeat && m.Phase != domain.PhaseReady && m.Phase != domain.PhaseGameOver {
			return nil
		}
		m.CurrentSeat = v.Seat
		if m.FirstSeat == domain.NoSeat {
			m.FirstSeat = v.Seat
		}
		for i := range m.Offers {
			m.Offers[i] = nil
		}
		m.PlayedCardThisTurn = false
		m.ageCards(v.Seat)
		return []Effect{{Kind: EffectTurnChanged, Seat: v.Seat, Msg: msg}}

	case domain.PlayerElement:
		if !m.validSeat(v.Seat) {
			return nil
		}
		m.applyElement(v)
		return []Effect{{Kind: EffectResources, Seat: v.Seat, Msg: msg}}

	case domain.ResourceCount:
		if !m.validSeat(v.Seat) {
			return nil
		}
		p := &m.Players[v.Seat]
		if p.Resources.Total() == v.Count {
			return nil
		}
		p.Resources = domain.Bundle{}
		p.Resources[domain.Unknown] = v.Count
		return []Effect{{Kind: EffectDesync, Seat: v.Seat, Value: v.Count, Msg: msg}}

	case domain.DiceResult:
		m.Dice = v.Value
		return []Effect{{Kind: EffectDice, Value: v.Value, Msg: msg}}

	case domain.PiecePlaced:
		if !m.validSeat(v.Seat) {
			return nil
		}
		m.placePiece(v)
		return []Effect{{Kind: EffectPiecePlaced, Seat: v.Seat, Piece: v.Piece, Coord: v.Coord, Msg: msg}}

	case domain.RobberMoved:
		m.Robber = v.Hex
		return []Effect{{Kind: EffectRobberMoved, Coord: v.Hex, Msg: msg}}

	case domain.OfferMade:
		if !m.validSeat(v.Offer.From) {
			return nil
		}
		o := v.Offer
		m.Offers[o.From] = &o
		return []Effect{{Kind: EffectOfferMade, Seat: o.From, Msg: msg}}

	case domain.OfferCleared:
		if v.Seat == domain.NoSeat {
			for i := range m.Offers {
				m.Offers[i] = nil
			}
		} else if m.validSeat(v.Seat) {
			m.Offers[v.Seat] = nil
		}
		return []Effect{{Kind: EffectOfferCleared, Seat: v.Seat, Msg: msg}}

	case domain.OfferAccepted:
		if !m.validSeat(v.Offering) || !m.validSeat(v.Accepting) {
			return nil
		}
		if o := m.Offers[v.Offering]; o != nil {
			from, to := &m.Players[v.Offering].Resources, &m.Players[v.Accepting].Resources
			from.Subtract(o.Give)
			from.Add(o.Get)
			to.Subtract(o.Get)
			to.Add(o.Give)
		}
		m.Offers[v.Offering] = nil
		return []Effect{{Kind: EffectOfferAccepted, Seat: v.Accepting, Value: v.Offering, Msg: msg}}

	case domain.OfferRejected:
		return []Effect{{Kind: EffectOfferRejected, Seat: v.Seat, Msg: msg}}

	case domain.BankTradeDone:
		if !m.validSeat(v.Seat) {
			return nil
		}
		res := &m.Players[v.Seat].Resources
		res.Subtract(v.Give)
		res.Add(v.Get)
		return []Effect{{Kind: EffectBankTrade, Seat: v.Seat, Msg: msg}}

	case domain.DevCardCount:
		m.DeckLeft = v.Remaining
		return nil

	case domain.DevCardAction:
		if !m.validSeat(v.Seat) {
			return nil
		}
		m.applyDevCard(v)
		return []Effect{{Kind: EffectDevCard, Seat: v.Seat, Value: int(v.Card), Msg: msg}}

	case domain.DiscardRequest:
		return []Effect{{Kind: EffectDiscardRequested, Value: v.Count, Msg: msg}}

	case domain.ChooseVictimRequest:
		return []Effect{{Kind: EffectVictimRequested, Msg: msg}}

	case domain.BoardLayout:
		board, err := domain.NewStandardTopology(v.Layout)
		if err != nil {
			return nil
		}
		m.Board = board
		m.Robber = desertHex(board)
		return []Effect{{Kind: EffectBoard, Msg: msg}}

	case domain.Ping:
		return []Effect{{Kind: EffectPing, Msg: msg}}

	case domain.Dismiss:
		return []Effect{{Kind: EffectDismissed, Msg: msg}}
	}
	return []Effect{{Kind: EffectIgnored, Msg: msg}}
}

func applyCount(cur *int, action domain.ElementAction, amount int) {
	switch action {
	case domain.ActionSet:
		*cur = amount
	case domain.ActionGain:
		*cur += amount
	case domain.ActionLose:
		*cur -= amount
		if *cur < 0 {
			*cur = 0
		}
	}
}

func (m *Mirror) applyElement(e domain.PlayerElement) {
	p := &m.Players[e.Seat]
	switch e.Element {
	case domain.ElementResource:
		if e.Resource < 0 || e.Resource > domain.Unknown {
			return
		}
		switch e.Action {
		case domain.ActionSet:
			if e.Amount >= 0 {
				p.Resources[e.Resource] = e.Amount
			}
		case domain.ActionGain:
			p.Resources.AddOne(e.Resource, e.Amount)
		case domain.ActionLose:
			p.Resources.SubtractOne(e.Resource, e.Amount)
		}
	case domain.ElementRoads:
		applyCount(&p.RoadsLeft, e.Action, e.Amount)
	case domain.ElementSettlements:
		applyCount(&p.SettlementsLeft, e.Action, e.Amount)
	case domain.ElementCities:
		applyCount(&p.CitiesLeft, e.Action, e.Amount)
	case domain.ElementKnights:
		applyCount(&p.Knights, e.Action, e.Amount)
	case domain.ElementVictoryPoints:
		applyCount(&p.BonusPoints, e.Action, e.Amount)
	}
}

func (m *Mirror) placePiece(v domain.PiecePlaced) {
	p := &m.Players[v.Seat]
	switch v.Piece {
	case domain.PieceRoad:
		m.Occ.Edges[v.Coord] = v.Seat
		p.RoadsLeft = max(p.RoadsLeft-1, 0)
	case domain.PieceSettlement:
		m.Occ.Nodes[v.Coord] = domain.NodePiece{Seat: v.Seat}
		p.SettlementsLeft = max(p.SettlementsLeft-1, 0)
	case domain.PieceCity:
		m.Occ.Nodes[v.Coord] = domain.NodePiece{Seat: v.Seat, City: true}
		p.CitiesLeft = max(p.CitiesLeft-1, 0)
		p.SettlementsLeft = min(p.SettlementsLeft+1, domain.MaxSettlements)
	}
}

// ageCards makes the cards seat bought on earlier turns playable.
func (m *Mirror) ageCards(seat int) {
	p := &m.Players[seat]
	p.OldCards += p.NewCards
	p.NewCards = 0
	for i, n := range p.FreshCards {
		p.Cards[i] += n
		p.FreshCards[i] = 0
	}
}

func (m *Mirror) applyDevCard(v domain.DevCardAction) {
	p := &m.Players[v.Seat]
	ours := v.Seat == m.Seat
	if v.Card < 0 || v.Card >= domain.NumDevCards {
		v.Card = domain.CardUnknown
	}
	switch v.Verb {
	case domain.CardDraw, domain.CardAddNew:
		p.NewCards++
		if ours {
			p.FreshCards[v.Card]++
		}
	case domain.CardAddOld:
		p.OldCards++
		if ours {
			p.Cards[v.Card]++
		}
	case domain.CardPlay:
		if p.OldCards > 0 {
			p.OldCards--
		}
		if ours && p.Cards[v.Card] > 0 {
			p.Cards[v.Card]--
		}
		if v.Seat == m.CurrentSeat {
			m.PlayedCardThisTurn = true
		}
	}
}

// Buildings returns the settlement and city nodes of seat.
func (m *Mirror) Buildings(seat int) (settlements, cities []int) {
	return m.Occ.NodesOf(seat)
}

// Points counts building points plus bonus points of seat.
func (m *Mirror) Points(seat int) int {
	s, c := m.Buildings(seat)
	return len(s) + 2*len(c) + m.Players[seat].BonusPoints
}

// Ratios returns the market ratios seat enjoys from its ports.
func (m *Mirror) Ratios(seat int) internal.TradeRatios {
	if m.Board == nil {
		return internal.DefaultRatios()
	}
	s, c := m.Buildings(seat)
	return internal.RatiosFor(m.Board, append(s, c...))
}

// Production returns seat's tables with the robber's hex blocked.
func (m *Mirror) Production(seat int) internal.Production {
	if m.Board == nil {
		return internal.NewProduction(nil, nil, nil, domain.NoCoord)
	}
	s, c := m.Buildings(seat)
	return internal.NewProduction(m.Board, s, c, m.Robber)
}

// Estimator returns a building-speed estimator for seat.
func (m *Mirror) Estimator(seat int) internal.SpeedEstimator {
	return internal.NewSpeedEstimator(m.Production(seat), m.Ratios(seat))
}

// KnownHand returns seat's resources without the unknown bucket.
func (m *Mirror) KnownHand(seat int) domain.Bundle {
	h := m.Players[seat].Resources
	h[domain.Unknown] = 0
	return h
}

// TargetPossible reports whether the coordinate of t is still available to us.
func (m *Mirror) TargetPossible(t BuildTarget) bool {
	switch t.Piece {
	case domain.PieceRoad:
		_, taken := m.Occ.Edges[t.Coord]
		return !taken
	case domain.PieceSettlement:
		return m.Occ.NodeFree(m.Board, t.Coord)
	case domain.PieceCity:
		return m.Occ.CanCity(m.Seat, t.Coord)
	default:
		return true
	}
}

// LegalNow reports whether we could place t this moment.
func (m *Mirror) LegalNow(t BuildTarget) bool {
	switch t.Piece {
	case domain.PieceRoad:
		return m.Us().RoadsLeft > 0 && m.Occ.CanRoad(m.Board, m.Seat, t.Coord)
	case domain.PieceSettlement:
		return m.Us().SettlementsLeft > 0 && m.Occ.CanSettle(m.Board, m.Seat, t.Coord, m.Phase.IsInitialPlacement())
	case domain.PieceCity:
		return m.Us().CitiesLeft > 0 && m.Occ.CanCity(m.Seat, t.Coord)
	default:
		return m.DeckLeft > 0
	}
}
