package bot

import (
	"hexbot/internal/bot/internal"
	"hexbot/internal/domain"
)

// Await is the completion the controller is waiting for after a request.
type Await int

const (
	AwaitNone Await = iota
	// AwaitPhase waits for the phase to move away from the one we asked in.
	AwaitPhase
	AwaitDice
	AwaitPlacement
	AwaitRobber
	AwaitDevCard
	AwaitDiscard
	// AwaitPick waits for the pick phase to end.
	AwaitPick
	AwaitTurn
)

var awaitNames = [...]string{"none", "phase", "dice", "placement", "robber", "dev-card", "discard", "pick", "turn"}

func (a Await) String() string {
	if a < 0 || int(a) >= len(awaitNames) {
		return "unknown"
	}
	return awaitNames[a]
}

// expectation remembers what we last asked for so only the matching
// completion clears it.
type expectation struct {
	await Await
	phase domain.Phase
	piece domain.PieceType
	coord int
	card  domain.DevCard
	verb  domain.DevCardVerb
	since int
}

func (e *expectation) set(a Await, tick int) {
	*e = expectation{await: a, coord: domain.NoCoord, since: tick}
}

func (e *expectation) clear() {
	*e = expectation{coord: domain.NoCoord}
}

func (e expectation) pending() bool {
	return e.await != AwaitNone
}

// matches reports whether msg completes the pending request of seat.
func (e expectation) matches(msg domain.Message, seat int) bool {
	switch e.await {
	case AwaitPhase, AwaitPick:
		v, ok := msg.(domain.GameState)
		return ok && v.Phase != e.phase
	case AwaitDice:
		_, ok := msg.(domain.DiceResult)
		return ok
	case AwaitPlacement:
		v, ok := msg.(domain.PiecePlaced)
		return ok && v.Seat == seat && v.Piece == e.piece && v.Coord == e.coord
	case AwaitRobber:
		v, ok := msg.(domain.RobberMoved)
		return ok && v.Hex == e.coord
	case AwaitDevCard:
		v, ok := msg.(domain.DevCardAction)
		if !ok || v.Seat != seat || v.Verb != e.verb {
			return false
		}
		return e.verb != domain.CardPlay || v.Card == e.card
	case AwaitDiscard:
		v, ok := msg.(domain.ResourceCount)
		return ok && v.Seat == seat
	case AwaitTurn:
		_, ok := msg.(domain.Turn)
		return ok
	}
	return false
}

// TradeAwait is the state of our own trading within a turn.
type TradeAwait int

const (
	TradeIdle TradeAwait = iota
	TradeBank
	TradeOffer
)

// tradeState tracks the bank replay and our outstanding peer offer.
type tradeState struct {
	await TradeAwait
	since int
	// steps still to send after the one in flight.
	steps    []internal.TradeStep
	inFlight internal.TradeStep
	offer    domain.Offer
	answered []bool
	// refused marks seats that turned down an offer this turn.
	refused []bool
	// offered and banked are set once per turn.
	offered bool
	banked  bool
}

func newTradeState(players int) tradeState {
	return tradeState{answered: make([]bool, players), refused: make([]bool, players)}
}

// resetTurn drops everything tied to the previous turn.
func (t *tradeState) resetTurn() {
	players := len(t.refused)
	*t = newTradeState(players)
}

func (t *tradeState) idle() {
	t.await = TradeIdle
	t.steps = nil
	t.inFlight = internal.TradeStep{}
	t.offer = domain.Offer{}
	for i := range t.answered {
		t.answered[i] = false
	}
}

// allAnswered reports whether every recipient of our offer has replied.
func (t *tradeState) allAnswered() bool {
	for _, s := range t.offer.Recipients() {
		if s < len(t.answered) && !t.answered[s] {
			return false
		}
	}
	return true
}

// debounce gates the first-time action of a phase.
type debounce struct {
	phase   domain.Phase
	seat    int
	asked   bool
	askedAt int
}

// enter resets the gate when the phase or the seat in turn changed.
func (d *debounce) enter(phase domain.Phase, seat int) {
	if d.phase != phase || d.seat != seat {
		*d = debounce{phase: phase, seat: seat}
	}
}

// ready reports whether the phase action may fire at tick.
func (d debounce) ready(tick, maxWait int) bool {
	return !d.asked || tick-d.askedAt > maxWait
}

func (d *debounce) mark(tick int) {
	d.asked = true
	d.askedAt = tick
}

// rearm lets the current phase act again, used after completions inside the
// action phase.
func (d *debounce) rearm() {
	d.asked = false
}
