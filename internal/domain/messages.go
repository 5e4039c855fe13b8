package domain

// Message is an inbound notification from the game server.
type Message interface {
	Name() string
}

// Element is the player attribute a PlayerElement message changes.
type Element int

const (
	ElementResource Element = iota
	ElementRoads
	ElementSettlements
	ElementCities
	ElementKnights
	ElementVictoryPoints
)

// ElementAction says how Amount applies.
type ElementAction int

const (
	ActionSet ElementAction = iota
	ActionGain
	ActionLose
)

// DevCardVerb is what happened to a development card.
type DevCardVerb int

const (
	CardDraw    DevCardVerb = iota // bought this turn
	CardPlay                       // played
	CardAddNew                     // granted as new
	CardAddOld                     // granted as playable
)

type (
	// GameState announces the authoritative phase.
	GameState struct{ Phase Phase }

	// Turn announces whose turn begins.
	Turn struct{ Seat int }

	// PlayerElement is a per-seat counter delta.
	PlayerElement struct {
		Seat     int
		Element  Element
		Action   ElementAction
		Resource Resource
		Amount   int
	}

	// ResourceCount is the authoritative hand size of a seat.
	ResourceCount struct {
		Seat  int
		Count int
	}

	// DiceResult carries the last roll.
	DiceResult struct{ Value int }

	// PiecePlaced echoes a placement by any seat.
	PiecePlaced struct {
		Seat  int
		Piece PieceType
		Coord int
	}

	// RobberMoved reports the new robber hex.
	RobberMoved struct{ Hex int }

	// OfferMade broadcasts a peer trade offer.
	OfferMade struct{ Offer Offer }

	// OfferCleared withdraws the offer of Seat, or all offers when Seat is NoSeat.
	OfferCleared struct{ Seat int }

	// OfferAccepted reports a completed peer trade.
	OfferAccepted struct {
		Accepting int
		Offering  int
	}

	// OfferRejected reports that Seat declined the current offers.
	OfferRejected struct{ Seat int }

	// BankTradeDone confirms a market trade.
	BankTradeDone struct {
		Seat int
		Give Bundle
		Get  Bundle
	}

	// DevCardCount reports the cards left in the deck.
	DevCardCount struct{ Remaining int }

	// DevCardAction reports a development card event of a seat.
	DevCardAction struct {
		Seat int
		Verb DevCardVerb
		Card DevCard
	}

	// DiscardRequest asks us to shed Count cards.
	DiscardRequest struct{ Count int }

	// ChooseVictimRequest asks us to pick whom to rob. Candidates is indexed by seat.
	ChooseVictimRequest struct{ Candidates []bool }

	// BoardLayout announces the standard board.
	BoardLayout struct{ Layout StandardLayout }

	// Ping is a liveness tick; it carries no state.
	Ping struct{}

	// Dismiss stops the agent. It doubles as the inbox poison pill.
	Dismiss struct{ Reason string }
)

func (GameState) Name() string           { return "game_state" }
func (Turn) Name() string                { return "turn" }
func (PlayerElement) Name() string       { return "player_element" }
func (ResourceCount) Name() string       { return "resource_count" }
func (DiceResult) Name() string          { return "dice_result" }
func (PiecePlaced) Name() string         { return "piece_placed" }
func (RobberMoved) Name() string         { return "robber_moved" }
func (OfferMade) Name() string           { return "offer_made" }
func (OfferCleared) Name() string        { return "offer_cleared" }
func (OfferAccepted) Name() string       { return "offer_accepted" }
func (OfferRejected) Name() string       { return "offer_rejected" }
func (BankTradeDone) Name() string       { return "bank_trade_done" }
func (DevCardCount) Name() string        { return "dev_card_count" }
func (DevCardAction) Name() string       { return "dev_card_action" }
func (DiscardRequest) Name() string      { return "discard_request" }
func (ChooseVictimRequest) Name() string { return "choose_victim" }
func (BoardLayout) Name() string         { return "board_layout" }
func (Ping) Name() string                { return "ping" }
func (Dismiss) Name() string             { return "dismiss" }

// Offer is a peer trade proposal. To is indexed by seat.
type Offer struct {
	From int
	To   []bool
	Give Bundle
	Get  Bundle
}

// Targets reports whether seat is one of the recipients.
func (o Offer) Targets(seat int) bool {
	return seat >= 0 && seat < len(o.To) && o.To[seat]
}

// Recipients lists the targeted seats in order.
func (o Offer) Recipients() []int {
	var out []int
	for s, ok := range o.To {
		if ok {
			out = append(out, s)
		}
	}
	return out
}
