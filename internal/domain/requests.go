package domain

// Request is an outbound command to the game server.
type Request interface {
	Name() string
}

type (
	RollDice struct{}

	// BuildRequest asks to enter the placing phase for Piece.
	BuildRequest struct{ Piece PieceType }

	// PutPiece places Piece at Coord (node for buildings, edge for roads).
	PutPiece struct {
		Piece PieceType
		Coord int
	}

	BuyDevCard struct{}

	PlayDevCard struct{ Card DevCard }

	// DiscoveryPick names the two free resources of a discovery card.
	DiscoveryPick struct{ Resources Bundle }

	MonopolyPick struct{ Resource Resource }

	MakeOffer struct{ Offer Offer }

	// AcceptOffer accepts the offer made by From.
	AcceptOffer struct{ From int }

	RejectOffer struct{}

	ClearOffer struct{}

	// BankTrade exchanges Give for Get with the market.
	BankTrade struct {
		Give Bundle
		Get  Bundle
	}

	MoveRobber struct{ Hex int }

	ChooseVictim struct{ Seat int }

	Discard struct{ Resources Bundle }

	EndTurn struct{}

	LeaveGame struct{ Reason string }
)

func (RollDice) Name() string      { return "roll_dice" }
func (BuildRequest) Name() string  { return "build_request" }
func (PutPiece) Name() string      { return "put_piece" }
func (BuyDevCard) Name() string    { return "buy_dev_card" }
func (PlayDevCard) Name() string   { return "play_dev_card" }
func (DiscoveryPick) Name() string { return "discovery_pick" }
func (MonopolyPick) Name() string  { return "monopoly_pick" }
func (MakeOffer) Name() string     { return "make_offer" }
func (AcceptOffer) Name() string   { return "accept_offer" }
func (RejectOffer) Name() string   { return "reject_offer" }
func (ClearOffer) Name() string    { return "clear_offer" }
func (BankTrade) Name() string     { return "bank_trade" }
func (MoveRobber) Name() string    { return "move_robber" }
func (ChooseVictim) Name() string  { return "choose_victim" }
func (Discard) Name() string       { return "discard" }
func (EndTurn) Name() string       { return "end_turn" }
func (LeaveGame) Name() string     { return "leave_game" }
