package codec

// Op codes of requests sent by an agent.
const (
	OpRollDice      int64 = 1
	OpBuildRequest  int64 = 2
	OpPutPiece      int64 = 3
	OpBuyDevCard    int64 = 4
	OpPlayDevCard   int64 = 5
	OpDiscoveryPick int64 = 6
	OpMonopolyPick  int64 = 7
	OpMakeOffer     int64 = 8
	OpAcceptOffer   int64 = 9
	OpRejectOffer   int64 = 10
	OpClearOffer    int64 = 11
	OpBankTrade     int64 = 12
	OpMoveRobber    int64 = 13
	OpChooseVictim  int64 = 14
	OpDiscard       int64 = 15
	OpEndTurn       int64 = 16
	OpLeaveGame     int64 = 17
)

// Op codes of messages sent by the game server.
const (
	OpGameState           int64 = 101
	OpTurn                int64 = 102
	OpPlayerElement       int64 = 103
	OpResourceCount       int64 = 104
	OpDiceResult          int64 = 105
	OpPiecePlaced         int64 = 106
	OpRobberMoved         int64 = 107
	OpOfferMade           int64 = 108
	OpOfferCleared        int64 = 109
	OpOfferAccepted       int64 = 110
	OpOfferRejected       int64 = 111
	OpBankTradeDone       int64 = 112
	OpDevCardCount        int64 = 113
	OpDevCardAction       int64 = 114
	OpDiscardRequest      int64 = 115
	OpChooseVictimRequest int64 = 116
	OpBoardLayout         int64 = 117
	OpPing                int64 = 118
	OpDismiss             int64 = 119
)

// IsMessageOp reports whether op carries a server message.
func IsMessageOp(op int64) bool {
	return op >= OpGameState && op <= OpDismiss
}

// IsRequestOp reports whether op carries an agent request.
func IsRequestOp(op int64) bool {
	return op >= OpRollDice && op <= OpLeaveGame
}
