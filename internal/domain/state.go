package domain

// Phase is the game state mirrored from the server.
type Phase int

const (
	PhaseReady Phase = iota
	PhasePlaceFirstSettlement
	PhasePlaceFirstRoad
	PhasePlaceSecondSettlement
	PhasePlaceSecondRoad
	PhaseRoll
	PhaseAction
	PhasePlacingRoad
	PhasePlacingSettlement
	PhasePlacingCity
	PhasePlacingRobber
	PhasePlacingFreeRoad1
	PhasePlacingFreeRoad2
	PhaseAwaitResourcePick
	PhaseAwaitMonopolyPick
	PhaseGameOver
)

var phaseNames = [...]string{
	"ready",
	"place-first-settlement",
	"place-first-road",
	"place-second-settlement",
	"place-second-road",
	"roll-phase",
	"action-phase",
	"placing-road",
	"placing-settlement",
	"placing-city",
	"placing-robber",
	"placing-free-road-1",
	"placing-free-road-2",
	"await-resource-pick",
	"await-monopoly-pick",
	"game-over",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// ParsePhase maps a wire name back to a Phase.
func ParsePhase(name string) (Phase, bool) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), true
		}
	}
	return PhaseReady, false
}

// IsInitialPlacement reports whether p belongs to the setup rounds.
func (p Phase) IsInitialPlacement() bool {
	return p >= PhasePlaceFirstSettlement && p <= PhasePlaceSecondRoad
}

// PieceType is something a player can build or buy.
type PieceType int

const (
	PieceRoad PieceType = iota
	PieceSettlement
	PieceCity
	PieceCard
)

var pieceNames = [...]string{"road", "settlement", "city", "card"}

func (p PieceType) String() string {
	if p < 0 || int(p) >= len(pieceNames) {
		return "unknown"
	}
	return pieceNames[p]
}

// ParsePiece maps a wire name back to a PieceType.
func ParsePiece(name string) (PieceType, bool) {
	for i, n := range pieceNames {
		if n == name {
			return PieceType(i), true
		}
	}
	return PieceRoad, false
}

// CostOf returns the resources needed for a piece.
func CostOf(p PieceType) Bundle {
	switch p {
	case PieceRoad:
		return RoadCost
	case PieceSettlement:
		return SettlementCost
	case PieceCity:
		return CityCost
	default:
		return CardCost
	}
}

// Starting piece stock per player.
const (
	MaxRoads       = 15
	MaxSettlements = 5
	MaxCities      = 4
	WinningPoints  = 10
	// HandLimit is the hand size above which a seven forces a discard.
	HandLimit = 7
	// DeckSize is the number of development cards at the start.
	DeckSize = 25
)

// DevCard is a development card type.
type DevCard int

const (
	CardKnight DevCard = iota
	CardRoadBuilding
	CardDiscovery
	CardMonopoly
	CardVictoryPoint
	// CardUnknown is an opponent's card we did not see.
	CardUnknown
)

// NumDevCards is the number of development card types including unknown.
const NumDevCards = 6

var devCardNames = [...]string{"knight", "road-building", "discovery", "monopoly", "victory-point", "unknown"}

func (c DevCard) String() string {
	if c < 0 || int(c) >= len(devCardNames) {
		return "unknown"
	}
	return devCardNames[c]
}

// ParseDevCard maps a wire name back to a DevCard.
func ParseDevCard(name string) (DevCard, bool) {
	for i, n := range devCardNames {
		if n == name {
			return DevCard(i), true
		}
	}
	return CardUnknown, false
}

// NoSeat marks an unset seat index.
const NoSeat = -1

// NoCoord marks an unset node, edge or hex coordinate.
const NoCoord = -1
