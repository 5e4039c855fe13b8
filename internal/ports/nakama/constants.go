package nakama

const (
	// RpcCreateBotTable creates a match that hosts agents for a running game.
	RpcCreateBotTable = "hexbot_create_bot_table"

	// MatchNameBots is the authoritative match handler name registered with Nakama.
	MatchNameBots = "hexbot_bots"
)

// Join metadata. The game engine joins with role=engine; everyone else
// watches.
const (
	MetadataRole = "role"
	RoleEngine   = "engine"
)

// Match params accepted by MatchInit.
const (
	ParamGameID   = "game_id"
	ParamPlayers  = "players"
	ParamBotSeats = "bot_seats"
)

// MatchSignalStatus asks the match for its agents' event logs.
const MatchSignalStatus = "status"
