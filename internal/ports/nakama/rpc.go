package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

var ErrBadPayload = errors.New("bad payload")

// CreateBotTableRequest is the payload of RpcCreateBotTable.
type CreateBotTableRequest struct {
	GameID   string `json:"game_id"`
	Players  int    `json:"players"`
	BotSeats []int  `json:"bot_seats"`
}

// CreateBotTableResponse carries the id of the created match. The engine
// joins it with role=engine to reach the bots.
type CreateBotTableResponse struct {
	MatchID string `json:"match_id"`
}

// RegisterRPCs registers every RPC of the module.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcCreateBotTable, RpcCreateBotTableFn)
}

// RpcCreateBotTableFn creates a match hosting one agent per requested seat.
//
// Payload: {"game_id": "...", "players": 4, "bot_seats": [1, 2, 3]}
// Returns: {"match_id": "..."}
func RpcCreateBotTableFn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	req, err := parseCreateBotTable(payload)
	if err != nil {
		logger.Warn("RpcCreateBotTable [User:%s]: %v", userID, err)
		return "", runtime.NewError(err.Error(), 3) // INVALID_ARGUMENT
	}

	seats := make([]interface{}, len(req.BotSeats))
	for i, s := range req.BotSeats {
		seats[i] = s
	}
	params := map[string]interface{}{
		ParamGameID:   req.GameID,
		ParamBotSeats: seats,
	}
	if req.Players > 0 {
		params[ParamPlayers] = req.Players
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameBots, params)
	if err != nil {
		logger.Error("RpcCreateBotTable [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("RpcCreateBotTable [User:%s]: Created bot table %s for game %s", userID, matchID, req.GameID)

	out, err := json.Marshal(CreateBotTableResponse{MatchID: matchID})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseCreateBotTable(payload string) (CreateBotTableRequest, error) {
	var req CreateBotTableRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if req.GameID == "" {
		return req, fmt.Errorf("%w: missing game_id", ErrBadPayload)
	}
	if len(req.BotSeats) == 0 {
		return req, fmt.Errorf("%w: no bot_seats", ErrBadPayload)
	}
	return req, nil
}
