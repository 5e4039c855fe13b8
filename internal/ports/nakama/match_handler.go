package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"hexbot/internal/app"
	"hexbot/internal/bot"
	"hexbot/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the runtime state of a bot table.
type MatchState struct {
	GameID  string `json:"game_id"`
	Players int    `json:"players"`
	Tick    int64  `json:"tick"`
	// EngineUserID is claimed in MatchJoinAttempt by the presence joining with role=engine.
	EngineUserID string                      `json:"engine_user_id"`
	Engine       runtime.Presence            `json:"-"` // nil until the engine joins
	Presences    map[string]runtime.Presence `json:"-"`
	Host         *BotHost                    `json:"-"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit creates the agents named by the bot_seats param.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing bot table.")

	cfg := config.Default()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if err := cfg.ApplyEnv(env); err != nil {
			logger.Warn("MatchInit: Ignoring bad environment values: %v", err)
		}
	}
	if err := bot.LoadProfiles(cfg.BotProfilesPath); err != nil {
		logger.Warn("MatchInit: Could not load bot profiles: %v", err)
	}

	gameID, _ := params[ParamGameID].(string)
	players := cfg.Players
	if p, ok := paramInt(params[ParamPlayers]); ok {
		players = p
	}
	seats, err := parseSeats(params[ParamBotSeats])
	if err != nil {
		logger.Error("MatchInit: %v", err)
		return nil, 0, ""
	}

	host, err := NewBotHost(gameID, seats, players, app.TuningFrom(cfg), logger)
	if err != nil {
		logger.Error("MatchInit: Failed to create bots: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		GameID:    gameID,
		Players:   players,
		Presences: make(map[string]runtime.Presence),
		Host:      host,
	}
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Bot table for game %s with seats %v", gameID, seats)
	tickRate := 10
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if metadata[MetadataRole] == RoleEngine {
		if matchState.EngineUserID != "" && matchState.EngineUserID != presence.GetUserId() {
			return state, false, "engine already connected"
		}
		matchState.EngineUserID = presence.GetUserId()
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if p.GetUserId() == matchState.EngineUserID {
			matchState.Engine = p
			logger.Info("MatchJoin: Engine %s connected.", p.GetUserId())
		}
	}
	matchState.Host.Attach(dispatcher, matchState.Engine)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave ends the table when the engine goes away.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if p.GetUserId() == matchState.EngineUserID {
			logger.Info("MatchLeave: Engine left, stopping bots.")
			matchState.Host.Shutdown()
			return nil
		}
	}
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick
	host := matchState.Host
	host.Attach(dispatcher, matchState.Engine)

	for _, msg := range messages {
		if matchState.Engine == nil || msg.GetUserId() != matchState.Engine.GetUserId() {
			logger.Debug("MatchLoop: Ignoring op %d from non-engine %s", msg.GetOpCode(), msg.GetUserId())
			continue
		}
		if err := host.Feed(ctx, msg.GetOpCode(), msg.GetData()); err != nil {
			logger.Warn("MatchLoop: Dropping op %d: %v", msg.GetOpCode(), err)
		}
	}
	host.Tick(ctx)

	if host.Done() {
		logger.Info("MatchLoop: All bots of game %s stopped.", matchState.GameID)
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Bot table terminating in %d seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		matchState.Host.Shutdown()
	}
	return state
}

// MatchSignal answers "status" with the recent decisions of every agent.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != MatchSignalStatus {
		return state, ""
	}
	out := make(map[string]interface{}, len(matchState.Host.Seats()))
	for _, seat := range matchState.Host.Seats() {
		agent, _ := matchState.Host.Agent(seat)
		raw, err := agent.Events().MarshalJSON()
		if err != nil {
			logger.Warn("MatchSignal: Failed to dump events of %s: %v", agent.ID, err)
			continue
		}
		out[strconv.Itoa(seat)] = string(raw)
	}
	s, err := structpb.NewStruct(out)
	if err != nil {
		logger.Error("MatchSignal: Failed to build status: %v", err)
		return state, ""
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal status: %v", err)
		return state, ""
	}
	return state, string(b)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func matchLabel(state *MatchState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":   state.GameID,
		"bots":   len(state.Host.Seats()),
		"engine": state.Engine != nil,
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func paramInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

// parseSeats accepts "1,2,3", a list of numbers or a single number.
func parseSeats(v interface{}) ([]int, error) {
	switch s := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing %s param", ParamBotSeats)
	case string:
		var seats []int
		for _, part := range strings.Split(s, ",") {
			seat, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("bad %s param %q: %w", ParamBotSeats, s, err)
			}
			seats = append(seats, seat)
		}
		return seats, nil
	case []interface{}:
		seats := make([]int, 0, len(s))
		for _, item := range s {
			seat, ok := paramInt(item)
			if !ok {
				return nil, fmt.Errorf("bad %s entry %v", ParamBotSeats, item)
			}
			seats = append(seats, seat)
		}
		return seats, nil
	}
	if seat, ok := paramInt(v); ok {
		return []int{seat}, nil
	}
	return nil, fmt.Errorf("bad %s param %v", ParamBotSeats, v)
}
