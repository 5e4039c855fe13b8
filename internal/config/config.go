package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var ErrInvalidConfig = errors.New("invalid agent config")

// EnvPrefix is the prefix of environment keys read by ApplyEnv.
const EnvPrefix = "hexbot_"

// AgentConfig configures one standalone agent and the bots of a Nakama host.
type AgentConfig struct {
	ServerURL string `json:"server_url"`
	GameID    string `json:"game_id"`
	UserID    string `json:"user_id"`
	Seat      int    `json:"seat"`
	Players   int    `json:"players"`
	// SeatTokenSecret signs the token presented when dialing the server.
	SeatTokenSecret string `json:"seat_token_secret"`
	TokenTTLSeconds int    `json:"token_ttl_seconds"`
	LogLevel        string `json:"log_level"`

	InboxSize      int `json:"inbox_size"`
	PingIntervalMs int `json:"ping_interval_ms"`

	MaxAskWait       int `json:"max_ask_wait"`
	ReissueAfter     int `json:"reissue_after"`
	ForfeitAfter     int `json:"forfeit_after"`
	BankTradeTimeout int `json:"bank_trade_timeout"`
	OfferTimeout     int `json:"offer_timeout"`
	Cutoff           int `json:"cutoff"`
	ActionDelayMs    int `json:"action_delay_ms"`
	TradeDelayMs     int `json:"trade_delay_ms"`
	EventLogSize     int `json:"event_log_size"`

	// BotProfilesPath lists the names and tuning overrides of hosted bots.
	BotProfilesPath string `json:"bot_profiles_path"`
}

// Default returns the configuration of a patient four-player agent.
func Default() AgentConfig {
	return AgentConfig{
		ServerURL:        "ws://127.0.0.1:7350/game",
		Players:          4,
		TokenTTLSeconds:  3600,
		LogLevel:         "info",
		InboxSize:        1000,
		PingIntervalMs:   100,
		MaxAskWait:       300,
		ReissueAfter:     4000,
		ForfeitAfter:     15000,
		BankTradeTimeout: 10,
		OfferTimeout:     100,
		Cutoff:           300,
		ActionDelayMs:    500,
		TradeDelayMs:     1500,
		EventLogSize:     256,
		BotProfilesPath:  "data/bot_profiles.json",
	}
}

// Load reads a JSON file over the defaults. Fields absent from the file keep
// their default value.
func Load(path string) (AgentConfig, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read agent config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal agent config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from hexbot_* keys. Values that do not parse are
// reported and left unchanged.
func (c *AgentConfig) ApplyEnv(env map[string]string) error {
	var errs []error
	str := func(key string, dst *string) {
		if val, ok := env[EnvPrefix+key]; ok {
			*dst = val
		}
	}
	num := func(key string, dst *int) {
		val, ok := env[EnvPrefix+key]
		if !ok {
			return
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		*dst = i
	}

	str("server_url", &c.ServerURL)
	str("game_id", &c.GameID)
	str("user_id", &c.UserID)
	str("seat_token_secret", &c.SeatTokenSecret)
	str("log_level", &c.LogLevel)
	str("bot_profiles_path", &c.BotProfilesPath)
	num("seat", &c.Seat)
	num("players", &c.Players)
	num("token_ttl_sec", &c.TokenTTLSeconds)
	num("inbox_size", &c.InboxSize)
	num("ping_interval_ms", &c.PingIntervalMs)
	num("max_ask_wait", &c.MaxAskWait)
	num("reissue_after", &c.ReissueAfter)
	num("forfeit_after", &c.ForfeitAfter)
	num("bank_trade_timeout", &c.BankTradeTimeout)
	num("offer_timeout", &c.OfferTimeout)
	num("cutoff", &c.Cutoff)
	num("action_delay_ms", &c.ActionDelayMs)
	num("trade_delay_ms", &c.TradeDelayMs)
	num("event_log_size", &c.EventLogSize)
	return errors.Join(errs...)
}

// Validate checks the fields a standalone agent cannot run without.
func (c AgentConfig) Validate() error {
	switch {
	case c.Players < 2:
		return fmt.Errorf("%w: players must be at least 2, got %d", ErrInvalidConfig, c.Players)
	case c.Seat < 0 || c.Seat >= c.Players:
		return fmt.Errorf("%w: seat %d out of range for %d players", ErrInvalidConfig, c.Seat, c.Players)
	case c.ReissueAfter >= c.ForfeitAfter:
		return fmt.Errorf("%w: reissue_after (%d) must be below forfeit_after (%d)", ErrInvalidConfig, c.ReissueAfter, c.ForfeitAfter)
	case c.PingIntervalMs <= 0:
		return fmt.Errorf("%w: ping_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// PingInterval is the pinger period.
func (c AgentConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalMs) * time.Millisecond
}

// TokenTTL is the lifetime of a signed seat token.
func (c AgentConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

func (c AgentConfig) ActionDelay() time.Duration {
	return time.Duration(c.ActionDelayMs) * time.Millisecond
}

func (c AgentConfig) TradeDelay() time.Duration {
	return time.Duration(c.TradeDelayMs) * time.Millisecond
}
