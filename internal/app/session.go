package app

import (
	"context"
	"fmt"

	"hexbot/internal/bot"
	"hexbot/internal/config"
	"hexbot/internal/domain"
	"hexbot/internal/ports/ws"

	"github.com/heroiclabs/nakama-common/runtime"
	"golang.org/x/sync/errgroup"
)

// Transport is a connection to the game server for one seat.
type Transport interface {
	Send(ctx context.Context, req domain.Request) error
	ReadLoop(ctx context.Context, q ws.Queue) error
	KeepAlive(ctx context.Context) error
	Close() error
}

// DialFunc opens a Transport. ws.Dial satisfies it through DialWebsocket.
type DialFunc func(ctx context.Context, url, token string, seat int, logger runtime.Logger) (Transport, error)

// DialWebsocket dials the gorilla websocket transport.
func DialWebsocket(ctx context.Context, url, token string, seat int, logger runtime.Logger) (Transport, error) {
	c, err := ws.Dial(ctx, url, token, seat, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Session runs one agent against one game: the agent loop, the pinger and
// the transport loops share a lifetime.
type Session struct {
	cfg    config.AgentConfig
	logger runtime.Logger
	tokens *SeatTokenService
	dial   DialFunc

	// agent is set once Run has built it.
	agent *bot.Agent
}

func NewSession(cfg config.AgentConfig, logger runtime.Logger, dial DialFunc) *Session {
	if dial == nil {
		dial = DialWebsocket
	}
	var tokens *SeatTokenService
	if cfg.SeatTokenSecret != "" {
		tokens = NewSeatTokenService(cfg.SeatTokenSecret, cfg.TokenTTL())
	}
	return &Session{cfg: cfg, logger: logger, tokens: tokens, dial: dial}
}

// TuningFrom maps the config onto controller tuning.
func TuningFrom(cfg config.AgentConfig) bot.Tuning {
	return bot.Tuning{
		MaxAskWait:       cfg.MaxAskWait,
		ReissueAfter:     cfg.ReissueAfter,
		ForfeitAfter:     cfg.ForfeitAfter,
		BankTradeTimeout: cfg.BankTradeTimeout,
		OfferTimeout:     cfg.OfferTimeout,
		Cutoff:           cfg.Cutoff,
		ActionDelay:      cfg.ActionDelay(),
		TradeDelay:       cfg.TradeDelay(),
		EventLogSize:     cfg.EventLogSize,
	}
}

// Agent returns the running agent, or nil before Run.
func (s *Session) Agent() *bot.Agent { return s.agent }

// Run connects, plays until the agent stops and tears everything down. It
// returns the agent's stop error or the transport failure that ended it.
func (s *Session) Run(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	token := ""
	if s.tokens != nil {
		var err error
		token, err = s.tokens.GenerateToken(s.cfg.UserID, s.cfg.GameID, s.cfg.Seat)
		if err != nil {
			return fmt.Errorf("failed to sign seat token: %w", err)
		}
	}

	conn, err := s.dial(ctx, s.cfg.ServerURL, token, s.cfg.Seat, s.logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	inbox := bot.NewInbox(s.cfg.InboxSize)
	agent, err := bot.NewAgent(bot.Options{
		ID:      s.cfg.UserID,
		Seat:    s.cfg.Seat,
		Players: s.cfg.Players,
		Tuning:  TuningFrom(s.cfg),
		Sender:  conn,
		Inbox:   inbox,
		Logger:  s.logger,
	})
	if err != nil {
		return err
	}
	s.agent = agent

	interval := s.cfg.PingInterval()
	if interval < MinPingInterval {
		interval = MinPingInterval
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(runCtx)
	eg.Go(func() error {
		defer cancel()
		return agent.Run(ctx)
	})
	eg.Go(func() error {
		return bot.NewPinger(interval, inbox, s.logger).Run(ctx)
	})
	eg.Go(func() error {
		if err := conn.ReadLoop(ctx, inbox); err != nil {
			agent.Kill()
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return conn.KeepAlive(ctx)
	})

	s.logger.Info("Session.Run: %s playing seat %d of game %s", agent.ID, s.cfg.Seat, s.cfg.GameID)
	err = eg.Wait()
	s.logger.Info("Session.Run: %s finished: %v", agent.ID, err)
	return err
}
