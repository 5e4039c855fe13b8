package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hexbot/internal/config"
	"hexbot/internal/domain"
	"hexbot/internal/logging"
	"hexbot/internal/ports/ws"

	"github.com/heroiclabs/nakama-common/runtime"
)

// fakeTransport replays feed into the inbox and records what the agent sends.
type fakeTransport struct {
	feed    []domain.Message
	readErr error

	mu     sync.Mutex
	sent   []domain.Request
	closed bool
}

func (f *fakeTransport) Send(ctx context.Context, req domain.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeTransport) ReadLoop(ctx context.Context, q ws.Queue) error {
	for _, msg := range f.feed {
		if err := q.Put(ctx, msg); err != nil {
			return nil
		}
	}
	if f.readErr != nil {
		return f.readErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeTransport) KeepAlive(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func testConfig() config.AgentConfig {
	cfg := config.Default()
	cfg.UserID = "bot-1"
	cfg.GameID = "game-1"
	cfg.Seat = 0
	cfg.ActionDelayMs = 0
	cfg.TradeDelayMs = 0
	return cfg
}

func dialer(tr *fakeTransport, tokens chan<- string) DialFunc {
	return func(ctx context.Context, url, token string, seat int, logger runtime.Logger) (Transport, error) {
		if tokens != nil {
			tokens <- token
		}
		return tr, nil
	}
}

func TestSessionStopsWhenGameEnds(t *testing.T) {
	tr := &fakeTransport{feed: []domain.Message{
		domain.Turn{Seat: 1},
		domain.GameState{Phase: domain.PhaseGameOver},
	}}
	s := NewSession(testConfig(), logging.Nop(), dialer(tr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil after game over", err)
	}
	if ctx.Err() != nil {
		t.Fatal("session should end before the test deadline")
	}
	if !tr.closed {
		t.Fatal("transport should be closed")
	}
	if s.Agent().Alive() {
		t.Fatal("agent should be stopped")
	}
}

func TestSessionReturnsTransportFailure(t *testing.T) {
	boom := errors.New("connection reset")
	tr := &fakeTransport{readErr: boom}
	s := NewSession(testConfig(), logging.Nop(), dialer(tr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want transport error", err)
	}
}

func TestSessionSignsSeatToken(t *testing.T) {
	cfg := testConfig()
	cfg.SeatTokenSecret = "secret"
	tr := &fakeTransport{feed: []domain.Message{domain.Dismiss{Reason: "test"}}}
	tokens := make(chan string, 1)
	s := NewSession(cfg, logging.Nop(), dialer(tr, tokens))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if tok := <-tokens; strings.Count(tok, ".") != 2 {
		t.Fatalf("expected a signed JWT, got %q", tok)
	}
}

func TestSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Seat = 9
	s := NewSession(cfg, logging.Nop(), dialer(&fakeTransport{}, nil))
	if err := s.Run(context.Background()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("Run = %v, want ErrInvalidConfig", err)
	}
}
