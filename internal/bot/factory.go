package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"hexbot/internal/bot/brain"
	"hexbot/internal/domain"
	"hexbot/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

var ErrInvalidOptions = errors.New("invalid agent options")

// Options configures NewAgent. Sender and Logger are required; the rest have
// defaults.
type Options struct {
	ID      string
	Seat    int
	Players int
	// Board may be nil when the server announces it with a BoardLayout.
	Board domain.Board

	Tuning     Tuning
	Sender     ports.Sender
	Planner    Planner
	Negotiator Negotiator
	Pacer      Pacer
	Inbox      *Inbox
	Logger     runtime.Logger
	Rng        *rand.Rand
}

// NewAgent creates an agent for one seat.
func NewAgent(opts Options) (*Agent, error) {
	if opts.Sender == nil || opts.Logger == nil {
		return nil, fmt.Errorf("%w: sender and logger are required", ErrInvalidOptions)
	}
	if opts.Players <= 0 || opts.Seat < 0 || opts.Seat >= opts.Players {
		return nil, fmt.Errorf("%w: seat %d of %d players", ErrInvalidOptions, opts.Seat, opts.Players)
	}

	tuning := opts.Tuning.withDefaults()
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Planner == nil {
		opts.Planner = GreedyPlanner{Cutoff: tuning.Cutoff}
	}
	if opts.Negotiator == nil {
		opts.Negotiator = SurplusNegotiator{}
	}
	if opts.Pacer == nil {
		opts.Pacer = SleepPacer{}
	}
	if opts.Inbox == nil {
		opts.Inbox = NewInbox(0)
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a := &Agent{
		ID:         opts.ID,
		Seat:       opts.Seat,
		logger:     opts.Logger.WithField("agent", opts.ID),
		tuning:     tuning,
		sender:     opts.Sender,
		planner:    opts.Planner,
		negotiator: opts.Negotiator,
		pacer:      opts.Pacer,
		inbox:      opts.Inbox,
		rng:        opts.Rng,
		mirror:     brain.NewMirror(opts.Seat, opts.Players, opts.Board),
		trackers:   brain.NewTrackers(opts.Players, tuning.Cutoff),
		trade:      newTradeState(opts.Players),
		events:     NewEventLog(tuning.EventLogSize),
	}
	a.exp.clear()
	a.gate = debounce{phase: domain.PhaseReady, seat: domain.NoSeat}
	a.alive.Store(true)
	a.logger.Info("NewAgent: created %s for seat %d of %d", a.ID, a.Seat, opts.Players)
	return a, nil
}
