package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"hexbot/internal/bot/brain"
	"hexbot/internal/domain"
	"hexbot/internal/logging"
	"hexbot/internal/ports/mocks"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/mock/gomock"
)

// fixedPlanner always proposes the same targets.
type fixedPlanner struct {
	targets []brain.BuildTarget
}

func (p fixedPlanner) Plan(*brain.Mirror, *brain.Trackers) []brain.BuildTarget {
	return p.targets
}

type panickyPlanner struct{}

func (panickyPlanner) Plan(*brain.Mirror, *brain.Trackers) []brain.BuildTarget {
	panic("planner exploded")
}

// scriptedNegotiator proposes one fixed offer and answers every offer the same.
type scriptedNegotiator struct {
	offer   domain.Offer
	verdict Verdict
}

func (n scriptedNegotiator) Consider(*brain.Mirror, domain.Offer, domain.Bundle) Verdict {
	return n.verdict
}

func (n scriptedNegotiator) Propose(*brain.Mirror, domain.Bundle, []bool) (domain.Offer, bool) {
	return n.offer, len(n.offer.To) > 0
}

// warnLogger keeps the warnings it receives.
type warnLogger struct {
	warnings *[]string
}

func (l warnLogger) Debug(string, ...interface{}) {}
func (l warnLogger) Info(string, ...interface{})  {}
func (l warnLogger) Warn(format string, v ...interface{}) {
	*l.warnings = append(*l.warnings, fmt.Sprintf(format, v...))
}
func (l warnLogger) Error(string, ...interface{})                     {}
func (l warnLogger) WithField(string, interface{}) runtime.Logger     { return l }
func (l warnLogger) WithFields(map[string]interface{}) runtime.Logger { return l }
func (l warnLogger) Fields() map[string]interface{}                   { return nil }

// recorder collects every request the agent sends.
type recorder struct {
	sent []domain.Request
}

func (r *recorder) expectAny(s *mocks.MockSender) {
	s.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req domain.Request) error {
		r.sent = append(r.sent, req)
		return nil
	}).AnyTimes()
}

func beginnerBoard(t *testing.T) *domain.Topology {
	t.Helper()
	b, err := domain.NewStandardTopology(domain.BeginnerLayout())
	if err != nil {
		t.Fatalf("NewStandardTopology: %v", err)
	}
	return b
}

func newTestAgent(t *testing.T, sender *mocks.MockSender, board domain.Board, edit func(*Options)) *Agent {
	t.Helper()
	opts := Options{
		ID:      "test-bot",
		Seat:    0,
		Players: 4,
		Board:   board,
		Sender:  sender,
		Pacer:   NoPause{},
		Logger:  logging.Nop(),
		Rng:     rand.New(rand.NewSource(1)),
	}
	if edit != nil {
		edit(&opts)
	}
	a, err := NewAgent(opts)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	return a
}

func feed(t *testing.T, a *Agent, msgs ...domain.Message) {
	t.Helper()
	ctx := context.Background()
	for _, msg := range msgs {
		if stop, err := a.Step(ctx, msg); stop || err != nil {
			t.Fatalf("Step(%s) = %v, %v", msg.Name(), stop, err)
		}
	}
}

func pings(t *testing.T, a *Agent, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		feed(t, a, domain.Ping{})
	}
}

// portlessNode returns a node without a harbour, so the market runs at 4:1.
func portlessNode(t *testing.T, b *domain.Topology) int {
	t.Helper()
	for _, n := range b.Nodes() {
		if len(b.PortsAtNode(n)) == 0 {
			return n
		}
	}
	t.Fatal("board has no portless node")
	return domain.NoCoord
}

func TestSetupSettlementWaitsForItsEcho(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	board := beginnerBoard(t)
	a := newTestAgent(t, sender, board, nil)

	var put domain.PutPiece
	sender.EXPECT().Send(gomock.Any(), gomock.AssignableToTypeOf(domain.PutPiece{})).DoAndReturn(
		func(_ context.Context, req domain.Request) error {
			put = req.(domain.PutPiece)
			return nil
		}).Times(1)

	feed(t, a, domain.Turn{Seat: 0}, domain.GameState{Phase: domain.PhasePlaceFirstSettlement})
	if put.Piece != domain.PieceSettlement {
		t.Fatalf("expected a settlement, got %+v", put)
	}
	if !a.exp.pending() {
		t.Fatal("placement should be awaiting its echo")
	}

	// Another seat's placement does not complete ours.
	feed(t, a, domain.PiecePlaced{Seat: 2, Piece: domain.PieceSettlement, Coord: board.Nodes()[len(board.Nodes())-1]})
	pings(t, a, 50)
	if !a.exp.pending() {
		t.Fatal("foreign echo must not clear the expectation")
	}

	feed(t, a, domain.PiecePlaced{Seat: 0, Piece: domain.PieceSettlement, Coord: put.Coord})
	if a.exp.pending() {
		t.Fatal("matching echo should clear the expectation")
	}

	var road domain.PutPiece
	sender.EXPECT().Send(gomock.Any(), gomock.AssignableToTypeOf(domain.PutPiece{})).DoAndReturn(
		func(_ context.Context, req domain.Request) error {
			road = req.(domain.PutPiece)
			return nil
		}).Times(1)
	feed(t, a, domain.GameState{Phase: domain.PhasePlaceFirstRoad})

	if road.Piece != domain.PieceRoad {
		t.Fatalf("expected a road, got %+v", road)
	}
	x, y := board.EdgeNodes(road.Coord)
	if x != put.Coord && y != put.Coord {
		t.Fatalf("road %d does not touch settlement %d", road.Coord, put.Coord)
	}
}

func TestPhaseActionRetriesAfterMaxAskWait(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	rec := &recorder{}
	rec.expectAny(sender)
	a := newTestAgent(t, sender, beginnerBoard(t), nil)

	feed(t, a, domain.Turn{Seat: 0}, domain.GameState{Phase: domain.PhaseRoll})
	pings(t, a, DefaultTuning.MaxAskWait)
	if len(rec.sent) != 1 {
		t.Fatalf("expected one roll inside the wait window, got %v", rec.sent)
	}
	pings(t, a, 1)
	if len(rec.sent) != 2 {
		t.Fatalf("expected the roll to be asked again, got %v", rec.sent)
	}
	for _, req := range rec.sent {
		if _, ok := req.(domain.RollDice); !ok {
			t.Fatalf("unexpected request %T", req)
		}
	}
	last, _ := a.Events().Last()
	if last.Kind != EventRequest {
		t.Fatalf("last event = %s, want request", last.Kind)
	}
}

func TestUnansweredOfferFallsBackToTheBank(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	board := beginnerBoard(t)
	node := portlessNode(t, board)
	edge := board.EdgesAtNode(node)[0]

	var offer domain.Offer
	offer.From = 0
	offer.To = []bool{false, true, true, true}
	offer.Give[domain.Ore] = 1
	offer.Get[domain.Clay] = 1

	a := newTestAgent(t, sender, board, func(o *Options) {
		o.Planner = fixedPlanner{targets: []brain.BuildTarget{{Piece: domain.PieceRoad, Coord: edge}}}
		o.Negotiator = scriptedNegotiator{offer: offer, verdict: VerdictReject}
	})

	gomock.InOrder(
		sender.EXPECT().Send(gomock.Any(), domain.MakeOffer{Offer: offer}).Times(1),
		sender.EXPECT().Send(gomock.Any(), domain.ClearOffer{}).Times(1),
		sender.EXPECT().Send(gomock.Any(), domain.BankTrade{
			Give: domain.NewBundle(0, 4, 0, 0, 0),
			Get:  domain.NewBundle(1, 0, 0, 0, 0),
		}).Times(1),
	)

	feed(t, a,
		domain.PiecePlaced{Seat: 0, Piece: domain.PieceSettlement, Coord: node},
		domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: domain.Ore, Amount: 4},
		domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: domain.Wood, Amount: 1},
		domain.Turn{Seat: 0},
		domain.GameState{Phase: domain.PhaseAction},
	)
	if a.trade.await != TradeOffer {
		t.Fatalf("trade state = %d, want offer outstanding", a.trade.await)
	}

	feed(t, a,
		domain.OfferMade{Offer: offer},
		domain.OfferRejected{Seat: 1},
		domain.OfferRejected{Seat: 2},
	)
	if a.trade.await != TradeOffer {
		t.Fatal("offer should wait for seat 3")
	}

	// Seat 3 never answers; the offer times out and counts as refused.
	pings(t, a, 100)
	if !a.trade.refused[3] {
		t.Fatal("silent seat should be marked as refused")
	}
	if a.trade.await != TradeBank {
		t.Fatalf("trade state = %d, want bank trade in flight", a.trade.await)
	}
}

func TestAgentAcceptsHelpfulOffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	board := beginnerBoard(t)
	node := portlessNode(t, board)
	a := newTestAgent(t, sender, board, func(o *Options) {
		o.Planner = fixedPlanner{targets: []brain.BuildTarget{{Piece: domain.PieceRoad, Coord: board.EdgesAtNode(node)[0]}}}
		o.Negotiator = scriptedNegotiator{verdict: VerdictAccept}
	})
	sender.EXPECT().Send(gomock.Any(), domain.AcceptOffer{From: 2}).Times(1)

	var offer domain.Offer
	offer.From = 2
	offer.To = []bool{true, false, false, false}
	offer.Give[domain.Clay] = 1
	offer.Get[domain.Ore] = 1
	feed(t, a,
		domain.PiecePlaced{Seat: 0, Piece: domain.PieceSettlement, Coord: node},
		domain.Turn{Seat: 2},
		domain.OfferMade{Offer: offer},
	)
}

func TestAgentIgnoresOffersForOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	a := newTestAgent(t, sender, beginnerBoard(t), func(o *Options) {
		o.Negotiator = scriptedNegotiator{verdict: VerdictAccept}
	})
	// No Send expected.
	var offer domain.Offer
	offer.From = 2
	offer.To = []bool{false, true, false, false}
	feed(t, a, domain.Turn{Seat: 2}, domain.OfferMade{Offer: offer})
}

func TestWatchdogForfeitsSilentGame(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), domain.LeaveGame{Reason: "stalled"}).Return(nil).Times(1)

	inbox := NewInbox(16000)
	for i := 0; i < 16000; i++ {
		if err := inbox.Offer(domain.Ping{}); err != nil {
			t.Fatalf("Offer: %v", err)
		}
	}
	a := newTestAgent(t, sender, nil, func(o *Options) { o.Inbox = inbox })

	if err := a.Run(context.Background()); !errors.Is(err, ErrStalled) {
		t.Fatalf("Run = %v, want ErrStalled", err)
	}
	if got := inbox.Len(); got != 999 {
		t.Fatalf("agent should stop right after forfeiting, %d messages left", got)
	}
	if a.Alive() {
		t.Fatal("agent should be stopped")
	}
	if a.Mirror() != nil {
		t.Fatal("mirror should be released after Run")
	}
}

func TestWatchdogReissuesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	rec := &recorder{}
	rec.expectAny(sender)
	a := newTestAgent(t, sender, beginnerBoard(t), nil)

	feed(t, a, domain.Turn{Seat: 0}, domain.GameState{Phase: domain.PhaseRoll})
	pings(t, a, DefaultTuning.ReissueAfter+100)

	reissues, retries := 0, 0
	for _, e := range a.Events().Events() {
		switch e.Kind {
		case EventReissue:
			reissues++
		case EventRetry:
			retries++
		}
	}
	if reissues != 1 {
		t.Fatalf("expected exactly one reissue, got %d", reissues)
	}
	if retries == 0 {
		t.Fatal("expected the roll to be retried while waiting")
	}
	for _, req := range rec.sent {
		if _, ok := req.(domain.RollDice); !ok {
			t.Fatalf("unexpected request %T", req)
		}
	}
}

func TestKillStopsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newTestAgent(t, mocks.NewMockSender(ctrl), nil, nil)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()
	a.Kill()
	a.Kill()
	if err := <-done; err != nil {
		t.Fatalf("Run after Kill = %v, want nil", err)
	}
	if a.Alive() {
		t.Fatal("agent should be dead")
	}
	if stop, err := a.Step(context.Background(), domain.Ping{}); !stop || err != nil {
		t.Fatalf("Step after release = %v, %v", stop, err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newTestAgent(t, mocks.NewMockSender(ctrl), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil on cancel", err)
	}
}

func TestGameOverStopsAgent(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newTestAgent(t, mocks.NewMockSender(ctrl), nil, nil)
	stop, err := a.Step(context.Background(), domain.GameState{Phase: domain.PhaseGameOver})
	if !stop || err != nil {
		t.Fatalf("Step = %v, %v, want stop", stop, err)
	}
	if last, _ := a.Events().Last(); last.Kind != EventStopped {
		t.Fatalf("last event = %s, want stopped", last.Kind)
	}
}

func TestStepRecoversFromFault(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newTestAgent(t, mocks.NewMockSender(ctrl), beginnerBoard(t), func(o *Options) {
		o.Planner = panickyPlanner{}
	})
	feed(t, a, domain.Turn{Seat: 0})
	stop, err := a.Step(context.Background(), domain.GameState{Phase: domain.PhaseAction})
	if !stop || !errors.Is(err, ErrAgentFault) {
		t.Fatalf("Step = %v, %v, want fault", stop, err)
	}
	if a.Alive() {
		t.Fatal("agent should be stopped after a fault")
	}
	if last, _ := a.Events().Last(); last.Kind != EventFault {
		t.Fatalf("last event = %s, want fault", last.Kind)
	}
}

func TestNewAgentValidatesOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	tests := []struct {
		name string
		opts Options
	}{
		{"no sender", Options{Players: 4, Logger: logging.Nop()}},
		{"no logger", Options{Players: 4, Sender: sender}},
		{"seat too high", Options{Seat: 4, Players: 4, Sender: sender, Logger: logging.Nop()}},
		{"negative seat", Options{Seat: -1, Players: 4, Sender: sender, Logger: logging.Nop()}},
		{"no players", Options{Sender: sender, Logger: logging.Nop()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAgent(tt.opts); !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("NewAgent = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestNewAgentFillsDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, err := NewAgent(Options{Seat: 1, Players: 3, Sender: mocks.NewMockSender(ctrl), Logger: logging.Nop()})
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if a.ID == "" {
		t.Fatal("agent should get a generated ID")
	}
	if a.tuning.ForfeitAfter != DefaultTuning.ForfeitAfter || a.tuning.Cutoff != DefaultTuning.Cutoff {
		t.Fatalf("tuning not defaulted: %+v", a.tuning)
	}
	if _, ok := a.planner.(GreedyPlanner); !ok {
		t.Fatalf("planner = %T, want GreedyPlanner", a.planner)
	}
	if _, ok := a.pacer.(SleepPacer); !ok {
		t.Fatalf("pacer = %T, want SleepPacer", a.pacer)
	}
	if a.Inbox() == nil || !a.Alive() {
		t.Fatal("agent should start alive with an inbox")
	}
	if len(a.Mirror().Players) != 3 {
		t.Fatalf("mirror has %d players, want 3", len(a.Mirror().Players))
	}
}

func TestRepeatedTurnKeepsTurnState(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	rec := &recorder{}
	rec.expectAny(sender)
	board := beginnerBoard(t)
	node := portlessNode(t, board)

	var offer domain.Offer
	offer.To = []bool{false, true, true, true}
	offer.Give[domain.Ore] = 1
	offer.Get[domain.Clay] = 1
	a := newTestAgent(t, sender, board, func(o *Options) {
		o.Planner = fixedPlanner{targets: []brain.BuildTarget{{Piece: domain.PieceRoad, Coord: board.EdgesAtNode(node)[0]}}}
		o.Negotiator = scriptedNegotiator{offer: offer, verdict: VerdictReject}
	})

	feed(t, a,
		domain.PiecePlaced{Seat: 0, Piece: domain.PieceSettlement, Coord: node},
		domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: domain.Ore, Amount: 4},
		domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: domain.Wood, Amount: 1},
		domain.Turn{Seat: 0},
		domain.GameState{Phase: domain.PhaseAction},
		domain.OfferRejected{Seat: 1},
		domain.OfferRejected{Seat: 2},
		domain.OfferRejected{Seat: 3},
		domain.DevCardAction{Seat: 0, Verb: domain.CardDraw, Card: domain.CardKnight},
	)
	if a.trade.await != TradeBank {
		t.Fatalf("trade state = %d, want bank trade after every refusal", a.trade.await)
	}

	feed(t, a, domain.Turn{Seat: 0})
	if a.trade.await != TradeBank || a.plan.Len() != 1 {
		t.Fatalf("repeated turn dropped turn state: trade %d plan %d", a.trade.await, a.plan.Len())
	}
	if !a.trade.refused[1] || !a.trade.refused[3] {
		t.Fatal("refusals belong to the turn and must survive a repeated announcement")
	}
	if us := a.Mirror().Us(); us.Cards[domain.CardKnight] != 0 || us.FreshCards[domain.CardKnight] != 1 {
		t.Fatalf("knight bought this turn became playable: %+v", us.Cards)
	}

	feed(t, a, domain.Turn{Seat: 1})
	for s, refused := range a.trade.refused {
		if refused {
			t.Fatalf("seat %d still marked as refused after the turn passed", s)
		}
	}
	if a.trade.await != TradeIdle || a.plan.Len() != 0 {
		t.Fatalf("new turn kept trade %d plan %d", a.trade.await, a.plan.Len())
	}

	var names []string
	for _, req := range rec.sent {
		names = append(names, req.Name())
	}
	want := []string{"make_offer", "clear_offer", "bank_trade"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("sent %v, want %v", names, want)
	}
}

func TestDiscardWithoutPlanIsRandom(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	rec := &recorder{}
	rec.expectAny(sender)
	board := beginnerBoard(t)
	node := portlessNode(t, board)
	a := newTestAgent(t, sender, board, func(o *Options) {
		o.Planner = fixedPlanner{targets: []brain.BuildTarget{{Piece: domain.PieceRoad, Coord: board.EdgesAtNode(node)[0]}}}
	})

	hand := domain.NewBundle(2, 2, 2, 0, 2)
	feed(t, a, domain.PiecePlaced{Seat: 0, Piece: domain.PieceSettlement, Coord: node})
	for _, r := range domain.KnownResources {
		if hand[r] > 0 {
			feed(t, a, domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: r, Amount: hand[r]})
		}
	}
	feed(t, a, domain.Turn{Seat: 2})
	for i := 0; i < 20; i++ {
		feed(t, a, domain.DiscardRequest{Count: 4})
	}

	distinct := make(map[domain.Bundle]bool)
	for _, req := range rec.sent {
		d, ok := req.(domain.Discard)
		if !ok {
			t.Fatalf("unexpected request %T", req)
		}
		if d.Resources.Total() != 4 || !hand.Contains(d.Resources) {
			t.Fatalf("discard %s is not four cards from %s", d.Resources, hand)
		}
		distinct[d.Resources] = true
	}
	if len(rec.sent) != 20 {
		t.Fatalf("expected 20 discards, got %d", len(rec.sent))
	}
	if len(distinct) < 2 {
		t.Fatalf("discards without a plan should vary, got only %v", distinct)
	}
}

func TestShortDiscardIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), domain.Discard{Resources: domain.NewBundle(0, 2, 0, 0, 0)}).Times(1)
	var warnings []string
	a := newTestAgent(t, sender, beginnerBoard(t), func(o *Options) {
		o.Logger = warnLogger{warnings: &warnings}
	})

	feed(t, a,
		domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: domain.Ore, Amount: 2},
		domain.PlayerElement{Seat: 0, Element: domain.ElementResource, Action: domain.ActionGain, Resource: domain.Unknown, Amount: 3},
		domain.DiscardRequest{Count: 4},
	)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "2 of 4") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning about the short discard, got %v", warnings)
	}
}
