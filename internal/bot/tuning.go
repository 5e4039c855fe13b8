package bot

import (
	"time"

	botinternal "hexbot/internal/bot/internal"
)

// Tuning holds the thresholds and delays of the controller. Tick counts are
// consumed messages, pings included.
type Tuning struct {
	// MaxAskWait is how long a phase action waits before it may fire again.
	MaxAskWait int
	// ReissueAfter re-sends the pending request once.
	ReissueAfter int
	// ForfeitAfter leaves the game.
	ForfeitAfter int
	// BankTradeTimeout and OfferTimeout bound our own trades.
	BankTradeTimeout int
	OfferTimeout     int
	// Cutoff bounds estimator simulations.
	Cutoff int
	// ActionDelay follows requests made on our turn; TradeDelay spaces bank trades.
	ActionDelay time.Duration
	TradeDelay  time.Duration
	// EventLogSize is the number of decisions kept for inspection.
	EventLogSize int
}

// DefaultTuning mirrors the cadence of a patient human player.
var DefaultTuning = Tuning{
	MaxAskWait:       300,
	ReissueAfter:     4000,
	ForfeitAfter:     15000,
	BankTradeTimeout: 10,
	OfferTimeout:     100,
	Cutoff:           botinternal.DefaultCutoff,
	ActionDelay:      500 * time.Millisecond,
	TradeDelay:       1500 * time.Millisecond,
	EventLogSize:     256,
}

// withDefaults fills zero fields from DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning
	if t.MaxAskWait <= 0 {
		t.MaxAskWait = d.MaxAskWait
	}
	if t.ReissueAfter <= 0 {
		t.ReissueAfter = d.ReissueAfter
	}
	if t.ForfeitAfter <= 0 {
		t.ForfeitAfter = d.ForfeitAfter
	}
	if t.BankTradeTimeout <= 0 {
		t.BankTradeTimeout = d.BankTradeTimeout
	}
	if t.OfferTimeout <= 0 {
		t.OfferTimeout = d.OfferTimeout
	}
	if t.Cutoff <= 0 {
		t.Cutoff = d.Cutoff
	}
	if t.EventLogSize <= 0 {
		t.EventLogSize = d.EventLogSize
	}
	return t
}
