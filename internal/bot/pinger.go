package bot

import (
	"context"
	"time"

	"hexbot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Pinger feeds liveness ticks into an inbox so the watchdog advances even
// when the server is silent.
type Pinger struct {
	interval time.Duration
	inbox    *Inbox
	logger   runtime.Logger
}

// NewPinger creates a pinger writing to inbox every interval.
func NewPinger(interval time.Duration, inbox *Inbox, logger runtime.Logger) *Pinger {
	return &Pinger{interval: interval, inbox: inbox, logger: logger}
}

// Run pings until ctx is cancelled. A full inbox drops the ping.
func (p *Pinger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.inbox.Offer(domain.Ping{}); err != nil {
				p.logger.Warn("Pinger.Run: ping dropped: %v", err)
			}
		}
	}
}
