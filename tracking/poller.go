// Package tracking polls order status for the customer tracking view and the
// owner kanban board. There is no push channel; a repeating fetch with an
// explicit start/stop is the whole mechanism.
package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"dynetap-go/models"
)

// DefaultInterval matches the UI refresh cadence.
const DefaultInterval = 5 * time.Second

// FetchFunc loads the latest order snapshot, typically via the public
// order-status endpoint.
type FetchFunc func(ctx context.Context) (*models.Order, error)

// Poller repeatedly fetches an order snapshot and delivers the latest one on
// Updates. Fetch errors are logged and skipped; the next tick tries again.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	updates  chan *models.Order

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(fetch FetchFunc, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		updates:  make(chan *models.Order, 1),
	}
}

// Updates delivers the most recent snapshot. If the consumer lags, stale
// snapshots are dropped in favor of newer ones.
func (p *Poller) Updates() <-chan *models.Order {
	return p.updates
}

// Start begins polling immediately and then on every interval tick. Calling
// Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
}

// Stop halts polling. Pending snapshots stay readable on Updates.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	order, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Order poll failed: %v", err)
		}
		return
	}

	// Replace a stale undelivered snapshot with the fresh one.
	select {
	case p.updates <- order:
	default:
		select {
		case <-p.updates:
		default:
		}
		select {
		case p.updates <- order:
		default:
		}
	}
}
