// Package chat polls the support conversation for new messages while
// its dialog is open. Best effort: a missed poll is simply caught on the
// next tick, there is no backfill protocol.
package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_storefront/internal/domain"
)

const DefaultInterval = 5 * time.Second

// API is the slice of the storefront client the poller needs.
type API interface {
	ListMessages(ctx context.Context, conversationID, afterID string) ([]domain.Message, error)
}

// Poller fetches new messages on a fixed interval. Start on dialog
// open, Stop on close. Polls are single-flight: a tick or a manual
// refresh that lands while a fetch is still in flight joins it instead
// of starting another.
type Poller struct {
	api      API
	interval time.Duration
	onBatch  func([]domain.Message)

	sfg singleflight.Group

	mu     sync.Mutex
	cancel context.CancelFunc
	lastID string
	wg     sync.WaitGroup
}

// NewPoller creates a poller delivering each batch of new messages to
// onBatch. interval <= 0 uses DefaultInterval.
func NewPoller(api API, interval time.Duration, onBatch func([]domain.Message)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{api: api, interval: interval, onBatch: onBatch}
}

// Start begins polling for the given conversation. A second Start stops
// the previous run first.
func (p *Poller) Start(conversationID string) {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.cancel = cancel
	p.lastID = ""
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx, conversationID)
}

// Stop cancels the poll loop and waits for it to exit. Safe to call
// when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// PollNow triggers an immediate fetch, e.g. right after the user sends
// a message. Shares flight with the ticker.
func (p *Poller) PollNow(ctx context.Context, conversationID string) {
	p.poll(ctx, conversationID)
}

func (p *Poller) run(ctx context.Context, conversationID string) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, conversationID)
	for {
		select {
		case <-ticker.C:
			p.poll(ctx, conversationID)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context, conversationID string) {
	_, err, _ := p.sfg.Do(conversationID, func() (interface{}, error) {
		p.mu.Lock()
		after := p.lastID
		p.mu.Unlock()

		msgs, err := p.api.ListMessages(ctx, conversationID, after)
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			return nil, nil
		}

		p.mu.Lock()
		p.lastID = msgs[len(msgs)-1].ID
		p.mu.Unlock()

		if p.onBatch != nil {
			p.onBatch(msgs)
		}
		return nil, nil
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("chat poll error: %v", err)
	}
}
