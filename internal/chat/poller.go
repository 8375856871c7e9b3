package chat

import (
	"context"
	"sync"
	"time"

	"github.com/atlasprime/atlas/internal/api"
	"github.com/atlasprime/atlas/internal/logger"
	"github.com/atlasprime/atlas/internal/models"
)

// Poller periodically fetches the realtime usage snapshot for a session.
// Each Start returns its own handle, so switching sessions is stop old,
// start new, and a stale loop can never deliver into the current view.
type Poller struct {
	client   *api.Client
	interval time.Duration
}

// NewPoller builds a poller; a non-positive interval falls back to 5s.
func NewPoller(client *api.Client, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{client: client, interval: interval}
}

// PollHandle controls one polling loop.
type PollHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	stop   sync.Once
}

// Stop terminates the loop and blocks until it has fully exited. After Stop
// returns the callback will not fire again. Safe to call more than once.
func (h *PollHandle) Stop() {
	h.stop.Do(h.cancel)
	<-h.done
}

// Start fetches the snapshot for sessionID immediately and then every
// interval, invoking onSnapshot with each result. Fetches run serially, so
// at most one request is in flight per handle. Fetch errors are swallowed
// after a debug log; usage telemetry is advisory and must never surface as
// a user-facing failure.
func (p *Poller) Start(sessionID string, onSnapshot func(models.UsageSnapshot)) *PollHandle {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &PollHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(handle.done)

		p.fetch(ctx, sessionID, onSnapshot)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fetch(ctx, sessionID, onSnapshot)
			}
		}
	}()
	return handle
}

func (p *Poller) fetch(ctx context.Context, sessionID string, onSnapshot func(models.UsageSnapshot)) {
	snap, err := p.client.RealtimeUsage(ctx, sessionID)
	if err != nil {
		if ctx.Err() == nil {
			logger.Debugf("chat: usage poll for %s failed: %v", sessionID, err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	onSnapshot(*snap)
}
