package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atlasprime/atlas/internal/chat"
	"github.com/atlasprime/atlas/internal/models"
)

// UsageFeed bridges the usage poller into the bubbletea event loop. Watch and
// Stop are called from inside the update loop, and the poll goroutine delivers
// snapshots back into that same loop via program.Send, so neither may ever
// wait for the poll goroutine: a snapshot parked in Send would deadlock the
// whole program. Retired handles are stopped on detached goroutines instead,
// and each watch carries a generation so a retired loop stops delivering the
// moment it is replaced. A late snapshot that slips through is dropped by the
// model's session guard.
type UsageFeed struct {
	mu      sync.Mutex
	poller  *chat.Poller
	program *tea.Program
	gen     uint64
	handle  *chat.PollHandle
}

// NewUsageFeed creates the feed; the program is attached after construction
// because the model embedding this feed is built before the program exists.
func NewUsageFeed(poller *chat.Poller) *UsageFeed {
	return &UsageFeed{poller: poller}
}

// SetProgram attaches the bubbletea program snapshots are delivered to.
func (f *UsageFeed) SetProgram(program *tea.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.program = program
}

// Watch starts polling usage for sessionID, replacing any previous watch.
// Never blocks on the outgoing poll loop.
func (f *UsageFeed) Watch(sessionID string) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	prev := f.handle
	f.handle = nil
	f.mu.Unlock()
	if prev != nil {
		go prev.Stop()
	}

	handle := f.poller.Start(sessionID, func(snap models.UsageSnapshot) {
		f.mu.Lock()
		program := f.program
		live := f.gen == gen
		f.mu.Unlock()
		if live && program != nil {
			program.Send(usageMsg(snap))
		}
	})

	f.mu.Lock()
	if f.gen == gen {
		f.handle = handle
		f.mu.Unlock()
		return
	}
	// A newer Watch or Stop raced in while the loop was starting
	f.mu.Unlock()
	go handle.Stop()
}

// Stop retires the active watch, if any, without waiting for its loop.
func (f *UsageFeed) Stop() {
	f.mu.Lock()
	f.gen++
	handle := f.handle
	f.handle = nil
	f.mu.Unlock()
	if handle != nil {
		go handle.Stop()
	}
}
