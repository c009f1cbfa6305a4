// Package sync turns service invalidations into Bubble Tea messages so
// views reload whatever their queries depend on.
package sync

import (
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasktracker/internal/service"
)

// ChangedMsg is a tea.Msg sent after a mutation invalidated cached queries.
type ChangedMsg struct {
	service.Invalidation
}

// Subscriber is the part of the service the watcher needs.
type Subscriber interface {
	Subscribe(fn func(service.Invalidation)) (unsubscribe func())
}

// Watcher relays invalidations from a Subscriber into the Bubble Tea
// runtime.
type Watcher struct {
	src         Subscriber
	resultCh    chan ChangedMsg
	unsubscribe func()
	mu          gosync.Mutex
	running     bool
}

// New creates a Watcher over src.
func New(src Subscriber) *Watcher {
	return &Watcher{
		src:      src,
		resultCh: make(chan ChangedMsg, 16),
	}
}

// Start subscribes to invalidations and returns a tea.Cmd that waits for
// the first one.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.running = true
	w.unsubscribe = w.src.Subscribe(w.send)
	return w.waitForResult()
}

// Stop unsubscribes. Pending messages are still delivered.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.unsubscribe()
	w.running = false
}

// send queues inv without blocking the mutating goroutine. When the queue
// is full the invalidation is merged into nothing: a pending message
// already forces a reload.
func (w *Watcher) send(inv service.Invalidation) {
	select {
	case w.resultCh <- ChangedMsg{Invalidation: inv}:
	default:
	}
}

func (w *Watcher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNext returns a tea.Cmd that waits for the next invalidation.
// Call it after handling each ChangedMsg to keep listening.
func (w *Watcher) WaitForNext() tea.Cmd {
	return w.waitForResult()
}
