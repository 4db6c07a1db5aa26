package fs

import (
	"sync"
	"time"

	"github.com/aretw0/cellar/pkg/core"
)

// debouncer coalesces bursts of events per notebook id. Editors and atomic
// renames produce several filesystem events for one logical change; only
// the last one within the window survives.
type debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules emit for the event after the window elapses. A pending
// timer for the same id is reset, keeping the newest event type.
func (d *debouncer) add(event core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[event.ID]; ok {
		// Stop returning true means the old callback never ran and never will.
		if t.Stop() {
			d.wg.Done()
		}
	}

	id := event.ID
	d.wg.Add(1)
	d.timers[id] = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		delete(d.timers, id)
		d.mu.Unlock()
		emit(event)
	})
}

// stopAndWait rejects new events and waits for in-flight timers to finish,
// up to the given timeout. After it returns the consumer channel can be
// closed without racing a late emit.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
