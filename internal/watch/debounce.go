package watch

import (
	"sync"
	"time"
)

// debouncer coalesces events for the same path. An event is released once
// no further event for its path arrived within the delay.
type debouncer struct {
	delay time.Duration
	out   chan Event
	log   Logger

	mu      sync.Mutex
	pending map[string]*pendingEvent
	closed  bool
	dropped int
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration, size int, log Logger) *debouncer {
	return &debouncer{
		delay:   delay,
		out:     make(chan Event, size),
		log:     log,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules e, merging it with a pending event for the same path.
func (d *debouncer) add(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if p, ok := d.pending[e.Path]; ok {
		p.event.Op |= e.Op
		p.event.Timestamp = e.Timestamp
		p.timer.Reset(d.delay)
		return
	}

	p := &pendingEvent{event: e}
	p.timer = time.AfterFunc(d.delay, func() {
		d.fire(e.Path)
	})
	d.pending[e.Path] = p
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[path]
	if !ok || d.closed {
		return
	}
	delete(d.pending, path)

	select {
	case d.out <- p.event:
	default:
		d.dropped++
		d.log.Warn("event queue full; dropped %s for %s", p.event.Op, path)
	}
}

// flush releases every pending event now.
func (d *debouncer) flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for path, p := range d.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	d.mu.Unlock()

	for _, path := range paths {
		d.fire(path)
	}
}

func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *debouncer) droppedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *debouncer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}
