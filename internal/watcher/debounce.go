package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer groups rapid file changes together. A batch is released once
// no event has arrived for the delay. At most one released batch waits to
// be consumed; later batches are merged into it.
type Debouncer struct {
	delay   time.Duration
	output  chan []ChangeEvent
	timer   *time.Timer
	pending map[string]ChangeEvent
	waiting map[string]ChangeEvent
	mutex   sync.Mutex
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		output:  make(chan []ChangeEvent, 1),
		pending: make(map[string]ChangeEvent),
	}
}

// Add records an event and restarts the quiet period.
func (d *Debouncer) Add(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// Deduplicate events by path, keeping the latest
	d.pending[event.Path] = event

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

// Batches delivers coalesced batches sorted by path.
func (d *Debouncer) Batches() <-chan []ChangeEvent {
	return d.output
}

// Stop cancels a pending flush.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	// A batch not yet taken by the consumer absorbs the new one
	select {
	case <-d.output:
		for path, event := range d.waiting {
			if _, ok := d.pending[path]; !ok {
				d.pending[path] = event
			}
		}
	default:
	}

	events := make([]ChangeEvent, 0, len(d.pending))
	for _, event := range d.pending {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	d.waiting = d.pending
	d.pending = make(map[string]ChangeEvent)
	d.output <- events
}
