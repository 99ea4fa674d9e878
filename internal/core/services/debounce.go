package services

import (
	"context"
	"sync"
	"time"

	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/logger"
)

// DefaultDebounceWindow is the quiet period before a queued edit is sent.
const DefaultDebounceWindow = time.Second

// flushTimeout bounds the background write when a timer fires.
const flushTimeout = 10 * time.Second

// FieldDebouncer coalesces rapid chunk edits into delayed remote
// writes. One timer per chunk ID: re-arming cancels the previous timer,
// so only the most recent record within a burst is ever sent, and edits
// to different chunks never coalesce into each other's writes.
//
// The debouncer is owned by the workspace that created it and is
// disposed with it, so timers never outlive a workspace reset.
type FieldDebouncer struct {
	window time.Duration
	send   func(ctx context.Context, chunk domain.Chunk) error

	mu      sync.Mutex
	timers  map[int64]*time.Timer
	pending map[int64]domain.Chunk
	closed  bool

	// inflight tracks fired timer callbacks so Close can drain them.
	inflight sync.WaitGroup
}

// NewFieldDebouncer creates a debouncer that delivers coalesced records
// through send after the quiet window. A non-positive window means
// DefaultDebounceWindow.
func NewFieldDebouncer(window time.Duration, send func(ctx context.Context, chunk domain.Chunk) error) *FieldDebouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &FieldDebouncer{
		window:  window,
		send:    send,
		timers:  make(map[int64]*time.Timer),
		pending: make(map[int64]domain.Chunk),
	}
}

// Schedule queues the chunk record for a delayed write, replacing any
// record already queued for the same ID and restarting its timer.
func (d *FieldDebouncer) Schedule(chunk domain.Chunk) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.pending[chunk.ID] = chunk

	if timer, ok := d.timers[chunk.ID]; ok {
		timer.Stop()
	}
	id := chunk.ID
	d.timers[id] = time.AfterFunc(d.window, func() {
		d.fire(id)
	})
}

// fire sends the pending record for id, if still queued.
func (d *FieldDebouncer) fire(id int64) {
	d.mu.Lock()
	chunk, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
		delete(d.timers, id)
		d.inflight.Add(1)
	}
	d.mu.Unlock()

	if !ok {
		return
	}
	defer d.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := d.send(ctx, chunk); err != nil {
		// A failed coalesced write is not retried; the edit survives
		// locally and the next edit re-queues the whole record.
		logger.Error("debounced write for chunk %d failed: %v", id, err)
	}
}

// Flush sends the pending record for id immediately, if any.
// The armed timer is cancelled.
func (d *FieldDebouncer) Flush(ctx context.Context, id int64) error {
	d.mu.Lock()
	chunk, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
		if timer, found := d.timers[id]; found {
			timer.Stop()
			delete(d.timers, id)
		}
	}
	d.mu.Unlock()

	if !ok {
		return nil
	}
	return d.send(ctx, chunk)
}

// Cancel drops the pending record for id without sending it.
func (d *FieldDebouncer) Cancel(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[id]; ok {
		timer.Stop()
		delete(d.timers, id)
	}
	delete(d.pending, id)
}

// CancelAll drops every pending record without sending.
// Used on workspace reset so one metatext's edits never chase another.
func (d *FieldDebouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
	d.pending = make(map[int64]domain.Chunk)
}

// Pending returns the number of queued records.
func (d *FieldDebouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close flushes every pending record and stops all timers. The
// debouncer accepts no further schedules. The first send error is
// returned; remaining records are still attempted.
func (d *FieldDebouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true

	remaining := make([]domain.Chunk, 0, len(d.pending))
	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
	for id, chunk := range d.pending {
		remaining = append(remaining, chunk)
		delete(d.pending, id)
	}
	d.mu.Unlock()

	// Wait for fired timers that are mid-send.
	d.inflight.Wait()

	var firstErr error
	for _, chunk := range remaining {
		if err := d.send(ctx, chunk); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
