package layout

import (
	"sync"
	"time"

	"github.com/inodb/vibe-track/internal/clinvar"
)

// DefaultHighlightDelay is how long highlight changes settle before they
// take effect.
const DefaultHighlightDelay = 150 * time.Millisecond

// Debouncer runs only the last of a burst of calls, once the burst has
// been quiet for the delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs the pending call unless a later Trigger superseded it.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cancel drops the waiting call, if any. Use it on teardown.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}

// Flush runs the waiting call immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	d.gen++
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Highlighter holds the highlighted consequence category. Changes go
// through a debouncer so hovering across the legend does not cause a
// redraw per entry.
type Highlighter struct {
	debounce *Debouncer
	onChange func(clinvar.Category)

	mu      sync.RWMutex
	current clinvar.Category
}

// NewHighlighter creates a highlighter. onChange, if non-nil, is called
// after each applied change.
func NewHighlighter(delay time.Duration, onChange func(clinvar.Category)) *Highlighter {
	return &Highlighter{debounce: NewDebouncer(delay), onChange: onChange}
}

// Set requests a new highlight. An empty category clears it.
func (h *Highlighter) Set(cat clinvar.Category) {
	h.debounce.Trigger(func() { h.apply(cat) })
}

func (h *Highlighter) apply(cat clinvar.Category) {
	h.mu.Lock()
	h.current = cat
	h.mu.Unlock()
	if h.onChange != nil {
		h.onChange(cat)
	}
}

// Current returns the highlight in effect.
func (h *Highlighter) Current() clinvar.Category {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Flush applies a pending change now.
func (h *Highlighter) Flush() {
	h.debounce.Flush()
}

// Close discards a pending change.
func (h *Highlighter) Close() {
	h.debounce.Cancel()
}
