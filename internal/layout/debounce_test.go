package layout

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-track/internal/clinvar"
)

func TestDebouncer_Coalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int64
	for i := range 5 {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int64(i))
		})
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, int64(4), last.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int64
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(0), calls.Load())
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls atomic.Int64
	d.Trigger(func() { calls.Add(1) })
	d.Flush()
	assert.Equal(t, int64(1), calls.Load())

	d.Flush()
	assert.Equal(t, int64(1), calls.Load(), "nothing pending")
}

func TestHighlighter(t *testing.T) {
	var changes atomic.Int64
	h := NewHighlighter(time.Hour, func(clinvar.Category) { changes.Add(1) })
	defer h.Close()

	h.Set(clinvar.CategoryMissense)
	h.Set(clinvar.CategoryFrameshift)
	assert.Equal(t, clinvar.Category(""), h.Current(), "not applied before the delay")

	h.Flush()
	assert.Equal(t, clinvar.CategoryFrameshift, h.Current())
	assert.Equal(t, int64(1), changes.Load())
}

func TestHighlighter_Delay(t *testing.T) {
	h := NewHighlighter(DefaultHighlightDelay, nil)
	defer h.Close()

	h.Set(clinvar.CategoryOtherLoF)
	assert.Eventually(t, func() bool {
		return h.Current() == clinvar.CategoryOtherLoF
	}, time.Second, 10*time.Millisecond)

	h.Set("")
	h.Flush()
	assert.Equal(t, clinvar.Category(""), h.Current())
}
