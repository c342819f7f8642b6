package filter

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ProgressUpdater receives progress reports from a running filter.
//
// A filter calls SetRange once with the number of work units it expects and
// then SetValue as units complete. SetValue may be called from several
// goroutines; implementations must be safe for that.
type ProgressUpdater interface {
	SetRange(min, max int)
	SetValue(v int)
}

// NopProgress discards progress reports.
type NopProgress struct{}

func (NopProgress) SetRange(int, int) {}
func (NopProgress) SetValue(int)      {}

// FuncProgress reports progress as a percentage to a callback. The callback
// only fires when the percentage grows, so out-of-order reports from
// concurrent workers never move it backwards.
type FuncProgress struct {
	Fn func(percent int)

	mu       sync.Mutex
	min, max int
	last     int
}

// NewFuncProgress wraps fn.
func NewFuncProgress(fn func(percent int)) *FuncProgress {
	return &FuncProgress{Fn: fn, last: -1}
}

func (p *FuncProgress) SetRange(min, max int) {
	p.mu.Lock()
	p.min, p.max = min, max
	p.last = -1
	p.mu.Unlock()
}

func (p *FuncProgress) SetValue(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pct := 100
	if span := p.max - p.min; span > 0 {
		pct = (v - p.min) * 100 / span
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct <= p.last {
		return
	}
	p.last = pct
	if p.Fn != nil {
		p.Fn(pct)
	}
}

// NewLogProgress logs progress at debug level, at most once per 10 % step.
// A coarse range logs every report that enters a new step.
func NewLogProgress(entry *logrus.Entry) *FuncProgress {
	lastPct, lastStep := -1, -1
	return NewFuncProgress(func(pct int) {
		if pct <= lastPct {
			// SetRange started a new run
			lastStep = -1
		}
		lastPct = pct
		step := pct / 10
		if step <= lastStep {
			return
		}
		lastStep = step
		entry.WithField("percent", pct).Debug("filter progress")
	})
}

// Counter turns completed work units into SetValue calls. It is safe for
// concurrent use and is what filters use from parallel row workers.
type Counter struct {
	progress ProgressUpdater
	done     atomic.Int64
}

// NewCounter sets the range of progress to [0, total] and returns a counter
// for it. A nil progress is replaced with NopProgress.
func NewCounter(progress ProgressUpdater, total int) *Counter {
	if progress == nil {
		progress = NopProgress{}
	}
	progress.SetRange(0, total)
	return &Counter{progress: progress}
}

// Add records n completed units.
func (c *Counter) Add(n int) {
	v := c.done.Add(int64(n))
	c.progress.SetValue(int(v))
}

// Done returns the number of completed units.
func (c *Counter) Done() int {
	return int(c.done.Load())
}
