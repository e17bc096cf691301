// Package progress reports hashing throughput and ETA for large inputs.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Event describes hashing status at a point in time.
type Event struct {
	Bytes      uint64
	Total      uint64
	AverageBps float64
	ETA        time.Duration
	Elapsed    time.Duration
}

// Reporter emits throttled single-line progress updates for one input.
// Reporters for different inputs may share a writer; writes are serialized
// through the shared lock.
type Reporter struct {
	w          io.Writer
	mu         *sync.Mutex
	name       string
	total      uint64
	start      time.Time
	lastTick   time.Time
	minTickGap time.Duration
	now        func() time.Time
}

// NewReporter creates a reporter. total may be zero when the size is
// unknown, in which case no ETA is shown.
func NewReporter(w io.Writer, mu *sync.Mutex, name string, total uint64) *Reporter {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	r := &Reporter{w: w, mu: mu, name: name, total: total, minTickGap: 150 * time.Millisecond, now: time.Now}
	r.start = r.now()
	r.lastTick = r.start
	return r
}

// Update prints progress at throttled intervals.
func (r *Reporter) Update(bytes uint64) {
	now := r.now()
	if now.Sub(r.lastTick) < r.minTickGap && (r.total == 0 || bytes < r.total) {
		return
	}
	r.lastTick = now
	e := r.event(bytes, now)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.total > 0 {
		_, _ = fmt.Fprintf(r.w, "\rhashing %s %s/%s avg:%s eta:%s", r.name, humanBytes(e.Bytes), humanBytes(e.Total), humanRate(e.AverageBps), humanDuration(e.ETA))
		return
	}
	_, _ = fmt.Fprintf(r.w, "\rhashing %s %s avg:%s", r.name, humanBytes(e.Bytes), humanRate(e.AverageBps))
}

// Done prints the final summary line.
func (r *Reporter) Done(bytes uint64) {
	e := r.event(bytes, r.now())
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "\rhashed %s %s in %s avg:%s\n", r.name, humanBytes(e.Bytes), humanDuration(e.Elapsed), humanRate(e.AverageBps))
}

func (r *Reporter) event(bytes uint64, now time.Time) Event {
	elapsed := now.Sub(r.start)
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	avg := float64(bytes) / elapsed.Seconds()
	remaining := uint64(0)
	if bytes < r.total {
		remaining = r.total - bytes
	}
	eta := time.Duration(0)
	if avg > 0 && remaining > 0 {
		eta = time.Duration(float64(remaining) / avg * float64(time.Second))
	}
	return Event{Bytes: bytes, Total: r.total, AverageBps: avg, ETA: eta, Elapsed: elapsed}
}

func humanBytes(v uint64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	val := float64(v)
	u := 0
	for val >= 1024 && u < len(units)-1 {
		val /= 1024
		u++
	}
	return fmt.Sprintf("%.1f%s", val, units[u])
}

func humanRate(bps float64) string {
	if bps < 0 {
		bps = 0
	}
	return fmt.Sprintf("%s/s", humanBytes(uint64(bps)))
}

func humanDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}
