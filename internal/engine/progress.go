package engine

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Status is a snapshot of a running parallel computation.
type Status struct {
	Processed int
	Total     int
	Elapsed   time.Duration

	// Remaining is linearly extrapolated from the throughput so far.
	Remaining time.Duration
}

// Percent returns the completed share in [0,100].
func (s Status) Percent() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Processed) * 100 / float64(s.Total)
}

func newStatus(processed, total int, elapsed time.Duration) Status {
	s := Status{Processed: processed, Total: total, Elapsed: elapsed}
	if processed > 0 && total > processed {
		s.Remaining = time.Duration(float64(elapsed) / float64(processed) * float64(total-processed))
	}
	return s
}

// Progress receives updates while the worker pool runs.
//
// Calls are never concurrent: Update comes from the single result collector
// and Finish only after it has stopped.
type Progress interface {
	Start(total int)
	Update(s Status)
	Finish(err error)
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) Start(int) {}

func (NopProgress) Update(Status) {}

func (NopProgress) Finish(error) {}

// BarProgress renders an interactive progress bar, for terminals.
type BarProgress struct {
	out io.Writer
	p   *mpb.Progress
	bar *mpb.Bar
}

// NewBarProgress creates a progress bar that writes to w.
func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{out: w}
}

func (b *BarProgress) Start(total int) {
	b.p = mpb.New(mpb.WithWidth(40), mpb.WithOutput(b.out))
	b.bar = b.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("genome pairs: ", decor.WC{W: len("genome pairs: "), C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Name("elapsed: ", decor.WC{W: len("elapsed: ")}),
			decor.Elapsed(decor.ET_STYLE_GO),
			decor.Name(" remaining: ", decor.WC{W: len(" remaining: ")}),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
		),
	)
}

func (b *BarProgress) Update(s Status) {
	if b.bar != nil {
		b.bar.SetCurrent(int64(s.Processed))
	}
}

func (b *BarProgress) Finish(err error) {
	if b.p == nil {
		return
	}
	if err != nil || !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.p.Wait()
}

// LineProgress writes one status line per whole percent of progress.
// Suited to log files and pipes where a redrawn bar would be noise.
type LineProgress struct {
	mu   sync.Mutex
	out  io.Writer
	last int
}

// NewLineProgress creates a line-oriented progress reporter writing to w.
func NewLineProgress(w io.Writer) *LineProgress {
	return &LineProgress{out: w, last: -1}
}

func (l *LineProgress) Start(int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = -1
}

func (l *LineProgress) Update(s Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pct := int(s.Percent())
	if pct == l.last && s.Processed != s.Total {
		return
	}
	l.last = pct
	fmt.Fprintf(l.out, "-> Processing %d of %d (%.2f%%) genome pairs [elapsed: %s, remaining: %s].\n",
		s.Processed, s.Total, s.Percent(),
		s.Elapsed.Round(time.Second), s.Remaining.Round(time.Second))
}

func (l *LineProgress) Finish(error) {}
