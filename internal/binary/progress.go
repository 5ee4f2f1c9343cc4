package binary

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// ProgressDisplay renders download progress.
type ProgressDisplay interface {
	// Advance moves the display forward by delta bytes.
	Advance(delta int64)
	Finish()
}

// DisplayFactory creates a display once the total size is known.
// total is -1 when unknown.
type DisplayFactory func(total int64) ProgressDisplay

// BarDisplay returns a factory rendering a terminal progress bar to w.
func BarDisplay(w io.Writer) DisplayFactory {
	return func(total int64) ProgressDisplay {
		size := "unknown size"
		if total > 0 {
			size = humanize.Bytes(uint64(total))
		}
		bar := progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading Chromium - %s", size)),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w)
			}),
		)
		return &barDisplay{bar: bar}
	}
}

type barDisplay struct {
	bar *progressbar.ProgressBar
}

func (b *barDisplay) Advance(delta int64) {
	_ = b.bar.Add64(delta)
}

func (b *barDisplay) Finish() {
	_ = b.bar.Finish()
}

// DiscardDisplay returns a factory whose displays render nothing.
func DiscardDisplay() DisplayFactory {
	return func(int64) ProgressDisplay { return discardDisplay{} }
}

type discardDisplay struct{}

func (discardDisplay) Advance(int64) {}
func (discardDisplay) Finish()      {}

// progressReporter turns cumulative byte counts into display deltas.
// The display is created lazily on the first callback. Counts that go
// backwards (a retried download) are ignored and counts past a known
// total are clamped, so the sum of deltas never exceeds the total.
type progressReporter struct {
	newDisplay DisplayFactory
	display    ProgressDisplay
	last       int64
}

func newProgressReporter(factory DisplayFactory) *progressReporter {
	if factory == nil {
		factory = DiscardDisplay()
	}
	return &progressReporter{newDisplay: factory}
}

func (r *progressReporter) OnProgress(downloaded, total int64) {
	if r.display == nil {
		r.display = r.newDisplay(total)
	}
	if total > 0 && downloaded > total {
		downloaded = total
	}
	if downloaded <= r.last {
		return
	}
	delta := downloaded - r.last
	r.last = downloaded
	r.display.Advance(delta)
}

func (r *progressReporter) Finish() {
	if r.display != nil {
		r.display.Finish()
	}
}
