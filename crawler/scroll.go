package crawler

import (
	"context"
	"log/slog"
	"time"
)

// ScrollOptions tunes auto-scroll.
type ScrollOptions struct {
	Distance int           // pixels per step
	Interval time.Duration // pause before each step
	MaxSteps int           // hard cap on steps
}

// autoScroll scrolls page down in fixed steps so lazy-loaded content gets a
// chance to render. It stops once the scrolled distance reaches the document
// height measured at that step, after MaxSteps steps, or when ctx is done,
// and returns the number of steps taken. Failures end the loop early but are
// never reported: a partially scrolled page is still extracted.
func autoScroll(ctx context.Context, page Page, opts ScrollOptions) int {
	if opts.MaxSteps <= 0 || opts.Distance <= 0 {
		return 0
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scrolled, steps := 0, 0
	for steps < opts.MaxSteps {
		select {
		case <-ctx.Done():
			slog.Debug("auto-scroll interrupted", "steps", steps, "error", ctx.Err())
			return steps
		case <-ticker.C:
		}

		height, err := page.ScrollHeight(ctx)
		if err != nil {
			slog.Debug("auto-scroll: height unavailable", "steps", steps, "error", err)
			return steps
		}
		if err := page.ScrollBy(ctx, opts.Distance); err != nil {
			slog.Debug("auto-scroll: scroll step failed", "steps", steps, "error", err)
			return steps
		}
		scrolled += opts.Distance
		steps++

		if scrolled >= height {
			break
		}
	}
	return steps
}
