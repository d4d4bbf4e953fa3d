package cli

import (
	"context"
	"time"
)

// Watchable reports changed document IDs until ctx is done.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// DefaultDebounce coalesces bursts of file events from a single save.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls fn once and then again after every burst of changes, until ctx
// is done or the watcher closes its channel. fn receives the last changed ID
// of the burst, or "" for the first call.
func Watch(ctx context.Context, w Watchable, debounce time.Duration, fn func(changed string)) error {
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	fn("")

	var (
		pending string
		timer   *time.Timer
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case id, ok := <-events:
			if !ok {
				if pending != "" {
					fn(pending)
				}
				return nil
			}
			pending = id
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fn(pending)
			pending = ""
			fire = nil
		}
	}
}
