package otp

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically sweeps expired records out of the store so an
// abandoned issuance can't grow the map forever. Correctness does not
// depend on it: reads already treat expired records as absent.
type Reaper struct {
	store    Store
	interval time.Duration
}

func NewReaper(store Store, interval time.Duration) *Reaper {
	return &Reaper{store: store, interval: interval}
}

// Run sweeps on a fixed interval until ctx is cancelled. It is meant to be
// started as a goroutine from main; it never touches request handling.
func (r *Reaper) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.sweep(ctx)
		}
	}
}

// sweep runs one pass. A failing or panicking store must not kill the loop,
// so both are caught and logged here.
func (r *Reaper) sweep(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("OTP sweep panicked", "panic", rec)
		}
	}()
	removed, err := r.store.Sweep(ctx)
	if err != nil {
		slog.Error("OTP sweep failed", "err", err)
		return
	}
	if removed > 0 {
		slog.Info("OTP sweep removed expired records", "removed", removed)
	}
}
