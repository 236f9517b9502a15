// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"
)

// Pacer enforces a minimum interval between successive calls to an
// external service. The zero interval disables pacing. Pacer is not
// safe for concurrent use; each pipeline stage owns its own.
type Pacer struct {
	Interval time.Duration

	last time.Time
	now  func() time.Time
	wait func(context.Context, time.Duration) error
}

// NewPacer returns a pacer with the given minimum interval between calls.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{Interval: interval}
}

// Wait blocks until at least Interval has elapsed since the previous
// Wait returned, or until the context is cancelled. The first call never
// blocks.
func (p *Pacer) Wait(ctx context.Context) error {
	now := time.Now
	if p.now != nil {
		now = p.now
	}

	if !p.last.IsZero() && p.Interval > 0 {
		if remaining := p.Interval - now().Sub(p.last); remaining > 0 {
			if err := p.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}
	p.last = now()
	return nil
}

func (p *Pacer) sleep(ctx context.Context, d time.Duration) error {
	if p.wait != nil {
		return p.wait(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
