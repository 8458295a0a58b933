// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/holomush/accounts/pkg/errutil"
)

// DefaultReapInterval is how often expired sessions are purged.
const DefaultReapInterval = 10 * time.Minute

// Purger deletes expired state and reports how much it removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Reaper periodically purges expired sessions and revoked tokens.
type Reaper struct {
	interval time.Duration
	purgers  []Purger
	logger   *slog.Logger
	onPurge  func(n int64)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReaper creates a Reaper. A non-positive interval takes DefaultReapInterval.
func NewReaper(interval time.Duration, logger *slog.Logger, purgers ...Purger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{interval: interval, purgers: purgers, logger: logger}
}

// OnPurge registers fn to receive the number of rows each cycle removed.
// It must be called before Start.
func (r *Reaper) OnPurge(fn func(n int64)) {
	r.onPurge = fn
}

// RunOnce runs every purger once. All purgers run even if earlier ones fail.
func (r *Reaper) RunOnce(ctx context.Context) error {
	var (
		errs  []error
		total int64
	)
	for _, p := range r.purgers {
		n, err := p.PurgeExpired(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}
	if total > 0 {
		r.logger.InfoContext(ctx, "purged expired sessions", "count", total)
	}
	if r.onPurge != nil {
		r.onPurge(total)
	}
	return errors.Join(errs...)
}

// Start begins purging in the background until ctx is done or Stop is called.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop stops the reaper and waits for the current cycle to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Reaper) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				errutil.LogError(ctx, r.logger, "session purge failed", err)
			}
		}
	}
}
