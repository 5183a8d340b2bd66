package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Purger removes expired entries
type Purger interface {
	PurgeExpired() int
}

// Janitor periodically purges expired cache entries
type Janitor struct {
	cache    Purger
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewJanitor creates a new cache janitor
func NewJanitor(cache Purger, interval time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Janitor{
		cache:    cache,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the janitor
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.logger.Info("cache janitor started", "interval", j.interval)

	j.wg.Add(1)
	go j.run(ctx)
}

// Stop stops the janitor and waits for the loop to exit
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	j.logger.Info("cache janitor stopped")
}

// run is the main janitor loop
func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.cache.PurgeExpired(); n > 0 {
				j.logger.Debug("purged expired cache entries", "count", n)
			}
		case <-j.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
