package policy

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vadim/reddit-insight/internal/cache"
	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
	"github.com/vadim/reddit-insight/internal/domain/activity/service"
	"github.com/vadim/reddit-insight/internal/metrics"
)

const defaultFetchTimeout = 2 * time.Minute

// UserFetcher fetches user data from Reddit
type UserFetcher interface {
	FetchUser(ctx context.Context, username string) (*entity.UserData, error)
	FetchProfile(ctx context.Context, username string) (*service.ProfileSnapshot, error)
}

// Analyzer turns fetched data into responses
type Analyzer interface {
	Analyze(data *entity.UserData) *entity.ActivityResult
	Summarize(snap *service.ProfileSnapshot) *entity.Summary
}

// Cache stores computed results per username
type Cache interface {
	Get(key string) (cache.Entry, bool)
	GetOrCreate(key string) cache.Entry
	Update(key string, fn func(cache.Entry) cache.Entry) cache.Entry
}

// Policy serves summaries and activity from the cache, computing them at most
// once per username at a time. Concurrent misses for the same username share
// one upstream run.
type Policy struct {
	fetcher      UserFetcher
	analyzer     Analyzer
	cache        Cache
	flights      singleflight.Group
	fetchTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// Config holds policy settings
type Config struct {
	FetchTimeout time.Duration
}

// New creates a new activity policy
func New(fetcher UserFetcher, analyzer Analyzer, c Cache, cfg Config, logger *slog.Logger) *Policy {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	return &Policy{
		fetcher:      fetcher,
		analyzer:     analyzer,
		cache:        c,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger,
	}
}

// WithMetrics sets the metrics recorder
func (p *Policy) WithMetrics(m *metrics.Metrics) *Policy {
	p.metrics = m
	return p
}

// CacheKey normalizes a username into its cache key
func CacheKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// GetSummary returns the profile overview of a user
func (p *Policy) GetSummary(ctx context.Context, username string) (*entity.Summary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, entity.ErrUsernameRequired
	}
	key := CacheKey(username)

	if e, ok := p.cache.Get(key); ok && e.Summary != nil {
		return e.Summary, nil
	}

	return doShared(ctx, p, "summary", key, func(ctx context.Context) (*entity.Summary, error) {
		snap, err := p.fetcher.FetchProfile(ctx, username)
		if err != nil {
			return nil, err
		}

		summary := p.analyzer.Summarize(snap)
		e := p.cache.Update(key, func(e cache.Entry) cache.Entry {
			e.Summary = summary
			if e.Activity != nil {
				e.Summary = service.HydrateSummary(summary, e.Activity)
			}
			return e
		})
		return e.Summary, nil
	})
}

// GetActivity returns the full activity statistics of a user
func (p *Policy) GetActivity(ctx context.Context, username string) (*entity.ActivityResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, entity.ErrUsernameRequired
	}
	key := CacheKey(username)

	if e := p.cache.GetOrCreate(key); e.Activity != nil {
		return e.Activity, nil
	}

	return doShared(ctx, p, "activity", key, func(ctx context.Context) (*entity.ActivityResult, error) {
		data, err := p.fetcher.FetchUser(ctx, username)
		if err != nil {
			return nil, err
		}

		activity := p.analyzer.Analyze(data)
		p.cache.Update(key, func(e cache.Entry) cache.Entry {
			e.Activity = activity
			e.Summary = service.HydrateSummary(e.Summary, activity)
			return e
		})
		return activity, nil
	})
}

// doShared runs fn once per operation and key, handing its result to every
// concurrent caller. fn runs on a context detached from the callers and bounded
// by the fetch timeout; each caller still returns as soon as its own ctx is done.
func doShared[T any](ctx context.Context, p *Policy, operation, key string, fn func(context.Context) (T, error)) (T, error) {
	ch := p.flights.DoChan(operation+":"+key, func() (any, error) {
		runID := uuid.NewString()
		logger := p.logger.With("operation", operation, "username", key, "run_id", runID)
		logger.Info("fetching from reddit")

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()

		start := time.Now()
		v, err := fn(runCtx)
		elapsed := time.Since(start)
		outcome := outcomeOf(err)
		p.metrics.ObserveAnalysis(outcome, elapsed)

		if err != nil {
			logger.Warn("reddit fetch failed", "outcome", outcome, "duration", elapsed, "error", err)
			return v, err
		}
		logger.Info("reddit fetch completed", "duration", elapsed)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			p.metrics.SharedFlight(operation)
		}
		v, _ := res.Val.(T)
		return v, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, entity.ErrAuth):
		return "auth"
	case errors.Is(err, entity.ErrPaginationLimitExceeded):
		return "pagination_limit"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "upstream"
	}
}
