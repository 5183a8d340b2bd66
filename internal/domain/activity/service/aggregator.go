package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// visibilityProbeLimit is the page size of the listing probe behind IsPrivate
const visibilityProbeLimit = 3

// Upstream defines the Reddit operations available through one authenticated session
type Upstream interface {
	Profile(ctx context.Context, username string) (*entity.Profile, error)
	FetchAll(ctx context.Context, username string, kind entity.Kind, sort entity.Sort) ([]entity.RawItem, error)
	CountRecent(ctx context.Context, username string, kind entity.Kind, limit int) (int, error)
}

// Connector opens an authenticated session with the next credential set
type Connector interface {
	Connect(ctx context.Context) (Upstream, error)
}

// Aggregator fetches a user's complete history across every listing sort
type Aggregator struct {
	conn Connector
}

// NewAggregator creates a new aggregator
func NewAggregator(conn Connector) *Aggregator {
	return &Aggregator{conn: conn}
}

// FetchUser fetches the profile and every post and comment listing concurrently,
// then merges the listings of each kind. Any failure fails the whole fetch.
func (a *Aggregator) FetchUser(ctx context.Context, username string) (*entity.UserData, error) {
	up, err := a.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	var profile *entity.Profile
	g.Go(func() error {
		p, err := up.Profile(gctx, username)
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}
		profile = p
		return nil
	})

	var lists [entity.KindCount][][]entity.RawItem
	for _, kind := range entity.Kinds {
		lists[kind] = make([][]entity.RawItem, len(entity.SortPrecedence))
		for i, sort := range entity.SortPrecedence {
			g.Go(func() error {
				items, err := up.FetchAll(gctx, username, kind, sort)
				if err != nil {
					return err
				}
				lists[kind][i] = items
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &entity.UserData{
		Profile:  *profile,
		Posts:    MergeByPrecedence(lists[entity.KindPost]...),
		Comments: MergeByPrecedence(lists[entity.KindComment]...),
	}, nil
}

// MergeByPrecedence de-duplicates items by identity key. Lists are given from
// highest to lowest precedence: the first occurrence of a key wins, and the
// result keeps the order in which keys are first seen.
func MergeByPrecedence(lists ...[]entity.RawItem) []entity.RawItem {
	seen := make(map[string]struct{})
	merged := []entity.RawItem{}

	for _, list := range lists {
		for _, item := range list {
			key := item.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}

// FetchProfile fetches the profile and probes whether its history is visible.
// A profile with karma but no visible posts or comments is reported as private.
func (a *Aggregator) FetchProfile(ctx context.Context, username string) (*ProfileSnapshot, error) {
	up, err := a.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := up.Profile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	snap := &ProfileSnapshot{Profile: *profile}
	if !profile.HasKarma() {
		return snap, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var counts [entity.KindCount]int
	for _, kind := range entity.Kinds {
		g.Go(func() error {
			n, err := up.CountRecent(gctx, username, kind, visibilityProbeLimit)
			if err != nil {
				return fmt.Errorf("probing %s: %w", kind, err)
			}
			counts[kind] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Private = counts[entity.KindPost] == 0 && counts[entity.KindComment] == 0
	return snap, nil
}
