package service

import (
	"fmt"
	"slices"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// Bucket accumulates counters for one aggregation scope: the whole account,
// one calendar year or one recent day. The zero value is an empty bucket.
type Bucket struct {
	Counts     [entity.KindCount]int
	Subreddits tally
	ByKind     [entity.KindCount]tally
}

// Accumulate folds one item into a bucket and returns the new state.
// The bucket passed in must not be used after the call.
func Accumulate(b Bucket, item entity.RawItem) Bucket {
	sub := item.SubredditOrUnknown()

	b.Counts[item.Kind]++
	b.Subreddits = b.Subreddits.add(sub)
	b.ByKind[item.Kind] = b.ByKind[item.Kind].add(sub)

	return b
}

// Total returns the number of items in the bucket
func (b Bucket) Total() int {
	total := 0
	for _, n := range b.Counts {
		total += n
	}
	return total
}

// Stats renders the bucket counters and its top subreddit rankings
func (b Bucket) Stats(limit int) entity.BucketStats {
	return entity.BucketStats{
		TotalPosts:               b.Counts[entity.KindPost],
		TotalComments:            b.Counts[entity.KindComment],
		UniqueSubredditsPosts:    b.ByKind[entity.KindPost].Len(),
		UniqueSubredditsComments: b.ByKind[entity.KindComment].Len(),
		TopSubreddits:            Rank(b.Subreddits, b.Total(), limit),
		TopSubredditsByPosts:     Rank(b.ByKind[entity.KindPost], b.Counts[entity.KindPost], limit),
		TopSubredditsByComments:  Rank(b.ByKind[entity.KindComment], b.Counts[entity.KindComment], limit),
	}
}

// Rank orders the tallied subreddits by count, highest first. Equal counts keep
// the order the subreddits were first seen in. A limit <= 0 keeps every row.
func Rank(t tally, total, limit int) []entity.SubredditRanking {
	rows := make([]entity.SubredditRanking, 0, t.Len())
	for _, sub := range t.order {
		count := t.counts[sub]
		rows = append(rows, entity.SubredditRanking{
			Subreddit:  sub,
			Count:      count,
			Percentage: Percentage(count, total),
		})
	}

	slices.SortStableFunc(rows, func(a, b entity.SubredditRanking) int {
		return b.Count - a.Count
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// Percentage formats count/total as a percentage with two decimals
func Percentage(count, total int) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(count)/float64(total)*100)
}
