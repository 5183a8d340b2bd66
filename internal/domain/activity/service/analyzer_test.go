package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

var analyzeNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func post(id, sub string, created time.Time, title string) entity.RawItem {
	return entity.RawItem{
		Kind: entity.KindPost, AuthorID: "t2_u", ItemID: "t3_" + id, ID: id,
		Subreddit: sub, CreatedAt: created, Text: title,
	}
}

func comment(id, sub string, created time.Time, score int, body string) entity.RawItem {
	return entity.RawItem{
		Kind: entity.KindComment, AuthorID: "t2_u", Author: "someone", ItemID: "t1_" + id, ID: id,
		ParentPostID: "p" + id, Subreddit: sub, CreatedAt: created, Score: score, Text: body,
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("empty activity", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Profile: entity.Profile{CreatedAt: analyzeNow.AddDate(-1, 0, 0)},
			Now:     analyzeNow,
		})

		assert.Equal(t, "0.0000", res.Overall.AvgPostsPerDay)
		assert.Equal(t, "0.0000", res.Overall.AvgCommentsPerDay)
		assert.Empty(t, res.Overall.TopSubreddits)
		assert.NotNil(t, res.Overall.TopSubreddits)
		assert.Empty(t, res.Yearly)
		assert.Empty(t, res.LastSevenDays)
		assert.Empty(t, res.TopUpvotedComments)
		assert.Empty(t, res.TopDownvotedComments)
		assert.Empty(t, res.MostUsedWords)
		assert.NotNil(t, res.MostUsedWords)
	})

	t.Run("overall averages use the account age", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Profile: entity.Profile{CreatedAt: analyzeNow.Add(-10 * day)},
			Posts: []entity.RawItem{
				post("a", "golang", analyzeNow.Add(-time.Hour), "hello"),
			},
			Comments: []entity.RawItem{
				comment("b", "golang", analyzeNow.Add(-2*time.Hour), 1, "x"),
				comment("c", "rust", analyzeNow.Add(-3*time.Hour), 1, "y"),
			},
			Now: analyzeNow,
		})

		assert.Equal(t, 1, res.Overall.TotalPosts)
		assert.Equal(t, 2, res.Overall.TotalComments)
		assert.Equal(t, "0.1000", res.Overall.AvgPostsPerDay)
		assert.Equal(t, "0.2000", res.Overall.AvgCommentsPerDay)
		require.Len(t, res.Overall.TopSubreddits, 2)
		assert.Equal(t, entity.SubredditRanking{Subreddit: "golang", Count: 2, Percentage: "66.67"}, res.Overall.TopSubreddits[0])
		assert.Equal(t, 1, res.Overall.UniqueSubredditsPosts)
		assert.Equal(t, 2, res.Overall.UniqueSubredditsComments)
		assert.Equal(t, "100.00", res.Overall.TopSubredditsByPosts[0].Percentage)
	})

	t.Run("day labels", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Comments: []entity.RawItem{
				comment("old", "a", analyzeNow.Add(-8*day), 0, ""),
				comment("d3", "a", analyzeNow.Add(-3*day), 0, ""),
				comment("d1", "a", analyzeNow.Add(-1*day), 0, ""),
				comment("d0", "a", analyzeNow, 0, ""),
				comment("d5", "a", analyzeNow.Add(-5*day), 0, ""),
				comment("future", "a", analyzeNow.Add(time.Hour), 0, ""),
			},
			Now: analyzeNow,
		})

		var labels []string
		for _, d := range res.LastSevenDays {
			labels = append(labels, d.Date)
		}
		assert.Equal(t, []string{"Today", "Yesterday", "Tue Mar 12 2024", "Sun Mar 10 2024"}, labels)
		assert.Equal(t, 2, res.LastSevenDays[0].TotalComments)
	})

	t.Run("yearly buckets are ascending", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Posts: []entity.RawItem{
				post("a", "x", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), ""),
				post("b", "x", time.Date(2022, time.May, 2, 0, 0, 0, 0, time.UTC), ""),
				post("c", "y", time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC), ""),
				post("d", "y", time.Date(2022, time.June, 2, 0, 0, 0, 0, time.UTC), ""),
			},
			Now: analyzeNow,
		})

		require.Len(t, res.Yearly, 3)
		assert.Equal(t, "2022", res.Yearly[0].Date)
		assert.Equal(t, "2023", res.Yearly[1].Date)
		assert.Equal(t, "2024", res.Yearly[2].Date)
		assert.Equal(t, 2, res.Yearly[0].TotalPosts)
		// 2 posts over 365 days
		assert.Equal(t, "0.0055", res.Yearly[0].AvgPostsPerDay)
		// 2024-03-15 12:00 is 74.5 days into the year, rounded up to 75
		assert.Equal(t, "0.0133", res.Yearly[2].AvgPostsPerDay)
	})

	t.Run("items without a timestamp count only overall", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Posts: []entity.RawItem{post("a", "", time.Time{}, "")},
			Now:   analyzeNow,
		})

		assert.Equal(t, 1, res.Overall.TotalPosts)
		assert.Equal(t, entity.UnknownSubreddit, res.Overall.TopSubreddits[0].Subreddit)
		assert.Empty(t, res.Yearly)
		assert.Empty(t, res.LastSevenDays)
	})

	t.Run("labels follow the configured zone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		created := time.Date(2024, time.March, 12, 20, 0, 0, 0, time.UTC)

		res := Analyze(AnalyzeInput{
			Comments: []entity.RawItem{comment("a", "x", created, 0, "")},
			Now:      analyzeNow,
			Location: tokyo,
		})
		require.Len(t, res.LastSevenDays, 1)
		assert.Equal(t, "Wed Mar 13 2024", res.LastSevenDays[0].Date)
	})

	t.Run("top comments and words", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Posts: []entity.RawItem{post("p", "x", analyzeNow, "gopher gopher")},
			Comments: []entity.RawItem{
				comment("a", "x", analyzeNow, 5, "gopher"),
				comment("b", "x", analyzeNow, -3, "crab"),
				comment("c", "x", analyzeNow, 5, "crab"),
			},
			StopWords: []string{"crab"},
			Now:       analyzeNow,
		})

		require.Len(t, res.TopUpvotedComments, 3)
		assert.Equal(t, "https://reddit.com/r/x/comments/pa/_/a", res.TopUpvotedComments[0].Link)
		assert.Equal(t, "https://reddit.com/r/x/comments/pc/_/c", res.TopUpvotedComments[1].Link)
		assert.Equal(t, -3, res.TopDownvotedComments[0].Score)
		assert.Equal(t, "Mar 15, 2024", res.TopDownvotedComments[0].Date)
		assert.Equal(t, []entity.WordFrequency{{Word: "gopher", Count: 3}}, res.MostUsedWords)
	})

	t.Run("recent days follow calendar dates", func(t *testing.T) {
		var comments []entity.RawItem
		for h := range 168 {
			comments = append(comments, comment(fmt.Sprint(h), "x", analyzeNow.Add(-time.Duration(h)*time.Hour), 0, ""))
		}

		res := Analyze(AnalyzeInput{Comments: comments, Now: analyzeNow})

		var labels []string
		for _, d := range res.LastSevenDays {
			labels = append(labels, d.Date)
		}
		assert.Equal(t, []string{
			"Today", "Yesterday", "Wed Mar 13 2024", "Tue Mar 12 2024",
			"Mon Mar 11 2024", "Sun Mar 10 2024", "Sat Mar 09 2024",
		}, labels)
		// 00:00 through 12:00 today
		assert.Equal(t, 13, res.LastSevenDays[0].TotalComments)
		for _, d := range res.LastSevenDays[1:] {
			assert.Equal(t, 24, d.TotalComments, d.Date)
		}
	})

	t.Run("non-positive limits fall back to defaults", func(t *testing.T) {
		var comments []entity.RawItem
		for i := range 50 {
			sub := fmt.Sprintf("sub%d", i%12)
			comments = append(comments, comment(fmt.Sprint(i), sub, analyzeNow, i, fmt.Sprintf("word%c", 'a'+i%20)))
		}

		res := Analyze(AnalyzeInput{
			Comments: comments,
			Now:      analyzeNow,
			Limits:   Limits{TopSubreddits: 3, TopComments: 0, TopWords: -1},
		})

		assert.Len(t, res.Overall.TopSubreddits, 3)
		assert.Len(t, res.LastSevenDays[0].TopSubreddits, 5)
		assert.Len(t, res.TopUpvotedComments, 10)
		assert.Len(t, res.TopDownvotedComments, 10)
		assert.Len(t, res.MostUsedWords, 10)
	})

	t.Run("json keys", func(t *testing.T) {
		res := Analyze(AnalyzeInput{
			Profile:  entity.Profile{CreatedAt: time.Date(2020, time.June, 28, 10, 0, 0, 0, time.UTC)},
			Comments: []entity.RawItem{comment("a", "x", analyzeNow, 1, "hello")},
			Now:      analyzeNow,
		})

		raw, err := json.Marshal(res)
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))
		for _, key := range []string{
			"overall_data", "yearly_stats", "lastSevenDays",
			"top_upvoted_comments", "top_downvoted_comments", "most_used_words",
		} {
			assert.Contains(t, doc, key)
		}

		var overall map[string]any
		require.NoError(t, json.Unmarshal(doc["overall_data"], &overall))
		assert.Equal(t, "Jun 28, 2020", overall["date"])
		assert.Equal(t, 1.0, overall["total_comments"])
	})
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysAgo(now, now.Add(-30*time.Minute)))
	assert.Equal(t, 1, DaysAgo(now, now.Add(-time.Hour)))
	assert.Equal(t, 1, DaysAgo(now, now.Add(-24*time.Hour)))
	assert.Equal(t, 2, DaysAgo(now, now.Add(-25*time.Hour)))
	assert.Equal(t, 8, DaysAgo(now, now.AddDate(0, 0, -8)))
	assert.Equal(t, 0, DaysAgo(now, now.Add(48*time.Hour)))

	// the date of t is read in the zone of now
	tokyo := now.In(time.FixedZone("JST", 9*60*60))
	assert.Equal(t, 0, DaysAgo(tokyo, now.Add(-time.Hour)))
}

func TestDaysInYear(t *testing.T) {
	assert.Equal(t, 365, DaysInYear(2023, analyzeNow))
	assert.Equal(t, 366, DaysInYear(2020, analyzeNow))
	assert.Equal(t, 1, DaysInYear(2024, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAccountAgeDays(t *testing.T) {
	assert.Equal(t, 1, AccountAgeDays(time.Time{}, analyzeNow))
	assert.Equal(t, 1, AccountAgeDays(analyzeNow, analyzeNow))
	assert.Equal(t, 2, AccountAgeDays(analyzeNow.Add(-25*time.Hour), analyzeNow))
}

func TestPermalink(t *testing.T) {
	c := entity.RawItem{Author: "spez", Subreddit: "golang", ID: "c1", ParentPostID: "p1"}

	withLink := c
	withLink.Permalink = "/r/golang/comments/p1/title/c1/"
	assert.Equal(t, "https://reddit.com/r/golang/comments/p1/title/c1/", Permalink(DefaultWebURL, withLink))

	absolute := c
	absolute.Permalink = "https://old.reddit.com/x"
	assert.Equal(t, "https://old.reddit.com/x", Permalink(DefaultWebURL, absolute))

	assert.Equal(t, "https://reddit.com/r/golang/comments/p1/_/c1", Permalink(DefaultWebURL, c))
	assert.Equal(t, "https://reddit.com/user/spez", Permalink("https://reddit.com/", entity.RawItem{Author: "spez"}))
}
