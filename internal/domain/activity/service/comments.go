package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// DefaultWebURL is the public site comment links point to
const DefaultWebURL = "https://reddit.com"

// TopComments returns the highest scored comments, or the lowest when ascending
// is set. Ties keep the input order.
func TopComments(comments []entity.RawItem, limit int, ascending bool, webURL string, loc *time.Location) []entity.CommentEntry {
	sorted := slices.Clone(comments)
	slices.SortStableFunc(sorted, func(a, b entity.RawItem) int {
		if ascending {
			return a.Score - b.Score
		}
		return b.Score - a.Score
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]entity.CommentEntry, 0, len(sorted))
	for _, c := range sorted {
		date := unknownDate
		if c.HasCreatedAt() {
			date = FormatDate(c.CreatedAt.In(loc))
		}
		out = append(out, entity.CommentEntry{
			Score:     c.Score,
			Date:      date,
			Subreddit: c.SubredditOrUnknown(),
			Content:   c.Text,
			Link:      Permalink(webURL, c),
		})
	}
	return out
}

// Permalink returns an absolute link to a comment. It prefers the upstream
// permalink, then builds one from the parent post, then falls back to the author's profile.
func Permalink(webURL string, c entity.RawItem) string {
	webURL = strings.TrimRight(webURL, "/")

	if c.Permalink != "" {
		if strings.HasPrefix(c.Permalink, "http://") || strings.HasPrefix(c.Permalink, "https://") {
			return c.Permalink
		}
		if !strings.HasPrefix(c.Permalink, "/") {
			return webURL + "/" + c.Permalink
		}
		return webURL + c.Permalink
	}

	if c.ParentPostID != "" && c.ID != "" {
		return fmt.Sprintf("%s/r/%s/comments/%s/_/%s", webURL, c.SubredditOrUnknown(), c.ParentPostID, c.ID)
	}

	return webURL + "/user/" + c.Author
}
