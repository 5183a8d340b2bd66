package entity

import "time"

// SubredditRanking is one row of a subreddit ranking within a bucket
type SubredditRanking struct {
	Subreddit  string `json:"subreddit"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"` // two decimals, e.g. "12.50"
}

// WordFrequency is one row of the most used words list
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CommentEntry is a comment selected for the top up/downvoted lists
type CommentEntry struct {
	Score     int    `json:"score"`
	Date      string `json:"date"`
	Subreddit string `json:"subreddit"`
	Content   string `json:"content"`
	Link      string `json:"link"`
}

// BucketStats holds the counters and rankings shared by every bucket type
type BucketStats struct {
	TotalPosts               int                `json:"total_posts"`
	TotalComments            int                `json:"total_comments"`
	UniqueSubredditsPosts    int                `json:"unique_subreddits_posts"`
	UniqueSubredditsComments int                `json:"unique_subreddits_comments"`
	TopSubreddits            []SubredditRanking `json:"top_subreddits_active_in"`
	TopSubredditsByPosts     []SubredditRanking `json:"top_subreddits_by_posts"`
	TopSubredditsByComments  []SubredditRanking `json:"top_subreddits_by_comments"`
}

// PeriodStats is an overall or yearly bucket with per-day averages
type PeriodStats struct {
	Date string `json:"date,omitempty"` // year, or the account creation date for the overall bucket
	BucketStats
	AvgPostsPerDay    string `json:"avg_posts_per_day"`    // four decimals
	AvgCommentsPerDay string `json:"avg_comments_per_day"` // four decimals
}

// DayStats is a bucket for one of the last seven days
type DayStats struct {
	Date string `json:"date"` // "Today", "Yesterday" or "Mon Jan 02 2006"
	BucketStats
}

// ActivityResult is the full analytics output for one user
type ActivityResult struct {
	Overall              PeriodStats     `json:"overall_data"`
	Yearly               []PeriodStats   `json:"yearly_stats"`
	LastSevenDays        []DayStats      `json:"lastSevenDays"`
	TopUpvotedComments   []CommentEntry  `json:"top_upvoted_comments"`
	TopDownvotedComments []CommentEntry  `json:"top_downvoted_comments"`
	MostUsedWords        []WordFrequency `json:"most_used_words"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
