package service

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

const (
	day = 24 * time.Hour

	// recentDays is the width of the last-days window
	recentDays = 7

	labelToday     = "Today"
	labelYesterday = "Yesterday"
)

// Limits caps the length of the ranked lists
type Limits struct {
	TopSubreddits      int
	DailyTopSubreddits int
	TopComments        int
	TopWords           int
}

// withDefaults replaces every non-positive limit with its default
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.TopSubreddits <= 0 {
		l.TopSubreddits = d.TopSubreddits
	}
	if l.DailyTopSubreddits <= 0 {
		l.DailyTopSubreddits = d.DailyTopSubreddits
	}
	if l.TopComments <= 0 {
		l.TopComments = d.TopComments
	}
	if l.TopWords <= 0 {
		l.TopWords = d.TopWords
	}
	return l
}

// DefaultLimits returns the standard list lengths
func DefaultLimits() Limits {
	return Limits{
		TopSubreddits:      10,
		DailyTopSubreddits: 5,
		TopComments:        10,
		TopWords:           10,
	}
}

// AnalyzeInput holds everything one analysis run depends on
type AnalyzeInput struct {
	Profile   entity.Profile
	Posts     []entity.RawItem
	Comments  []entity.RawItem
	StopWords []string
	Now       time.Time
	Location  *time.Location // calendar zone for years and day labels, UTC if nil
	WebURL    string         // DefaultWebURL if empty
	Limits    Limits         // non-positive fields fall back to DefaultLimits
}

// dayBucket is a Bucket for one recent day plus the newest timestamp seen in it
type dayBucket struct {
	label  string
	newest time.Time
	Bucket
}

// Analyze turns the de-duplicated history of a user into activity statistics.
// It only reads its input.
func Analyze(in AnalyzeInput) *entity.ActivityResult {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	webURL := in.WebURL
	if webURL == "" {
		webURL = DefaultWebURL
	}
	limits := in.Limits.withDefaults()
	now := in.Now.In(loc)

	var overall Bucket
	years := make(map[int]Bucket)
	days := make(map[string]dayBucket)

	for kind, items := range [entity.KindCount][]entity.RawItem{in.Posts, in.Comments} {
		for _, item := range items {
			item.Kind = entity.Kind(kind)
			overall = Accumulate(overall, item)

			if !item.HasCreatedAt() {
				continue
			}
			created := item.CreatedAt.In(loc)

			years[created.Year()] = Accumulate(years[created.Year()], item)

			if ago := DaysAgo(now, created); ago < recentDays {
				label := DayLabel(ago, created)
				d := days[label]
				d.label = label
				if created.After(d.newest) {
					d.newest = created
				}
				d.Bucket = Accumulate(d.Bucket, item)
				days[label] = d
			}
		}
	}

	ageDays := AccountAgeDays(in.Profile.CreatedAt, now)
	result := &entity.ActivityResult{
		Overall:       periodStats(FormatDate(in.Profile.CreatedAt.In(loc)), overall, ageDays, limits.TopSubreddits),
		Yearly:        make([]entity.PeriodStats, 0, len(years)),
		LastSevenDays: make([]entity.DayStats, 0, len(days)),
		TopUpvotedComments: TopComments(
			in.Comments, limits.TopComments, false, webURL, loc),
		TopDownvotedComments: TopComments(
			in.Comments, limits.TopComments, true, webURL, loc),
		MostUsedWords: TopWords(texts(in.Posts, in.Comments), in.StopWords, limits.TopWords),
		GeneratedAt:   in.Now,
	}

	for _, year := range slices.Sorted(maps.Keys(years)) {
		result.Yearly = append(result.Yearly, periodStats(
			strconv.Itoa(year), years[year], DaysInYear(year, now), limits.TopSubreddits))
	}

	recent := slices.Collect(maps.Values(days))
	slices.SortFunc(recent, func(a, b dayBucket) int {
		if c := cmp.Compare(labelRank(b.label), labelRank(a.label)); c != 0 {
			return c
		}
		return b.newest.Compare(a.newest)
	})
	for _, d := range recent {
		result.LastSevenDays = append(result.LastSevenDays, entity.DayStats{
			Date:        d.label,
			BucketStats: d.Stats(limits.DailyTopSubreddits),
		})
	}

	return result
}

func periodStats(date string, b Bucket, days, limit int) entity.PeriodStats {
	return entity.PeriodStats{
		Date:              date,
		BucketStats:       b.Stats(limit),
		AvgPostsPerDay:    FormatAverage(b.Counts[entity.KindPost], days),
		AvgCommentsPerDay: FormatAverage(b.Counts[entity.KindComment], days),
	}
}

func texts(posts, comments []entity.RawItem) []string {
	out := make([]string, 0, len(posts)+len(comments))
	for _, p := range posts {
		out = append(out, p.Text)
	}
	for _, c := range comments {
		out = append(out, c.Text)
	}
	return out
}

// DaysAgo returns how many calendar days, in the zone of now, separate the date
// of t from the date of now. Timestamps in the future count as today.
func DaysAgo(now, t time.Time) int {
	t = t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	then := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return max(0, int(today.Sub(then)/day))
}

// DayLabel names a recent day: "Today", "Yesterday" or the date itself
func DayLabel(daysAgo int, t time.Time) string {
	switch daysAgo {
	case 0:
		return labelToday
	case 1:
		return labelYesterday
	default:
		return t.Format(dayLabelLayout)
	}
}

func labelRank(label string) int {
	switch label {
	case labelToday:
		return 2
	case labelYesterday:
		return 1
	default:
		return 0
	}
}

// AccountAgeDays returns the account age in days, rounded up and at least 1
func AccountAgeDays(created, now time.Time) int {
	if created.IsZero() {
		return 1
	}
	return max(1, ceilDays(now.Sub(created)))
}

// DaysInYear returns the averaging period of a calendar year: the days elapsed
// so far for the current year, the full year length otherwise.
func DaysInYear(year int, now time.Time) int {
	if year == now.Year() {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		return max(1, ceilDays(now.Sub(start)))
	}
	return time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location()).YearDay()
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
