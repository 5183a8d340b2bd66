package service

import (
	"time"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// Analyzer binds the analysis settings to the pure Analyze and BuildSummary functions
type Analyzer struct {
	stopWords []string
	location  *time.Location
	webURL    string
	limits    Limits
	now       func() time.Time
}

// AnalyzerOption configures the Analyzer
type AnalyzerOption func(*Analyzer)

// WithStopWords sets the words excluded from word frequencies
func WithStopWords(words []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.stopWords = words
	}
}

// WithLocation sets the time zone calendar buckets are computed in
func WithLocation(loc *time.Location) AnalyzerOption {
	return func(a *Analyzer) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithWebURL sets the site comment links point to
func WithWebURL(u string) AnalyzerOption {
	return func(a *Analyzer) {
		if u != "" {
			a.webURL = u
		}
	}
}

// WithLimits sets the ranked list lengths
func WithLimits(l Limits) AnalyzerOption {
	return func(a *Analyzer) {
		a.limits = l
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		location: time.UTC,
		webURL:   DefaultWebURL,
		limits:   DefaultLimits(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the activity statistics of a fetched user
func (a *Analyzer) Analyze(data *entity.UserData) *entity.ActivityResult {
	return Analyze(AnalyzeInput{
		Profile:   data.Profile,
		Posts:     data.Posts,
		Comments:  data.Comments,
		StopWords: a.stopWords,
		Now:       a.now(),
		Location:  a.location,
		WebURL:    a.webURL,
		Limits:    a.limits,
	})
}

// Summarize renders the profile overview
func (a *Analyzer) Summarize(snap *ProfileSnapshot) *entity.Summary {
	return BuildSummary(*snap, a.now().In(a.location))
}
