package service

import (
	"time"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

const (
	toolTipPublic  = "This account’s posts or comments are publicly visible on Reddit."
	toolTipPrivate = "This account exists, but no public posts or comments are visible.\n" +
		"This may occur if the user enabled profile privacy, was suspended,\n" +
		"shadowbanned, or restricted by Reddit."
)

// ProfileSnapshot is a profile plus the outcome of the visibility probe
type ProfileSnapshot struct {
	Profile entity.Profile
	Private bool
}

// BuildSummary renders the quick overview of a profile. Totals and averages
// stay entity.Processing until HydrateSummary fills them in.
func BuildSummary(snap ProfileSnapshot, now time.Time) *entity.Summary {
	created := FormatDate(snap.Profile.CreatedAt)
	if !snap.Profile.CreatedAt.IsZero() {
		created = FormatDate(snap.Profile.CreatedAt.In(now.Location()))
	}

	s := &entity.Summary{
		AccountCreationDate: created + " " + FormatAge(snap.Profile.CreatedAt, now),
		TotalPosts:          entity.Processing,
		TotalComments:       entity.Processing,
		AvgPosts:            entity.Processing,
		AvgComments:         entity.Processing,
		LinkKarma:           FormatNumber(snap.Profile.LinkKarma),
		CommentKarma:        FormatNumber(snap.Profile.CommentKarma),
		Status:              entity.StatusPublic,
		ToolTip:             toolTipPublic,
		IsPrivate:           snap.Private,
	}
	if snap.Private {
		s.Status = entity.StatusPrivate
		s.ToolTip = toolTipPrivate
	}
	return s
}

// HydrateSummary returns a copy of s with totals and averages taken from a computed activity
func HydrateSummary(s *entity.Summary, a *entity.ActivityResult) *entity.Summary {
	if s == nil || a == nil {
		return s
	}
	out := *s
	out.TotalPosts = FormatNumber(int64(a.Overall.TotalPosts))
	out.TotalComments = FormatNumber(int64(a.Overall.TotalComments))
	out.AvgPosts = a.Overall.AvgPostsPerDay
	out.AvgComments = a.Overall.AvgCommentsPerDay
	return &out
}
