package entity

import "time"

// Kind distinguishes the two content types a user can author
type Kind int

const (
	KindPost Kind = iota
	KindComment

	// KindCount is the number of content kinds
	KindCount = 2
)

// Kinds lists every content kind in a stable order
var Kinds = [KindCount]Kind{KindPost, KindComment}

// String returns the upstream listing segment for the kind
func (k Kind) String() string {
	switch k {
	case KindPost:
		return "submitted"
	case KindComment:
		return "comments"
	default:
		return "unknown"
	}
}

// Sort is an upstream listing sort order
type Sort string

const (
	SortNew           Sort = "new"
	SortTop           Sort = "top"
	SortControversial Sort = "controversial"
)

// SortPrecedence lists sort orders from highest to lowest merge precedence.
// When the same item is returned by several sorts, the snapshot from the
// earliest sort in this list is kept.
var SortPrecedence = []Sort{SortNew, SortTop, SortControversial}

// UnknownSubreddit is the bucket key used for items without a subreddit
const UnknownSubreddit = "unknown"

// RawItem is a post or a comment as returned by the upstream listings
type RawItem struct {
	Kind         Kind
	AuthorID     string // author fullname, e.g. t2_abc
	Author       string
	ItemID       string // item fullname, e.g. t1_xyz
	ID           string // short id without type prefix
	ParentPostID string // comments only, without the t3_ prefix
	Subreddit    string
	CreatedAt    time.Time // zero when upstream omitted it
	Score        int
	Text         string // post title or comment body
	Permalink    string
}

// Key returns the identity key used for de-duplication
func (i RawItem) Key() string {
	return i.AuthorID + i.ItemID
}

// HasCreatedAt reports whether the item carries a creation timestamp
func (i RawItem) HasCreatedAt() bool {
	return !i.CreatedAt.IsZero()
}

// SubredditOrUnknown returns the item's subreddit or UnknownSubreddit
func (i RawItem) SubredditOrUnknown() string {
	if i.Subreddit == "" {
		return UnknownSubreddit
	}
	return i.Subreddit
}

// Profile is the public account information of a user
type Profile struct {
	Name         string
	CreatedAt    time.Time
	LinkKarma    int64
	CommentKarma int64
	IsSuspended  bool
}

// HasKarma reports whether any karma counter is non-zero
func (p Profile) HasKarma() bool {
	return p.LinkKarma != 0 || p.CommentKarma != 0
}

// UserData is the de-duplicated upstream snapshot of one user
type UserData struct {
	Profile  Profile
	Posts    []RawItem
	Comments []RawItem
}
