package entity

// Placeholder shown in summary totals until the activity has been computed
const Processing = "Processing..."

// Profile visibility statuses
const (
	StatusPublic  = "Public"
	StatusPrivate = "Private"
)

// Summary is the quick profile overview served before the full activity is ready
type Summary struct {
	AccountCreationDate string `json:"accountCreationDate"`
	TotalPosts          string `json:"ttlPosts"`
	TotalComments       string `json:"ttlComments"`
	AvgPosts            string `json:"avgPosts"`
	AvgComments         string `json:"avgComments"`
	LinkKarma           string `json:"linkKarma"`
	CommentKarma        string `json:"commentKarma"`
	Status              string `json:"status"`
	ToolTip             string `json:"toolTip"`
	IsPrivate           bool   `json:"isPrivate"`
}
