package models

import "time"

// CommunityAggregate is the per-community statistics row built by one run.
// Score and Rating are filled in by the scorer stage when audience
// enrichment was requested; AudienceSize stays 0 when a lookup failed.
type CommunityAggregate struct {
	Community     string    `json:"community"`
	TotalPosts    int       `json:"total_posts"`
	TotalUpvotes  int       `json:"total_upvotes"`
	TotalComments int       `json:"total_comments"`
	LastPosted    time.Time `json:"last_posted"`

	MinUpvotes    float64 `json:"min_upvotes"`
	Q1Upvotes     float64 `json:"q1_upvotes"`
	MedianUpvotes float64 `json:"median_upvotes"`
	Q3Upvotes     float64 `json:"q3_upvotes"`
	MaxUpvotes    float64 `json:"max_upvotes"`

	AvgUpvotes  float64 `json:"avg_upvotes"`
	AvgComments float64 `json:"avg_comments"`
	Frequency   string  `json:"posting_frequency"`

	AudienceSize int    `json:"audience_size,omitempty"`
	Score        int    `json:"score,omitempty"`
	Rating       string `json:"rating,omitempty"`
}

// DailyRow is one calendar day of per-community averages. A nil value
// means the community had no post that day; consumers decide how to
// render the gap.
type DailyRow struct {
	Date   string              `json:"date"`
	Values map[string]*float64 `json:"values"`
}

// DailySeries carries the two parallel daily tables used for charting.
type DailySeries struct {
	Upvotes     []DailyRow `json:"upvotes"`
	Comments    []DailyRow `json:"comments"`
	Communities []string   `json:"community_names"`
}
