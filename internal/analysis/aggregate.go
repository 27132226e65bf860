package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/creatorlens/creatorlens/internal/models"
)

// Aggregate groups the filtered posts of one user by community and
// computes totals, upvote quartiles and posting cadence. Communities
// come back in first-seen order; the second return value is the span of
// the whole dataset in days (at least one).
func Aggregate(posts []models.Post) ([]models.CommunityAggregate, int) {
	spanDays := datasetSpanDays(posts)

	type group struct {
		agg    models.CommunityAggregate
		scores []float64
	}

	var order []string
	groups := make(map[string]*group)

	for _, post := range posts {
		g, ok := groups[post.Community]
		if !ok {
			g = &group{agg: models.CommunityAggregate{Community: post.Community}}
			groups[post.Community] = g
			order = append(order, post.Community)
		}

		g.agg.TotalPosts++
		g.agg.TotalUpvotes += post.Score
		g.agg.TotalComments += post.CommentCount
		if created := time.Unix(post.CreatedUTC, 0).UTC(); created.After(g.agg.LastPosted) {
			g.agg.LastPosted = created
		}
		g.scores = append(g.scores, float64(post.Score))
	}

	aggs := make([]models.CommunityAggregate, 0, len(order))
	for _, name := range order {
		g := groups[name]
		sort.Float64s(g.scores)

		g.agg.MinUpvotes = Percentile(g.scores, 0)
		g.agg.Q1Upvotes = Percentile(g.scores, 0.25)
		g.agg.MedianUpvotes = Percentile(g.scores, 0.5)
		g.agg.Q3Upvotes = Percentile(g.scores, 0.75)
		g.agg.MaxUpvotes = Percentile(g.scores, 1)

		g.agg.AvgUpvotes = float64(g.agg.TotalUpvotes) / float64(g.agg.TotalPosts)
		g.agg.AvgComments = float64(g.agg.TotalComments) / float64(g.agg.TotalPosts)
		g.agg.Frequency = FrequencyLabel(g.agg.TotalPosts, spanDays)

		aggs = append(aggs, g.agg)
	}
	return aggs, spanDays
}

// Percentile interpolates linearly between closest ranks over an
// ascending-sorted slice (the R-7 definition, matching spreadsheet
// QUARTILE).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// FrequencyLabel renders posting cadence as either "N posts per day" or
// "1 post per N days".
func FrequencyLabel(totalPosts, spanDays int) string {
	if spanDays < 1 {
		spanDays = 1
	}

	postsPerDay := float64(totalPosts) / float64(spanDays)
	if postsPerDay >= 1 {
		rounded := math.Round(postsPerDay*10) / 10
		return strconv.FormatFloat(rounded, 'f', -1, 64) + " posts per day"
	}

	every := int(math.Round(1 / postsPerDay))
	if every < 1 {
		every = 1
	}
	return fmt.Sprintf("1 post per %d days", every)
}

// TopByAvgUpvotes returns the n best communities by average upvotes per
// post without touching the input order.
func TopByAvgUpvotes(aggs []models.CommunityAggregate, n int) []models.CommunityAggregate {
	top := make([]models.CommunityAggregate, len(aggs))
	copy(top, aggs)

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].AvgUpvotes > top[j].AvgUpvotes
	})

	if len(top) > n {
		top = top[:n]
	}
	return top
}

func datasetSpanDays(posts []models.Post) int {
	if len(posts) == 0 {
		return 1
	}

	minTs, maxTs := posts[0].CreatedUTC, posts[0].CreatedUTC
	for _, post := range posts[1:] {
		if post.CreatedUTC < minTs {
			minTs = post.CreatedUTC
		}
		if post.CreatedUTC > maxTs {
			maxTs = post.CreatedUTC
		}
	}

	span := int(math.Ceil(float64(maxTs-minTs) / 86400))
	if span < 1 {
		span = 1
	}
	return span
}
