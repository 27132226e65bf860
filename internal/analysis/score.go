package analysis

import (
	"math"

	"github.com/creatorlens/creatorlens/internal/models"
)

const (
	WEIGHT_UPVOTES    = 0.5
	WEIGHT_COMMENTS   = 0.3
	WEIGHT_ENGAGEMENT = 0.2

	VOLUME_FLOOR   = 0.75
	VOLUME_CEILING = 1.25
)

// ScoreOptions selects how the run-wide baselines are formed.
type ScoreOptions struct {
	// UseTotals derives the baselines from raw totals instead of
	// post-count-weighted community averages.
	UseTotals bool
	// UseMedian weights the upvote baseline by each community's median
	// rather than its mean upvotes per post.
	UseMedian bool
	// Enriched switches the engagement factor from its neutral 1.0 to
	// the audience-size formula.
	Enriched bool
}

// ScoreAggregates computes the 0-100 weighted performance index and
// rating for every community. Pure function of the aggregate set, the
// dataset span and the options: no network, no mutation of the input.
func ScoreAggregates(aggs []models.CommunityAggregate, spanDays int, opts ScoreOptions) []models.CommunityAggregate {
	scored := make([]models.CommunityAggregate, len(aggs))
	copy(scored, aggs)

	if len(scored) == 0 {
		return scored
	}
	if spanDays < 1 {
		spanDays = 1
	}

	totalPostsAll := 0
	totalUpvotes := 0
	totalComments := 0
	weightedUpvotes := 0.0
	weightedComments := 0.0

	for _, agg := range aggs {
		totalPostsAll += agg.TotalPosts
		totalUpvotes += agg.TotalUpvotes
		totalComments += agg.TotalComments

		chosen := agg.AvgUpvotes
		if opts.UseMedian {
			chosen = agg.MedianUpvotes
		}
		weightedUpvotes += chosen * float64(agg.TotalPosts)
		weightedComments += agg.AvgComments * float64(agg.TotalPosts)
	}
	if totalPostsAll < 1 {
		totalPostsAll = 1
	}

	var upvoteBaseline, commentBaseline float64
	if opts.UseTotals {
		upvoteBaseline = float64(totalUpvotes) / float64(totalPostsAll)
		commentBaseline = float64(totalComments) / float64(totalPostsAll)
	} else {
		upvoteBaseline = weightedUpvotes / float64(totalPostsAll)
		commentBaseline = weightedComments / float64(totalPostsAll)
	}

	avgPostsPerCommunity := float64(totalPostsAll) / float64(len(aggs))

	for i := range scored {
		agg := &scored[i]

		u := 0.0
		if upvoteBaseline != 0 {
			u = agg.AvgUpvotes / upvoteBaseline
		}
		c := 0.0
		if commentBaseline != 0 {
			c = agg.AvgComments / commentBaseline
		}

		e := 1.0
		if opts.Enriched {
			denom := float64(agg.AudienceSize) / 10000
			if denom < 1 {
				denom = 1
			}
			e = (agg.AvgUpvotes + 2*agg.AvgComments) / denom
		}

		postsPerDay := float64(agg.TotalPosts) / float64(spanDays)
		rawVolume := 1.0
		if avgPostsPerCommunity != 0 {
			rawVolume = postsPerDay / avgPostsPerCommunity
		}
		volume := clamp(rawVolume, VOLUME_FLOOR, VOLUME_CEILING)

		agg.Score = int(math.Round(100 * (WEIGHT_UPVOTES*u + WEIGHT_COMMENTS*c + WEIGHT_ENGAGEMENT*e) * volume))
		agg.Rating = RatingFor(agg.Score)
	}
	return scored
}

// RatingFor maps a score to its label.
func RatingFor(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Average"
	case score >= 30:
		return "Underperforming"
	default:
		return "Poor"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
