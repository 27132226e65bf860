package analysis

import (
	"sort"
	"time"

	"github.com/creatorlens/creatorlens/internal/models"
)

// BuildDailySeries groups posts by (UTC calendar day, community) and
// produces two parallel daily-average tables, one for upvotes and one
// for comments. Rows cover only days present in the data, ascending; a
// nil cell means the community had no post that day. No gap filling
// happens here.
func BuildDailySeries(posts []models.Post, communities []string) models.DailySeries {
	type bucket struct {
		upvotes  int
		comments int
		count    int
	}

	byDay := make(map[string]map[string]*bucket)
	for _, post := range posts {
		day := time.Unix(post.CreatedUTC, 0).UTC().Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = make(map[string]*bucket)
			byDay[day] = row
		}
		b, ok := row[post.Community]
		if !ok {
			b = &bucket{}
			row[post.Community] = b
		}
		b.upvotes += post.Score
		b.comments += post.CommentCount
		b.count++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := models.DailySeries{
		Upvotes:     make([]models.DailyRow, 0, len(days)),
		Comments:    make([]models.DailyRow, 0, len(days)),
		Communities: communities,
	}

	for _, day := range days {
		upvoteRow := models.DailyRow{Date: day, Values: make(map[string]*float64, len(communities))}
		commentRow := models.DailyRow{Date: day, Values: make(map[string]*float64, len(communities))}

		for _, community := range communities {
			if b, ok := byDay[day][community]; ok {
				up := float64(b.upvotes) / float64(b.count)
				com := float64(b.comments) / float64(b.count)
				upvoteRow.Values[community] = &up
				commentRow.Values[community] = &com
			} else {
				upvoteRow.Values[community] = nil
				commentRow.Values[community] = nil
			}
		}

		series.Upvotes = append(series.Upvotes, upvoteRow)
		series.Comments = append(series.Comments, commentRow)
	}
	return series
}
