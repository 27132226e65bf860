package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/creatorlens/creatorlens/internal/audience"
	"github.com/creatorlens/creatorlens/internal/fetcher"
	"github.com/creatorlens/creatorlens/internal/models"
	"github.com/creatorlens/creatorlens/internal/sessions"
)

// AnalysisRequest is the caller-supplied input for one run.
type AnalysisRequest struct {
	Username       string `json:"username"`
	Username2      string `json:"username2,omitempty"`
	MaxPosts       int    `json:"max_posts"`
	RangeDays      int    `json:"range_days"` // 0 keeps the full history
	EnrichAudience bool   `json:"enrich_audience"`
	UseTotals      bool   `json:"use_totals"`
	UseMedian      bool   `json:"use_median"`
	SessionID      string `json:"session_id"`
}

// UserReport is the result bundle for one username.
type UserReport struct {
	Username   string                      `json:"username"`
	SpanDays   int                         `json:"dataset_span_days"`
	Aggregates []models.CommunityAggregate `json:"community_aggregates"`
	Top10      []models.CommunityAggregate `json:"top10_preview"`
	Posts      []models.Post               `json:"filtered_posts"`
	Daily      models.DailySeries          `json:"daily_time_series"`
}

// AnalysisResult bundles one or two user reports. Comparison is nil for
// single-user runs.
type AnalysisResult struct {
	Primary    *UserReport `json:"primary"`
	Comparison *UserReport `json:"comparison,omitempty"`
}

// Pipeline wires the fetch engine, the audience cache and the session
// store into one run. A head-to-head comparison executes the two users
// as independent concurrent runs sharing the token manager and the
// audience cache.
type Pipeline struct {
	Fetcher  *fetcher.Engine
	Audience *audience.Cache
	Sessions *sessions.Store
}

func NewPipeline(engine *fetcher.Engine, cache *audience.Cache, store *sessions.Store) *Pipeline {
	return &Pipeline{Fetcher: engine, Audience: cache, Sessions: store}
}

func (p *Pipeline) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if req.Username2 == "" {
		primary, err := p.runUser(ctx, req.Username, req.SessionID, req)
		if err != nil {
			return nil, err
		}
		return &AnalysisResult{Primary: primary}, nil
	}

	var wg sync.WaitGroup
	var primary, comparison *UserReport
	var primaryErr, comparisonErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		primary, primaryErr = p.runUser(ctx, req.Username, req.SessionID, req)
	}()
	go func() {
		defer wg.Done()
		comparison, comparisonErr = p.runUser(ctx, req.Username2, ComparisonSessionID(req.SessionID), req)
	}()
	wg.Wait()

	if primaryErr != nil {
		return nil, primaryErr
	}
	if comparisonErr != nil {
		return nil, comparisonErr
	}
	return &AnalysisResult{Primary: primary, Comparison: comparison}, nil
}

// ComparisonSessionID derives the session id under which the second
// user's progress is reported.
func ComparisonSessionID(sessionID string) string {
	return sessionID + "-2"
}

func (p *Pipeline) runUser(ctx context.Context, username, sessionID string, req AnalysisRequest) (*UserReport, error) {
	start := time.Now()

	posts, err := p.Fetcher.FetchUserPosts(ctx, username, req.MaxPosts, sessionID)
	if err != nil {
		return nil, err
	}
	posts = fetcher.FilterByRange(posts, req.RangeDays, time.Now())

	p.Sessions.Set(sessionID, models.FetchSession{
		Phase:   models.PhaseProcessing,
		Fetched: len(posts),
		Total:   len(posts),
	})

	aggs, spanDays := Aggregate(posts)

	if req.EnrichAudience {
		p.Sessions.Set(sessionID, models.FetchSession{
			Phase:   models.PhaseEnriching,
			Fetched: len(posts),
			Total:   len(posts),
		})

		for i := range aggs {
			members, _ := p.Audience.Lookup(ctx, aggs[i].Community)
			aggs[i].AudienceSize = members
		}

		aggs = ScoreAggregates(aggs, spanDays, ScoreOptions{
			UseTotals: req.UseTotals,
			UseMedian: req.UseMedian,
			Enriched:  true,
		})
	}

	communities := make([]string, len(aggs))
	for i, agg := range aggs {
		communities[i] = agg.Community
	}

	report := &UserReport{
		Username:   username,
		SpanDays:   spanDays,
		Aggregates: aggs,
		Top10:      TopByAvgUpvotes(aggs, 10),
		Posts:      posts,
		Daily:      BuildDailySeries(posts, communities),
	}

	p.Sessions.Set(sessionID, models.FetchSession{
		Phase:   models.PhaseComplete,
		Fetched: len(posts),
		Total:   len(posts),
		Done:    true,
	})

	slog.Info("[Pipeline] Run finished",
		slog.String("username", username),
		slog.Int("posts", len(posts)),
		slog.Int("communities", len(aggs)),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}
