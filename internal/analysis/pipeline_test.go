package analysis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/creatorlens/creatorlens/config"
	"github.com/creatorlens/creatorlens/internal/audience"
	"github.com/creatorlens/creatorlens/internal/clients"
	"github.com/creatorlens/creatorlens/internal/fetcher"
	"github.com/creatorlens/creatorlens/internal/models"
	"github.com/creatorlens/creatorlens/internal/sessions"
)

// Fixture: alice posted four times in r/golang and once in r/rust across
// a 3.5-day window (span rounds up to 4 days).
const aliceListing = `{"data":{"after":"","children":[
	{"data":{"subreddit":"golang","score":10,"num_comments":2,"created_utc":1700000000.0}},
	{"data":{"subreddit":"golang","score":5,"num_comments":0,"created_utc":1700003600.0}},
	{"data":{"subreddit":"golang","score":20,"num_comments":4,"created_utc":1700086400.0}},
	{"data":{"subreddit":"golang","score":30,"num_comments":6,"created_utc":1700172800.0}},
	{"data":{"subreddit":"rust","score":100,"num_comments":10,"created_utc":1700302400.0}}
]}}`

type upstreamCounters struct {
	aboutCalls atomic.Int32
}

func newTestPipeline(t *testing.T) (*Pipeline, *sessions.Store, *upstreamCounters) {
	t.Helper()

	counters := &upstreamCounters{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/user/alice/submitted", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, aliceListing)
	})
	mux.HandleFunc("/user/bob/submitted", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"after":"","children":[
			{"data":{"subreddit":"webdev","score":8,"num_comments":1,"created_utc":1700000000.0}}
		]}}`)
	})
	mux.HandleFunc("/user/ghost/submitted", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/r/golang/about", func(w http.ResponseWriter, _ *http.Request) {
		counters.aboutCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"subscribers":50000}}`)
	})
	mux.HandleFunc("/r/rust/about", func(w http.ResponseWriter, _ *http.Request) {
		counters.aboutCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"subscribers":1000000}}`)
	})
	mux.HandleFunc("/r/webdev/about", func(w http.ResponseWriter, _ *http.Request) {
		counters.aboutCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"subscribers":20000}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := clients.NewRedditClient(config.RedditCredentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		UserAgent:    "creatorlens-test/0.1",
	})
	client.BaseURL = srv.URL
	client.Tokens.TokenURL = srv.URL + "/api/v1/access_token"

	store := sessions.NewStore()
	engine := fetcher.NewEngine(client, store)
	engine.Pace = rate.NewLimiter(rate.Inf, 1)

	pipeline := NewPipeline(engine, audience.NewCache(audience.NewMemoryStore(), client), store)
	return pipeline, store, counters
}

func TestPipeline_SingleUserEnrichedRun(t *testing.T) {
	pipeline, store, counters := newTestPipeline(t)

	result, err := pipeline.Run(context.Background(), AnalysisRequest{
		Username:       "alice",
		MaxPosts:       1000,
		EnrichAudience: true,
		SessionID:      "run-1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.Nil(t, result.Comparison)

	report := result.Primary
	assert.Equal(t, 4, report.SpanDays)
	require.Len(t, report.Posts, 5)
	require.Len(t, report.Aggregates, 2)

	total := 0
	for _, agg := range report.Aggregates {
		total += agg.TotalPosts
	}
	assert.Equal(t, len(report.Posts), total)

	golang := report.Aggregates[0]
	assert.Equal(t, "golang", golang.Community)
	assert.Equal(t, 4, golang.TotalPosts)
	assert.Equal(t, 65, golang.TotalUpvotes)
	assert.Equal(t, 12, golang.TotalComments)
	assert.Equal(t, 15.0, golang.MedianUpvotes)
	assert.InDelta(t, 8.75, golang.Q1Upvotes, 1e-9)
	assert.InDelta(t, 22.5, golang.Q3Upvotes, 1e-9)
	assert.Equal(t, 50000, golang.AudienceSize)
	assert.Equal(t, "1 posts per day", golang.Frequency)
	assert.Equal(t, 101, golang.Score)
	assert.Equal(t, "Excellent", golang.Rating)

	rust := report.Aggregates[1]
	assert.Equal(t, 1, rust.TotalPosts)
	assert.Equal(t, 1000000, rust.AudienceSize)
	assert.Equal(t, 183, rust.Score)
	assert.Equal(t, "1 post per 4 days", rust.Frequency)

	// Top preview leads with the higher average.
	require.NotEmpty(t, report.Top10)
	assert.Equal(t, "rust", report.Top10[0].Community)

	// Daily tables: four days of data, one gap day absent entirely.
	require.Len(t, report.Daily.Upvotes, 4)
	assert.Equal(t, "2023-11-14", report.Daily.Upvotes[0].Date)
	assert.Equal(t, "2023-11-18", report.Daily.Upvotes[3].Date)
	require.NotNil(t, report.Daily.Upvotes[0].Values["golang"])
	assert.Equal(t, 7.5, *report.Daily.Upvotes[0].Values["golang"])
	assert.Nil(t, report.Daily.Upvotes[0].Values["rust"])

	// Session landed in the terminal state.
	snapshot := store.Get("run-1")
	assert.Equal(t, models.PhaseComplete, snapshot.Phase)
	assert.True(t, snapshot.Done)
	assert.Equal(t, 5, snapshot.Fetched)

	assert.Equal(t, int32(2), counters.aboutCalls.Load())
}

func TestPipeline_AudienceCacheSharedAcrossRuns(t *testing.T) {
	pipeline, _, counters := newTestPipeline(t)

	req := AnalysisRequest{Username: "alice", MaxPosts: 1000, EnrichAudience: true, SessionID: "run-1"}

	_, err := pipeline.Run(context.Background(), req)
	require.NoError(t, err)
	_, err = pipeline.Run(context.Background(), req)
	require.NoError(t, err)

	// Second run is served entirely from the cache.
	assert.Equal(t, int32(2), counters.aboutCalls.Load())
}

func TestPipeline_WithoutEnrichmentSkipsScoring(t *testing.T) {
	pipeline, _, counters := newTestPipeline(t)

	result, err := pipeline.Run(context.Background(), AnalysisRequest{
		Username:  "alice",
		MaxPosts:  1000,
		SessionID: "run-1",
	})
	require.NoError(t, err)

	for _, agg := range result.Primary.Aggregates {
		assert.Zero(t, agg.Score)
		assert.Empty(t, agg.Rating)
		assert.Zero(t, agg.AudienceSize)
	}
	assert.Zero(t, counters.aboutCalls.Load())
}

func TestPipeline_Comparison(t *testing.T) {
	pipeline, store, _ := newTestPipeline(t)

	result, err := pipeline.Run(context.Background(), AnalysisRequest{
		Username:  "alice",
		Username2: "bob",
		MaxPosts:  1000,
		SessionID: "run-1",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Comparison)
	assert.Equal(t, "alice", result.Primary.Username)
	assert.Equal(t, "bob", result.Comparison.Username)
	assert.Len(t, result.Comparison.Posts, 1)

	assert.True(t, store.Get("run-1").Done)
	assert.True(t, store.Get(ComparisonSessionID("run-1")).Done)
}

func TestPipeline_UserNotFoundAbortsRun(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	_, err := pipeline.Run(context.Background(), AnalysisRequest{
		Username:  "ghost",
		MaxPosts:  100,
		SessionID: "run-1",
	})

	assert.ErrorIs(t, err, clients.ErrUserNotFound)
}
