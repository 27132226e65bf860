package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/creatorlens/creatorlens/config"
	"github.com/creatorlens/creatorlens/internal/analysis"
	"github.com/creatorlens/creatorlens/internal/audience"
	"github.com/creatorlens/creatorlens/internal/clients"
	"github.com/creatorlens/creatorlens/internal/fetcher"
	"github.com/creatorlens/creatorlens/internal/logging"
	"github.com/creatorlens/creatorlens/internal/sessions"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	var (
		user      = flag.String("user", "", "username to analyze")
		user2     = flag.String("user2", "", "second username for a head-to-head comparison")
		maxPosts  = flag.Int("max", 500, "maximum posts to fetch (capped at 1000)")
		rangeStr  = flag.String("range", "all", "date range in days: 7, 30, 60, 90 or all")
		enrich    = flag.Bool("enrich", false, "look up community audience sizes and compute scores")
		useTotals = flag.Bool("use-totals", false, "derive score baselines from totals instead of weighted averages")
		useMedian = flag.Bool("use-median", false, "weight the upvote baseline by medians instead of means")
		session   = flag.String("session", "", "session id for progress polling (generated when empty)")
	)
	flag.Parse()

	if *user == "" {
		slog.Error("[Main] -user is required")
		os.Exit(1)
	}

	rangeDays, err := parseRange(*rangeStr)
	if err != nil {
		slog.Error("[Main] Invalid range", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionID := *session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	client := clients.NewRedditClient(config.RedditCredentialsFromEnv())
	store := sessions.NewStore()

	var backing audience.Store
	if os.Getenv("AUDIENCE_CACHE_BACKEND") == "valkey" {
		valkeyStore, err := audience.NewValkeyStore()
		if err != nil {
			slog.Error("[Main] Failed to connect to valkey", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer valkeyStore.Close()
		backing = valkeyStore
	} else {
		backing = audience.NewMemoryStore()
	}

	pipeline := analysis.NewPipeline(
		fetcher.NewEngine(client, store),
		audience.NewCache(backing, client),
		store,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go logProgress(ctx, store, sessionID, done)

	result, err := pipeline.Run(ctx, analysis.AnalysisRequest{
		Username:       *user,
		Username2:      *user2,
		MaxPosts:       *maxPosts,
		RangeDays:      rangeDays,
		EnrichAudience: *enrich,
		UseTotals:      *useTotals,
		UseMedian:      *useMedian,
		SessionID:      sessionID,
	})
	close(done)

	store.Delete(sessionID)
	if *user2 != "" {
		store.Delete(analysis.ComparisonSessionID(sessionID))
	}

	if err != nil {
		if errors.Is(err, clients.ErrUserNotFound) {
			slog.Error("[Main] User not found - check the username")
		} else {
			slog.Error("[Main] Analysis failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("[Main] Failed to encode result", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func logProgress(ctx context.Context, store *sessions.Store, sessionID string, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := store.Get(sessionID)
			slog.Info("[Main] Progress",
				slog.String("phase", snapshot.Phase),
				slog.Int("fetched", snapshot.Fetched),
				slog.Int("total", snapshot.Total))
		}
	}
}

func parseRange(value string) (int, error) {
	if value == "all" {
		return 0, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid -range value %q", value)
	}
	switch days {
	case 7, 30, 60, 90:
		return days, nil
	}
	return 0, fmt.Errorf("-range must be 7, 30, 60, 90 or all")
}
