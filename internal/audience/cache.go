package audience

import (
	"context"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/creatorlens/creatorlens/internal/utils"
)

const (
	AUDIENCE_TTL    = 6 * time.Hour
	ABOUT_PACING    = 250 * time.Millisecond
	LOOKUP_INTERVAL = 120 * time.Millisecond
	MAX_ATTEMPTS    = 3
	INITIAL_BACKOFF = 400 * time.Millisecond
)

// AboutFetcher is the slice of the platform client the cache needs.
type AboutFetcher interface {
	CommunityAbout(ctx context.Context, community string) (int, error)
}

// Cache maps lowercased community names to member counts with a 6 hour
// TTL, shared across users and runs. Lookups are best-effort: when the
// upstream cannot be reached after MAX_ATTEMPTS the count degrades to
// zero and the run continues.
type Cache struct {
	store Store
	about AboutFetcher
	pace  *rate.Limiter
	now   func() time.Time
}

func NewCache(store Store, about AboutFetcher) *Cache {
	return &Cache{
		store: store,
		about: about,
		pace:  rate.NewLimiter(rate.Every(LOOKUP_INTERVAL), 1),
		now:   time.Now,
	}
}

type cacheEntry struct {
	Members   int   `json:"members"`
	FetchedAt int64 `json:"fetched_at"`
}

func (c *Cache) Lookup(ctx context.Context, community string) (int, error) {
	key := strings.ToLower(community)

	if raw, ok := c.store.Get(key); ok {
		var entry cacheEntry
		if err := json.Unmarshal(raw, &entry); err == nil &&
			c.now().UnixMilli()-entry.FetchedAt < AUDIENCE_TTL.Milliseconds() {
			return entry.Members, nil
		}
	}

	// Pacing between lookups of distinct communities within a run.
	if err := c.pace.Wait(ctx); err != nil {
		return 0, nil
	}
	select {
	case <-ctx.Done():
		return 0, nil
	case <-time.After(ABOUT_PACING):
	}

	members, err := utils.Attempt(ctx, func() (int, error) {
		return c.about.CommunityAbout(ctx, key)
	}, MAX_ATTEMPTS, INITIAL_BACKOFF)
	if err != nil {
		slog.Warn("[AudienceCache] Giving up on community lookup",
			slog.String("community", key),
			slog.String("error", err.Error()))
		return 0, nil
	}

	raw, err := json.Marshal(cacheEntry{Members: members, FetchedAt: c.now().UnixMilli()})
	if err == nil {
		if err := c.store.Set(key, raw); err != nil {
			slog.Warn("[AudienceCache] Failed to store entry",
				slog.String("community", key),
				slog.String("error", err.Error()))
		}
	}
	return members, nil
}
