package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/creatorlens/creatorlens/internal/models"
	"github.com/creatorlens/creatorlens/internal/sessions"
)

const (
	MAX_POSTS   = 1000
	PAGE_PACING = 1 * time.Second
)

// PostLister is the slice of the platform client the engine needs.
type PostLister interface {
	ListUserPosts(ctx context.Context, username, cursor string) ([]models.Post, string, error)
}

// Engine pulls a user's posting history page by page, reporting progress
// to the session store after each page. Pages are paced one second apart
// to stay polite to the upstream.
type Engine struct {
	Client   PostLister
	Sessions *sessions.Store
	Pace     *rate.Limiter
}

func NewEngine(client PostLister, store *sessions.Store) *Engine {
	return &Engine{
		Client:   client,
		Sessions: store,
		Pace:     rate.NewLimiter(rate.Every(PAGE_PACING), 1),
	}
}

// FetchUserPosts accumulates up to maxRequested posts (hard-capped at
// MAX_POSTS). The loop stops when the cap is reached, a page comes back
// empty, or no next cursor is provided. An empty page is terminal even
// when a cursor is present.
func (e *Engine) FetchUserPosts(ctx context.Context, username string, maxRequested int, sessionID string) ([]models.Post, error) {
	if maxRequested > MAX_POSTS {
		maxRequested = MAX_POSTS
	}
	if maxRequested < 1 {
		maxRequested = 1
	}

	var posts []models.Post
	cursor := ""

	for len(posts) < maxRequested {
		if err := e.Pace.Wait(ctx); err != nil {
			return nil, err
		}

		page, next, err := e.Client.ListUserPosts(ctx, username, cursor)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		if remaining := maxRequested - len(posts); len(page) > remaining {
			page = page[:remaining]
		}
		posts = append(posts, page...)

		e.Sessions.Set(sessionID, models.FetchSession{
			Phase:   fmt.Sprintf("Fetching posts of %s…", username),
			Fetched: len(posts),
			Total:   maxRequested,
		})

		if next == "" {
			break
		}
		cursor = next
	}

	slog.Info("[FetchEngine] Finished fetching posts",
		slog.String("username", username),
		slog.Int("posts", len(posts)))
	return posts, nil
}

// FilterByRange drops posts older than rangeDays before now. A rangeDays
// of zero or less means the full history is kept.
func FilterByRange(posts []models.Post, rangeDays int, now time.Time) []models.Post {
	if rangeDays <= 0 {
		return posts
	}

	cutoff := now.Unix() - int64(rangeDays)*86400
	filtered := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if post.CreatedUTC >= cutoff {
			filtered = append(filtered, post)
		}
	}
	return filtered
}
