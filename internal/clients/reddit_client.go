package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/creatorlens/creatorlens/config"
	"github.com/creatorlens/creatorlens/internal/models"
)

// RedditClient talks to the platform's listing and "about" endpoints.
// Safe for concurrent use by multiple runs: it holds no mutable state
// beyond the http.Client.
type RedditClient struct {
	Tokens    *TokenManager
	Client    *http.Client
	BaseURL   string
	userAgent string
}

func NewRedditClient(creds config.RedditCredentials) *RedditClient {
	return &RedditClient{
		Tokens:    NewTokenManager(creds),
		Client:    &http.Client{Timeout: REQUEST_TIMEOUT},
		BaseURL:   REDDIT_API_URL,
		userAgent: creds.UserAgent,
	}
}

// ListUserPosts fetches one page of up to PAGE_SIZE submissions authored
// by username. cursor is the opaque "after" token from the previous page,
// empty on the first call. Returns the page, the next cursor (empty when
// the listing is exhausted) and any terminal error.
func (rc *RedditClient) ListUserPosts(ctx context.Context, username, cursor string) ([]models.Post, string, error) {
	endpoint := fmt.Sprintf("%s/user/%s/submitted?limit=%d&raw_json=1",
		rc.BaseURL, url.PathEscape(username), PAGE_SIZE)
	if cursor != "" {
		endpoint += "&after=" + url.QueryEscape(cursor)
	}

	resp, err := rc.doWithAuth(ctx, endpoint)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrUserNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", upstreamError(resp)
	}

	var listing models.RedditListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, "", fmt.Errorf("[RedditClient] failed to parse listing response: %w", err)
	}

	posts := make([]models.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, models.Post{
			Community:    child.Data.Subreddit,
			Score:        child.Data.Score,
			CommentCount: child.Data.NumComments,
			CreatedUTC:   int64(child.Data.CreatedUTC),
		})
	}
	return posts, listing.Data.After, nil
}

// CommunityAbout returns the member count of one community.
func (rc *RedditClient) CommunityAbout(ctx context.Context, community string) (int, error) {
	endpoint := fmt.Sprintf("%s/r/%s/about", rc.BaseURL, url.PathEscape(community))

	resp, err := rc.doWithAuth(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, upstreamError(resp)
	}

	var about models.RedditAboutResponse
	if err := json.NewDecoder(resp.Body).Decode(&about); err != nil {
		return 0, fmt.Errorf("[RedditClient] failed to parse about response: %w", err)
	}
	return about.Data.Subscribers, nil
}

// doWithAuth executes an authenticated GET. On 401 it acquires a fresh
// token exactly once and replays the request; a second 401 goes back to
// the caller unchanged.
func (rc *RedditClient) doWithAuth(ctx context.Context, endpoint string) (*http.Response, error) {
	resp, err := rc.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		slog.Warn("[RedditClient] Token rejected - acquiring a fresh one and retrying")
		return rc.get(ctx, endpoint)
	}
	return resp, nil
}

func (rc *RedditClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	token, err := rc.Tokens.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", rc.userAgent)

	return rc.Client.Do(req)
}

func upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &UpstreamError{Status: resp.StatusCode, Body: string(body)}
}
