package config

import "os"

// RedditCredentials holds the OAuth application credentials for the
// platform API. Loaded once at startup and treated as immutable; empty
// fields are only rejected when a token is first requested.
type RedditCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	UserAgent    string
}

func RedditCredentialsFromEnv() RedditCredentials {
	return RedditCredentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RefreshToken: os.Getenv("REDDIT_REFRESH_TOKEN"),
		UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
	}
}
