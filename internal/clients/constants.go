package clients

import "time"

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"

	PAGE_SIZE       = 100
	REQUEST_TIMEOUT = 30 * time.Second
)
