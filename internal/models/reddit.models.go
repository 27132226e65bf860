package models

type RedditListingResponse struct {
	Data RedditListingData `json:"data"`
}

type RedditListingData struct {
	After    string              `json:"after"`
	Children []RedditListingItem `json:"children"`
}

type RedditListingItem struct {
	Data RedditPostData `json:"data"`
}

type RedditPostData struct {
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

type RedditAboutResponse struct {
	Data RedditAboutData `json:"data"`
}

type RedditAboutData struct {
	Subscribers int `json:"subscribers"`
}
