package models

// Post is one authored submission as fetched from the platform listing
// endpoint. Immutable once fetched; held only for the duration of a run.
type Post struct {
	Community    string `json:"community"`
	Score        int    `json:"score"`
	CommentCount int    `json:"comment_count"`
	CreatedUTC   int64  `json:"created_utc"`
}
