package models

const (
	PhaseIdle       = "Idle"
	PhaseProcessing = "Processing"
	PhaseEnriching  = "Enriching audience sizes"
	PhaseComplete   = "Complete"
)

// FetchSession is the progress tuple polled by callers during a run.
type FetchSession struct {
	ID      string `json:"id"`
	Phase   string `json:"phase"`
	Fetched int    `json:"fetched"`
	Total   int    `json:"total"`
	Done    bool   `json:"done"`
}
