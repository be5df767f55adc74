package api

// JobView describes a job record in a transport-friendly format.
type JobView struct {
	ID                  int64    `json:"id"`
	JobID               string   `json:"jobId"`
	URL                 string   `json:"url"`
	Title               string   `json:"title,omitempty"`
	Subtitle            string   `json:"subtitle,omitempty"`
	Status              string   `json:"status"`
	SimilarityThreshold float64  `json:"similarityThreshold"`
	MinIntervalSeconds  float64  `json:"minIntervalSeconds"`
	SkipFirstSeconds    float64  `json:"skipFirstSeconds"`
	FillMode            bool     `json:"fillMode"`
	ImageFormat         string   `json:"imageFormat"`
	ImageQuality        int      `json:"imageQuality"`
	JobDir              string   `json:"jobDir,omitempty"`
	VideoPath           string   `json:"videoPath,omitempty"`
	VideoFiles          []string `json:"videoFiles,omitempty"`
	DeckPath            string   `json:"deckPath,omitempty"`
	SlidesManifestPath  string   `json:"slidesManifestPath,omitempty"`
	SlideCount          int      `json:"slideCount"`
	ErrorMessage        string   `json:"errorMessage,omitempty"`
	DurationSeconds     float64  `json:"durationSeconds,omitempty"`
	CreatedAt           string   `json:"createdAt,omitempty"`
	UpdatedAt           string   `json:"updatedAt,omitempty"`
	StartedAt           string   `json:"startedAt,omitempty"`
	CompletedAt         string   `json:"completedAt,omitempty"`
}

// JobListResponse wraps a collection of job views.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// StatsResponse provides a normalized status-count payload.
type StatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueRunResponse reports the outcome of a queue run.
type QueueRunResponse struct {
	Dispatched int `json:"dispatched"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}
