package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// InterruptedRunMessage is the error message set on jobs found running after
// an unclean shutdown.
const InterruptedRunMessage = "run interrupted by process restart"

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transitions short of
// an explicit reprocess.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Params holds the caller-supplied inputs of a job. They survive reprocessing
// unchanged.
type Params struct {
	URL                 string
	Title               string
	Subtitle            string
	SimilarityThreshold float64
	MinIntervalSeconds  float64
	SkipFirstSeconds    float64
	FillMode            bool
	ImageFormat         string
	ImageQuality        int
	ExtraDownloadArgs   []string
	FilePattern         string
}

// Job represents a conversion job persisted in SQLite.
type Job struct {
	ID     int64
	JobID  string
	Params Params
	Status Status

	JobDir         string
	ScreenshotsDir string
	VideoPath      string
	VideoFiles     []string
	PPTPath        string
	SlidesJSONPath string
	SlideCount     int
	Command        []string
	Stdout         string
	Stderr         string
	ErrorMessage   string
	DurationSecs   float64
	FPS            float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.CompletedAt = &now
}
