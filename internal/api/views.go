package api

import (
	"sort"
	"time"
)

// SortJobsNewestFirst orders job views by CreatedAt descending, breaking ties
// by job id descending. Display order is the reverse of dispatch order.
func SortJobsNewestFirst(jobs []JobView) []JobView {
	if len(jobs) == 0 {
		return nil
	}
	sorted := make([]JobView, len(jobs))
	copy(sorted, jobs)
	sort.Slice(sorted, func(i, j int) bool {
		ti := ParseJobTime(sorted[i].CreatedAt)
		tj := ParseJobTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].JobID > sorted[j].JobID
		}
		return ti.After(tj)
	})
	return sorted
}

// ParseJobTime parses a view timestamp, returning the zero time on failure.
func ParseJobTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
