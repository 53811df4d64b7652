package store

import "time"

type Run struct {
	ID         string
	Period     time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Attempted  []string
	Succeeded  []string
	Failed     map[string]string
	Completion float64
}
