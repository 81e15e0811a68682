package models

import "time"

// SyncReport summarizes one pull from a remote content source.
type SyncReport struct {
	Source    string    `json:"source"`
	Ref       string    `json:"ref,omitempty"`
	Fetched   int       `json:"fetched"`
	Written   int       `json:"written"`
	Skipped   int       `json:"skipped"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}
