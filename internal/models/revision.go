package models

import "time"

// Revision is one captured version of a content unit. The catalog keeps a
// unit's identity stable across edits and records each content change as a
// revision of the same entity rather than a new one, so near-duplicate
// drafts of an article share a history instead of competing for listings.
type Revision struct {
	ID          string      `json:"id"` // rev_<uuid>
	Slug        string      `json:"slug"`
	ContentHash string      `json:"content_hash"`
	FrontMatter FrontMatter `json:"front_matter"`
	Body        string      `json:"body"`
	CapturedAt  time.Time   `json:"captured_at"`
}
