package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ContentKind discriminates the two unit types in the store.
// Posts are dated and participate in chronological listings; pages are
// undated navigation targets (about, contact) that may carry a menu hint.
type ContentKind string

const (
	KindPost ContentKind = "post"
	KindPage ContentKind = "page"
)

// Front matter date layouts accepted by the parser, tried in order.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MenuEntry is a page's placement hint for the main navigation menu.
// Mirrors the nested front matter form: menu.main.weight, menu.main.params.icon.
type MenuEntry struct {
	Weight int    `json:"weight,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// Menu holds per-menu placement hints. Only the main menu is recognized;
// other menus would land in FrontMatter.Extra.
type Menu struct {
	Main *MenuEntry `json:"main,omitempty"`
}

// FrontMatter is the typed metadata block of a content unit.
// The recognized key set is fixed; keys outside it are preserved verbatim
// in Extra and never interpreted.
type FrontMatter struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date,omitempty"`
	Image       string    `json:"image,omitempty"` // resolved relative to the unit's directory
	Categories  []string  `json:"categories,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Menu        *Menu     `json:"menu,omitempty"`
	ReadingTime bool      `json:"reading_time,omitempty"`
	Comments    bool      `json:"comments,omitempty"`

	// Extra carries unrecognized front matter keys through parse and
	// re-serialization unchanged.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// HasDate reports whether the unit carries a publication date.
func (f *FrontMatter) HasDate() bool {
	return !f.Date.IsZero()
}

// ContentUnit is one addressable document in the store: a post or a page.
// Slug is the identity, derived from the unit's storage path and unique
// across the store. Body is the raw markdown after the front matter block,
// left uninterpreted at this layer.
type ContentUnit struct {
	Slug        string      `json:"slug"`
	Kind        ContentKind `json:"kind"`
	SourcePath  string      `json:"source_path"`
	FrontMatter FrontMatter `json:"front_matter"`
	Body        string      `json:"body"`

	// Date is denormalized from FrontMatter for query and sort paths.
	Date time.Time `json:"date,omitempty"`

	// ContentHash fingerprints front matter + body; a changed hash on
	// rescan is what triggers a new revision.
	ContentHash string `json:"content_hash"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPost reports whether the unit participates in chronological listings.
func (u *ContentUnit) IsPost() bool {
	return u.Kind == KindPost
}

// HashContent fingerprints a unit's raw source. Both the scanner and the
// revision trail use this, so the hash must be stable for identical input.
func HashContent(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Heading is one entry of a body's heading outline, in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// BodyAnalysis is derived metadata computed from a unit's markdown body.
// It is enrichment only - the stored body stays opaque.
type BodyAnalysis struct {
	WordCount      int       `json:"word_count"`
	ReadingTimeMin int       `json:"reading_time_min"`
	Excerpt        string    `json:"excerpt,omitempty"`
	Headings       []Heading `json:"headings,omitempty"`
}

// LabelCount pairs a tag or category with the number of posts carrying it.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ContentStats summarizes the catalog for status endpoints and the banner.
type ContentStats struct {
	TotalUnits    int       `json:"total_units"`
	Posts         int       `json:"posts"`
	Pages         int       `json:"pages"`
	Tags          int       `json:"tags"`
	Categories    int       `json:"categories"`
	Revisions     int       `json:"revisions"`
	LastScan      time.Time `json:"last_scan,omitempty"`
	LastScanError string    `json:"last_scan_error,omitempty"`
}

// ScanReport is the outcome of one pass over the content roots.
// Integrity failures are collected per file so one scan reports every
// offending unit instead of stopping at the first.
type ScanReport struct {
	Scanned   int       `json:"scanned"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Removed   int       `json:"removed"`
	Unchanged int       `json:"unchanged"`
	Errors    []string  `json:"errors,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// Failed reports whether the scan hit any integrity error.
func (r *ScanReport) Failed() bool {
	return len(r.Errors) > 0
}
