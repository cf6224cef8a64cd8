// Package store owns the canonical video metadata set and its durable form.
//
// The persisted layout is a single JSON document (metadata.json in the data
// directory) mapping id to record. Timestamps round-trip as RFC 3339 strings
// and tags as JSON arrays. All writes replace the document atomically.
package store

import "time"

// VideoRecord is the canonical metadata for one video.
type VideoRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	// Duration is the video length in seconds.
	Duration  int       `json:"duration"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers never alias store-owned state.
func (v VideoRecord) Clone() VideoRecord {
	out := v
	out.Tags = append([]string(nil), v.Tags...)
	return out
}

// TagSet returns the record's tags as a set.
func (v VideoRecord) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(v.Tags))
	for _, t := range v.Tags {
		set[t] = struct{}{}
	}
	return set
}
