package entity

import "time"

// Favicon is the cached icon bytes for a feed or source-root node (spec
// §4.J). Cache id is the owning node's id, matching favicon.h's "cache id of
// the favicon (usually = node id)".
type Favicon struct {
	NodeID      NodeID
	Data        []byte
	ContentType string
	SourceURL   string // the winning candidate URL, kept for change detection
	FetchedAt   time.Time
}
