// Package favicon implements the bounded multi-URL icon discovery pipeline
// (spec §4.J): an ordered candidate list, sequential probing, extension-based
// dispatch to either a raw-save or an HTML rescan, and a 10-URL cap — taken
// from src/favicon.c and src/html.c's html_discover_favicon.
package favicon

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"feedcore/internal/domain/entity"
)

// Request is the per-subscription input to Discover: the feed's own source
// URL, its parsed homepage URL (may be empty), and its parsed icon hint
// (may be empty).
type Request struct {
	NodeID      entity.NodeID
	FeedURL     string
	HomepageURL string
	IconHint    string
}

// Result is a successfully discovered favicon, ready to be persisted via
// repository.FaviconRepository.
type Result struct {
	URL         string
	Data        []byte
	ContentType string
}

// Discover probes req's candidate list in order, one at a time (a bounded
// fan-out of exactly one in-flight fetch, via errgroup, so every probe still
// goes through context-aware cancellation the same way a concurrent stage
// would). A candidate whose extension isn't a recognised image type is
// treated as an HTML page: its discovered <link rel="icon"> hrefs are
// prepended to the remaining queue ("discovered set wins"), and probing
// continues. Stops at the first successfully fetched image candidate, at
// ErrNoFaviconFound once the queue is exhausted, or at MaxCandidates tried.
func Discover(ctx context.Context, req Request, fetch FetchFunc) (*Result, error) {
	queue := CandidateURLs(req.FeedURL, req.HomepageURL, req.IconHint)

	tried := 0
	for tried < MaxCandidates && len(queue) > 0 {
		candidate := queue[0]
		queue = queue[1:]
		tried++

		g, gctx := errgroup.WithContext(ctx)
		var data []byte
		var contentType string
		g.Go(func() error {
			d, ct, err := fetch(gctx, candidate)
			data, contentType = d, ct
			return err
		})
		if err := g.Wait(); err != nil {
			continue
		}

		if isImageExtension(candidate) {
			return &Result{URL: candidate, Data: data, ContentType: contentType}, nil
		}

		discovered := ParseLinkIcons(data, candidate)
		queue = append(discovered, queue...)
	}
	return nil, ErrNoFaviconFound
}

// ToFavicon converts a discovered Result into the persisted entity, stamped
// with the given time (Discover itself never calls time.Now so callers can
// keep wall-clock reads at the edge).
func (r *Result) ToFavicon(nodeID entity.NodeID, now time.Time) *entity.Favicon {
	return &entity.Favicon{
		NodeID:      nodeID,
		Data:        r.Data,
		ContentType: r.ContentType,
		SourceURL:   r.URL,
		FetchedAt:   now,
	}
}
