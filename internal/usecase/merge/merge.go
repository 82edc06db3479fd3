// Package merge implements the Item Store & Merge component (spec §4.C): the
// algorithm that reconciles a freshly parsed feed against the subscription's
// existing items while preserving read/flag state, plus cache-limit
// enforcement.
package merge

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"feedcore/internal/domain/entity"
	"feedcore/internal/observability/metrics"
	"feedcore/internal/repository"
)

// Result summarises one merge call (used for scheduler logging and the I1
// idempotent-merge test property).
type Result struct {
	NewCount     int
	UpdatedCount int
	UnchangedCount int
}

// Engine runs the merge algorithm against a repository.ItemRepository.
type Engine struct {
	items    repository.ItemRepository
	strategy MatchStrategy
	// Concurrency bounds per-item match lookups that touch the backing
	// store (e.g. a remote postgres round trip); the merge decision itself
	// is pure, only the matched write is serialized (see Merge).
	maxConcurrency int
}

// New returns a merge Engine. A nil strategy defaults to
// SourceIDThenTitleLink (spec §9 open question decision).
func New(items repository.ItemRepository, strategy MatchStrategy) *Engine {
	if strategy == nil {
		strategy = SourceIDThenTitleLink{}
	}
	return &Engine{items: items, strategy: strategy, maxConcurrency: 8}
}

// decision is the per-item merge outcome computed concurrently; the actual
// repository write happens single-threaded in Merge so writes never race
// (spec §5 "Item store: single-writer").
type decision struct {
	existing *entity.Item
	parsed   ParsedItem
	isNew    bool
}

// Merge reconciles parsed against the subscription's existing items (spec
// §4.C). markAsRead forces newly-matched items to read=true regardless of
// their previous state, per the subscription's MarkAsRead flag.
func (e *Engine) Merge(ctx context.Context, sub *entity.Subscription, parsed []ParsedItem, markAsRead bool) (Result, error) {
	start := time.Now()
	decisions := make([]decision, len(parsed))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.maxConcurrency)
	for i, p := range parsed {
		i, p := i, p
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			key := e.strategy.Key(sub.ID, p)
			existing, err := e.items.FindMatch(gctx, key)
			if err != nil {
				return err
			}
			decisions[i] = decision{existing: existing, parsed: p, isNew: existing == nil}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var result Result
	now := time.Now()
	for _, d := range decisions {
		if d.isNew {
			item := newItemFrom(sub, d.parsed, now)
			item.New = true
			if markAsRead {
				item.Read = true
			}
			if _, err := e.items.Insert(ctx, item); err != nil {
				return Result{}, err
			}
			result.NewCount++
			continue
		}

		changed := applyMutableFields(d.existing, d.parsed)
		if markAsRead {
			d.existing.Read = true
		}
		d.existing.New = false
		if changed {
			d.existing.ContentUpdated = true
			if err := e.items.Update(ctx, d.existing); err != nil {
				return Result{}, err
			}
			result.UpdatedCount++
		} else {
			result.UnchangedCount++
		}
	}

	// Items in the existing set that do not appear in the new parse are
	// retained untouched (spec §4.C: "feeds often drop old items from the
	// wire") — nothing to do here; only cache trimming (TrimCache) removes
	// items, and only by age/read-state, never by absence from a parse.

	metrics.RecordMergeResult(result.NewCount, result.UpdatedCount, result.UnchangedCount, time.Since(start))
	return result, nil
}

func newItemFrom(sub *entity.Subscription, p ParsedItem, now time.Time) *entity.Item {
	item := &entity.Item{
		SubscriptionID: sub.ID,
		SourceID:       p.SourceID,
		SourceURL:      p.SourceURL,
		Title:          p.Title,
		Description:    p.Description,
		Author:         p.Author,
		Created:        now,
		HasEnclosure:   p.HasEnclosure,
		EnclosureURL:   p.EnclosureURL,
	}
	if p.Published > 0 {
		item.Published = time.Unix(p.Published, 0).UTC()
	} else {
		item.Published = now
	}
	if p.Updated > 0 {
		item.Updated = time.Unix(p.Updated, 0).UTC()
	}
	for _, m := range p.Metadata {
		item.Metadata = append(item.Metadata, entity.MetadataEntry{Key: m.Key, Values: m.Values})
	}
	return item
}

// applyMutableFields updates title/description/timestamps/metadata/
// enclosure on an existing item, preserving Read and Flagged (spec §4.C),
// and reports whether anything actually changed.
func applyMutableFields(existing *entity.Item, p ParsedItem) bool {
	changed := false

	if existing.Title != p.Title {
		existing.Title = p.Title
		changed = true
	}
	if existing.Description != p.Description {
		existing.Description = p.Description
		changed = true
	}
	if existing.Author != p.Author {
		existing.Author = p.Author
		changed = true
	}
	if p.Updated > 0 {
		updated := time.Unix(p.Updated, 0).UTC()
		if !existing.Updated.Equal(updated) {
			existing.Updated = updated
			changed = true
		}
	}
	if existing.HasEnclosure != p.HasEnclosure || existing.EnclosureURL != p.EnclosureURL {
		existing.HasEnclosure = p.HasEnclosure
		existing.EnclosureURL = p.EnclosureURL
		changed = true
	}
	if !metadataEqual(existing.Metadata, p.Metadata) {
		existing.Metadata = nil
		for _, m := range p.Metadata {
			existing.Metadata = append(existing.Metadata, entity.MetadataEntry{Key: m.Key, Values: m.Values})
		}
		changed = true
	}

	return changed
}

func metadataEqual(a []entity.MetadataEntry, b []MetadataEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || len(a[i].Values) != len(b[i].Values) {
			return false
		}
		for j := range a[i].Values {
			if a[i].Values[j] != b[i].Values[j] {
				return false
			}
		}
	}
	return true
}
