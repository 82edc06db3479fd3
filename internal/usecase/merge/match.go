package merge

import (
	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// ParsedItem is what a feed parser (§6's "Feed parser contract") hands the
// merge usecase for one entry. It is the contract's output shape, not a
// stored entity — internal/infra/parser adapts gofeed output into this.
type ParsedItem struct {
	SourceID    string // feed-supplied guid, may be empty
	SourceURL   string // "link"
	Title       string
	Description string
	Author      string
	Published   int64 // unix seconds, 0 if absent
	Updated     int64

	Metadata []MetadataEntry

	HasEnclosure bool
	EnclosureURL string
}

// MetadataEntry mirrors entity.MetadataEntry at the parser-contract
// boundary so internal/infra/parser does not need to import entity types
// for ephemeral parse output.
type MetadataEntry struct {
	Key    string
	Values []string
}

// MatchStrategy resolves which field(s) of a ParsedItem identify an
// existing stored item, addressing spec §9's open question on item
// identity fallback. The default implementation is sourceID-then-title-link
// (SourceIDThenTitleLink), matching the preserved original behaviour; tests
// and alternate deployments may supply a different strategy.
type MatchStrategy interface {
	// Key builds the lookup key repository.ItemRepository.FindMatch uses.
	Key(subID entity.SubscriptionID, item ParsedItem) repository.MatchKey
}

// SourceIDThenTitleLink is the default MatchStrategy: prefer the feed's own
// guid; fall back to (title, link) only when the feed supplies no guid at
// all (spec §3, §9 "this is lossy for feeds that rewrite titles; the
// behaviour is preserved here because changing it would silently alter
// duplicate detection").
type SourceIDThenTitleLink struct{}

func (SourceIDThenTitleLink) Key(subID entity.SubscriptionID, item ParsedItem) repository.MatchKey {
	return repository.MatchKey{
		SubscriptionID: subID,
		SourceID:       item.SourceID,
		Title:          item.Title,
		SourceURL:      item.SourceURL,
	}
}
