package remote

import (
	"context"

	"feedcore/internal/domain/entity"
	"feedcore/internal/usecase/signal"
)

// MapFolder records folder<->category association for this source and, if
// childFeedURL is non-empty, enqueues the add-label edit so the remote
// side learns about the new mapping on the next drain (spec §4.G: "user
// reparenting in the local tree issues add-label/remove-label edits on
// the remote side").
func (s *Source) MapFolder(ctx context.Context, folder entity.NodeID, category, childFeedURL string) error {
	state, err := s.states.Get(ctx, s.nodeID)
	if err != nil {
		return err
	}
	state.MapFolder(folder, category)
	if err := s.states.Save(ctx, state); err != nil {
		return err
	}
	if childFeedURL == "" {
		return nil
	}
	if err := s.queue.PushLabel(ctx, s.nodeID, childFeedURL, category, true); err != nil {
		return err
	}
	s.pushed(ctx)
	return nil
}

// Migrate converts this source's remote children into plain local feeds
// (spec §4.G: "user chose convert"). It transitions the login state to
// MIGRATE; the caller (feed-list usecase) is responsible for clearing
// each child subscription's remote linkage, since that walk touches the
// node tree rather than remote-source state.
func (s *Source) Migrate(ctx context.Context) error {
	if err := s.state.Migrate(ctx, s.nodeID); err != nil {
		return err
	}
	s.emit(signal.KindLoginStateChange, "migrated to local feeds")
	return nil
}
