// Package remote implements the Google-Reader-API-family and TT-RSS
// remote-source contract (spec §4.G): a login state machine, a
// strictly-ordered edit-action queue, folder/category mapping, and the
// quick-update poll cadence between full subscription-list refreshes.
package remote

import (
	"context"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// StateMachine drives a single source-root's entity.LoginState transitions
// and persists every change through the RemoteStateRepository.
type StateMachine struct {
	states repository.RemoteStateRepository
}

// NewStateMachine returns a StateMachine backed by states.
func NewStateMachine(states repository.RemoteStateRepository) *StateMachine {
	return &StateMachine{states: states}
}

// LoginRequested transitions NONE -> IN_PROGRESS when a login round-trip is
// issued.
func (m *StateMachine) LoginRequested(ctx context.Context, nodeID entity.NodeID) error {
	st, err := m.states.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	st.LoginState = entity.LoginInProgress
	return m.states.Save(ctx, st)
}

// LoginSucceeded transitions IN_PROGRESS -> ACTIVE on a 200 + token
// response, resetting the failure streak and storing the bearer token.
func (m *StateMachine) LoginSucceeded(ctx context.Context, nodeID entity.NodeID, token string) error {
	st, err := m.states.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	st.LoginState = entity.LoginActive
	st.LoginFailures = 0
	st.BearerToken = token
	return m.states.Save(ctx, st)
}

// LoginFailed records an auth failure. Below entity.MaxLoginFailures it
// returns to NONE so the next scheduler tick retries login; at or beyond
// the threshold it moves to NO_AUTH, where automatic refresh is suppressed
// until the user manually updates (spec §4.G diagram).
func (m *StateMachine) LoginFailed(ctx context.Context, nodeID entity.NodeID) error {
	st, err := m.states.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	st.LoginFailures++
	if st.LoginFailures >= entity.MaxLoginFailures {
		st.LoginState = entity.LoginNoAuth
	} else {
		st.LoginState = entity.LoginNone
	}
	return m.states.Save(ctx, st)
}

// SessionExpired handles a 401 seen on any authenticated request while
// ACTIVE: the dialect's session is gone, so the state returns to NONE to
// force a fresh login on the next tick (spec §4.G: "session gone (any
// 401)").
func (m *StateMachine) SessionExpired(ctx context.Context, nodeID entity.NodeID) error {
	st, err := m.states.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	st.LoginState = entity.LoginNone
	st.BearerToken = ""
	return m.states.Save(ctx, st)
}

// ManualRefresh resets NO_AUTH back to NONE so a user-triggered update can
// re-prompt for credentials (spec §4.G: "a manual user update resets to
// NONE to allow re-prompting credentials").
func (m *StateMachine) ManualRefresh(ctx context.Context, nodeID entity.NodeID) error {
	st, err := m.states.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	if st.LoginState != entity.LoginNoAuth {
		return nil
	}
	st.LoginState = entity.LoginNone
	st.LoginFailures = 0
	return m.states.Save(ctx, st)
}

// Migrate transitions ACTIVE -> MIGRATE when the user chooses to convert
// remote children into plain local feeds.
func (m *StateMachine) Migrate(ctx context.Context, nodeID entity.NodeID) error {
	st, err := m.states.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	if st.LoginState != entity.LoginActive {
		return fmt.Errorf("cannot migrate source %q from state %s", nodeID, st.LoginState)
	}
	st.LoginState = entity.LoginMigrate
	return m.states.Save(ctx, st)
}
