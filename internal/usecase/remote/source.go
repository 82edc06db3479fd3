package remote

import (
	"context"
	"log/slog"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/runner"
	"feedcore/internal/repository"
	"feedcore/internal/resilience/circuitbreaker"
	"feedcore/internal/usecase/signal"
)

// Source orchestrates one remote-source-root node: it owns the login
// state machine, the edit-action queue, and the dialect-specific wire
// protocol, and drives all three through internal/infra/runner the same
// way a plain feed subscription's update contract does (spec §4.D) — the
// runner never retries, so SessionExpired/login-failure handling here is
// what decides whether and when to try again.
type Source struct {
	nodeID  entity.NodeID
	dialect Dialect

	state   *StateMachine
	queue   *Queue
	states  repository.RemoteStateRepository
	runner  *runner.Runner
	breaker *circuitbreaker.CircuitBreaker
	emitter *signal.Emitter
	logger  *slog.Logger
}

// NewSource returns a Source for nodeID using dialect, wired to the
// shared runner and repositories.
func NewSource(nodeID entity.NodeID, dialect Dialect, states repository.RemoteStateRepository, actions repository.ActionQueueRepository, r *runner.Runner, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		nodeID:  nodeID,
		dialect: dialect,
		state:   NewStateMachine(states),
		queue:   NewQueue(actions),
		states:  states,
		runner:  r,
		breaker: circuitbreaker.New(circuitbreaker.RemoteDialectConfig("remote-" + dialect.Name())),
		logger:  logger,
	}
}

// SetSignalEmitter wires the optional lifecycle-signal emitter so
// login-state-changed notices (spec §7) reach registered sinks.
func (s *Source) SetSignalEmitter(e *signal.Emitter) {
	s.emitter = e
}

func (s *Source) emit(kind signal.Kind, detail string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(signal.Signal{Kind: kind, NodeID: s.nodeID, Detail: detail})
}

// Login starts the login round trip (spec §4.G: NONE -> IN_PROGRESS).
// The result is processed asynchronously by the runner callback.
func (s *Source) Login(ctx context.Context, auth entity.AuthCredentials) error {
	if s.breaker.IsOpen() {
		s.logger.Warn("remote login skipped: circuit open", slog.String("node", string(s.nodeID)))
		return s.state.LoginFailed(ctx, s.nodeID)
	}
	if err := s.state.LoginRequested(ctx, s.nodeID); err != nil {
		return err
	}
	req := s.dialect.LoginRequest(auth)
	req.Owner = string(s.nodeID)
	s.runner.Submit(req, true, func(result *entity.UpdateResult, err error) {
		s.onLoginResult(ctx, result, err)
	})
	return nil
}

// onLoginResult routes the outcome through the per-dialect circuit
// breaker purely for bookkeeping (the HTTP call itself already ran
// through internal/infra/runner's own breaker); repeated login failures
// trip this breaker independently of transient transport noise, so a
// dialect stuck rejecting credentials stops being retried every tick
// (spec §10: "opening on the dialect's repeated 5xx/login failures").
func (s *Source) onLoginResult(ctx context.Context, result *entity.UpdateResult, err error) {
	if err != nil {
		s.logger.Warn("remote login transport failure", slog.String("node", string(s.nodeID)), slog.Any("error", err))
		_, _ = s.breaker.Execute(func() (interface{}, error) { return nil, err })
		_ = s.state.LoginFailed(ctx, s.nodeID)
		return
	}

	token, parseErr := s.dialect.ParseLoginResult(result)
	if parseErr != nil {
		s.logger.Warn("remote login rejected", slog.String("node", string(s.nodeID)), slog.Any("error", parseErr))
		_, _ = s.breaker.Execute(func() (interface{}, error) { return nil, parseErr })
		if err := s.state.LoginFailed(ctx, s.nodeID); err != nil {
			s.logger.Error("record login failure", slog.Any("error", err))
		}
		s.emit(signal.KindAuthRequired, parseErr.Error())
		return
	}
	_, _ = s.breaker.Execute(func() (interface{}, error) { return nil, nil })

	if err := s.state.LoginSucceeded(ctx, s.nodeID, token); err != nil {
		s.logger.Error("record login success", slog.Any("error", err))
		return
	}
	s.emit(signal.KindLoginStateChange, "login succeeded")

	s.ProcessQueue(ctx)
}

// pushed implements google_reader_api_edit_push's post-enqueue rule:
// start draining immediately when already ACTIVE, otherwise leave the
// action queued (a login attempt, not triggered here, will drain it once
// it succeeds).
func (s *Source) pushed(ctx context.Context) {
	state, err := s.states.Get(ctx, s.nodeID)
	if err != nil {
		s.logger.Error("load remote state after push", slog.Any("error", err))
		return
	}
	if state.LoginState == entity.LoginActive {
		s.ProcessQueue(ctx)
	}
	// LoginNone/LoginInProgress/LoginNoAuth: the action stays queued until
	// the next successful login (or, for NO_AUTH, until ManualRefresh).
}

func (s *Source) PushMarkRead(ctx context.Context, itemGUID, feedURL string, read bool) error {
	if err := s.queue.PushMarkRead(ctx, s.nodeID, itemGUID, feedURL, read); err != nil {
		return err
	}
	s.pushed(ctx)
	return nil
}

func (s *Source) PushFlag(ctx context.Context, itemGUID, feedURL string, flagged bool) error {
	if err := s.queue.PushFlag(ctx, s.nodeID, itemGUID, feedURL, flagged); err != nil {
		return err
	}
	s.pushed(ctx)
	return nil
}

func (s *Source) PushSubscribe(ctx context.Context, feedURL string) error {
	if err := s.queue.PushSubscribe(ctx, s.nodeID, feedURL); err != nil {
		return err
	}
	s.pushed(ctx)
	return nil
}

func (s *Source) PushUnsubscribe(ctx context.Context, feedURL string) error {
	if err := s.queue.PushUnsubscribe(ctx, s.nodeID, feedURL); err != nil {
		return err
	}
	s.pushed(ctx)
	return nil
}

// ProcessQueue drains the head of the action queue one step: fetch a
// fresh single-use token (if the dialect needs one), apply the head
// action, and on success recurse to drain the next one — mirroring
// google_reader_api_edit_process/google_reader_api_edit_token_cb's
// token-then-edit-then-continue chain. On failure the head action is left
// in place for a later retry, same as the original's "the edit action
// failed ... @todo start a timer for next processing".
func (s *Source) ProcessQueue(ctx context.Context) {
	state, err := s.states.Get(ctx, s.nodeID)
	if err != nil {
		s.logger.Error("load remote state", slog.Any("error", err))
		return
	}
	if state.LoginState != entity.LoginActive {
		return
	}
	if _, ok, err := s.queue.Peek(ctx, s.nodeID); err != nil || !ok {
		return
	}

	tokenReq := s.dialect.TokenRequest(state.BearerToken)
	if tokenReq == nil {
		s.applyHeadAction(ctx, state.BearerToken, "")
		return
	}
	tokenReq.Owner = string(s.nodeID)
	s.runner.Submit(tokenReq, false, func(result *entity.UpdateResult, err error) {
		if err != nil {
			s.logger.Warn("edit token fetch failed", slog.Any("error", err))
			return
		}
		token, parseErr := s.dialect.ParseTokenResult(result)
		if parseErr != nil {
			s.logger.Warn("edit token parse failed", slog.Any("error", parseErr))
			return
		}
		s.applyHeadAction(ctx, state.BearerToken, token)
	})
}

func (s *Source) applyHeadAction(ctx context.Context, session, token string) {
	action, ok, err := s.queue.Peek(ctx, s.nodeID)
	if err != nil || !ok {
		return
	}

	req, err := s.dialect.EditRequest(action, session, token)
	if err != nil {
		s.logger.Error("build edit request", slog.Any("error", err))
		return
	}
	req.Owner = string(s.nodeID)

	s.runner.Submit(req, false, func(result *entity.UpdateResult, err error) {
		if err != nil {
			s.logger.Warn("edit request transport failure", slog.Any("error", err))
			return
		}
		if result.HTTPStatus == 401 {
			if err := s.state.SessionExpired(ctx, s.nodeID); err != nil {
				s.logger.Error("record session expiry", slog.Any("error", err))
			}
			s.emit(signal.KindLoginStateChange, "session expired")
			return
		}
		if !s.dialect.EditSucceeded(result) {
			s.logger.Warn("edit action failed", slog.String("node", string(s.nodeID)))
			return
		}
		if err := s.queue.Pop(ctx, s.nodeID); err != nil {
			s.logger.Error("pop drained action", slog.Any("error", err))
			return
		}
		s.ProcessQueue(ctx)
	})
}
