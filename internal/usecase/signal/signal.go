// Package signal implements the lifecycle-signal emitter spec §7 requires
// the core to expose: authentication-required, discontinued, and
// login-state-changed notices, fanned out to registered sinks (e.g. a UI
// toast, a webhook) without letting a slow or broken sink block the
// scheduler or remote usecase that raised the signal.
package signal

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/resilience/circuitbreaker"
)

// Kind enumerates the signal kinds spec §7 names.
type Kind string

const (
	KindAuthRequired     Kind = "authentication-required"
	KindDiscontinued     Kind = "discontinued"
	KindLoginStateChange Kind = "login-state-changed"
)

// Signal is one lifecycle event raised against a node (a subscription or
// remote-source-root).
type Signal struct {
	Kind   Kind
	NodeID entity.NodeID
	Detail string
}

// Sink receives emitted signals. Implementations must be safe for
// concurrent use; Emitter calls Send from its own goroutine per sink per
// signal.
type Sink interface {
	Name() string
	IsEnabled() bool
	Send(ctx context.Context, sig Signal) error
}

const (
	workerPoolTimeout = 5 * time.Second
	sendTimeout       = 10 * time.Second
)

// Emitter fans a Signal out to every enabled Sink in its own goroutine,
// bounded by a worker-slot semaphore and a per-sink circuit breaker so one
// broken sink cannot starve the others or backpressure the caller.
type Emitter struct {
	sinks      []Sink
	breakers   map[string]*circuitbreaker.CircuitBreaker
	workerPool chan struct{}

	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	logger *slog.Logger
}

// New returns an Emitter. maxConcurrent bounds in-flight Send calls across
// all sinks combined.
func New(sinks []Sink, maxConcurrent int, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(context.Background())

	e := &Emitter{
		sinks:          sinks,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(sinks)),
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: cancel,
		logger:         logger,
	}
	for _, s := range sinks {
		e.breakers[s.Name()] = circuitbreaker.New(circuitbreaker.DefaultConfig("signal-sink-" + s.Name()))
	}
	return e
}

// Emit dispatches sig to every enabled sink asynchronously. It never
// blocks on a sink's Send call and never returns a sink error to the
// caller; failures are logged.
func (e *Emitter) Emit(sig Signal) {
	for _, s := range e.sinks {
		if !s.IsEnabled() {
			continue
		}
		sink := s
		e.wg.Add(1)
		go e.deliver(sink, sig)
	}
}

func (e *Emitter) deliver(sink Sink, sig Signal) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic delivering signal",
				slog.String("sink", sink.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case e.workerPool <- struct{}{}:
		defer func() { <-e.workerPool }()
	case <-time.After(workerPoolTimeout):
		e.logger.Warn("signal dropped: worker pool full", slog.String("sink", sink.Name()), slog.String("kind", string(sig.Kind)))
		return
	}

	breaker := e.breakers[sink.Name()]
	ctx, cancel := context.WithTimeout(e.shutdownCtx, sendTimeout)
	defer cancel()

	_, err := breaker.Execute(func() (interface{}, error) {
		return nil, sink.Send(ctx, sig)
	})
	if err != nil {
		e.logger.Warn("signal delivery failed",
			slog.String("sink", sink.Name()),
			slog.String("kind", string(sig.Kind)),
			slog.String("node", string(sig.NodeID)),
			slog.Any("error", err))
		return
	}
	e.logger.Debug("signal delivered", slog.String("sink", sink.Name()), slog.String("kind", string(sig.Kind)))
}

// Shutdown waits for in-flight deliveries to finish or ctx to expire.
func (e *Emitter) Shutdown(ctx context.Context) error {
	e.shutdownCancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
