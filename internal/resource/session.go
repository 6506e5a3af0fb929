// Package resource implements generation-stamped fetch sessions.
//
// A Session wraps at most one outstanding request for a keyed remote resource.
// Every Start, Reset or Resolve bumps the session generation; a fetch result is
// applied only if the generation it was started under is still current when it
// completes, so responses for superseded keys never become visible no matter
// in which order the network delivers them.
package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"roster-tracker/internal/domain"
	"roster-tracker/internal/metrics"

	"github.com/rs/zerolog"
)

// FetchFunc loads the value addressed by key. It must honour ctx cancellation.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Recorder receives session lifecycle events.
type Recorder interface {
	RecordFetchStarted(resource string)
	RecordFetchApplied(resource, status string, seconds float64)
	RecordFetchDiscarded(resource string)
}

type Session[K comparable, V any] struct {
	name     string
	fetch    FetchFunc[K, V]
	logger   zerolog.Logger
	recorder Recorder
	parent   context.Context

	mu        sync.Mutex
	state     State[V]
	key       K
	cancel    context.CancelFunc
	closed    bool
	onChange  []func(State[V])
	onSettled []func(State[V])

	inflight sync.WaitGroup
}

func New[K comparable, V any](name string, fetch FetchFunc[K, V], opts ...Option) *Session[K, V] {
	o := options{
		logger:   zerolog.Nop(),
		recorder: metrics.Global(),
		parent:   context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Session[K, V]{
		name:     name,
		fetch:    fetch,
		logger:   o.logger.With().Str("resource", name).Logger(),
		recorder: o.recorder,
		parent:   o.parent,
		state:    State[V]{Status: StatusIdle},
	}
}

// OnChange registers fn to run after every applied transition, including the
// Loading transition of Start. fn runs outside the session lock.
func (s *Session[K, V]) OnChange(fn func(State[V])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// OnSettled registers fn to run when a fetch result is applied (Ready or
// Failed). Discarded results never reach fn. fn runs on the fetch goroutine
// before the session considers the fetch finished, so Wait observes any work
// fn starts on other sessions.
func (s *Session[K, V]) OnSettled(fn func(State[V])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettled = append(s.onSettled, fn)
}

// Start begins a request for key and returns the generation it runs under.
func (s *Session[K, V]) Start(key K) uint64 {
	s.mu.Lock()
	if s.closed {
		gen := s.state.Generation
		s.mu.Unlock()
		return gen
	}
	s.cancelLocked()

	gen := s.state.Generation + 1
	s.state = State[V]{Status: StatusLoading, Generation: gen}
	s.key = key

	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	snap := s.state
	listeners := s.onChange
	s.inflight.Add(1)
	s.mu.Unlock()

	s.recorder.RecordFetchStarted(s.name)
	s.logger.Debug().Uint64("generation", gen).Interface("key", key).Msg("fetch started")
	notify(listeners, snap)

	go s.run(ctx, gen, key)

	return gen
}

// Reset returns the session to Idle under a fresh generation. Any in-flight
// result is discarded on arrival.
func (s *Session[K, V]) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()

	var zero K
	s.key = zero
	s.state = State[V]{Status: StatusIdle, Generation: s.state.Generation + 1}
	snap := s.state
	listeners := s.onChange
	s.mu.Unlock()

	s.logger.Debug().Uint64("generation", snap.Generation).Msg("session reset")
	notify(listeners, snap)
}

// Resolve makes the session Ready with value under a fresh generation without
// issuing a fetch.
func (s *Session[K, V]) Resolve(key K, value V) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()

	s.key = key
	s.state = State[V]{Status: StatusReady, Value: value, Generation: s.state.Generation + 1}
	snap := s.state
	listeners := s.onChange
	s.mu.Unlock()

	s.logger.Debug().Uint64("generation", snap.Generation).Msg("session resolved without fetch")
	notify(listeners, snap)
}

func (s *Session[K, V]) Snapshot() State[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session[K, V]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Generation
}

// Key returns the key of the current generation, the zero K when Idle.
func (s *Session[K, V]) Key() K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Wait blocks until no fetch goroutine of this session is running.
func (s *Session[K, V]) Wait() {
	s.inflight.Wait()
}

// Close cancels the in-flight fetch, waits for it and ignores later commands.
func (s *Session[K, V]) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancelLocked()
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Session[K, V]) run(ctx context.Context, gen uint64, key K) {
	defer s.inflight.Done()

	start := time.Now()
	value, err := s.safeFetch(ctx, key)
	s.settle(gen, value, err, time.Since(start))
}

func (s *Session[K, V]) safeFetch(ctx context.Context, key K) (value V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			value = zero
			err = fmt.Errorf("%w: fetch panicked: %v", domain.ErrNetwork, r)
		}
	}()
	return s.fetch(ctx, key)
}

func (s *Session[K, V]) settle(gen uint64, value V, err error, took time.Duration) {
	s.mu.Lock()
	if s.closed || gen != s.state.Generation {
		current := s.state.Generation
		s.mu.Unlock()

		s.recorder.RecordFetchDiscarded(s.name)
		s.logger.Debug().
			Uint64("generation", gen).
			Uint64("current_generation", current).
			Msg("discarding stale result")
		return
	}

	if err != nil {
		s.state = State[V]{Status: StatusFailed, Err: err, Generation: gen}
	} else {
		s.state = State[V]{Status: StatusReady, Value: value, Generation: gen}
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	snap := s.state
	changed := s.onChange
	settled := s.onSettled
	s.mu.Unlock()

	s.recorder.RecordFetchApplied(s.name, strings.ToLower(string(snap.Status)), took.Seconds())
	if err != nil {
		s.logger.Warn().Err(err).Uint64("generation", gen).Str("kind", string(domain.Kind(err))).Msg("fetch failed")
	} else {
		s.logger.Debug().Uint64("generation", gen).Dur("took", took).Msg("fetch applied")
	}

	notify(settled, snap)
	notify(changed, snap)
}

func (s *Session[K, V]) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func notify[V any](listeners []func(State[V]), st State[V]) {
	for _, fn := range listeners {
		fn(st)
	}
}
