// Package collection keeps the locally held roster consistent with the server
// by re-fetching the full list after every accepted write.
package collection

import (
	"context"

	"roster-tracker/internal/domain"
	"roster-tracker/internal/resource"

	"github.com/rs/zerolog"
)

const ListResource = "players"

type Lister interface {
	ListPlayers(ctx context.Context) ([]domain.Player, error)
}

type ListState = resource.State[[]domain.Player]

// Synchronizer exclusively owns the list session. It never patches the list
// locally; every change reaches consumers through a full re-fetch.
type Synchronizer struct {
	session *resource.Session[struct{}, []domain.Player]
	logger  zerolog.Logger
}

func NewSynchronizer(client Lister, logger zerolog.Logger, opts ...resource.Option) *Synchronizer {
	logger = logger.With().Str("component", "collection").Logger()
	opts = append(opts, resource.WithLogger(logger))

	fetch := func(ctx context.Context, _ struct{}) ([]domain.Player, error) {
		players, err := client.ListPlayers(ctx)
		if err != nil {
			return nil, err
		}
		if players == nil {
			players = []domain.Player{}
		}
		return players, nil
	}

	return &Synchronizer{
		session: resource.New[struct{}, []domain.Player](ListResource, fetch, opts...),
		logger:  logger,
	}
}

// Refresh re-issues the full list fetch. A refresh that is still in flight is
// superseded and its response discarded.
func (s *Synchronizer) Refresh() {
	gen := s.session.Start(struct{}{})
	s.logger.Debug().Uint64("generation", gen).Msg("list refresh")
}

// CurrentList returns the list of the last applied fetch, or an empty list
// while loading, after a failure or before the first load.
func (s *Synchronizer) CurrentList() []domain.Player {
	st := s.session.Snapshot()
	if !st.Ready() {
		return []domain.Player{}
	}
	out := make([]domain.Player, len(st.Value))
	copy(out, st.Value)
	return out
}

// Find looks id up in the current list.
func (s *Synchronizer) Find(id string) (domain.Player, bool) {
	for _, p := range s.CurrentList() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Player{}, false
}

func (s *Synchronizer) State() ListState {
	return s.session.Snapshot()
}

func (s *Synchronizer) OnChange(fn func()) {
	s.session.OnChange(func(ListState) { fn() })
}

func (s *Synchronizer) Wait() {
	s.session.Wait()
}

func (s *Synchronizer) Close() {
	s.session.Close()
}
