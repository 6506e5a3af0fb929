// Package form models the create-or-edit player form and maps submit intent
// onto the matching write.
package form

import (
	"context"
	"sync"

	"roster-tracker/internal/constants"
	"roster-tracker/internal/domain"
	"roster-tracker/internal/metrics"

	"github.com/rs/zerolog"
)

type Writer interface {
	CreatePlayer(ctx context.Context, fields domain.PlayerFields) (*domain.Player, error)
	UpdatePlayer(ctx context.Context, id string, fields domain.PlayerFields) (*domain.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

// Refresher is signalled exactly once after every accepted write.
type Refresher interface {
	Refresh()
}

type WriteRecorder interface {
	RecordWrite(operation, outcome string)
}

type Snapshot struct {
	Mode  Mode
	Draft Draft
	Err   error
	Busy  bool
}

// Machine exclusively owns the draft. All mutations go through its methods.
type Machine struct {
	writer    Writer
	refresher Refresher
	recorder  WriteRecorder
	logger    zerolog.Logger

	mu       sync.Mutex
	draft    Draft
	err      error
	busy     bool
	onChange []func()
}

func NewMachine(writer Writer, refresher Refresher, logger zerolog.Logger, opts ...Option) *Machine {
	m := &Machine{
		writer:    writer,
		refresher: refresher,
		recorder:  metrics.Global(),
		logger:    logger.With().Str("component", "form").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Mode: m.draft.Mode(), Draft: m.draft, Err: m.err, Busy: m.busy}
}

// BeginEdit binds the form to p, replacing the whole draft with p's values.
func (m *Machine) BeginEdit(p domain.Player) error {
	if p.ID == "" {
		return ErrNoTarget
	}

	m.mu.Lock()
	m.draft = DraftFrom(p)
	m.err = nil
	m.mu.Unlock()

	m.logger.Debug().Str("player_id", p.ID).Msg("edit started")
	m.notify()
	return nil
}

// Cancel returns the form to create mode with an empty draft.
func (m *Machine) Cancel() {
	m.mu.Lock()
	m.draft = Draft{}
	m.err = nil
	m.mu.Unlock()

	m.notify()
}

func (m *Machine) SetField(field Field, value string) error {
	m.mu.Lock()
	err := m.draft.set(field, value)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify()
	return nil
}

// Submit writes the draft: a create in create mode, an update addressed by the
// target id in edit mode. On success the form resets to create mode, unless an
// edit of another player began while the write was in flight, and the
// collection is refreshed once. On failure mode and draft are kept and the
// error is both surfaced in the snapshot and returned.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return ErrBusy
	}
	draft := m.draft
	if err := draft.Validate(); err != nil {
		m.err = err
		m.mu.Unlock()
		m.notify()
		return err
	}
	m.busy = true
	m.err = nil
	m.mu.Unlock()
	m.notify()

	ctx, cancel := context.WithTimeout(ctx, constants.WriteTimeout)
	defer cancel()

	operation := "create"
	var err error
	if draft.Mode() == ModeCreating {
		_, err = m.writer.CreatePlayer(ctx, draft.Fields())
	} else {
		operation = "update"
		_, err = m.writer.UpdatePlayer(ctx, draft.TargetID, draft.Fields())
	}

	m.mu.Lock()
	m.busy = false
	if err != nil {
		m.err = err
		m.mu.Unlock()

		m.recorder.RecordWrite(operation, string(domain.Kind(err)))
		m.logger.Error().Err(err).Str("operation", operation).Str("player_id", draft.TargetID).Msg("write failed")
		m.notify()
		return err
	}
	if m.draft.TargetID == draft.TargetID {
		m.draft = Draft{}
	}
	m.mu.Unlock()

	m.recorder.RecordWrite(operation, "ok")
	m.logger.Info().Str("operation", operation).Str("player_id", draft.TargetID).Msg("write accepted")
	m.refresher.Refresh()
	m.notify()
	return nil
}

// Remove deletes player id. Deleting the player being edited also cancels the
// edit.
func (m *Machine) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.WriteTimeout)
	defer cancel()

	if err := m.writer.DeletePlayer(ctx, id); err != nil {
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()

		m.recorder.RecordWrite("delete", string(domain.Kind(err)))
		m.logger.Error().Err(err).Str("player_id", id).Msg("delete failed")
		m.notify()
		return err
	}

	m.mu.Lock()
	cancelled := m.draft.TargetID == id
	if cancelled {
		m.draft = Draft{}
	}
	m.err = nil
	m.mu.Unlock()

	m.recorder.RecordWrite("delete", "ok")
	m.logger.Info().Str("player_id", id).Bool("edit_cancelled", cancelled).Msg("player deleted")
	m.refresher.Refresh()
	m.notify()
	return nil
}

func (m *Machine) notify() {
	m.mu.Lock()
	listeners := m.onChange
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
