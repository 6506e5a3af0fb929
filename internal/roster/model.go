// Package roster ties the list, the selected player with its similar
// players, and the player form into one observable view model.
package roster

import (
	"context"
	"fmt"
	"sync"

	"roster-tracker/internal/cascade"
	"roster-tracker/internal/collection"
	"roster-tracker/internal/domain"
	"roster-tracker/internal/form"
	"roster-tracker/internal/metrics"
	"roster-tracker/internal/resource"

	"github.com/rs/zerolog"
)

// Client is everything the model needs from the roster API.
type Client interface {
	collection.Lister
	cascade.Client
	form.Writer
}

type Option func(*modelOptions)

type modelOptions struct {
	recorder *metrics.Manager
}

// WithRecorder sends fetch and write metrics to m instead of the global manager.
func WithRecorder(m *metrics.Manager) Option {
	return func(o *modelOptions) {
		o.recorder = m
	}
}

type Model struct {
	logger zerolog.Logger

	list    *collection.Synchronizer
	details *cascade.Coordinator
	form    *form.Machine

	mu          sync.Mutex
	subscribers map[int]func(View)
	nextSub     int

	// publishMu orders deliveries: each view is built and fanned out before
	// the next transition's view is built.
	publishMu sync.Mutex
}

func NewModel(client Client, logger zerolog.Logger, opts ...Option) *Model {
	o := modelOptions{recorder: metrics.Global()}
	for _, opt := range opts {
		opt(&o)
	}

	list := collection.NewSynchronizer(client, logger, resource.WithRecorder(o.recorder))
	m := &Model{
		logger:      logger.With().Str("component", "roster").Logger(),
		list:        list,
		details:     cascade.NewCoordinator(client, logger, resource.WithRecorder(o.recorder)),
		form:        form.NewMachine(client, list, logger, form.WithRecorder(o.recorder)),
		subscribers: make(map[int]func(View)),
	}

	m.list.OnChange(m.publish)
	m.details.OnChange(m.publish)
	m.form.OnChange(m.publish)
	return m
}

// Open starts the initial list load.
func (m *Model) Open() {
	m.logger.Info().Msg("roster model opened")
	m.list.Refresh()
}

// Close cancels in-flight fetches and waits for their goroutines.
func (m *Model) Close() {
	m.details.Close()
	m.list.Close()
	m.logger.Info().Msg("roster model closed")
}

// Wait blocks until no fetch is in flight.
func (m *Model) Wait() {
	m.details.Wait()
	m.list.Wait()
}

func (m *Model) View() View {
	primary := m.details.Primary()
	secondary := m.details.Secondary()
	list := m.list.State()
	fs := m.form.Snapshot()

	listView := fetchView(list)
	listView.Value = m.list.CurrentList()
	secondaryView := fetchView(secondary)
	if secondaryView.Value == nil {
		secondaryView.Value = []domain.SimilarityMatch{}
	}

	return View{
		Key:       m.details.Key(),
		List:      listView,
		Primary:   fetchView(primary),
		Secondary: secondaryView,
		Form: FormView{
			Mode:  fs.Mode,
			Draft: fs.Draft,
			Busy:  fs.Busy,
			Error: errorView(fs.Err),
		},
	}
}

// Subscribe registers fn to receive a fresh view after every state change.
// Deliveries are serialised, so the last view fn receives reflects the latest
// state. fn must not block or call back into the model.
func (m *Model) Subscribe(fn func(View)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Model) SetKey(id string) {
	m.details.SetKey(id)
}

func (m *Model) Refresh() {
	m.list.Refresh()
}

func (m *Model) BeginEdit(p domain.Player) error {
	return m.form.BeginEdit(p)
}

// BeginEditByID starts editing the player with id as currently listed.
func (m *Model) BeginEditByID(id string) error {
	p, ok := m.list.Find(id)
	if !ok {
		return fmt.Errorf("player %s is not in the current list: %w", id, domain.ErrNotFound)
	}
	return m.form.BeginEdit(p)
}

func (m *Model) SetField(field form.Field, value string) error {
	return m.form.SetField(field, value)
}

func (m *Model) Cancel() {
	m.form.Cancel()
}

func (m *Model) Submit(ctx context.Context) error {
	return m.form.Submit(ctx)
}

func (m *Model) Remove(ctx context.Context, id string) error {
	return m.form.Remove(ctx, id)
}

func (m *Model) publish() {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	m.mu.Lock()
	if len(m.subscribers) == 0 {
		m.mu.Unlock()
		return
	}
	subs := make([]func(View), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	v := m.View()
	for _, fn := range subs {
		fn(v)
	}
}
