// Package rostertest provides an in-memory roster API for tests. Calls can be
// gated per operation so tests decide when, and in which order, they complete.
package rostertest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"roster-tracker/internal/domain"
)

type Op string

const (
	OpList    Op = "list"
	OpGet     Op = "get"
	OpSimilar Op = "similar"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

type Call struct {
	Op     Op
	ID     string
	Season string
	Fields domain.PlayerFields
}

// Pending is a gated call waiting for the test to release it.
type Pending struct {
	Call
	Ctx     context.Context
	release chan error
}

// Release lets the call run against the store as it is at release time.
func (p *Pending) Release() { p.release <- nil }

// Fail completes the call with err instead of touching the store.
func (p *Pending) Fail(err error) { p.release <- err }

type Client struct {
	mu       sync.Mutex
	order    []string
	players  map[string]*domain.Player
	similar  map[domain.SimilarKey][]domain.SimilarityMatch
	calls    []Call
	gated    map[Op]bool
	failNext map[Op]error
	nextID   int

	pending chan *Pending
}

func NewClient(players ...domain.Player) *Client {
	c := &Client{
		players:  make(map[string]*domain.Player),
		similar:  make(map[domain.SimilarKey][]domain.SimilarityMatch),
		gated:    make(map[Op]bool),
		failNext: make(map[Op]error),
		pending:  make(chan *Pending, 64),
		nextID:   100,
	}
	for _, p := range players {
		c.Seed(p)
	}
	return c
}

func (c *Client) Seed(p domain.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := p
	if _, ok := c.players[cp.ID]; !ok {
		c.order = append(c.order, cp.ID)
	}
	c.players[cp.ID] = &cp
}

func (c *Client) SetSimilar(id, season string, matches []domain.SimilarityMatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.similar[domain.SimilarKey{PlayerID: id, Season: season}] = matches
}

// Gate makes every later call of op block until released through Next.
func (c *Client) Gate(ops ...Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, op := range ops {
		c.gated[op] = true
	}
}

// FailNext makes the next call of op fail with err.
func (c *Client) FailNext(op Op, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext[op] = err
}

// Next returns the next gated call, panicking if none arrives in time.
func (c *Client) Next() *Pending {
	select {
	case p := <-c.pending:
		return p
	case <-time.After(2 * time.Second):
		panic("rostertest: no gated call arrived")
	}
}

// PendingCount reports gated calls issued but not yet taken with Next.
func (c *Client) PendingCount() int {
	return len(c.pending)
}

func (c *Client) Calls(op Op) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.calls {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

func (c *Client) Count(op Op) int {
	return len(c.Calls(op))
}

func (c *Client) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	if err := c.enter(ctx, Call{Op: OpList}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Player, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.players[id])
	}
	return out, nil
}

func (c *Client) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	if err := c.enter(ctx, Call{Op: OpGet, ID: id}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (c *Client) GetSimilar(ctx context.Context, id, season string) ([]domain.SimilarityMatch, error) {
	if err := c.enter(ctx, Call{Op: OpSimilar, ID: id, Season: season}); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	matches := c.similar[domain.SimilarKey{PlayerID: id, Season: season}]
	return append([]domain.SimilarityMatch{}, matches...), nil
}

func (c *Client) CreatePlayer(ctx context.Context, fields domain.PlayerFields) (*domain.Player, error) {
	if err := c.enter(ctx, Call{Op: OpCreate, Fields: fields}); err != nil {
		return nil, err
	}
	if err := validate(fields); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	p := &domain.Player{
		ID:        strconv.Itoa(c.nextID),
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Team:      fields.Team,
		Stats:     []domain.SeasonStat{},
	}
	c.players[p.ID] = p
	c.order = append(c.order, p.ID)
	cp := *p
	return &cp, nil
}

func (c *Client) UpdatePlayer(ctx context.Context, id string, fields domain.PlayerFields) (*domain.Player, error) {
	if err := c.enter(ctx, Call{Op: OpUpdate, ID: id, Fields: fields}); err != nil {
		return nil, err
	}
	if err := validate(fields); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	p.FirstName, p.LastName, p.Team = fields.FirstName, fields.LastName, fields.Team
	cp := *p
	return &cp, nil
}

func (c *Client) DeletePlayer(ctx context.Context, id string) error {
	if err := c.enter(ctx, Call{Op: OpDelete, ID: id}); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.players[id]; !ok {
		return fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	delete(c.players, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// enter records the call, applies a queued failure and blocks gated calls.
func (c *Client) enter(ctx context.Context, call Call) error {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	failure := c.failNext[call.Op]
	delete(c.failNext, call.Op)
	gated := c.gated[call.Op]
	c.mu.Unlock()

	if gated {
		p := &Pending{Call: call, Ctx: ctx, release: make(chan error, 1)}
		c.pending <- p
		if err := <-p.release; err != nil {
			return err
		}
	}
	return failure
}

func validate(fields domain.PlayerFields) error {
	return fields.Validate()
}
