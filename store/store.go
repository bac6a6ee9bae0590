// Package store owns particle groups and the handles that name them.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"
)

var (
	// ErrInvalidHandle is returned for unknown or deleted handles.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrCapacity is returned for non-positive or over-budget capacities.
	ErrCapacity = errors.New("capacity error")
	// ErrReentrancy is returned for structural changes to a group while a
	// pass holds it.
	ErrReentrancy = errors.New("reentrant call")
)

// GroupHandle names a group. The zero value names no group.
// Handles are generation-checked: once a group is deleted its handle never
// resolves again, even if the slot is reused.
type GroupHandle struct {
	e ecs.Entity
}

// IsZero reports whether h is the zero handle.
func (h GroupHandle) IsZero() bool { return h.e.IsZero() }

// ID returns a stable numeric id for logging.
func (h GroupHandle) ID() uint32 { return h.e.ID() }

// groupSlot is the ECS component carrying a group.
type groupSlot struct {
	Group *Group
}

// Store holds every particle group under a global particle budget.
type Store struct {
	world     *ecs.World
	slots     *ecs.Map1[groupSlot]
	filter    *ecs.Filter1[groupSlot]
	budget    int
	allocated int
}

// New creates a store whose group capacities may sum to at most budget.
func New(budget int) *Store {
	world := ecs.NewWorld()
	return &Store{
		world:  world,
		slots:  ecs.NewMap1[groupSlot](world),
		filter: ecs.NewFilter1[groupSlot](world),
		budget: budget,
	}
}

// Budget returns the global particle budget.
func (s *Store) Budget() int { return s.budget }

// Allocated returns the sum of all group capacities.
func (s *Store) Allocated() int { return s.allocated }

// CreateGroup allocates a new group with the given capacity.
func (s *Store) CreateGroup(name string, capacity int) (GroupHandle, error) {
	if capacity <= 0 {
		return GroupHandle{}, fmt.Errorf("group %q capacity %d: %w", name, capacity, ErrCapacity)
	}
	if s.allocated+capacity > s.budget {
		return GroupHandle{}, fmt.Errorf("group %q capacity %d exceeds budget (%d of %d allocated): %w",
			name, capacity, s.allocated, s.budget, ErrCapacity)
	}

	e := s.slots.NewEntity(&groupSlot{Group: newGroup(name, capacity)})
	s.allocated += capacity
	return GroupHandle{e: e}, nil
}

// Group resolves a handle.
func (s *Store) Group(h GroupHandle) (*Group, error) {
	if h.IsZero() || !s.world.Alive(h.e) {
		return nil, fmt.Errorf("group %d: %w", h.ID(), ErrInvalidHandle)
	}
	return s.slots.Get(h.e).Group, nil
}

// DeleteGroup frees a group and returns its capacity to the budget.
func (s *Store) DeleteGroup(h GroupHandle) error {
	g, err := s.Group(h)
	if err != nil {
		return err
	}
	if g.inPass {
		return fmt.Errorf("delete group %q: %w", g.name, ErrReentrancy)
	}
	s.allocated -= g.capacity
	s.world.RemoveEntity(h.e)
	return nil
}

// Resize changes a group's capacity. Shrinking drops the oldest particles.
func (s *Store) Resize(h GroupHandle, newMax int) error {
	g, err := s.Group(h)
	if err != nil {
		return err
	}
	if g.inPass {
		return fmt.Errorf("resize group %q: %w", g.name, ErrReentrancy)
	}
	if newMax <= 0 {
		return fmt.Errorf("resize group %q to %d: %w", g.name, newMax, ErrCapacity)
	}
	if s.allocated-g.capacity+newMax > s.budget {
		return fmt.Errorf("resize group %q to %d exceeds budget %d: %w", g.name, newMax, s.budget, ErrCapacity)
	}
	s.allocated += newMax - g.capacity
	g.resize(newMax)
	return nil
}

// Handles returns every live group handle, ordered by id.
func (s *Store) Handles() []GroupHandle {
	var out []GroupHandle
	query := s.filter.Query()
	for query.Next() {
		out = append(out, GroupHandle{e: query.Entity()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].e.ID() < out[j].e.ID() })
	return out
}
