package engine

import (
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/store"
)

// ListHandle names a recorded action list. The zero value names no list.
// Like group handles, a deleted list's handle never resolves again.
type ListHandle struct {
	e ecs.Entity
}

// IsZero reports whether h is the zero handle.
func (h ListHandle) IsZero() bool { return h.e.IsZero() }

// ID returns a stable numeric id for logging.
func (h ListHandle) ID() uint32 { return h.e.ID() }

// actionList is the ECS component carrying a list's actions.
type actionList struct {
	Actions []action.Action
}

func (c *Context) list(h ListHandle) (*actionList, error) {
	if h.IsZero() || !c.world.Alive(h.e) {
		return nil, fmt.Errorf("list %d: %w", h.ID(), store.ErrInvalidHandle)
	}
	return c.lists.Get(h.e), nil
}

// NewList allocates an empty list.
func (c *Context) NewList() ListHandle {
	h := ListHandle{e: c.lists.NewEntity(&actionList{})}
	c.log.Debug("list_created", "list", h.ID())
	return h
}

// BeginRecording opens a recording bracket on h, discarding anything it
// held. Until EndRecording, Do and CallList append to h.
func (c *Context) BeginRecording(h ListHandle) error {
	if c.pub.Recording() {
		return fmt.Errorf("begin recording list %d: list %d already recording: %w", h.ID(), c.recording.ID(), ErrRecording)
	}
	if c.pub.InPass() {
		return fmt.Errorf("begin recording list %d: %w", h.ID(), ErrReentrancy)
	}
	l, err := c.list(h)
	if err != nil {
		return err
	}
	l.Actions = l.Actions[:0]
	c.recording = h
	c.pub.SetRecording(true)
	return nil
}

// EndRecording seals the list being recorded.
func (c *Context) EndRecording() error {
	if !c.pub.Recording() {
		return fmt.Errorf("end recording: no list recording: %w", ErrRecording)
	}
	h := c.recording
	c.recording = ListHandle{}
	c.pub.SetRecording(false)
	if l, err := c.list(h); err == nil {
		c.log.Debug("list_recorded", "list", h.ID(), "actions", len(l.Actions))
	}
	return nil
}

func (c *Context) record(acts []action.Action) error {
	l, err := c.list(c.recording)
	if err != nil {
		return err
	}
	l.Actions = append(l.Actions, acts...)
	return nil
}

// Replay runs h as one pass over the current group.
func (c *Context) Replay(h ListHandle) error {
	if err := c.canStartPass(fmt.Sprintf("replay list %d", h.ID())); err != nil {
		return err
	}
	l, err := c.list(h)
	if err != nil {
		return err
	}
	if err := c.beginPass(); err != nil {
		return err
	}
	defer c.endPass()
	return c.execAll(l.Actions)
}

// DeleteList frees h. The list being recorded cannot be deleted.
func (c *Context) DeleteList(h ListHandle) error {
	if c.pub.Recording() && h == c.recording {
		return fmt.Errorf("delete list %d: %w", h.ID(), ErrRecording)
	}
	if c.pub.InPass() {
		return fmt.Errorf("delete list %d: %w", h.ID(), ErrReentrancy)
	}
	if _, err := c.list(h); err != nil {
		return err
	}
	c.world.RemoveEntity(h.e)
	c.log.Debug("list_deleted", "list", h.ID())
	return nil
}

// CallList issues a call to h. While recording, the call itself is recorded
// and h is resolved each time the outer list replays. Inside a pass h's
// actions run inline.
func (c *Context) CallList(h ListHandle) error {
	if c.pub.Recording() && h == c.recording {
		return fmt.Errorf("call list %d from itself: %w", h.ID(), ErrRecording)
	}
	if _, err := c.list(h); err != nil {
		return err
	}
	return c.Do(callList{ctx: c, target: h})
}

// ListLen returns the number of actions in h. A CallList counts as one.
func (c *Context) ListLen(h ListHandle) (int, error) {
	l, err := c.list(h)
	if err != nil {
		return 0, err
	}
	return len(l.Actions), nil
}

// Lists returns every live list handle, ordered by id.
func (c *Context) Lists() []ListHandle {
	var out []ListHandle
	query := c.filter.Query()
	for query.Next() {
		out = append(out, ListHandle{e: query.Entity()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].e.ID() < out[j].e.ID() })
	return out
}

// callList expands another list inside the running pass.
type callList struct {
	ctx    *Context
	target ListHandle
}

func (callList) Kind() action.Kind { return action.KindCallList }

func (a callList) Apply(_ *action.Pass) error {
	c := a.ctx
	l, err := c.list(a.target)
	if err != nil {
		return err
	}
	if c.depth >= maxCallDepth {
		return fmt.Errorf("list %d nested deeper than %d: %w", a.target.ID(), maxCallDepth, ErrReentrancy)
	}
	c.depth++
	defer func() { c.depth-- }()
	return c.execAll(l.Actions)
}
