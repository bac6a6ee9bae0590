// Package shadow exposes the interpreter's per-pass iteration state to
// actions as a read-only view that expires when the pass ends.
//
// The interpreter owns a Publisher and republishes bounds as a pass
// progresses. Actions only ever see a *View. A View is tied to the pass it
// was published for: once that pass ends every read fails with ErrStale, and
// a later pass never changes what an old View reports.
package shadow

import "errors"

// ErrStale is returned when a View is read after its pass has ended.
var ErrStale = errors.New("stale shadow state")

// frame is the state of one pass.
type frame struct {
	number uint64
	begin  int
	end    int
	dt     float64
	inLoop bool
	active bool
}

// View is a read-only window onto one pass.
type View struct {
	f *frame
}

// Valid reports whether the pass this view belongs to is still running.
func (v *View) Valid() bool {
	return v != nil && v.f != nil && v.f.active
}

func (v *View) check() error {
	if !v.Valid() {
		return ErrStale
	}
	return nil
}

// Bounds returns the live iteration range [begin, end) of the current group.
func (v *View) Bounds() (begin, end int, err error) {
	if err := v.check(); err != nil {
		return 0, 0, err
	}
	return v.f.begin, v.f.end, nil
}

// TimeStep returns the effective dt of this pass.
func (v *View) TimeStep() (float64, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	return v.f.dt, nil
}

// Pass returns the sequence number of the pass, starting at 1.
func (v *View) Pass() (uint64, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	return v.f.number, nil
}

// InLoop reports whether an action's per-particle loop is running.
func (v *View) InLoop() (bool, error) {
	if err := v.check(); err != nil {
		return false, err
	}
	return v.f.inLoop, nil
}

// Publisher is the interpreter's write side.
type Publisher struct {
	cur       *frame
	passes    uint64
	recording bool
}

// Begin starts a new pass and returns its view.
// Any view from a previous pass is expired.
func (p *Publisher) Begin(dt float64, begin, end int) *View {
	p.End()
	p.passes++
	p.cur = &frame{
		number: p.passes,
		begin:  begin,
		end:    end,
		dt:     dt,
		active: true,
	}
	return &View{f: p.cur}
}

// SetBounds republishes the iteration range of the running pass.
func (p *Publisher) SetBounds(begin, end int) {
	if p.cur != nil {
		p.cur.begin, p.cur.end = begin, end
	}
}

// SetLoop marks entry to or exit from an action's per-particle loop.
func (p *Publisher) SetLoop(in bool) {
	if p.cur != nil {
		p.cur.inLoop = in
	}
}

// End expires the running pass, if any.
func (p *Publisher) End() {
	if p.cur != nil {
		p.cur.active = false
		p.cur.inLoop = false
		p.cur = nil
	}
}

// SetRecording records whether a recording bracket is open. The flag lives
// on the publisher only: a pass never starts inside a bracket, so no View
// could observe it set.
func (p *Publisher) SetRecording(on bool) { p.recording = on }

// Recording reports whether a recording bracket is open.
func (p *Publisher) Recording() bool { return p.recording }

// InPass reports whether a pass is running.
func (p *Publisher) InPass() bool { return p.cur != nil }

// InLoop reports whether an action loop is running.
func (p *Publisher) InLoop() bool { return p.cur != nil && p.cur.inLoop }

// Passes returns the number of passes started so far.
func (p *Publisher) Passes() uint64 { return p.passes }
