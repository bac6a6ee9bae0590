// Package demos holds the demo bodies: thin functions that issue actions
// against an engine.Context.
package demos

import (
	"github.com/pthm-cable/spray/engine"
)

// Toggles are the per-frame feature switches a body reads when deciding
// which actions to issue. A disabled feature is simply not issued.
type Toggles struct {
	Gravity bool
	Damping bool
	Bounce  bool
	Avoid   bool
	Swirl   bool
}

// DefaultToggles enables everything except Swirl.
func DefaultToggles() Toggles {
	return Toggles{Gravity: true, Damping: true, Bounce: true, Avoid: true}
}

// Toggle is a named reference to one switch, for UI binding.
type Toggle struct {
	Name  string
	Value *bool
}

// List returns every switch in display order.
func (t *Toggles) List() []Toggle {
	return []Toggle{
		{"Gravity", &t.Gravity},
		{"Damping", &t.Damping},
		{"Bounce", &t.Bounce},
		{"Avoid", &t.Avoid},
		{"Swirl", &t.Swirl},
	}
}

// State is what a body sees each step.
type State struct {
	Toggles Toggles
	Time    float64 // frames elapsed since the demo started
}

// Demo describes one demo.
type Demo struct {
	ID          string // Registry key and -demo flag value
	Name        string // Display name
	Description string
	Category    string // Grouping for the picker (e.g. "fluid", "field")
	Capacity    int    // Particles in the demo's group

	// Setup runs once after the group is created and made current.
	// Nil means nothing to seed.
	Setup func(ctx *engine.Context) error
	// Body issues the actions of one step.
	Body func(ctx *engine.Context, s State) error
	// Dynamic bodies read State.Time, so a recorded list goes stale every
	// step and must be re-recorded.
	Dynamic bool

	// Camera framing hints
	CameraDistance float64
	CameraHeight   float64
}

// Registry maps demo IDs to demos.
type Registry struct {
	demos []Demo
	byID  map[string]Demo
}

// NewRegistry creates a registry with every built-in demo.
func NewRegistry() *Registry {
	r := &Registry{
		byID: make(map[string]Demo),
	}
	r.registerDefaults()
	return r
}

// registerDefaults adds the built-in demos. Adding a demo only means adding
// a line here.
func (r *Registry) registerDefaults() {
	r.Register(Fountain())
	r.Register(Waterfall())
	r.Register(Explosion())
	r.Register(Flock())
	r.Register(PhotoMelt(Gradient(64, 48)))
	r.Register(Atom())
	r.Register(Rain())
}

// Register adds a demo, replacing any demo with the same ID.
func (r *Registry) Register(d Demo) {
	if _, ok := r.byID[d.ID]; ok {
		for i := range r.demos {
			if r.demos[i].ID == d.ID {
				r.demos[i] = d
			}
		}
	} else {
		r.demos = append(r.demos, d)
	}
	r.byID[d.ID] = d
}

// Get returns a demo by ID.
func (r *Registry) Get(id string) (Demo, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns every demo in registration order.
func (r *Registry) All() []Demo {
	return r.demos
}

// ByCategory returns demos filtered by category.
func (r *Registry) ByCategory(category string) []Demo {
	var result []Demo
	for _, d := range r.demos {
		if d.Category == category {
			result = append(result, d)
		}
	}
	return result
}

// IDs returns every demo ID in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.demos))
	for i, d := range r.demos {
		ids[i] = d.ID
	}
	return ids
}

// Next returns the ID after id, wrapping around.
func (r *Registry) Next(id string) string {
	for i, d := range r.demos {
		if d.ID == id {
			return r.demos[(i+1)%len(r.demos)].ID
		}
	}
	if len(r.demos) > 0 {
		return r.demos[0].ID
	}
	return ""
}
