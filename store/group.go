package store

import (
	"fmt"

	"github.com/pthm-cable/spray/components"
)

// SpawnPolicy decides what happens when a spawn request exceeds free capacity.
type SpawnPolicy uint8

const (
	// SpawnTruncate creates only as many particles as fit; the rest of the
	// request is silently dropped.
	SpawnTruncate SpawnPolicy = iota
	// SpawnEvictOldest marks the oldest live particles dead to make room.
	SpawnEvictOldest
)

func (p SpawnPolicy) String() string {
	switch p {
	case SpawnTruncate:
		return "truncate"
	case SpawnEvictOldest:
		return "evict_oldest"
	default:
		return "unknown"
	}
}

// ParseSpawnPolicy converts a config string into a SpawnPolicy.
func ParseSpawnPolicy(s string) (SpawnPolicy, bool) {
	switch s {
	case "", "truncate":
		return SpawnTruncate, true
	case "evict_oldest":
		return SpawnEvictOldest, true
	default:
		return SpawnTruncate, false
	}
}

// Group is a named, capacity-bounded run of particles.
//
// Particles are kept in spawn order and compaction is stable, so index 0 is
// always the oldest particle. Removal is deferred: killed particles stay in
// place, skipped by iteration, until Compact or EndPass runs.
type Group struct {
	name      string
	particles []components.Particle
	capacity  int
	policy    SpawnPolicy
	inPass    bool
}

func newGroup(name string, capacity int) *Group {
	return &Group{
		name:      name,
		particles: make([]components.Particle, 0, capacity),
		capacity:  capacity,
	}
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Capacity returns the maximum number of live particles.
func (g *Group) Capacity() int { return g.capacity }

// Policy returns the spawn-over-capacity policy.
func (g *Group) Policy() SpawnPolicy { return g.policy }

// SetPolicy changes the spawn-over-capacity policy.
func (g *Group) SetPolicy(p SpawnPolicy) { g.policy = p }

// Len returns the number of stored particles, including ones marked dead but
// not yet compacted.
func (g *Group) Len() int { return len(g.particles) }

// At returns the particle at index i. The pointer is only valid until the
// next Spawn or Compact.
func (g *Group) At(i int) *components.Particle { return &g.particles[i] }

// LiveCount returns the number of particles not marked dead.
func (g *Group) LiveCount() int {
	n := 0
	for i := range g.particles {
		if !g.particles[i].Dead() {
			n++
		}
	}
	return n
}

// Spawn appends up to count particles, calling init on each new one.
// It returns the number actually created. When the request does not fit,
// the group's SpawnPolicy decides between dropping the excess and evicting
// the oldest live particles.
func (g *Group) Spawn(count int, init func(p *components.Particle)) int {
	if count <= 0 {
		return 0
	}
	free := g.capacity - g.LiveCount()
	if count > free {
		switch g.policy {
		case SpawnEvictOldest:
			if count > g.capacity {
				count = g.capacity
			}
			g.evictOldest(count - free)
		default:
			count = free
		}
	}
	if count <= 0 {
		return 0
	}

	for i := 0; i < count; i++ {
		g.particles = append(g.particles, components.Particle{})
		if init != nil {
			init(&g.particles[len(g.particles)-1])
		}
	}
	return count
}

// evictOldest marks the n oldest live particles dead.
func (g *Group) evictOldest(n int) {
	for i := 0; i < len(g.particles) && n > 0; i++ {
		if !g.particles[i].Dead() {
			g.particles[i].Kill()
			n--
		}
	}
}

// ForEachLive calls fn on every live particle present when the call starts.
// Particles spawned by fn are not visited; particles killed by fn stay in
// place until Compact.
func (g *Group) ForEachLive(fn func(i int, p *components.Particle)) {
	g.ForRange(0, len(g.particles), fn)
}

// ForRange calls fn on every live particle with index in [begin, end).
func (g *Group) ForRange(begin, end int, fn func(i int, p *components.Particle)) {
	if end > len(g.particles) {
		end = len(g.particles)
	}
	for i := begin; i < end && i < len(g.particles); i++ {
		// Index on every iteration: fn may append and move the backing array.
		p := &g.particles[i]
		if p.Dead() {
			continue
		}
		fn(i, p)
	}
}

// BeginPass locks the group for a pass. Until EndPass, Compact and the
// store's Resize and DeleteGroup fail with ErrReentrancy; spawning and
// killing stay allowed.
func (g *Group) BeginPass() { g.inPass = true }

// EndPass releases the pass lock and removes the particles killed during the
// pass. It returns the number removed.
func (g *Group) EndPass() int {
	g.inPass = false
	return g.compact()
}

// InPass reports whether a pass holds the group.
func (g *Group) InPass() bool { return g.inPass }

// Compact removes dead particles, preserving the order of the survivors.
// It returns the number removed.
func (g *Group) Compact() (int, error) {
	if g.inPass {
		return 0, fmt.Errorf("compact group %q: %w", g.name, ErrReentrancy)
	}
	return g.compact(), nil
}

func (g *Group) compact() int {
	alive := 0
	for i := range g.particles {
		if g.particles[i].Dead() {
			continue
		}
		g.particles[alive] = g.particles[i]
		alive++
	}
	removed := len(g.particles) - alive
	g.particles = g.particles[:alive]
	return removed
}

// resize changes capacity, dropping the oldest particles when shrinking.
func (g *Group) resize(newMax int) {
	g.compact()
	if excess := len(g.particles) - newMax; excess > 0 {
		g.evictOldest(excess)
		g.compact()
	}
	g.capacity = newMax
}

// Buffers receives flat particle arrays for rendering.
// The slices belong to the caller and are reused across ReadBack calls.
type Buffers struct {
	Pos   []float32 // 3 per particle
	Color []float32 // 4 per particle
	Vel   []float32 // 3 per particle
	Size  []float32 // 3 per particle
	Count int
}

// Reset empties the buffers while keeping their storage.
func (b *Buffers) Reset() {
	b.Pos = b.Pos[:0]
	b.Color = b.Color[:0]
	b.Vel = b.Vel[:0]
	b.Size = b.Size[:0]
	b.Count = 0
}

// ReadBack copies up to maxCount live particles, starting at the start-th
// live particle, into dst. It returns the number copied.
func (g *Group) ReadBack(start, maxCount int, dst *Buffers) int {
	dst.Reset()
	if start < 0 {
		start = 0
	}
	skipped := 0
	for i := range g.particles {
		if dst.Count >= maxCount {
			break
		}
		p := &g.particles[i]
		if p.Dead() {
			continue
		}
		if skipped < start {
			skipped++
			continue
		}
		dst.Pos = append(dst.Pos, float32(p.Pos.X), float32(p.Pos.Y), float32(p.Pos.Z))
		dst.Color = append(dst.Color, float32(p.Color.R), float32(p.Color.G), float32(p.Color.B), float32(p.Color.A))
		dst.Vel = append(dst.Vel, float32(p.Vel.X), float32(p.Vel.Y), float32(p.Vel.Z))
		dst.Size = append(dst.Size, float32(p.Size.X), float32(p.Size.Y), float32(p.Size.Z))
		dst.Count++
	}
	return dst.Count
}

// Particles returns a copy of the live particles, for tests and tools.
func (g *Group) Particles() []components.Particle {
	out := make([]components.Particle, 0, len(g.particles))
	for i := range g.particles {
		if !g.particles[i].Dead() {
			out = append(out, g.particles[i])
		}
	}
	return out
}
