// Package probe issues short line queries against the environment on behalf
// of one character.
package probe

import (
	"math"

	"github.com/Versifine/freemove/internal/mathx"
)

// ActorID identifies a collidable owner in the environment. NoActor matches
// nothing.
type ActorID uint32

const NoActor ActorID = 0

type Hit struct {
	Location mathx.Vec3
	Normal   mathx.Vec3
	Distance float64
	Actor    ActorID
}

// Tracer is the environment query subsystem. LineTrace returns the nearest
// blocking hit on the segment start->end, skipping geometry owned by ignore.
type Tracer interface {
	LineTrace(start, end mathx.Vec3, ignore ActorID) (Hit, bool)
}

type Stats struct {
	Probes int
	Hits   int
}

// Prober casts rays for a single owning actor.
type Prober struct {
	tracer Tracer
	self   ActorID
	stats  Stats
}

func New(tracer Tracer, self ActorID) *Prober {
	return &Prober{tracer: tracer, self: self}
}

// Probe casts a ray of length maxDistance from origin along direction.
// A miss is an ordinary result, not an error.
func (p *Prober) Probe(origin, direction mathx.Vec3, maxDistance float64, ignoreSelf bool) (Hit, bool) {
	if p == nil || p.tracer == nil {
		return Hit{}, false
	}
	if maxDistance <= 0 || math.IsNaN(maxDistance) || math.IsInf(maxDistance, 0) {
		return Hit{}, false
	}
	dir, ok := mathx.SafeNormalize(direction)
	if !ok {
		return Hit{}, false
	}
	return p.trace(origin, origin.Add(dir.Mul(maxDistance)), ignoreSelf)
}

// ProbeSegment casts between two points.
func (p *Prober) ProbeSegment(start, end mathx.Vec3, ignoreSelf bool) (Hit, bool) {
	if p == nil || p.tracer == nil {
		return Hit{}, false
	}
	if end.Sub(start).Len() <= 0 {
		return Hit{}, false
	}
	return p.trace(start, end, ignoreSelf)
}

func (p *Prober) trace(start, end mathx.Vec3, ignoreSelf bool) (Hit, bool) {
	ignore := NoActor
	if ignoreSelf {
		ignore = p.self
	}
	p.stats.Probes++
	hit, ok := p.tracer.LineTrace(start, end, ignore)
	if !ok {
		return Hit{}, false
	}
	if ignoreSelf && hit.Actor == p.self && p.self != NoActor {
		// tracer did not honour the ignore list
		return Hit{}, false
	}
	p.stats.Hits++
	return hit, true
}

func (p *Prober) Self() ActorID {
	if p == nil {
		return NoActor
	}
	return p.self
}

// Stats reports probe counters since the last ResetStats.
func (p *Prober) Stats() Stats {
	if p == nil {
		return Stats{}
	}
	return p.stats
}

func (p *Prober) ResetStats() {
	if p != nil {
		p.stats = Stats{}
	}
}
