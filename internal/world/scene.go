package world

import (
	"sync"

	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/probe"
)

// Scene combines terrain and boxes and answers line traces for the probe
// package.
type Scene struct {
	mu      sync.RWMutex
	terrain *Terrain
	boxes   []Box
}

func NewScene(terrain *Terrain) *Scene {
	if terrain == nil {
		terrain = NewTerrain(DefaultCellSize)
	}
	return &Scene{terrain: terrain}
}

func (s *Scene) Terrain() *Terrain {
	return s.terrain
}

func (s *Scene) AddBox(b Box) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes = append(s.boxes, b)
}

// SetActorBounds replaces the box owned by owner, adding one if needed.
func (s *Scene) SetActorBounds(owner probe.ActorID, bounds AABB) {
	if owner == probe.NoActor {
		s.AddBox(Box{Bounds: bounds})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.boxes {
		if s.boxes[i].Owner == owner {
			s.boxes[i].Bounds = bounds
			return
		}
	}
	s.boxes = append(s.boxes, Box{Bounds: bounds, Owner: owner})
}

func (s *Scene) BoxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boxes)
}

// Overlapping calls fn with every solid cell and box intersecting query,
// skipping boxes owned by ignore.
func (s *Scene) Overlapping(query AABB, ignore probe.ActorID, fn func(AABB)) {
	s.terrain.SolidCellsIn(query, func(cell AABB) {
		if cell.Intersects(query) {
			fn(cell)
		}
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, box := range s.boxes {
		if ignore != probe.NoActor && box.Owner == ignore {
			continue
		}
		if box.Bounds.Intersects(query) {
			fn(box.Bounds)
		}
	}
}

// LineTrace implements probe.Tracer.
func (s *Scene) LineTrace(start, end mathx.Vec3, ignore probe.ActorID) (probe.Hit, bool) {
	length := end.Sub(start).Len()
	if length <= 0 {
		return probe.Hit{}, false
	}

	best := probe.Hit{}
	bestT := 2.0
	found := false

	if loc, normal, ok := s.terrain.Trace(start, end); ok {
		bestT = loc.Sub(start).Len() / length
		best = probe.Hit{Location: loc, Normal: normal}
		found = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, box := range s.boxes {
		if ignore != probe.NoActor && box.Owner == ignore {
			continue
		}
		t, normal, ok := box.Bounds.intersectSegment(start, end)
		if !ok || t >= bestT {
			continue
		}
		bestT = t
		best = probe.Hit{
			Location: start.Add(end.Sub(start).Mul(t)),
			Normal:   normal,
			Actor:    box.Owner,
		}
		found = true
	}

	if !found {
		return probe.Hit{}, false
	}
	best.Distance = bestT * length
	return best, true
}
