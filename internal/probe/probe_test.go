package probe

import (
	"testing"

	"github.com/Versifine/freemove/internal/mathx"
)

type recordedTrace struct {
	start  mathx.Vec3
	end    mathx.Vec3
	ignore ActorID
}

// planeTracer hits a horizontal floor at floorZ owned by owner.
type planeTracer struct {
	floorZ float64
	owner  ActorID
	calls  []recordedTrace
}

func (p *planeTracer) LineTrace(start, end mathx.Vec3, ignore ActorID) (Hit, bool) {
	p.calls = append(p.calls, recordedTrace{start: start, end: end, ignore: ignore})
	if ignore != NoActor && ignore == p.owner {
		return Hit{}, false
	}
	if (start.Z()-p.floorZ)*(end.Z()-p.floorZ) > 0 {
		return Hit{}, false
	}
	t := (start.Z() - p.floorZ) / (start.Z() - end.Z())
	loc := start.Add(end.Sub(start).Mul(t))
	return Hit{Location: loc, Normal: mathx.Up, Distance: loc.Sub(start).Len(), Actor: p.owner}, true
}

func TestProbeHitsWithinRange(t *testing.T) {
	tracer := &planeTracer{floorZ: 0, owner: 7}
	p := New(tracer, 1)

	hit, ok := p.Probe(mathx.Vec3{10, 20, 50}, mathx.Vec3{0, 0, -3}, 100, true)
	if !ok {
		t.Fatal("expected a hit")
	}
	if !hit.Location.ApproxEqual(mathx.Vec3{10, 20, 0}) {
		t.Fatalf("hit location = %v, want (10,20,0)", hit.Location)
	}
	if len(tracer.calls) != 1 {
		t.Fatalf("trace calls = %d, want 1", len(tracer.calls))
	}
	if !tracer.calls[0].end.ApproxEqual(mathx.Vec3{10, 20, -50}) {
		t.Fatalf("trace end = %v, want direction normalised to length 100", tracer.calls[0].end)
	}
	if tracer.calls[0].ignore != 1 {
		t.Fatalf("ignore = %d, want self id 1", tracer.calls[0].ignore)
	}
}

func TestProbeMissOutOfRange(t *testing.T) {
	p := New(&planeTracer{floorZ: 0}, 1)
	if _, ok := p.Probe(mathx.Vec3{0, 0, 50}, mathx.Down, 49, true); ok {
		t.Fatal("floor is beyond maxDistance, want miss")
	}
	stats := p.Stats()
	if stats.Probes != 1 || stats.Hits != 0 {
		t.Fatalf("stats = %+v, want 1 probe 0 hits", stats)
	}
}

func TestProbeIgnoresSelf(t *testing.T) {
	tracer := &planeTracer{floorZ: 0, owner: 3}
	p := New(tracer, 3)
	if _, ok := p.Probe(mathx.Vec3{0, 0, 10}, mathx.Down, 100, true); ok {
		t.Fatal("self-owned geometry should be ignored")
	}
	if _, ok := p.Probe(mathx.Vec3{0, 0, 10}, mathx.Down, 100, false); !ok {
		t.Fatal("self-owned geometry should block when ignoreSelf is false")
	}
}

func TestProbeDegenerateInputs(t *testing.T) {
	tracer := &planeTracer{floorZ: 0}
	p := New(tracer, 1)
	if _, ok := p.Probe(mathx.Vec3{0, 0, 10}, mathx.Vec3{}, 100, true); ok {
		t.Fatal("zero direction should miss")
	}
	if _, ok := p.Probe(mathx.Vec3{0, 0, 10}, mathx.Down, 0, true); ok {
		t.Fatal("zero distance should miss")
	}
	if len(tracer.calls) != 0 {
		t.Fatalf("degenerate probes reached the tracer %d times", len(tracer.calls))
	}

	var nilProber *Prober
	if _, ok := nilProber.Probe(mathx.Vec3{}, mathx.Down, 10, true); ok {
		t.Fatal("nil prober should miss")
	}
	if _, ok := New(nil, 1).Probe(mathx.Vec3{}, mathx.Down, 10, true); ok {
		t.Fatal("prober without tracer should miss")
	}
}

func TestProbeSegment(t *testing.T) {
	p := New(&planeTracer{floorZ: 5}, 1)
	hit, ok := p.ProbeSegment(mathx.Vec3{0, 0, 10}, mathx.Vec3{0, 0, 0}, true)
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.Distance != 5 {
		t.Fatalf("distance = %.3f, want 5", hit.Distance)
	}
	p.ResetStats()
	if p.Stats().Probes != 0 {
		t.Fatal("ResetStats did not clear counters")
	}
}
