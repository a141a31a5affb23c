package rig

import (
	"errors"
	"math"
	"testing"

	"github.com/Versifine/freemove/internal/audio"
	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/gravity"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/physics"
	"github.com/Versifine/freemove/internal/world"
)

const dt = 1.0 / 60.0

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.6f, want %.6f (tol=%.6f)", field, got, want, tol)
	}
}

type mockMovement struct {
	loc          mathx.Vec3
	vel          mathx.Vec3
	rot          mathx.Rotator
	falling      bool
	gravityScale float64
	jumps        int
	stops        int
	disabled     bool
	inputs       int
	maxSpeed     float64
}

func (m *mockMovement) AddMovementInput(mathx.Vec3, float64) { m.inputs++ }
func (m *mockMovement) SetMaxWalkSpeed(v float64)            { m.maxSpeed = v }
func (m *mockMovement) Location() mathx.Vec3                 { return m.loc }
func (m *mockMovement) Velocity() mathx.Vec3                 { return m.vel }
func (m *mockMovement) Rotation() mathx.Rotator              { return m.rot }
func (m *mockMovement) IsFalling() bool                      { return m.falling }
func (m *mockMovement) SetGravityScale(s float64)            { m.gravityScale = s }
func (m *mockMovement) Jump()                                { m.jumps++ }
func (m *mockMovement) StopJumping()                         { m.stops++ }
func (m *mockMovement) SetMovementEnabled(enabled bool)      { m.disabled = !enabled }

type mockController struct {
	rot mathx.Rotator
}

func (c *mockController) ControlRotation() mathx.Rotator { return c.rot }
func (c *mockController) AddYawInput(deg float64)        { c.rot.Yaw += deg }
func (c *mockController) AddPitchInput(deg float64)      { c.rot.Pitch += deg }

type playedCue struct {
	cue audio.Cue
	loc mathx.Vec3
}

type mockAudio struct {
	played []playedCue
}

func (a *mockAudio) PlayAt(cue audio.Cue, loc mathx.Vec3) {
	a.played = append(a.played, playedCue{cue, loc})
}

func curveParams() Params {
	p := DefaultParams()
	p.Gravity.Curve = gravity.MustCurve(
		gravity.Key{Time: 0, Scale: 0.8},
		gravity.Key{Time: 1, Scale: 2.0},
	)
	return p
}

// recordEvents 订阅所有 rig 事件并按顺序记录名称
func recordEvents(bus *event.Bus) *[]string {
	var names []string
	for _, name := range []string{
		event.EventJumpStart, event.EventJumpRelease, event.EventLanded, event.EventFallStart,
		event.EventFootstep, event.EventSprintStart, event.EventSprintStop,
	} {
		n := name
		bus.Subscribe(n, func(any) { names = append(names, n) })
	}
	return &names
}

func newMockRig(t *testing.T, params Params) (*Rig, *mockMovement, *mockController, *mockAudio, *event.Bus) {
	t.Helper()
	mv := &mockMovement{}
	ctrl := &mockController{}
	snd := &mockAudio{}
	bus := event.NewBus()
	r, err := New(params, Collaborators{Movement: mv, Controller: ctrl, Audio: snd, Bus: bus}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, mv, ctrl, snd, bus
}

func TestNewRequiresMovement(t *testing.T) {
	if _, err := New(DefaultParams(), Collaborators{}, 1); !errors.Is(err, ErrNoMovement) {
		t.Fatalf("err = %v, want ErrNoMovement", err)
	}
}

func TestJumpReleaseLandScenario(t *testing.T) {
	r, mv, _, _, bus := newMockRig(t, curveParams())
	names := recordEvents(bus)

	s := r.Tick(dt, InputFrame{Forward: 1, Jump: true})
	if s.GravityState != gravity.JumpAscending {
		t.Fatalf("state = %v, want jump_ascending", s.GravityState)
	}
	if mv.jumps != 1 || mv.inputs != 1 {
		t.Fatalf("jumps/inputs = %d/%d, want 1/1", mv.jumps, mv.inputs)
	}
	approxEqual(t, s.GravityScale, 0.8+1.2*dt/0.6, 1e-9, "curve scale")
	approxEqual(t, mv.gravityScale, s.GravityScale, 0, "forwarded scale")

	mv.falling = true
	mv.vel = mathx.Vec3{600, 0, 400}
	for i := 0; i < 18; i++ {
		s = r.Tick(dt, InputFrame{Forward: 1, Jump: true})
	}
	if s.GravityState != gravity.JumpAscending || s.GravityScale <= 0.8 || s.GravityScale >= 2 {
		t.Fatalf("mid jump state = %v scale = %v", s.GravityState, s.GravityScale)
	}

	s = r.Tick(dt, InputFrame{Forward: 1})
	if s.GravityState != gravity.FallingUncontrolled {
		t.Fatalf("state after release = %v, want falling", s.GravityState)
	}
	approxEqual(t, s.GravityScale, 4.5, 0, "scale after release")
	approxEqual(t, mv.gravityScale, 4.5, 0, "forwarded scale after release")
	if mv.stops != 1 {
		t.Fatalf("stops = %d, want 1", mv.stops)
	}

	mv.vel = mathx.Vec3{600, 0, -300}
	for i := 0; i < 30; i++ {
		s = r.Tick(dt, InputFrame{Forward: 1})
	}
	approxEqual(t, s.DistanceFallen, 150, 1e-6, "distance fallen")

	mv.falling = false
	mv.vel = mathx.Vec3{600, 0, 0}
	s = r.Tick(dt, InputFrame{Forward: 1})
	if s.GravityState != gravity.Grounded || s.GravityScale != 1 || s.DistanceFallen != 0 {
		t.Fatalf("after landing state = %v scale = %v fallen = %v", s.GravityState, s.GravityScale, s.DistanceFallen)
	}
	approxEqual(t, mv.gravityScale, 1, 0, "forwarded scale after landing")

	want := []string{event.EventJumpStart, event.EventJumpRelease, event.EventLanded}
	if len(*names) != len(want) {
		t.Fatalf("events = %v, want %v", *names, want)
	}
	for i := range want {
		if (*names)[i] != want[i] {
			t.Fatalf("events = %v, want %v", *names, want)
		}
	}
}

func TestWalkOffLedgePublishesFall(t *testing.T) {
	r, mv, _, _, bus := newMockRig(t, DefaultParams())
	var fall *event.FallEvent
	bus.Subscribe(event.EventFallStart, func(raw any) { fall = raw.(*event.FallEvent) })

	r.Tick(dt, InputFrame{})
	mv.falling = true
	mv.vel = mathx.Vec3{0, 0, -10}
	s := r.Tick(dt, InputFrame{})

	if s.GravityState != gravity.FallingUncontrolled || s.GravityScale != 4.5 {
		t.Fatalf("state = %v scale = %v", s.GravityState, s.GravityScale)
	}
	if fall == nil || fall.FromJump {
		t.Fatalf("fall event = %+v, want walk-off fall", fall)
	}
}

func TestDisableJumpBlocksJump(t *testing.T) {
	r, mv, _, _, _ := newMockRig(t, curveParams())
	r.OnAnimEvent(event.AnimDisableJump)

	s := r.Tick(dt, InputFrame{Jump: true})
	if s.CanJump || s.GravityState != gravity.Grounded || mv.jumps != 0 {
		t.Fatalf("canJump = %v state = %v jumps = %d, want jump blocked", s.CanJump, s.GravityState, mv.jumps)
	}

	// 按住不放不会在解锁后自动起跳
	r.OnAnimEvent(event.AnimEnableJump)
	r.Tick(dt, InputFrame{Jump: true})
	if mv.jumps != 0 {
		t.Fatalf("jumps = %d, held key should not re-trigger", mv.jumps)
	}

	r.Tick(dt, InputFrame{})
	s = r.Tick(dt, InputFrame{Jump: true})
	if mv.jumps != 1 || s.GravityState != gravity.JumpAscending {
		t.Fatalf("jumps = %d state = %v, want a jump", mv.jumps, s.GravityState)
	}
}

func TestDisableMovementSuppressesInput(t *testing.T) {
	r, mv, ctrl, _, _ := newMockRig(t, DefaultParams())
	r.OnAnimEvent(event.AnimDisableMovement)

	s := r.Tick(dt, InputFrame{Forward: 1, Right: 1, Turn: 2})
	if mv.inputs != 0 || !mv.disabled || s.MovementEnabled {
		t.Fatalf("inputs = %d disabled = %v enabled = %v", mv.inputs, mv.disabled, s.MovementEnabled)
	}
	approxEqual(t, ctrl.rot.Yaw, 2, 0, "yaw still turns")

	r.OnAnimEvent(event.AnimEnableMovement)
	r.Tick(dt, InputFrame{Forward: 1})
	if mv.inputs != 1 || mv.disabled {
		t.Fatalf("inputs = %d disabled = %v, want movement restored", mv.inputs, mv.disabled)
	}
}

func TestFootstepPlaysAudioAndPublishes(t *testing.T) {
	r, mv, _, snd, bus := newMockRig(t, DefaultParams())
	names := recordEvents(bus)
	mv.loc = mathx.Vec3{10, 20, 96}

	r.OnAnimEvent(event.AnimFootstep)
	if len(snd.played) != 0 {
		t.Fatal("footstep played before the tick")
	}
	r.Tick(dt, InputFrame{})
	r.Tick(dt, InputFrame{})

	if len(snd.played) != 1 || snd.played[0].cue != audio.CueFootstep || snd.played[0].loc != mv.loc {
		t.Fatalf("played = %+v, want one footstep at %v", snd.played, mv.loc)
	}
	if len(*names) != 1 || (*names)[0] != event.EventFootstep {
		t.Fatalf("events = %v", *names)
	}
}

func TestSprintEdgesCountOnce(t *testing.T) {
	r, mv, _, _, bus := newMockRig(t, DefaultParams())
	names := recordEvents(bus)

	r.HandleAction(ActionSprintPressed)
	s := r.Tick(dt, InputFrame{Sprint: true})
	if !s.Sprinting || s.MaxSpeed != 1200 || mv.maxSpeed != 1200 {
		t.Fatalf("sprinting = %v max = %v/%v", s.Sprinting, s.MaxSpeed, mv.maxSpeed)
	}

	s = r.Tick(dt, InputFrame{})
	if s.Sprinting || mv.maxSpeed != 600 {
		t.Fatalf("sprinting = %v max = %v after release", s.Sprinting, mv.maxSpeed)
	}
	if len(*names) != 2 || (*names)[0] != event.EventSprintStart || (*names)[1] != event.EventSprintStop {
		t.Fatalf("events = %v", *names)
	}
}

func TestHandleActionWithoutHeldFlags(t *testing.T) {
	r, mv, _, _, bus := newMockRig(t, curveParams())
	names := recordEvents(bus)
	r.HandleAction(ActionJumpPressed)
	r.HandleAction(ActionJumpReleased)
	s := r.Tick(dt, InputFrame{})
	if mv.jumps != 1 || mv.stops != 1 {
		t.Fatalf("jumps/stops = %d/%d, want 1/1", mv.jumps, mv.stops)
	}
	// 起跳前松开：取消跳跃，留在地面
	if s.GravityState != gravity.Grounded || s.GravityScale != 1 || mv.gravityScale != 1 {
		t.Fatalf("state = %v scale = %v forwarded = %v, want grounded", s.GravityState, s.GravityScale, mv.gravityScale)
	}
	for _, n := range *names {
		if n == event.EventJumpRelease {
			t.Fatalf("events = %v, cancelled jump must not publish a release", *names)
		}
	}

	s = r.Tick(dt, InputFrame{})
	if s.GravityState != gravity.Grounded || s.GravityScale != 1 {
		t.Fatalf("state = %v scale = %v, want grounded", s.GravityState, s.GravityScale)
	}
}

func TestJumpPressInAirAfterLedgeIgnored(t *testing.T) {
	r, mv, _, _, bus := newMockRig(t, curveParams())
	names := recordEvents(bus)
	r.Tick(dt, InputFrame{Forward: 1})

	// 走出平台边缘的第一帧，竖直速度仍为 0
	mv.falling = true
	mv.vel = mathx.Vec3{300, 0, 0}
	r.Tick(dt, InputFrame{Forward: 1})

	s := r.Tick(dt, InputFrame{Forward: 1, Jump: true})
	if s.GravityState != gravity.Grounded {
		t.Fatalf("state = %v, airborne press must not start the curve", s.GravityState)
	}
	approxEqual(t, s.GravityScale, 1, 0, "scale after airborne press")
	for _, n := range *names {
		if n == event.EventJumpStart {
			t.Fatalf("events = %v, airborne press must not publish jump.start", *names)
		}
	}

	mv.vel = mathx.Vec3{300, 0, -50}
	s = r.Tick(dt, InputFrame{Forward: 1, Jump: true})
	if s.GravityState != gravity.FallingUncontrolled {
		t.Fatalf("state = %v, want falling once descending", s.GravityState)
	}
	approxEqual(t, s.GravityScale, 4.5, 0, "falling scale")
}

func TestSetParamsAppliedNextTick(t *testing.T) {
	r, mv, _, _, _ := newMockRig(t, DefaultParams())
	p := DefaultParams()
	p.Locomotion.WalkSpeed = 300
	r.SetParams(p)
	if mv.maxSpeed != 600 {
		t.Fatalf("max speed = %v before tick, want 600", mv.maxSpeed)
	}
	s := r.Tick(dt, InputFrame{})
	if mv.maxSpeed != 300 || s.MaxSpeed != 300 {
		t.Fatalf("max speed = %v/%v, want 300", mv.maxSpeed, s.MaxSpeed)
	}
}

func TestOrientationFollowsControl(t *testing.T) {
	r, mv, ctrl, _, _ := newMockRig(t, DefaultParams())
	mv.rot = mathx.Rotator{Yaw: 10}
	ctrl.rot = mathx.Rotator{Yaw: 200, Pitch: 20}

	s := r.Tick(dt, InputFrame{Turn: 1})
	approxEqual(t, s.Orientation.HeadYaw, -90, 1e-9, "head yaw")
	approxEqual(t, s.Orientation.HeadRoll, -20, 1e-9, "head roll")
	approxEqual(t, s.Orientation.TorsoYaw, 10, 1e-9, "torso yaw")
}

func TestNoControllerStillTicks(t *testing.T) {
	mv := &mockMovement{}
	r, err := New(DefaultParams(), Collaborators{Movement: mv}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := r.Tick(dt, InputFrame{Forward: 1, TurnRate: 1})
	if mv.inputs != 0 {
		t.Fatalf("inputs = %d, want suppressed without controller", mv.inputs)
	}
	if s.IK.LeftHandBlocked || s.IK.HipOffset != 0 {
		t.Fatalf("IK = %+v, want neutral without skeleton", s.IK)
	}
	r.OnAnimEvent(event.AnimFootstep)
	r.Tick(dt, InputFrame{})
}

// 以下用真实的积分器和场景做集成测试

func newBodyRig(t *testing.T, scene *world.Scene, spawn mathx.Vec3) (*Rig, *physics.Body) {
	t.Helper()
	body := physics.NewBody(physics.DefaultParams(), scene, 1)
	body.Teleport(spawn, 0)
	r, err := New(curveParams(), Collaborators{
		Movement:   body,
		Controller: body,
		Skeleton:   body,
		Tracer:     scene,
		Bus:        event.NewBus(),
	}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, body
}

func flatScene() *world.Scene {
	terrain := world.NewTerrain(100)
	terrain.FillBox(world.CellPos{X: -10, Y: -10, Z: -1}, world.CellPos{X: 9, Y: 9, Z: -1}, true)
	return world.NewScene(terrain)
}

func TestFootIKOnUnevenGround(t *testing.T) {
	scene := flatScene()
	scene.AddBox(world.Box{Bounds: world.AABB{Min: mathx.Vec3{-500, 0, 0}, Max: mathx.Vec3{500, 500, 20}}})
	r, body := newBodyRig(t, scene, mathx.Vec3{0, 0, 116})

	var s Snapshot
	for i := 0; i < 180; i++ {
		s = r.Tick(dt, InputFrame{})
		body.Step(dt)
	}

	if s.Airborne {
		t.Fatal("character should stand on the step")
	}
	approxEqual(t, s.IK.LeftFootHit.Z(), 0, 1e-6, "left hit z")
	approxEqual(t, s.IK.RightFootHit.Z(), 20, 1e-6, "right hit z")
	approxEqual(t, s.IK.HipOffset, -10, 1e-6, "hip offset")
	approxEqual(t, s.IK.LeftFootOffset, -10, 1e-3, "left foot offset")
	approxEqual(t, s.IK.RightFootOffset, 10, 1e-3, "right foot offset")
	if r.ProbeStats().Probes == 0 {
		t.Fatal("no probes issued")
	}
}

func TestHandIKAgainstWall(t *testing.T) {
	scene := flatScene()
	scene.AddBox(world.Box{Bounds: world.AABB{Min: mathx.Vec3{60, -300, 0}, Max: mathx.Vec3{80, 300, 300}}})
	r, body := newBodyRig(t, scene, mathx.Vec3{0, 0, 96})

	s := r.Tick(dt, InputFrame{})
	body.Step(dt)

	if !s.IK.LeftHandBlocked || !s.IK.RightHandBlocked {
		t.Fatalf("hands blocked = %v/%v, want both", s.IK.LeftHandBlocked, s.IK.RightHandBlocked)
	}
	approxEqual(t, s.IK.LeftHandLocation.X(), 60, 1e-6, "left hand x")
	approxEqual(t, s.IK.RightHandLocation.X(), 60, 1e-6, "right hand x")
}

func TestJumpWithIntegrator(t *testing.T) {
	scene := flatScene()
	r, body := newBodyRig(t, scene, mathx.Vec3{0, 0, 96})

	seen := map[gravity.State]bool{}
	landed := 0
	r.bus.Subscribe(event.EventLanded, func(any) { landed++ })

	for i := 0; i < 240; i++ {
		s := r.Tick(dt, InputFrame{Jump: i < 10})
		body.Step(dt)
		seen[s.GravityState] = true
		if s.GravityState == gravity.FallingUncontrolled {
			approxEqual(t, body.GravityScale(), 4.5, 0, "integrator gravity scale")
		}
	}

	if !seen[gravity.JumpAscending] || !seen[gravity.FallingUncontrolled] {
		t.Fatalf("states seen = %v", seen)
	}
	if landed != 1 {
		t.Fatalf("landed = %d, want 1", landed)
	}
	last := r.Last()
	if last.GravityState != gravity.Grounded || last.GravityScale != 1 || last.Airborne {
		t.Fatalf("final = %v scale %v airborne %v", last.GravityState, last.GravityScale, last.Airborne)
	}
	approxEqual(t, body.Location().Z(), 96, 1e-6, "final z")
}
