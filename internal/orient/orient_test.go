package orient

import (
	"math"
	"testing"

	"github.com/Versifine/freemove/internal/mathx"
)

const dt = 1.0 / 60.0

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.6f, want %.6f (tol=%.6f)", field, got, want, tol)
	}
}

func TestHeadYawClampedAcrossWrap(t *testing.T) {
	tests := []struct {
		name          string
		control, body float64
		want          float64
	}{
		{"ahead", 30, 0, 30},
		{"behind right", 170, 0, 90},
		{"behind left", -170, 0, -90},
		{"wrap positive", 350, 0, -10},
		{"wrap negative", -170, 170, 20},
		{"large delta", 270, 0, -90},
		{"multi turn", 725, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(DefaultParams())
			st := o.Update(dt, mathx.Rotator{Yaw: tt.control}, mathx.Rotator{Yaw: tt.body}, 0)
			approxEqual(t, st.HeadYaw, tt.want, 1e-9, "HeadYaw")
		})
	}
}

func TestHeadRollInvertsPitch(t *testing.T) {
	o := New(DefaultParams())
	st := o.Update(dt, mathx.Rotator{Pitch: 30}, mathx.Rotator{}, 0)
	approxEqual(t, st.HeadRoll, -30, 1e-9, "HeadRoll")

	// 控制器常把俯视存成 330 度
	st = o.Update(dt, mathx.Rotator{Pitch: 330}, mathx.Rotator{}, 0)
	approxEqual(t, st.HeadRoll, 30, 1e-9, "HeadRoll")
}

func TestTorsoYawInstantPitchLags(t *testing.T) {
	o := New(DefaultParams())
	st := o.Update(dt, mathx.Rotator{}, mathx.Rotator{}, 1)
	approxEqual(t, st.TorsoYaw, 10, 1e-9, "TorsoYaw")
	approxEqual(t, st.TorsoPitch, 10*5*dt, 1e-9, "TorsoPitch")

	prev := st.TorsoPitch
	for i := 0; i < 120; i++ {
		st = o.Update(dt, mathx.Rotator{}, mathx.Rotator{}, 1)
		if st.TorsoPitch < prev || st.TorsoPitch > 10 {
			t.Fatalf("tick %d: TorsoPitch = %v, prev %v", i, st.TorsoPitch, prev)
		}
		prev = st.TorsoPitch
	}
	approxEqual(t, st.TorsoPitch, 10, 1e-3, "TorsoPitch settled")

	st = o.Update(dt, mathx.Rotator{}, mathx.Rotator{}, 0)
	approxEqual(t, st.TorsoYaw, 0, 1e-9, "TorsoYaw released")
	if st.TorsoPitch <= 0 {
		t.Fatalf("TorsoPitch = %v, want lagging above 0", st.TorsoPitch)
	}
}

func TestTorsoYawClamped(t *testing.T) {
	o := New(DefaultParams())
	st := o.Update(dt, mathx.Rotator{}, mathx.Rotator{}, 3)
	approxEqual(t, st.TorsoYaw, 15, 1e-9, "TorsoYaw")
	st = o.Update(dt, mathx.Rotator{}, mathx.Rotator{}, -2.5)
	approxEqual(t, st.TorsoYaw, -15, 1e-9, "TorsoYaw")
}

func TestReset(t *testing.T) {
	o := New(DefaultParams())
	o.Update(dt, mathx.Rotator{Yaw: 40}, mathx.Rotator{}, 1)
	o.Reset()
	if o.State() != (State{}) {
		t.Fatalf("State = %+v, want zero", o.State())
	}
}
