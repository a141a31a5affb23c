package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/freemove/internal/audio"
	"github.com/Versifine/freemove/internal/gravity"
	"github.com/Versifine/freemove/internal/ik"
	"github.com/Versifine/freemove/internal/locomotion"
	"github.com/Versifine/freemove/internal/orient"
	"github.com/Versifine/freemove/internal/physics"
	"github.com/Versifine/freemove/internal/rig"
)

type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Locomotion  LocomotionConfig  `yaml:"locomotion"`
	Gravity     GravityConfig     `yaml:"gravity"`
	IK          IKConfig          `yaml:"ik"`
	Orientation OrientationConfig `yaml:"orientation"`
	Capsule     CapsuleConfig     `yaml:"capsule"`
	Audio       AudioConfig       `yaml:"audio"`
	Sim         SimConfig         `yaml:"sim"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type LocomotionConfig struct {
	WalkSpeed     float64 `yaml:"walk_speed"`
	SprintSpeed   float64 `yaml:"sprint_speed"`
	TurnRate      float64 `yaml:"turn_rate"`
	LookUpRate    float64 `yaml:"look_up_rate"`
	JumpZVelocity float64 `yaml:"jump_z_velocity"`
	AirControl    float64 `yaml:"air_control"`
	RotationRate  float64 `yaml:"rotation_rate"`
}

type GravityConfig struct {
	FallingScale     float64       `yaml:"falling_scale"`
	LongFallDistance float64       `yaml:"long_fall_distance"`
	JumpDuration     float64       `yaml:"jump_duration"`
	Curve            []gravity.Key `yaml:"curve"`
}

type IKConfig struct {
	// FootTraceDistance of 0 derives the distance from the capsule.
	FootTraceDistance  float64 `yaml:"foot_trace_distance"`
	ArmTraceDistance   float64 `yaml:"arm_trace_distance"`
	InterpSpeed        float64 `yaml:"interp_speed"`
	HipOffsetThreshold float64 `yaml:"hip_offset_threshold"`
	LeftHandOffset     float64 `yaml:"left_hand_offset"`
	RightHandOffset    float64 `yaml:"right_hand_offset"`
}

type OrientationConfig struct {
	HeadYawLimit     float64 `yaml:"head_yaw_limit"`
	TorsoYawLimit    float64 `yaml:"torso_yaw_limit"`
	TorsoTurnFactor  float64 `yaml:"torso_turn_factor"`
	TorsoInterpSpeed float64 `yaml:"torso_interp_speed"`
}

type CapsuleConfig struct {
	Radius     float64 `yaml:"radius"`
	HalfHeight float64 `yaml:"half_height"`
	Scale      float64 `yaml:"scale"`
}

type AudioConfig struct {
	Enabled         bool    `yaml:"enabled"`
	SampleRate      int     `yaml:"sample_rate"`
	Volume          float64 `yaml:"volume"`
	FalloffDistance float64 `yaml:"falloff_distance"`
}

type SimConfig struct {
	TickRate float64 `yaml:"tick_rate"`
	Level    string  `yaml:"level"`
	Script   string  `yaml:"script"`
}

func Default() *Config {
	loco := locomotion.DefaultParams()
	grav := gravity.DefaultParams()
	orientation := orient.DefaultParams()
	snd := audio.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Locomotion: LocomotionConfig{
			WalkSpeed:     loco.WalkSpeed,
			SprintSpeed:   loco.SprintSpeed,
			TurnRate:      loco.TurnRate,
			LookUpRate:    loco.LookUpRate,
			JumpZVelocity: physics.DefaultJumpZVelocity,
			AirControl:    physics.DefaultAirControl,
			RotationRate:  physics.DefaultRotationRate,
		},
		Gravity: GravityConfig{
			FallingScale:     grav.FallingScale,
			LongFallDistance: grav.LongFallDistance,
			JumpDuration:     grav.JumpDuration,
		},
		IK: IKConfig{
			ArmTraceDistance:   ik.DefaultArmTraceDistance,
			InterpSpeed:        ik.DefaultInterpSpeed,
			HipOffsetThreshold: ik.DefaultHipOffsetThreshold,
			LeftHandOffset:     ik.DefaultLeftHandOffset,
			RightHandOffset:    ik.DefaultRightHandOffset,
		},
		Orientation: OrientationConfig{
			HeadYawLimit:     orientation.HeadYawLimit,
			TorsoYawLimit:    orientation.TorsoYawLimit,
			TorsoTurnFactor:  orientation.TorsoTurnFactor,
			TorsoInterpSpeed: orientation.TorsoInterpSpeed,
		},
		Capsule: CapsuleConfig{
			Radius:     physics.DefaultCapsuleRadius,
			HalfHeight: physics.DefaultCapsuleHalfHeight,
			Scale:      1,
		},
		Audio: AudioConfig{
			SampleRate:      snd.SampleRate,
			Volume:          snd.Volume,
			FalloffDistance: snd.FalloffDistance,
		},
		Sim: SimConfig{TickRate: 60},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	l := c.Locomotion
	if l.WalkSpeed <= 0 || l.SprintSpeed <= 0 {
		return fmt.Errorf("%w: walk_speed=%v sprint_speed=%v", ErrInvalidSpeed, l.WalkSpeed, l.SprintSpeed)
	}
	if l.TurnRate <= 0 || l.LookUpRate <= 0 || l.RotationRate <= 0 {
		return fmt.Errorf("%w: turn_rate=%v look_up_rate=%v rotation_rate=%v", ErrInvalidRate, l.TurnRate, l.LookUpRate, l.RotationRate)
	}
	if l.JumpZVelocity <= 0 {
		return fmt.Errorf("%w: jump_z_velocity=%v", ErrInvalidSpeed, l.JumpZVelocity)
	}
	if c.Gravity.FallingScale <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFallingScale, c.Gravity.FallingScale)
	}
	if c.Gravity.JumpDuration < 0 {
		return fmt.Errorf("%w: jump_duration=%v", ErrInvalidRate, c.Gravity.JumpDuration)
	}
	if _, err := c.curve(); err != nil {
		return err
	}
	if c.Capsule.Radius <= 0 || c.Capsule.HalfHeight <= 0 || c.Capsule.Scale <= 0 {
		return fmt.Errorf("%w: radius=%v half_height=%v scale=%v", ErrInvalidCapsule, c.Capsule.Radius, c.Capsule.HalfHeight, c.Capsule.Scale)
	}
	if c.IK.FootTraceDistance < 0 || c.IK.ArmTraceDistance <= 0 || c.IK.InterpSpeed < 0 {
		return fmt.Errorf("%w: foot=%v arm=%v interp=%v", ErrInvalidIK, c.IK.FootTraceDistance, c.IK.ArmTraceDistance, c.IK.InterpSpeed)
	}
	if c.Orientation.TorsoInterpSpeed < 0 {
		return fmt.Errorf("%w: torso_interp_speed=%v", ErrInvalidRate, c.Orientation.TorsoInterpSpeed)
	}
	if c.Audio.Enabled && (c.Audio.SampleRate <= 0 || c.Audio.Volume < 0) {
		return fmt.Errorf("%w: sample_rate=%d volume=%v", ErrInvalidAudio, c.Audio.SampleRate, c.Audio.Volume)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTickRate, c.Sim.TickRate)
	}
	return nil
}

// curve returns nil for an absent curve, which leaves the jump timeline inert.
func (c *Config) curve() (*gravity.Curve, error) {
	if len(c.Gravity.Curve) == 0 {
		return nil, nil
	}
	curve, err := gravity.NewCurve(c.Gravity.Curve)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCurve, err)
	}
	return curve, nil
}

func (c *Config) RigParams() (rig.Params, error) {
	curve, err := c.curve()
	if err != nil {
		return rig.Params{}, err
	}
	footTrace := c.IK.FootTraceDistance
	if footTrace == 0 {
		footTrace = ik.FootTraceDistanceFor(c.Capsule.Scale, c.Capsule.HalfHeight)
	}
	return rig.Params{
		Locomotion: locomotion.Params{
			WalkSpeed:   c.Locomotion.WalkSpeed,
			SprintSpeed: c.Locomotion.SprintSpeed,
			TurnRate:    c.Locomotion.TurnRate,
			LookUpRate:  c.Locomotion.LookUpRate,
		},
		Gravity: gravity.Params{
			FallingScale:     c.Gravity.FallingScale,
			LongFallDistance: c.Gravity.LongFallDistance,
			JumpDuration:     c.Gravity.JumpDuration,
			Curve:            curve,
		},
		IK: ik.Params{
			FootTraceDistance:  footTrace,
			ArmTraceDistance:   c.IK.ArmTraceDistance,
			InterpSpeed:        c.IK.InterpSpeed,
			HipOffsetThreshold: c.IK.HipOffsetThreshold,
			LeftHandOffset:     c.IK.LeftHandOffset,
			RightHandOffset:    c.IK.RightHandOffset,
		},
		Orientation: orient.Params{
			HeadYawLimit:     c.Orientation.HeadYawLimit,
			TorsoYawLimit:    c.Orientation.TorsoYawLimit,
			TorsoTurnFactor:  c.Orientation.TorsoTurnFactor,
			TorsoInterpSpeed: c.Orientation.TorsoInterpSpeed,
		},
	}, nil
}

func (c *Config) PhysicsParams() physics.Params {
	p := physics.DefaultParams()
	p.CapsuleRadius = c.Capsule.Radius
	p.CapsuleHalfHeight = c.Capsule.HalfHeight
	p.Scale = c.Capsule.Scale
	p.JumpZVelocity = c.Locomotion.JumpZVelocity
	p.AirControl = c.Locomotion.AirControl
	p.RotationRate = c.Locomotion.RotationRate
	return p
}

func (c *Config) AudioConfig() audio.Config {
	return audio.Config{
		SampleRate:      c.Audio.SampleRate,
		Volume:          c.Audio.Volume,
		FalloffDistance: c.Audio.FalloffDistance,
	}
}

// TickInterval is the fixed simulation step in seconds.
func (c *Config) TickInterval() float64 {
	return 1 / c.Sim.TickRate
}
