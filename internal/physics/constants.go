package physics

const (
	DefaultGravityZ            = -980.0
	DefaultJumpZVelocity       = 600.0
	DefaultAirControl          = 0.2
	DefaultRotationRate        = 540.0
	DefaultMaxAcceleration     = 2048.0
	DefaultBrakingDeceleration = 2048.0
	DefaultGroundFriction      = 8.0
	DefaultMaxStepHeight       = 45.0
	DefaultMaxWalkSpeed        = 600.0

	DefaultCapsuleRadius     = 42.0
	DefaultCapsuleHalfHeight = 96.0

	GroundProbeDistance  = 2.0
	MinimumResidualSpeed = 1e-3
	CollisionTolerance   = 1e-6
	ControlPitchLimit    = 89.0

	// procedural pose
	strideLength    = 140.0
	footSpreadRatio = 0.35
	ankleHeight     = 8.0
	footSwing       = 25.0
	footLift        = 6.0
	handReach       = 12.0
	handSwing       = 15.0
	handSpread      = 6.0
	shoulderRatio   = 0.35
)
