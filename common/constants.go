package common

// Simulation constants. These are fixed at build time; gameplay tunables
// live in the prefab YAML files instead.
const (
	SimulationStep     = 1.0 / 60.0
	VelocityIterations = 6
	PositionIterations = 2
	PixelsPerMeter     = 100.0

	// MaxFrameDelta bounds catch-up work after a stall.
	MaxFrameDelta = 0.25
	// WarmupDelay is how long the scene settles before the first step.
	WarmupDelay = 5.0

	GravityX = 0.0
	GravityY = -10.0
)

const (
	BaseWidth  = 1280
	BaseHeight = 720
)
