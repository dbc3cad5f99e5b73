// Package sim runs a level: it owns the solver, drives it at a fixed
// timestep and keeps actors in sync with their bodies.
package sim

import (
	"math"

	"github.com/milk9111/gemfall/common"
)

// StepFunc advances the solver by exactly one fixed step.
type StepFunc func(dt float64, velocityIterations, positionIterations int)

// FixedStepper converts variable frame deltas into whole solver steps.
// Leftover time carries to the next frame, so the accumulator stays in
// [0, Step) between calls.
type FixedStepper struct {
	Step               float64
	VelocityIterations int
	PositionIterations int
	MaxFrameDelta      float64
	Warmup             float64

	accumulator   float64
	warmupElapsed float64
	totalSteps    uint64
}

// NewFixedStepper returns a stepper configured with the build constants.
func NewFixedStepper() *FixedStepper {
	return &FixedStepper{
		Step:               common.SimulationStep,
		VelocityIterations: common.VelocityIterations,
		PositionIterations: common.PositionIterations,
		MaxFrameDelta:      common.MaxFrameDelta,
		Warmup:             common.WarmupDelay,
	}
}

// Advance consumes one frame delta and returns how many steps were run.
// Until the warm-up threshold is reached no step runs, whatever the delta.
// The frame that reaches the threshold steps with its full clamped delta.
func (s *FixedStepper) Advance(delta float64, step StepFunc) int {
	delta = sanitizeDelta(delta)

	if !s.WarmedUp() {
		s.warmupElapsed += delta
		if s.warmupElapsed < s.Warmup {
			return 0
		}
	}
	if s.Step <= 0 {
		return 0
	}

	s.accumulator += clampDelta(delta, s.MaxFrameDelta)

	n := 0
	for s.accumulator >= s.Step {
		if step != nil {
			step(s.Step, s.VelocityIterations, s.PositionIterations)
		}
		s.accumulator -= s.Step
		n++
	}
	s.totalSteps += uint64(n)
	return n
}

// Accumulator is the banked time not yet consumed by a step.
func (s *FixedStepper) Accumulator() float64 {
	return s.accumulator
}

func (s *FixedStepper) WarmupElapsed() float64 {
	return s.warmupElapsed
}

// WarmedUp reports whether steps are allowed.
func (s *FixedStepper) WarmedUp() bool {
	return s.warmupElapsed >= s.Warmup
}

func (s *FixedStepper) TotalSteps() uint64 {
	return s.totalSteps
}

// DiscardBanked drops any accumulated time without touching warm-up.
func (s *FixedStepper) DiscardBanked() {
	s.accumulator = 0
}

func clampDelta(delta, limit float64) float64 {
	if limit > 0 && delta > limit {
		return limit
	}
	return delta
}

func sanitizeDelta(delta float64) float64 {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta < 0 {
		return 0
	}
	return delta
}
