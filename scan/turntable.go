package scan

import (
	"context"
	"math"
	"time"
)

// A Turntable rotates the object by whole motor steps.
// Negative steps turn the other way.
type Turntable interface {
	Rotate(ctx context.Context, steps int) error
}

// A StepCounter is a Turntable without hardware. It
// records the steps it was asked to take, optionally
// pausing for each one like a real stepper would.
type StepCounter struct {
	StepsPerRevolution int
	StepDelay          time.Duration

	steps int
}

// Rotate records the steps.
func (s *StepCounter) Rotate(ctx context.Context, steps int) error {
	if s.StepDelay > 0 {
		n := steps
		if n < 0 {
			n = -n
		}
		timer := time.NewTimer(s.StepDelay * time.Duration(n))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	s.steps += steps
	return nil
}

// Steps gets the net number of steps taken.
func (s *StepCounter) Steps() int {
	return s.steps
}

// Angle gets the current table angle in radians.
func (s *StepCounter) Angle() float64 {
	return StepAngle(s.steps, s.StepsPerRevolution)
}

// StepAngle converts a step count into radians.
func StepAngle(steps, stepsPerRevolution int) float64 {
	return 2 * math.Pi * float64(steps) / float64(stepsPerRevolution)
}
