package scan

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepAngle(t *testing.T) {
	assert.Equal(t, 0.0, StepAngle(0, 400))
	assert.InDelta(t, math.Pi/20, StepAngle(10, 400), 1e-12)
	assert.InDelta(t, 2*math.Pi, StepAngle(400, 400), 1e-12)
	assert.InDelta(t, -math.Pi, StepAngle(-200, 400), 1e-12)
}

func TestStepCounter(t *testing.T) {
	s := &StepCounter{StepsPerRevolution: 400}
	ctx := context.Background()
	require.NoError(t, s.Rotate(ctx, 10))
	require.NoError(t, s.Rotate(ctx, 10))
	require.NoError(t, s.Rotate(ctx, -5))
	assert.Equal(t, 15, s.Steps())
	assert.InDelta(t, StepAngle(15, 400), s.Angle(), 1e-12)
}

func TestStepCounterCancel(t *testing.T) {
	s := &StepCounter{StepsPerRevolution: 400, StepDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Rotate(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Steps())
}
