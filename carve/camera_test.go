package carve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unixpickle/model3d/model3d"
)

func TestCameraProjectOrigin(t *testing.T) {
	c := DefaultCamera()
	u, v, visible := c.Project(0, model3d.Coord3D{})
	assert.InDelta(t, 321, u, 1e-9)
	assert.InDelta(t, 244+3.0/115*365.5, v, 1e-9)
	assert.InDelta(t, 253.53, v, 0.01)
	assert.True(t, visible)
}

func TestCameraProjectRotation(t *testing.T) {
	c := DefaultCamera()
	p := model3d.Coord3D{X: 10, Y: -5, Z: 0}

	// A quarter turn moves the point onto the optical
	// axis, in front of or behind the turntable center.
	u, _, visible := c.Project(math.Pi/2, p)
	assert.True(t, visible)
	assert.InDelta(t, c.CenterU, u, 1e-9)

	// Turning the table is the same as rotating the point
	// about the vertical axis.
	sin, cos := math.Sincos(0.3)
	rotated := model3d.Coord3D{X: cos*p.X + sin*p.Z, Y: p.Y, Z: -sin*p.X + cos*p.Z}
	u1, v1, _ := c.Project(0.3, p)
	u2, v2, _ := c.Project(0, rotated)
	assert.InDelta(t, u1, u2, 1e-9)
	assert.InDelta(t, v1, v2, 1e-9)

	// A full revolution is the identity.
	u3, v3, _ := c.Project(2*math.Pi, p)
	u4, v4, _ := c.Project(0, p)
	assert.InDelta(t, u4, u3, 1e-9)
	assert.InDelta(t, v4, v3, 1e-9)
}

func TestCameraProjectVisibility(t *testing.T) {
	c := DefaultCamera()

	testCases := []struct {
		name    string
		point   model3d.Coord3D
		visible bool
	}{
		{"center", model3d.Coord3D{}, true},
		{"far left", model3d.Coord3D{X: 200}, false},
		{"far right", model3d.Coord3D{X: -200}, false},
		{"far above", model3d.Coord3D{Y: 200}, false},
		{"far below", model3d.Coord3D{Y: -200}, false},
		{"camera plane", model3d.Coord3D{Z: 115}, false},
		{"camera plane offset", model3d.Coord3D{X: 1, Z: 115}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, visible := c.Project(0, tc.point)
			assert.Equal(t, tc.visible, visible)
		})
	}
}

func TestCameraProjectStrictBounds(t *testing.T) {
	c := Camera{Width: 10, Height: 10, Fx: 1, Fy: 1, CenterU: 0, CenterV: 5, Distance: 1}
	_, _, visible := c.Project(0, model3d.Coord3D{})
	assert.False(t, visible, "u == 0 lies on the frame edge")

	c.CenterU = 10
	_, _, visible = c.Project(0, model3d.Coord3D{})
	assert.False(t, visible, "u == width lies on the frame edge")

	c.CenterU = 5
	_, _, visible = c.Project(0, model3d.Coord3D{})
	assert.True(t, visible)
}

func TestCameraValidate(t *testing.T) {
	c := DefaultCamera()
	assert.NoError(t, c.Validate())

	bad := c
	bad.Width = 0
	assert.Error(t, bad.Validate())

	bad = c
	bad.Fx = 0
	assert.Error(t, bad.Validate())

	bad = c
	bad.Distance = -1
	assert.Error(t, bad.Validate())
}
