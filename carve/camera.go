// Package carve implements silhouette carving of voxel
// volumes from turntable views.
package carve

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// A Camera is a fixed pinhole camera looking at the
// turntable axis from the side.
//
// Distances are in the same units as the volume spacing,
// typically millimeters.
type Camera struct {
	// Frame dimensions in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Focal lengths in pixels.
	Fx float64 `yaml:"fx"`
	Fy float64 `yaml:"fy"`

	// Principal point in pixels.
	CenterU float64 `yaml:"center_u"`
	CenterV float64 `yaml:"center_v"`

	// Distance is the distance from the camera to the
	// turntable axis.
	Distance float64 `yaml:"distance"`

	// HeightOffset is added to the vertical coordinate of
	// every point before projection.
	HeightOffset float64 `yaml:"height_offset"`
}

// DefaultCamera gets the parameters of the 640x480
// turntable rig.
func DefaultCamera() Camera {
	return Camera{
		Width:        640,
		Height:       480,
		Fx:           365.2,
		Fy:           365.5,
		CenterU:      321,
		CenterV:      244,
		Distance:     115,
		HeightOffset: 3,
	}
}

// Validate checks that the camera can project points.
func (c *Camera) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("camera: invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.Fx == 0 || c.Fy == 0 {
		return errors.New("camera: focal lengths must be nonzero")
	}
	if c.Distance <= 0 {
		return errors.New("camera: distance must be positive")
	}
	return nil
}

// Project maps a world point to pixel coordinates after
// the turntable has turned by angle radians.
//
// The point is visible if it lands strictly inside the
// frame. Points on the camera's depth plane produce
// infinite or NaN coordinates, which are never visible.
func (c *Camera) Project(angle float64, p model3d.Coord3D) (u, v float64, visible bool) {
	sin, cos := math.Sincos(angle)
	xc := cos*p.X + sin*p.Z
	yc := p.Y + c.HeightOffset
	zc := -sin*p.X + cos*p.Z - c.Distance

	u = c.CenterU - (xc/zc)*c.Fx
	v = c.CenterV - (yc/zc)*c.Fy
	visible = u > 0 && u < float64(c.Width) && v > 0 && v < float64(c.Height)
	return
}
