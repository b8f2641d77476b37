package voxel

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// Mesh creates a triangle mesh with the same triangles
// that WriteSTL would produce.
func Mesh(v *Volume, opts ExportOptions) *model3d.Mesh {
	origin := opts.origin(v)
	mesh := model3d.NewMesh()
	v.forEachFace(stlOrder, func(x, y, z int, d Direction) {
		for _, tri := range faces[d].Triangles {
			t := &model3d.Triangle{}
			for i, c := range tri {
				px, py, pz := v.cornerCoords(x, y, z, c, origin)
				t[i] = model3d.Coord3D{X: px, Y: py, Z: pz}
			}
			mesh.Add(t)
		}
	})
	return mesh
}

// WriteBinarySTL writes the voxel boundary as a binary
// STL file.
func WriteBinarySTL(w io.Writer, v *Volume, opts ExportOptions) error {
	_, err := w.Write(Mesh(v, opts).EncodeSTL())
	return errors.Wrap(err, "write binary STL")
}

// SmoothMesh polygonizes the volume with marching cubes,
// producing a mesh without the staircase artifacts of
// the voxel boundary.
//
// The iters argument controls the bisection steps used
// to place each vertex on the surface.
func SmoothMesh(v *Volume, opts ExportOptions, iters int) *model3d.Mesh {
	solid := &Solid{Volume: v, Threshold: 0.5, Centered: opts.Centered}
	return model3d.MarchingCubesSearch(solid, v.spacing/2, iters)
}

// A Solid exposes a volume as a model3d.Solid, using a
// trilinear interpolation of occupancy.
type Solid struct {
	Volume *Volume

	// Threshold is the minimum interpolated occupancy for
	// a point to be inside the solid.
	Threshold float64

	// Centered uses the turntable frame rather than the
	// grid frame, like ExportOptions.Centered.
	Centered bool
}

// Min gets the minimum of the bounding box.
func (s *Solid) Min() model3d.Coord3D {
	o := -s.offset()
	return model3d.Coord3D{X: o, Y: o, Z: o}
}

// Max gets the maximum of the bounding box.
func (s *Solid) Max() model3d.Coord3D {
	o := float64(s.Volume.size)*s.Volume.spacing - s.offset()
	return model3d.Coord3D{X: o, Y: o, Z: o}
}

// Contains checks if the interpolated occupancy at the
// point is at least the threshold.
func (s *Solid) Contains(c model3d.Coord3D) bool {
	return model3d.InBounds(s, c) && s.Interp(c) >= s.Threshold
}

// Interp gets a trilinear interpolated occupancy at the
// given point, treating voxel values as samples at voxel
// centers.
func (s *Solid) Interp(c model3d.Coord3D) float64 {
	offset := model3d.Coord3D{X: 1, Y: 1, Z: 1}.Scale(s.offset())
	c = c.Add(offset).Scale(1 / s.Volume.spacing)
	half := model3d.Coord3D{X: 0.5, Y: 0.5, Z: 0.5}
	c = c.Sub(half)

	xs, xFracs := roundedCoords(c.X)
	ys, yFracs := roundedCoords(c.Y)
	zs, zFracs := roundedCoords(c.Z)
	var value float64
	for i, x := range xs {
		xFrac := xFracs[i]
		for j, y := range ys {
			yFrac := yFracs[j]
			for k, z := range zs {
				zFrac := zFracs[k]
				value += xFrac * yFrac * zFrac * s.occupancy(x, y, z)
			}
		}
	}
	return value
}

// occupancy is 1 for occupied voxels and 0 for empty or
// out of bounds voxels.
func (s *Solid) occupancy(x, y, z int) float64 {
	if !s.Volume.InBounds(Coord{x, y, z}) {
		return 0
	}
	if s.Volume.Get(x, y, z) > 0 {
		return 1
	}
	return 0
}

func (s *Solid) offset() float64 {
	if s.Centered {
		return float64(s.Volume.size/2) * s.Volume.spacing
	}
	return 0
}

func roundedCoords(c float64) (vals [2]int, fracs [2]float64) {
	min := int(math.Floor(c))
	max := min + 1
	minFrac := float64(max) - c
	maxFrac := 1 - minFrac
	return [2]int{min, max}, [2]float64{minFrac, maxFrac}
}
