// Package voxel implements a dense occupancy grid for
// shape-from-silhouette reconstruction, along with the
// cleanup passes and mesh/point exporters that operate
// on it.
package voxel

import (
	"github.com/unixpickle/model3d/model3d"
)

// A Coord is an integer voxel coordinate.
type Coord [3]int

// A Volume is a cubic grid of occupancy counters.
//
// A value of 0 means the voxel has been carved away.
// Any positive value means the voxel is still part of
// the object. Freshly cleared voxels start at the
// volume's confidence, and every view that disagrees
// with a voxel decrements it by one.
type Volume struct {
	size       int
	spacing    float64
	confidence uint8

	data []uint8
}

// NewVolume creates a cleared volume with size voxels
// along each axis, spaced spacing millimeters apart.
//
// A confidence of 1 gives a plain binary grid, where a
// single disagreeing view removes a voxel.
func NewVolume(size int, spacing float64, confidence uint8) *Volume {
	if confidence == 0 {
		confidence = 1
	}
	v := &Volume{
		size:       size,
		spacing:    spacing,
		confidence: confidence,
		data:       make([]uint8, size*size*size),
	}
	v.Clear()
	return v
}

// Clear marks every voxel as occupied with full
// confidence.
func (v *Volume) Clear() {
	for i := range v.data {
		v.data[i] = v.confidence
	}
}

// Size gets the number of voxels along each axis.
func (v *Volume) Size() int {
	return v.size
}

// Spacing gets the distance between voxel centers.
func (v *Volume) Spacing() float64 {
	return v.spacing
}

// Confidence gets the value voxels are reset to by
// Clear.
func (v *Volume) Confidence() uint8 {
	return v.confidence
}

// Len gets the total number of voxels.
func (v *Volume) Len() int {
	return len(v.data)
}

// Index computes the flat index of a voxel.
func (v *Volume) Index(x, y, z int) int {
	return x + v.size*(y+z*v.size)
}

// Coords is the inverse of Index.
func (v *Volume) Coords(idx int) (x, y, z int) {
	x = idx % v.size
	idx /= v.size
	y = idx % v.size
	z = idx / v.size
	return
}

// Get gets the value at integer coordinates.
//
// Coordinates must be in [0, Size()).
func (v *Volume) Get(x, y, z int) uint8 {
	return v.data[v.Index(x, y, z)]
}

// GetIndex gets the value at a flat index.
func (v *Volume) GetIndex(idx int) uint8 {
	return v.data[idx]
}

// Set overwrites the value at integer coordinates.
func (v *Volume) Set(x, y, z int, val uint8) {
	v.data[v.Index(x, y, z)] = val
}

// SetIndex overwrites the value at a flat index.
func (v *Volume) SetIndex(idx int, val uint8) {
	v.data[idx] = val
}

// Occupied checks if a voxel has not been carved.
func (v *Volume) Occupied(x, y, z int) bool {
	return v.data[v.Index(x, y, z)] > 0
}

// Decrement lowers a voxel's confidence by one, never
// going below zero.
//
// The result is true if this call emptied the voxel.
func (v *Volume) Decrement(idx int) bool {
	val := v.data[idx]
	if val == 0 {
		return false
	}
	v.data[idx] = val - 1
	return val == 1
}

// Count gets the number of occupied voxels.
func (v *Volume) Count() int {
	var n int
	for _, val := range v.data {
		if val > 0 {
			n++
		}
	}
	return n
}

// Clone creates a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	res := *v
	res.data = append([]uint8{}, v.data...)
	return &res
}

// World gets the world coordinate of a voxel.
//
// The volume is centered on the turntable axis, so the
// voxel at (Size/2, Size/2, Size/2) maps to the origin.
func (v *Volume) World(x, y, z int) model3d.Coord3D {
	half := v.size / 2
	return model3d.Coord3D{
		X: float64(x-half) * v.spacing,
		Y: float64(y-half) * v.spacing,
		Z: float64(z-half) * v.spacing,
	}
}

// Interior checks if a coordinate is at least one voxel
// away from every face of the volume.
func (v *Volume) Interior(c Coord) bool {
	for _, x := range c {
		if x < 1 || x >= v.size-1 {
			return false
		}
	}
	return true
}

// Neighbors calls f for each of the 26 coordinates
// surrounding c that lie inside the volume.
func (v *Volume) Neighbors(c Coord, f func(Coord)) {
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				n := Coord{c[0] + x, c[1] + y, c[2] + z}
				if v.InBounds(n) {
					f(n)
				}
			}
		}
	}
}

// InBounds checks if a coordinate lies inside the
// volume.
func (v *Volume) InBounds(c Coord) bool {
	for _, x := range c {
		if x < 0 || x >= v.size {
			return false
		}
	}
	return true
}

// emptyNeighbors counts the empty voxels in the 3x3x3
// cube around an interior voxel.
func (v *Volume) emptyNeighbors(x, y, z int) int {
	var count int
	for k := -1; k <= 1; k++ {
		for j := -1; j <= 1; j++ {
			base := v.Index(x-1, y+j, z+k)
			for i := 0; i < 3; i++ {
				if v.data[base+i] == 0 {
					count++
				}
			}
		}
	}
	return count
}
