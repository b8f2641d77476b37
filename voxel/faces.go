package voxel

// A Direction is one of the six axis-aligned faces of a
// voxel.
type Direction int

// The six face directions, named by the axis and sign of
// their outward normal.
const (
	PosX Direction = iota // +x
	NegX                  // -x
	PosY                  // +y
	NegY                  // -y
	PosZ                  // +z
	NegZ                  // -z
)

// corner is an offset from a voxel's minimum corner,
// each component either 0 or 1.
type corner [3]int

type face struct {
	// Offset to the neighbor sharing this face.
	Neighbor [3]int

	// Outward normal.
	Normal [3]int

	// Quad corners, as written to PLY files.
	Quad [4]corner

	// Triangle split, as written to STL files.
	Triangles [2][3]corner
}

var faces = [6]face{
	PosX: {
		Neighbor:  [3]int{1, 0, 0},
		Normal:    [3]int{1, 0, 0},
		Quad:      [4]corner{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
		Triangles: [2][3]corner{{{1, 0, 1}, {1, 0, 0}, {1, 1, 1}}, {{1, 1, 0}, {1, 1, 1}, {1, 0, 0}}},
	},
	NegX: {
		Neighbor:  [3]int{-1, 0, 0},
		Normal:    [3]int{-1, 0, 0},
		Quad:      [4]corner{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
		Triangles: [2][3]corner{{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}}, {{0, 1, 1}, {0, 1, 0}, {0, 0, 1}}},
	},
	PosY: {
		Neighbor:  [3]int{0, 1, 0},
		Normal:    [3]int{0, 1, 0},
		Quad:      [4]corner{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
		Triangles: [2][3]corner{{{0, 1, 1}, {1, 1, 1}, {0, 1, 0}}, {{1, 1, 0}, {0, 1, 0}, {1, 1, 1}}},
	},
	NegY: {
		Neighbor:  [3]int{0, -1, 0},
		Normal:    [3]int{0, -1, 0},
		Quad:      [4]corner{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
		Triangles: [2][3]corner{{{1, 0, 1}, {0, 0, 1}, {1, 0, 0}}, {{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}},
	},
	PosZ: {
		Neighbor:  [3]int{0, 0, 1},
		Normal:    [3]int{0, 0, 1},
		Quad:      [4]corner{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
		Triangles: [2][3]corner{{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}}, {{1, 1, 1}, {0, 1, 1}, {1, 0, 1}}},
	},
	NegZ: {
		Neighbor:  [3]int{0, 0, -1},
		Normal:    [3]int{0, 0, -1},
		Quad:      [4]corner{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
		Triangles: [2][3]corner{{{1, 0, 0}, {0, 0, 0}, {1, 1, 0}}, {{0, 1, 0}, {1, 1, 0}, {0, 0, 0}}},
	},
}

// Face orders used when writing each format. Both visit
// the same faces, so counts always agree.
var (
	stlOrder = [6]Direction{PosZ, PosX, NegZ, NegX, PosY, NegY}
	plyOrder = [6]Direction{NegZ, PosZ, NegX, PosX, NegY, PosY}
)

// exposed checks if the face of an interior voxel in the
// given direction borders an empty voxel.
func (v *Volume) exposed(x, y, z int, d Direction) bool {
	n := faces[d].Neighbor
	return v.Get(x+n[0], y+n[1], z+n[2]) == 0
}

// ExposedFaces counts the faces between occupied
// interior voxels and empty neighbors.
func ExposedFaces(v *Volume) int {
	var count int
	v.forEachFace(stlOrder, func(x, y, z int, d Direction) {
		count++
	})
	return count
}

// forEachFace calls f for every exposed face, visiting
// interior voxels in index order and each voxel's faces
// in the given order.
func (v *Volume) forEachFace(order [6]Direction, f func(x, y, z int, d Direction)) {
	for z := 1; z < v.size-1; z++ {
		for y := 1; y < v.size-1; y++ {
			for x := 1; x < v.size-1; x++ {
				if v.Get(x, y, z) == 0 {
					continue
				}
				for _, d := range order {
					if v.exposed(x, y, z, d) {
						f(x, y, z, d)
					}
				}
			}
		}
	}
}
