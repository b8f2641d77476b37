package voxel

// IsolatedThreshold is the default number of empty
// neighbors (out of 26) above which an occupied voxel is
// treated as noise.
const IsolatedThreshold = 24

// StripBorder empties every voxel on the six faces of
// the volume.
//
// Exporters look at the 6-neighborhood of each voxel, so
// they only visit interior voxels and rely on the border
// being empty.
func StripBorder(v *Volume) {
	last := v.size - 1
	for i := 0; i < v.size; i++ {
		for j := 0; j < v.size; j++ {
			v.Set(i, j, 0, 0)
			v.Set(i, 0, j, 0)
			v.Set(0, i, j, 0)
			v.Set(i, j, last, 0)
			v.Set(i, last, j, 0)
			v.Set(last, i, j, 0)
		}
	}
}

// RemoveIsolated empties interior voxels with more than
// threshold empty voxels among their 26 neighbors.
//
// Neighbor counts are taken before any voxel is removed,
// so the result does not depend on traversal order.
// The number of removed voxels is returned.
func RemoveIsolated(v *Volume, threshold int) int {
	var remove []int
	for z := 1; z < v.size-1; z++ {
		for y := 1; y < v.size-1; y++ {
			for x := 1; x < v.size-1; x++ {
				idx := v.Index(x, y, z)
				if v.data[idx] == 0 {
					continue
				}
				if v.emptyNeighbors(x, y, z) > threshold {
					remove = append(remove, idx)
				}
			}
		}
	}
	for _, idx := range remove {
		v.data[idx] = 0
	}
	return len(remove)
}

// ApplyConfidence empties every voxel whose remaining
// confidence is below min.
//
// With a volume confidence of T, a min of T keeps only
// voxels that no view ever disagreed with, while a min
// of 1 is a no-op.
func ApplyConfidence(v *Volume, min uint8) int {
	var n int
	for i, val := range v.data {
		if val > 0 && val < min {
			v.data[i] = 0
			n++
		}
	}
	return n
}

// KeepLargestComponent empties every occupied voxel that
// is not 26-connected to the largest group of occupied
// voxels.
//
// Silhouette noise tends to leave small floating chunks
// away from the object, and this removes all of them at
// once. The number of removed voxels is returned.
func KeepLargestComponent(v *Volume) int {
	labels := make([]int32, len(v.data))
	var sizes []int

	var queue []Coord
	for idx, val := range v.data {
		if val == 0 || labels[idx] != 0 {
			continue
		}
		label := int32(len(sizes) + 1)
		sizes = append(sizes, 0)

		x, y, z := v.Coords(idx)
		queue = append(queue[:0], Coord{x, y, z})
		labels[idx] = label
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			sizes[label-1]++
			v.Neighbors(c, func(n Coord) {
				nIdx := v.Index(n[0], n[1], n[2])
				if v.data[nIdx] > 0 && labels[nIdx] == 0 {
					labels[nIdx] = label
					queue = append(queue, n)
				}
			})
		}
	}
	if len(sizes) < 2 {
		return 0
	}

	var best int32
	for i, s := range sizes {
		if s > sizes[best] {
			best = int32(i)
		}
	}
	keep := best + 1

	var removed int
	for idx, label := range labels {
		if label != 0 && label != keep {
			v.data[idx] = 0
			removed++
		}
	}
	return removed
}
