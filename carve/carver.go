package carve

import (
	"github.com/pkg/errors"
	"github.com/takjn/sfs4gr/voxel"
	"github.com/unixpickle/essentials"
)

// A View is one silhouette observed at a turntable angle.
type View struct {
	Angle float64
	Mask  *Mask
}

// A Carver removes voxels that project outside of
// observed silhouettes.
type Carver struct {
	Camera Camera

	// Workers is the number of goroutines used per carve.
	// If it is 0 or negative, GOMAXPROCS is used.
	Workers int
}

// NewCarver creates a carver for a camera.
func NewCarver(c Camera) *Carver {
	return &Carver{Camera: c}
}

// Carve applies one view to a volume.
//
// Every occupied voxel whose projection misses the frame
// or lands on a background pixel loses one unit of
// confidence. The number of voxels emptied by this view
// is returned.
func (c *Carver) Carve(v *voxel.Volume, mask *Mask, angle float64) (int, error) {
	if mask.Width != c.Camera.Width || mask.Height != c.Camera.Height {
		return 0, errors.Errorf("carve: mask is %dx%d but camera frame is %dx%d",
			mask.Width, mask.Height, c.Camera.Width, c.Camera.Height)
	}
	if len(mask.Pix) != mask.Width*mask.Height {
		return 0, errors.Errorf("carve: mask has %d pixels but should have %d",
			len(mask.Pix), mask.Width*mask.Height)
	}

	workers := c.Workers
	if workers < 0 {
		workers = 0
	}
	size := v.Size()
	counts := make([]int, size)
	essentials.ConcurrentMap(workers, size, func(z int) {
		counts[z] = c.carveSlice(v, mask, angle, z)
	})

	var total int
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// CarveAll applies each view in order, returning the
// total number of emptied voxels.
func (c *Carver) CarveAll(v *voxel.Volume, views []View) (int, error) {
	var total int
	for i, view := range views {
		n, err := c.Carve(v, view.Mask, view.Angle)
		if err != nil {
			return total, errors.Wrapf(err, "view %d", i)
		}
		total += n
	}
	return total, nil
}

// carveSlice carves the voxels with a given z index.
// Slices never share voxels, so they may run in parallel.
func (c *Carver) carveSlice(v *voxel.Volume, mask *Mask, angle float64, z int) int {
	var emptied int
	size := v.Size()
	for y := 0; y < size; y++ {
		idx := v.Index(0, y, z)
		for x := 0; x < size; x, idx = x+1, idx+1 {
			if v.GetIndex(idx) == 0 {
				continue
			}
			u, row, visible := c.Camera.Project(angle, v.World(x, y, z))
			if visible && mask.At(int(row), int(u)) != 0 {
				continue
			}
			if v.Decrement(idx) {
				emptied++
			}
		}
	}
	return emptied
}
