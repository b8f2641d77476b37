package voxel

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// SurfaceThreshold is the default number of empty voxels
// in the 3x3x3 cube around a voxel above which the voxel
// is considered part of the surface for XYZ export.
const SurfaceThreshold = 4

// ExportOptions controls the coordinates and decoration
// of exported files.
type ExportOptions struct {
	// Name is written after "solid" in STL files.
	Name string

	// Centered shifts output into the turntable frame,
	// where the center of the volume is the origin.
	// Otherwise, the minimum corner of the volume is the
	// origin.
	Centered bool

	// FlipY negates the Y coordinate of XYZ points.
	FlipY bool

	// SurfaceThreshold is the XYZ surface heuristic.
	SurfaceThreshold int

	// Color is the RGB color of every PLY vertex.
	Color [3]uint8
}

// DefaultExportOptions gets the options that reproduce
// the firmware's output files.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Name:             "result-ascii",
		FlipY:            true,
		SurfaceThreshold: SurfaceThreshold,
		Color:            [3]uint8{200, 200, 200},
	}
}

// origin gets the grid offset subtracted from voxel
// indices before scaling.
func (e *ExportOptions) origin(v *Volume) int {
	if e.Centered {
		return v.size / 2
	}
	return 0
}

func (v *Volume) cornerCoords(x, y, z int, c corner, origin int) (float64, float64, float64) {
	return float64(x+c[0]-origin) * v.spacing,
		float64(y+c[1]-origin) * v.spacing,
		float64(z+c[2]-origin) * v.spacing
}

// WriteSTL writes the boundary of the occupied voxels as
// an ASCII STL file, with two triangles per exposed face.
func WriteSTL(w io.Writer, v *Volume, opts ExportOptions) error {
	bw := bufio.NewWriter(w)
	origin := opts.origin(v)

	fmt.Fprintf(bw, "solid %s\n", opts.Name)
	v.forEachFace(stlOrder, func(x, y, z int, d Direction) {
		f := &faces[d]
		for _, tri := range f.Triangles {
			fmt.Fprintf(bw, "facet normal %d %d %d\n", f.Normal[0], f.Normal[1], f.Normal[2])
			bw.WriteString("outer loop\n")
			for _, c := range tri {
				px, py, pz := v.cornerCoords(x, y, z, c, origin)
				fmt.Fprintf(bw, "vertex %f %f %f\n", px, py, pz)
			}
			bw.WriteString("endloop\n")
			bw.WriteString("endfacet\n")
		}
	})
	bw.WriteString("endsolid\n")

	return errors.Wrap(bw.Flush(), "write STL")
}

// WritePLY writes the boundary of the occupied voxels as
// an ASCII PLY file with one colored quad per exposed
// face.
func WritePLY(w io.Writer, v *Volume, opts ExportOptions) error {
	bw := bufio.NewWriter(w)
	origin := opts.origin(v)
	faceCount := ExposedFaces(v)

	bw.WriteString("ply\n")
	bw.WriteString("format ascii 1.0\n")
	fmt.Fprintf(bw, "element vertex %d\n", faceCount*4)
	bw.WriteString("property float x\n")
	bw.WriteString("property float y\n")
	bw.WriteString("property float z\n")
	bw.WriteString("property uchar red\n")
	bw.WriteString("property uchar green\n")
	bw.WriteString("property uchar blue\n")
	fmt.Fprintf(bw, "element face %d\n", faceCount)
	bw.WriteString("property list uint8 int32 vertex_indices\n")
	bw.WriteString("end_header\n")

	r, g, b := opts.Color[0], opts.Color[1], opts.Color[2]
	v.forEachFace(plyOrder, func(x, y, z int, d Direction) {
		for _, c := range faces[d].Quad {
			px, py, pz := v.cornerCoords(x, y, z, c, origin)
			fmt.Fprintf(bw, "%f %f %f %d %d %d\n", px, py, pz, r, g, b)
		}
	})
	for i := 0; i < faceCount; i++ {
		idx := i * 4
		fmt.Fprintf(bw, "4 %d %d %d %d\n", idx, idx+1, idx+2, idx+3)
	}

	return errors.Wrap(bw.Flush(), "write PLY")
}

// WriteXYZ writes one point per surface voxel, where a
// surface voxel is an occupied interior voxel with more
// than opts.SurfaceThreshold empty voxels around it.
//
// The number of written points is returned.
func WriteXYZ(w io.Writer, v *Volume, opts ExportOptions) (int, error) {
	bw := bufio.NewWriter(w)
	origin := opts.origin(v)

	var count int
	for z := 1; z < v.size-1; z++ {
		for y := 1; y < v.size-1; y++ {
			for x := 1; x < v.size-1; x++ {
				if v.Get(x, y, z) == 0 {
					continue
				}
				if v.emptyNeighbors(x, y, z) <= opts.SurfaceThreshold {
					continue
				}
				px, py, pz := v.cornerCoords(x, y, z, corner{}, origin)
				if opts.FlipY {
					py = -py
				}
				fmt.Fprintf(bw, "%f %f %f\n", px, py, pz)
				count++
			}
		}
	}

	return count, errors.Wrap(bw.Flush(), "write XYZ")
}
