package scan

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/takjn/sfs4gr/carve"
)

// A FrameSource produces grayscale camera frames.
type FrameSource interface {
	Capture(ctx context.Context) (*image.Gray, error)
}

// ErrNoMoreFrames is returned by DirSource after its last
// frame.
var ErrNoMoreFrames = errors.New("no more frames")

var frameExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// A DirSource replays previously captured frames from a
// directory, in lexical order of their file names.
type DirSource struct {
	paths []string
	next  int
}

// NewDirSource lists the image files in dir.
//
// If background is non-empty, that file is returned by
// the first Capture and skipped afterwards. Otherwise the
// first file in the directory is the background.
func NewDirSource(dir, background string) (*DirSource, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "list frames")
	}
	var paths []string
	for _, entry := range listing {
		if entry.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if entry.Name() == background {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	if background != "" {
		paths = append([]string{filepath.Join(dir, background)}, paths...)
	}
	if len(paths) == 0 {
		return nil, errors.New("list frames: no images in " + dir)
	}
	return &DirSource{paths: paths}, nil
}

// Len gets the number of frames, including the
// background.
func (d *DirSource) Len() int {
	return len(d.paths)
}

// Capture loads the next frame.
func (d *DirSource) Capture(ctx context.Context) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.next >= len(d.paths) {
		return nil, ErrNoMoreFrames
	}
	path := d.paths[d.next]
	d.next++
	return carve.LoadGray(path)
}
