package scan

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/takjn/sfs4gr/carve"
	"github.com/takjn/sfs4gr/voxel"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// A Session owns one reconstruction: its volume, frame
// source and turntable.
//
// A Session is not safe for concurrent use.
type Session struct {
	ID     string
	Config *Config
	Source FrameSource
	Table  Turntable
	Logger *zap.SugaredLogger

	Volume *voxel.Volume

	steps int
}

// Result summarizes a finished scan.
type Result struct {
	ID        string
	Views     int
	Carved    int
	Cleaned   int
	Remaining int
	Files     []string
}

// NewSession creates a session with a fresh volume.
func NewSession(cfg *Config, source FrameSource, table Turntable, logger *zap.SugaredLogger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	id := uuid.New().String()
	return &Session{
		ID:     id,
		Config: cfg,
		Source: source,
		Table:  table,
		Logger: logger.With("scan", id),
		Volume: voxel.NewVolume(cfg.Volume.Size, cfg.Volume.Spacing, cfg.Volume.Confidence),
	}, nil
}

// Angle gets the table angle implied by the steps this
// session has issued.
func (s *Session) Angle() float64 {
	return StepAngle(s.steps, s.Config.Turntable.StepsPerRevolution)
}

// Run captures and carves every view, cleans up the
// volume and writes the configured outputs.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	res, err := s.Reconstruct(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.Export(s.Config.Export.Dir)
	if err != nil {
		return nil, err
	}
	res.Files = files
	return res, nil
}

// Reconstruct carves the volume from every view and runs
// the configured cleanup passes.
//
// The table is rotated between views, so it ends at the
// angle of the last view rather than back at the start.
//
// The volume is cleared first, so a failed or cancelled
// reconstruction can simply be run again.
func (s *Session) Reconstruct(ctx context.Context) (*Result, error) {
	cfg := s.Config
	s.Volume.Clear()
	res := &Result{ID: s.ID}

	background, err := s.Source.Capture(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "capture background")
	}
	s.Logger.Infow("captured background", "width", background.Bounds().Dx(),
		"height", background.Bounds().Dy())

	carver := carve.NewCarver(cfg.Camera)
	carver.Workers = cfg.Workers
	for i := 0; i < cfg.Turntable.Views; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.carveView(ctx, carver, background, i)
		if err != nil {
			return nil, errors.Wrapf(err, "view %d", i)
		}
		res.Carved += n
		res.Views++

		if i == cfg.Turntable.Views-1 {
			break
		}
		if err := s.Table.Rotate(ctx, cfg.Turntable.StepsPerView); err != nil {
			return nil, errors.Wrap(err, "rotate turntable")
		}
		s.steps += cfg.Turntable.StepsPerView
	}

	res.Cleaned = s.Cleanup()
	res.Remaining = s.Volume.Count()
	s.Logger.Infow("reconstruction finished", "views", res.Views, "carved", res.Carved,
		"cleaned", res.Cleaned, "remaining", res.Remaining)
	return res, nil
}

func (s *Session) carveView(ctx context.Context, carver *carve.Carver, background *image.Gray,
	i int) (int, error) {
	frame, err := s.Source.Capture(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "capture")
	}
	mask, err := carve.Silhouette(frame, background, s.Config.Silhouette.Threshold,
		s.Config.Silhouette.Blur)
	if err != nil {
		return 0, err
	}
	if dir := s.Config.Silhouette.DebugDir; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, errors.Wrap(err, "create debug directory")
		}
		path := filepath.Join(dir, fmt.Sprintf("mask_%03d.png", i))
		if err := carve.SaveMask(path, mask); err != nil {
			return 0, err
		}
	}

	angle := s.Angle()
	n, err := carver.Carve(s.Volume, mask, angle)
	if err != nil {
		return 0, err
	}
	s.Logger.Infow("carved view", "view", i, "angle", angle, "coverage", mask.Coverage(),
		"carved", n)
	return n, nil
}

// Cleanup runs the configured cleanup passes and returns
// the number of voxels they removed.
func (s *Session) Cleanup() int {
	cfg := s.Config.Cleanup
	var total int
	if cfg.StripBorder {
		before := s.Volume.Count()
		voxel.StripBorder(s.Volume)
		total += before - s.Volume.Count()
	}
	if cfg.MinConfidence > 0 {
		n := voxel.ApplyConfidence(s.Volume, cfg.MinConfidence)
		s.Logger.Debugw("applied confidence", "min", cfg.MinConfidence, "removed", n)
		total += n
	}
	if cfg.RemoveIsolated {
		n := voxel.RemoveIsolated(s.Volume, cfg.IsolatedThreshold)
		s.Logger.Debugw("removed isolated voxels", "removed", n)
		total += n
	}
	if cfg.KeepLargestComponent {
		n := voxel.KeepLargestComponent(s.Volume)
		s.Logger.Debugw("removed detached voxels", "removed", n)
		total += n
	}
	return total
}

// Export writes every configured format into dir, naming
// files after the session ID.
func (s *Session) Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "export")
	}
	var files []string
	for _, format := range s.Config.Export.Formats {
		path, err := ExportFile(dir, s.ID, format, s.Volume, s.Config)
		if err != nil {
			return files, err
		}
		s.Logger.Infow("wrote output", "format", format, "path", path)
		files = append(files, path)
	}
	return files, nil
}

// ExportFile writes a volume in one format and returns
// the created path.
func ExportFile(dir, name, format string, v *voxel.Volume, cfg *Config) (path string, err error) {
	opts := cfg.ExportOptions()
	opts.Name = name

	if format == FormatNumpy {
		path = filepath.Join(dir, name+".npz")
		return path, voxel.SaveNumpy(path, v)
	}

	path = filepath.Join(dir, name+fileSuffix(format))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "export "+format)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	switch format {
	case FormatSTL:
		err = voxel.WriteSTL(f, v, opts)
	case FormatBinarySTL:
		err = voxel.WriteBinarySTL(f, v, opts)
	case FormatPLY:
		err = voxel.WritePLY(f, v, opts)
	case FormatXYZ:
		_, err = voxel.WriteXYZ(f, v, opts)
	case FormatSmooth:
		err = writeMesh(f, voxel.SmoothMesh(v, opts, cfg.Export.SmoothIters).EncodeSTL())
	default:
		err = errors.Errorf("unknown format %q", format)
	}
	return path, err
}

func fileSuffix(format string) string {
	switch format {
	case FormatBinarySTL:
		return "-binary.stl"
	case FormatSmooth:
		return "-smooth.stl"
	default:
		return "." + format
	}
}

func writeMesh(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return errors.Wrap(err, "write smooth STL")
}
