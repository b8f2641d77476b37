package scan

import (
	"context"
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takjn/sfs4gr/voxel"
)

// bandSource yields a black background followed by frames
// showing a vertical white band, the silhouette of an
// upright cylinder on the turntable axis.
type bandSource struct {
	frames int
	halfW  int
}

func (b *bandSource) Capture(ctx context.Context) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, 640, 480))
	if b.frames > 0 {
		for y := 0; y < 480; y++ {
			for x := 321 - b.halfW; x <= 321+b.halfW; x++ {
				img.Pix[y*img.Stride+x] = 0xff
			}
		}
	}
	b.frames++
	return img, nil
}

func testConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Volume.Size = 20
	cfg.Volume.Spacing = 1
	cfg.Turntable.Views = 8
	cfg.Turntable.StepsPerView = 50
	cfg.Export.Dir = t.TempDir()
	cfg.Export.Formats = []string{FormatSTL, FormatPLY, FormatXYZ, FormatNumpy}
	return cfg
}

func TestSessionRun(t *testing.T) {
	cfg := testConfig(t)
	table := &StepCounter{StepsPerRevolution: cfg.Turntable.StepsPerRevolution}
	s, err := NewSession(cfg, &bandSource{halfW: 12}, table, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, res.Views)
	// No rotation follows the last view.
	assert.Equal(t, 350, table.Steps())
	assert.InDelta(t, 2*math.Pi*7/8, s.Angle(), 1e-9)

	v := s.Volume
	assert.True(t, v.Occupied(10, 10, 10))
	assert.True(t, v.Occupied(10, 5, 10))
	assert.False(t, v.Occupied(1, 10, 1))
	assert.False(t, v.Occupied(18, 10, 18))
	assert.Equal(t, v.Count(), res.Remaining)
	assert.Equal(t, v.Len()-res.Carved-res.Cleaned, res.Remaining)

	require.Len(t, res.Files, 4)
	for _, path := range res.Files {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), path)
	}

	loaded, err := voxel.LoadNumpy(filepath.Join(cfg.Export.Dir, s.ID+".npz"))
	require.NoError(t, err)
	assert.Equal(t, v.Count(), loaded.Count())
	assert.Equal(t, v.Spacing(), loaded.Spacing())
}

func TestSessionDebugMasks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Turntable.Views = 2
	cfg.Silhouette.DebugDir = filepath.Join(t.TempDir(), "masks")
	s, err := NewSession(cfg, &bandSource{halfW: 5}, &StepCounter{StepsPerRevolution: 400}, nil)
	require.NoError(t, err)

	_, err = s.Reconstruct(context.Background())
	require.NoError(t, err)
	for _, name := range []string{"mask_000.png", "mask_001.png"} {
		_, err := os.Stat(filepath.Join(cfg.Silhouette.DebugDir, name))
		assert.NoError(t, err)
	}
}

func TestSessionRerun(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewSession(cfg, &bandSource{halfW: 12}, &StepCounter{StepsPerRevolution: 400}, nil)
	require.NoError(t, err)

	first, err := s.Reconstruct(context.Background())
	require.NoError(t, err)
	s.Source = &bandSource{halfW: 12}
	second, err := s.Reconstruct(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Remaining, second.Remaining)
}

func TestSessionErrors(t *testing.T) {
	cfg := testConfig(t)

	bad := *cfg
	bad.Volume.Size = 1
	_, err := NewSession(&bad, &bandSource{}, &StepCounter{StepsPerRevolution: 400}, nil)
	assert.Error(t, err)

	bad = *cfg
	bad.Workers = -1
	_, err = NewSession(&bad, &bandSource{}, &StepCounter{StepsPerRevolution: 400}, nil)
	assert.Error(t, err)

	dir := t.TempDir()
	writeFrame(t, dir, "background.png", 0)
	src, err := NewDirSource(dir, "")
	require.NoError(t, err)
	s, err := NewSession(cfg, src, &StepCounter{StepsPerRevolution: 400}, nil)
	require.NoError(t, err)
	_, err = s.Reconstruct(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreFrames)
	assert.ErrorContains(t, err, "view 0")

	s, err = NewSession(cfg, &bandSource{}, &StepCounter{StepsPerRevolution: 400}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Reconstruct(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportFileUnknownFormat(t *testing.T) {
	_, err := ExportFile(t.TempDir(), "x", "obj", voxel.NewVolume(4, 1, 1), DefaultConfig())
	assert.Error(t, err)
}
