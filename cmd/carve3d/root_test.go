package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takjn/sfs4gr/voxel"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Setenv(configEnv, "")
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestProjectCommand(t *testing.T) {
	out, err := execute(t, "project", "0", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "u=321.000000")
	assert.Contains(t, out, "visible=true")

	out, err = execute(t, "project", "500", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "visible=false")

	_, err = execute(t, "project", "x", "0", "0")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "size: 200")
	assert.Contains(t, out, "steps_per_revolution: 400")

	path := filepath.Join(t.TempDir(), "out.yaml")
	_, err = execute(t, "config", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "spacing: 0.5")

	out, err = execute(t, "--config", path, "project", "0", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "u=321.000000")
}

func TestMeshCommand(t *testing.T) {
	dir := t.TempDir()
	v := voxel.NewVolume(8, 1, 1)
	v.Clear()
	input := filepath.Join(dir, "part.npz")
	require.NoError(t, voxel.SaveNumpy(input, v))

	out, err := execute(t, "mesh", input, "--format", "stl,xyz", "--largest-component")
	require.NoError(t, err)
	for _, name := range []string{"part.stl", "part.xyz"} {
		path := filepath.Join(dir, name)
		assert.Contains(t, out, path)
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
}

func TestScanCommand(t *testing.T) {
	frames := t.TempDir()
	for i := 0; i < 5; i++ {
		img := image.NewGray(image.Rect(0, 0, 64, 48))
		if i > 0 {
			for y := 0; y < 48; y++ {
				for x := 28; x <= 36; x++ {
					img.SetGray(x, y, color.Gray{Y: 0xff})
				}
			}
		}
		name := filepath.Join(frames, fmt.Sprintf("frame_%02d.png", i))
		require.NoError(t, imaging.Save(img, name))
	}

	config := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
volume:
  size: 10
  spacing: 1
camera:
  width: 64
  height: 48
  fx: 36
  fy: 36
  center_u: 32
  center_v: 24
turntable:
  steps_per_view: 100
`), 0644))

	out := t.TempDir()
	stdout, err := execute(t, "--config", config, "scan", frames, "--out", out, "--format", "ply,npz")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(out, "*.ply"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, stdout, matches[0])

	matches, err = filepath.Glob(filepath.Join(out, "*.npz"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	v, err := voxel.LoadNumpy(matches[0])
	require.NoError(t, err)
	assert.True(t, v.Occupied(5, 5, 5))

	_, err = execute(t, "--config", config, "scan", frames, "--out", out, "--workers=-1")
	assert.ErrorContains(t, err, "workers")
}
