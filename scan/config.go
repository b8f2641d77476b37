// Package scan drives a turntable reconstruction: it
// captures silhouettes, carves a voxel volume, cleans it
// up, and writes the requested output files.
package scan

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/takjn/sfs4gr/carve"
	"github.com/takjn/sfs4gr/voxel"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Session.
const (
	FormatSTL       = "stl"
	FormatBinarySTL = "stl-binary"
	FormatPLY       = "ply"
	FormatXYZ       = "xyz"
	FormatSmooth    = "smooth"
	FormatNumpy     = "npz"
)

var allFormats = []string{FormatSTL, FormatBinarySTL, FormatPLY, FormatXYZ, FormatSmooth, FormatNumpy}

// Config holds all parameters of a scan.
type Config struct {
	Volume     VolumeConfig     `yaml:"volume"`
	Camera     carve.Camera     `yaml:"camera"`
	Turntable  TurntableConfig  `yaml:"turntable"`
	Silhouette SilhouetteConfig `yaml:"silhouette"`
	Cleanup    CleanupConfig    `yaml:"cleanup"`
	Export     ExportConfig     `yaml:"export"`

	// Workers is the number of goroutines per carve; 0
	// uses every CPU. Negative values are rejected.
	Workers int `yaml:"workers"`
}

// VolumeConfig describes the reconstruction grid.
type VolumeConfig struct {
	Size       int     `yaml:"size"`       // voxels per axis
	Spacing    float64 `yaml:"spacing"`    // millimeters per voxel
	Confidence uint8   `yaml:"confidence"` // views that must disagree before a voxel is removed
}

// TurntableConfig describes the stepper and the capture
// schedule.
type TurntableConfig struct {
	StepsPerRevolution int `yaml:"steps_per_revolution"`
	StepsPerView       int `yaml:"steps_per_view"`
	Views              int `yaml:"views"`
}

// SilhouetteConfig controls background subtraction.
type SilhouetteConfig struct {
	Threshold int     `yaml:"threshold"` // negative selects Otsu
	Blur      float64 `yaml:"blur"`      // gaussian sigma, 0 disables
	DebugDir  string  `yaml:"debug_dir"` // if set, masks are saved here
}

// CleanupConfig selects the post-processing passes.
type CleanupConfig struct {
	StripBorder          bool  `yaml:"strip_border"`
	RemoveIsolated       bool  `yaml:"remove_isolated"`
	IsolatedThreshold    int   `yaml:"isolated_threshold"`
	MinConfidence        uint8 `yaml:"min_confidence"`
	KeepLargestComponent bool  `yaml:"keep_largest_component"`
}

// ExportConfig selects output files.
type ExportConfig struct {
	Dir              string   `yaml:"dir"`
	Formats          []string `yaml:"formats"`
	Centered         bool     `yaml:"centered"`
	FlipY            bool     `yaml:"flip_y"`
	SurfaceThreshold int      `yaml:"surface_threshold"`
	Color            [3]uint8 `yaml:"color"`
	SmoothIters      int      `yaml:"smooth_iters"`
}

// DefaultConfig gets the configuration of the reference
// rig: a 200^3 grid at 0.5mm, 40 views 10 half-steps
// apart.
func DefaultConfig() *Config {
	opts := voxel.DefaultExportOptions()
	return &Config{
		Volume: VolumeConfig{
			Size:       200,
			Spacing:    0.5,
			Confidence: 1,
		},
		Camera: carve.DefaultCamera(),
		Turntable: TurntableConfig{
			StepsPerRevolution: 400,
			StepsPerView:       10,
			Views:              40,
		},
		Silhouette: SilhouetteConfig{
			Threshold: 30,
		},
		Cleanup: CleanupConfig{
			StripBorder:       true,
			RemoveIsolated:    true,
			IsolatedThreshold: voxel.IsolatedThreshold,
		},
		Export: ExportConfig{
			Dir:              ".",
			Formats:          []string{FormatSTL, FormatPLY, FormatXYZ},
			FlipY:            opts.FlipY,
			SurfaceThreshold: opts.SurfaceThreshold,
			Color:            opts.Color,
			SmoothIters:      8,
		},
	}
}

// LoadConfig reads a YAML file on top of the default
// configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "load config "+path)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "save config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "save config")
}

// Validate checks the configuration for values that
// cannot produce a reconstruction.
func (c *Config) Validate() error {
	if c.Volume.Size < 3 {
		return errors.Errorf("config: volume size %d is too small", c.Volume.Size)
	}
	if c.Volume.Spacing <= 0 {
		return errors.New("config: volume spacing must be positive")
	}
	if c.Volume.Confidence == 0 {
		return errors.New("config: volume confidence must be at least 1")
	}
	if err := c.Camera.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.Turntable.StepsPerRevolution <= 0 {
		return errors.New("config: steps per revolution must be positive")
	}
	if c.Turntable.Views <= 0 {
		return errors.New("config: at least one view is required")
	}
	if c.Silhouette.Threshold > 255 {
		return errors.Errorf("config: silhouette threshold %d exceeds 255", c.Silhouette.Threshold)
	}
	if c.Workers < 0 {
		return errors.Errorf("config: workers %d is negative", c.Workers)
	}
	for _, f := range c.Export.Formats {
		if !knownFormat(f) {
			return errors.Errorf("config: unknown export format %q", f)
		}
	}
	return nil
}

// ExportOptions converts the export section into options
// for the voxel writers.
func (c *Config) ExportOptions() voxel.ExportOptions {
	opts := voxel.DefaultExportOptions()
	opts.Centered = c.Export.Centered
	opts.FlipY = c.Export.FlipY
	opts.SurfaceThreshold = c.Export.SurfaceThreshold
	opts.Color = c.Export.Color
	return opts
}

func knownFormat(f string) bool {
	for _, x := range allFormats {
		if x == f {
			return true
		}
	}
	return false
}
