package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/takjn/sfs4gr/scan"
	"github.com/takjn/sfs4gr/voxel"
)

func newMeshCmd(root *rootFlags) *cobra.Command {
	var (
		outDir      string
		formats     []string
		stripBorder bool
		isolated    int
		largest     bool
	)
	cmd := &cobra.Command{
		Use:   "mesh <volume.npz>",
		Short: "Convert a saved voxel volume into mesh and point files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger, err := root.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			v, err := voxel.LoadNumpy(args[0])
			if err != nil {
				return err
			}
			logger.Infow("loaded volume", "size", v.Size(), "spacing", v.Spacing(),
				"occupied", v.Count())

			if stripBorder {
				voxel.StripBorder(v)
			}
			if isolated > 0 {
				logger.Infow("removed isolated voxels", "removed", voxel.RemoveIsolated(v, isolated))
			}
			if largest {
				logger.Infow("removed detached voxels", "removed", voxel.KeepLargestComponent(v))
			}

			if outDir == "" {
				outDir = filepath.Dir(args[0])
			}
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			for _, format := range formats {
				path, err := scan.ExportFile(outDir, name, format, v, cfg)
				if err != nil {
					return err
				}
				logger.Infow("wrote output", "format", format, "path", path)
				cmd.Println(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default next to input)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{scan.FormatSTL},
		"output formats (stl, stl-binary, ply, xyz, smooth)")
	cmd.Flags().BoolVar(&stripBorder, "strip-border", true, "empty the faces of the volume first")
	cmd.Flags().IntVar(&isolated, "isolated", 0, "remove voxels with more empty neighbors than this")
	cmd.Flags().BoolVar(&largest, "largest-component", false, "keep only the largest connected part")
	return cmd
}
