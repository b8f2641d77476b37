package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/takjn/sfs4gr/scan"
)

func newScanCmd(root *rootFlags) *cobra.Command {
	var (
		background string
		outDir     string
		formats    []string
		views      int
		workers    int
		debugDir   string
		stepDelay  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "scan <frames_dir>",
		Short: "Reconstruct an object from a directory of turntable frames",
		Long: `Reconstruct an object from previously captured frames.

The first frame (or the file named by --background) must show the empty
turntable. Each following frame is one view, taken steps_per_view motor
steps after the previous one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Export.Dir = outDir
			}
			if len(formats) > 0 {
				cfg.Export.Formats = formats
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if debugDir != "" {
				cfg.Silhouette.DebugDir = debugDir
			}

			logger, err := root.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			source, err := scan.NewDirSource(args[0], background)
			if err != nil {
				return err
			}
			if views > 0 {
				cfg.Turntable.Views = views
			}
			if available := source.Len() - 1; cfg.Turntable.Views > available {
				logger.Warnw("fewer frames than views", "views", cfg.Turntable.Views,
					"frames", available)
				cfg.Turntable.Views = available
			}

			table := &scan.StepCounter{
				StepsPerRevolution: cfg.Turntable.StepsPerRevolution,
				StepDelay:          stepDelay,
			}
			session, err := scan.NewSession(cfg, source, table, logger)
			if err != nil {
				return err
			}
			res, err := session.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range res.Files {
				cmd.Println(f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&background, "background", "", "file name of the background frame")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil,
		"output formats (stl, stl-binary, ply, xyz, smooth, npz)")
	cmd.Flags().IntVar(&views, "views", 0, "number of views to carve")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per carve (0 uses every CPU)")
	cmd.Flags().StringVar(&debugDir, "debug-masks", "", "directory to save silhouette masks")
	cmd.Flags().DurationVar(&stepDelay, "step-delay", 0, "simulated delay per motor step")
	return cmd
}
