package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/takjn/sfs4gr/scan"
	"go.uber.org/zap"
)

// configEnv names the variable that points to a default
// config file.
const configEnv = "SFS4GR_CONFIG"

type rootFlags struct {
	configPath string
	jsonLogs   bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "carve3d",
		Short: "Shape-from-silhouette reconstruction for turntable scans",
		Long: `carve3d carves a voxel volume against object silhouettes captured
from a turntable and exports the result as STL, PLY or XYZ files.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			if flags.configPath == "" {
				flags.configPath = os.Getenv(configEnv)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"YAML config file (default $"+configEnv+")")
	cmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "log as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logs")

	cmd.AddCommand(newScanCmd(flags))
	cmd.AddCommand(newMeshCmd(flags))
	cmd.AddCommand(newProjectCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))

	return cmd
}

// loadConfig reads the config file if one was given, or
// the defaults otherwise.
func (r *rootFlags) loadConfig() (*scan.Config, error) {
	if r.configPath == "" {
		return scan.DefaultConfig(), nil
	}
	return scan.LoadConfig(r.configPath)
}

func (r *rootFlags) logger() (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if r.jsonLogs {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if !r.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}
	return l.Sugar(), nil
}
