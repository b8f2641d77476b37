package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"gopkg.in/yaml.v3"
)

func newProjectCmd(root *rootFlags) *cobra.Command {
	var degrees float64
	cmd := &cobra.Command{
		Use:   "project <x> <y> <z>",
		Short: "Print where a world point lands in the camera frame",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			var coords [3]float64
			for i, arg := range args {
				coords[i], err = strconv.ParseFloat(arg, 64)
				if err != nil {
					return errors.Wrap(err, "parse coordinate")
				}
			}
			p := model3d.Coord3D{X: coords[0], Y: coords[1], Z: coords[2]}
			u, v, visible := cfg.Camera.Project(degrees*math.Pi/180, p)
			cmd.Println(fmt.Sprintf("u=%f v=%f visible=%v", u, v, visible))
			return nil
		},
	}
	cmd.Flags().Float64VarP(&degrees, "angle", "a", 0, "turntable angle in degrees")
	return cmd
}

func newConfigCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config [output.yaml]",
		Short: "Print or save the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return cfg.Save(args[0])
			}
			data, err := yaml.Marshal(cfg)
			essentials.Must(err)
			cmd.Print(string(data))
			return nil
		},
	}
}
